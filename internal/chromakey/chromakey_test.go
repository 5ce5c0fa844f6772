package chromakey

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"
)

func green() Config {
	return Config{Key: [3]float64{0, 1, 0}, Threshold: 0.1}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		rgb     [3]float64
		verdict Verdict
	}{
		{"exact key", green(), [3]float64{0, 1, 0}, Discard},
		{"inside threshold", green(), [3]float64{0.05, 0.95, 0.02}, Discard},
		{"soft edge", green(), [3]float64{0, 0.8, 0}, Attenuate},
		{"far", green(), [3]float64{1, 0, 0}, Keep},
		{"exactly at soft edge", green(), [3]float64{0, 0.5, 0}, Keep},
		{"disabled", Disabled(), [3]float64{0, 0, 0}, Keep},
		{"zero threshold", Config{Key: [3]float64{0, 1, 0}}, [3]float64{0, 1, 0}, Attenuate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := tt.cfg.Classify(tt.rgb[0], tt.rgb[1], tt.rgb[2])
			if v != tt.verdict {
				t.Fatalf("got %v want %v", v, tt.verdict)
			}
		})
	}
}

func keyTestImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 204, 0, 255})
	img.SetNRGBA(2, 0, color.NRGBA{200, 10, 30, 255})
	img.SetNRGBA(0, 1, color.NRGBA{12, 34, 56, 128})
	img.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(2, 1, color.NRGBA{0, 0, 0, 0})
	return img
}

func keyOnce(img image.Image, cfg Config) (*image.NRGBA, error) {
	return CPU{}.Draw(cfg.Bind(NewSource(img)))
}

func TestKeyPass(t *testing.T) {
	src := keyTestImage()
	out, err := keyOnce(src, green())
	if err != nil {
		t.Fatalf("key pass: %v", err)
	}
	if got := out.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("key pixel alpha: got %d", got.A)
	}
	if got := out.NRGBAAt(1, 0); got.A != 51 || got.G != 204 {
		t.Errorf("soft edge pixel: got %+v", got)
	}
	for _, p := range []image.Point{{2, 0}, {0, 1}, {1, 1}} {
		if got, want := out.NRGBAAt(p.X, p.Y), src.NRGBAAt(p.X, p.Y); got != want {
			t.Errorf("pixel %v changed: got %+v want %+v", p, got, want)
		}
	}
}

func TestSoftEdgeAlphaIsDistance(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{0, 204, 0, 100})
	src.SetNRGBA(1, 0, color.NRGBA{0, 153, 0, 255})
	out, err := keyOnce(src, green())
	if err != nil {
		t.Fatalf("key pass: %v", err)
	}
	if got := out.NRGBAAt(0, 0); got.A != 51 || got.G != 204 {
		t.Errorf("translucent soft edge pixel: got %+v", got)
	}
	if got := out.NRGBAAt(1, 0); got.A != 102 {
		t.Errorf("soft edge pixel: got %+v", got)
	}
}

func TestKeyPassDisabledPassesThrough(t *testing.T) {
	src := keyTestImage()
	out, err := keyOnce(src, Disabled())
	if err != nil {
		t.Fatalf("key pass: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}
}

func TestKeyPassOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 22))
	src.Set(10, 20, color.RGBA{0, 255, 0, 255})
	out, err := keyOnce(src, green())
	if err != nil {
		t.Fatalf("key pass: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds: %v", out.Bounds())
	}
	if out.NRGBAAt(0, 0).A != 0 {
		t.Fatalf("key pixel not removed")
	}
}

func TestCompositorCache(t *testing.T) {
	img := keyTestImage()
	c := NewCompositor()
	src := NewSource(img)

	first, err := c.Surface(src, green())
	if err != nil {
		t.Fatalf("Surface: %v", err)
	}
	second, _ := c.Surface(src, green())
	if first != second {
		t.Fatalf("expected cached surface")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("stats: hits=%d misses=%d", hits, misses)
	}

	if _, err := c.Surface(NewSource(img), green()); err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if _, misses := c.Stats(); misses != 2 {
		t.Fatalf("new source should miss, misses=%d", misses)
	}

	if _, err := c.Surface(src, Disabled()); err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if _, misses := c.Stats(); misses != 3 {
		t.Fatalf("new config should miss, misses=%d", misses)
	}

	if _, err := c.Surface(Source{}, green()); err != ErrNoSource {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

type recordingBackend struct {
	passes []Pass
}

func (r *recordingBackend) Draw(p Pass) (*image.NRGBA, error) {
	r.passes = append(r.passes, p)
	return CPU{}.Draw(p)
}

func TestCompositorInvalidate(t *testing.T) {
	c := NewCompositor()
	src := NewSource(keyTestImage())
	if _, err := c.Surface(src, green()); err != nil {
		t.Fatalf("Surface: %v", err)
	}
	c.Invalidate()
	if _, err := c.Surface(src, green()); err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 2 {
		t.Fatalf("stats after invalidate: hits=%d misses=%d", hits, misses)
	}
}

func TestCompositorBindsUniformsPerDraw(t *testing.T) {
	rec := &recordingBackend{}
	c := NewCompositor(WithBackend(rec))
	src := NewSource(keyTestImage())
	if _, err := c.Surface(src, green()); err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if len(rec.passes) != 1 {
		t.Fatalf("passes: %d", len(rec.passes))
	}
	params, ok := rec.passes[0].Lookup(BindingParams)
	if !ok {
		t.Fatalf("params not bound")
	}
	u, err := DecodeKeyUniforms(params.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.Key != [3]float32{0, 1, 0} || u.Threshold != float32(0.1) {
		t.Fatalf("uniforms: %+v", u)
	}
}

func TestPassValidate(t *testing.T) {
	p := NewPass(NewSource(keyTestImage()), green())
	if err := p.Validate(); err != nil {
		t.Fatalf("valid pass rejected: %v", err)
	}
	p.Bindings = p.Bindings[:1]
	if err := p.Validate(); err == nil {
		t.Fatalf("missing texture accepted")
	}
}

func TestLayoutEntries(t *testing.T) {
	entries := LayoutEntries()
	if len(entries) != len(Uniforms) {
		t.Fatalf("entries: %d", len(entries))
	}
	if entries[0].Buffer == nil || entries[0].Buffer.MinBindingSize != KeyUniformsSize {
		t.Errorf("binding 0 should be a %d byte uniform buffer", KeyUniformsSize)
	}
	if entries[1].Texture == nil {
		t.Errorf("binding 1 should be a texture")
	}
	if entries[2].Sampler == nil {
		t.Errorf("binding 2 should be a sampler")
	}
}

func TestShaderDeclaresUniforms(t *testing.T) {
	source := ShaderSource()
	for _, u := range Uniforms {
		decl := fmt.Sprintf("@group(0) @binding(%d) var", u.Binding)
		idx := strings.Index(source, decl)
		if idx < 0 {
			t.Errorf("shader missing %q", decl)
			continue
		}
		line := source[idx:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if !strings.Contains(line, u.Name) {
			t.Errorf("binding %d declared as %q, want name %s", u.Binding, line, u.Name)
		}
	}
	for _, entry := range []string{"@vertex", "@fragment", VertexEntry, FragmentEntry} {
		if !strings.Contains(source, entry) {
			t.Errorf("shader missing %s", entry)
		}
	}
}

func TestCompileShader(t *testing.T) {
	words, err := CompileShader()
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("CompileShader: %v", err)
	}
	if len(words) == 0 || words[0] != 0x07230203 {
		t.Fatalf("missing SPIR-V magic number")
	}
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("#00FF00")
	if err != nil || key != [3]float64{0, 1, 0} {
		t.Fatalf("got %v %v", key, err)
	}
	if key, err := ParseKey("none"); err != nil || key != [3]float64{} {
		t.Fatalf("none: got %v %v", key, err)
	}
	if _, err := ParseKey("#0F0"); err == nil {
		t.Fatalf("short form accepted")
	}
	if got := (Config{Key: key}).KeyHex(); got != "#00FF00" {
		t.Fatalf("KeyHex: %s", got)
	}
}
