package chromakey

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
)

// UniformKind is the resource type behind a binding slot.
type UniformKind int

const (
	UniformBuffer UniformKind = iota
	UniformTexture
	UniformSampler
)

func (k UniformKind) String() string {
	switch k {
	case UniformBuffer:
		return "uniform"
	case UniformTexture:
		return "texture_2d<f32>"
	case UniformSampler:
		return "sampler"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Uniform describes one @group(0) binding of the keying program.
type Uniform struct {
	Name    string
	Binding uint32
	Kind    UniformKind
	Size    uint64
}

// KeyUniformsSize is the byte size of the KeyUniforms block.
const KeyUniformsSize = 16

const (
	BindingParams  uint32 = 0
	BindingSource  uint32 = 1
	BindingSampler uint32 = 2
)

// Uniforms enumerates every resource the program reads, in binding order.
var Uniforms = []Uniform{
	{Name: "params", Binding: BindingParams, Kind: UniformBuffer, Size: KeyUniformsSize},
	{Name: "source_tex", Binding: BindingSource, Kind: UniformTexture},
	{Name: "source_sampler", Binding: BindingSampler, Kind: UniformSampler},
}

// LayoutEntry converts u to a bind group layout entry.
func (u Uniform) LayoutEntry() gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{
		Binding:    u.Binding,
		Visibility: gputypes.ShaderStageFragment,
	}
	switch u.Kind {
	case UniformBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: u.Size,
		}
	case UniformTexture:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case UniformSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	}
	return e
}

// LayoutEntries returns the bind group layout of the keying program.
func LayoutEntries() []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, len(Uniforms))
	for i, u := range Uniforms {
		entries[i] = u.LayoutEntry()
	}
	return entries
}

// KeyUniforms mirrors the WGSL struct of the same name.
type KeyUniforms struct {
	Key       [3]float32
	Threshold float32
}

// Uniforms returns the uniform block for c.
func (c Config) Uniforms() KeyUniforms {
	return KeyUniforms{
		Key:       [3]float32{float32(c.Key[0]), float32(c.Key[1]), float32(c.Key[2])},
		Threshold: float32(c.Threshold),
	}
}

// Bytes encodes u with the WGSL uniform layout: vec3 at offset 0, the
// threshold packed into the vec3's trailing slot at offset 12.
func (u KeyUniforms) Bytes() []byte {
	buf := make([]byte, KeyUniformsSize)
	for i, v := range u.Key {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(u.Threshold))
	return buf
}

// DecodeKeyUniforms reads a block written by Bytes.
func DecodeKeyUniforms(b []byte) (KeyUniforms, error) {
	if len(b) < KeyUniformsSize {
		return KeyUniforms{}, fmt.Errorf("uniform block is %d bytes, want %d", len(b), KeyUniformsSize)
	}
	var u KeyUniforms
	for i := range u.Key {
		u.Key[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	u.Threshold = math.Float32frombits(binary.LittleEndian.Uint32(b[12:]))
	return u, nil
}

func (u KeyUniforms) config() Config {
	return Config{
		Key:       [3]float64{float64(u.Key[0]), float64(u.Key[1]), float64(u.Key[2])},
		Threshold: float64(u.Threshold),
	}
}

// Binding is one resource bound to a slot for a single draw.
type Binding struct {
	Uniform Uniform
	Data    []byte
	Texture image.Image
	Filter  bool
}

// Pass is one keying draw with its resources bound explicitly.
type Pass struct {
	Bindings []Binding
}

// NewPass binds src and c to the program's slots.
func NewPass(src Source, c Config) Pass {
	return Pass{Bindings: []Binding{
		{Uniform: Uniforms[BindingParams], Data: c.Uniforms().Bytes()},
		{Uniform: Uniforms[BindingSource], Texture: src.Image()},
		{Uniform: Uniforms[BindingSampler], Filter: false},
	}}
}

// Bind returns the per-draw binding set of c for src.
func (c Config) Bind(src Source) Pass {
	return NewPass(src, c)
}

// Lookup returns the binding for slot.
func (p Pass) Lookup(slot uint32) (Binding, bool) {
	for _, b := range p.Bindings {
		if b.Uniform.Binding == slot {
			return b, true
		}
	}
	return Binding{}, false
}

// Validate checks that every declared uniform is bound with the right kind
// of resource.
func (p Pass) Validate() error {
	for _, u := range Uniforms {
		b, ok := p.Lookup(u.Binding)
		if !ok {
			return fmt.Errorf("binding %d (%s) not bound", u.Binding, u.Name)
		}
		if b.Uniform.Kind != u.Kind {
			return fmt.Errorf("binding %d (%s): got %v, want %v", u.Binding, u.Name, b.Uniform.Kind, u.Kind)
		}
		switch u.Kind {
		case UniformBuffer:
			if uint64(len(b.Data)) < u.Size {
				return fmt.Errorf("binding %d (%s): %d bytes, want %d", u.Binding, u.Name, len(b.Data), u.Size)
			}
		case UniformTexture:
			if b.Texture == nil || b.Texture.Bounds().Empty() {
				return fmt.Errorf("binding %d (%s): empty texture", u.Binding, u.Name)
			}
		}
	}
	return nil
}
