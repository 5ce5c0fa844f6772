package chromakey

import (
	"image"
	"math"
	"runtime"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Backend executes a keying pass and returns a surface the size of the
// bound source texture.
type Backend interface {
	Draw(p Pass) (*image.NRGBA, error)
}

// CPU runs the keying program on the CPU, one band of rows per worker.
type CPU struct {
	Workers int
}

// Draw implements Backend.
func (c CPU) Draw(p Pass) (*image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	params, _ := p.Lookup(BindingParams)
	tex, _ := p.Lookup(BindingSource)
	u, err := DecodeKeyUniforms(params.Data)
	if err != nil {
		return nil, err
	}
	return c.filter(tex.Texture, u.config()), nil
}

func (c CPU) filter(src image.Image, cfg Config) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			off := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:], n.Pix[off:off+b.Dx()*4])
		}
	} else {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	}
	if !cfg.Enabled() {
		return dst
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := dst.Bounds().Dy()
	if workers > rows {
		workers = rows
	}
	band := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < rows; y0 += band {
		y1 := min(y0+band, rows)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			keyRows(dst, y0, y1, cfg)
		}(y0, y1)
	}
	wg.Wait()
	return dst
}

func keyRows(img *image.NRGBA, y0, y1 int, cfg Config) {
	w := img.Bounds().Dx()
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			px := row[i : i+4 : i+4]
			v, d := cfg.Classify(float64(px[0])/255, float64(px[1])/255, float64(px[2])/255)
			switch v {
			case Discard:
				px[0], px[1], px[2], px[3] = 0, 0, 0, 0
			case Attenuate:
				px[3] = uint8(math.Round(255 * d))
			}
		}
	}
}
