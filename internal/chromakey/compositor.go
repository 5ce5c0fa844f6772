package chromakey

import (
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoSource is returned when a pass is requested without a source image.
var ErrNoSource = errors.New("chromakey: no source image")

var sourceIDs atomic.Uint64

// Source is a source bitmap with an identity. Two Sources built from the
// same image by separate NewSource calls are different sources.
type Source struct {
	id  uint64
	img image.Image
}

// NewSource wraps img with a fresh identity.
func NewSource(img image.Image) Source {
	return Source{id: sourceIDs.Add(1), img: img}
}

func (s Source) ID() uint64         { return s.id }
func (s Source) Image() image.Image { return s.img }
func (s Source) Valid() bool        { return s.img != nil && !s.img.Bounds().Empty() }

type cacheKey struct {
	source uint64
	config Config
}

// Compositor caches the keyed surface of the current source. The surface
// is recomputed only when the source identity or the key config changes.
// Returned surfaces are shared and must not be modified.
type Compositor struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	key     cacheKey
	surface *image.NRGBA
	hits    int
	misses  int
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithBackend replaces the CPU backend.
func WithBackend(b Backend) CompositorOption {
	return func(c *Compositor) { c.backend = b }
}

// WithLogger sets the logger used for pass timings.
func WithLogger(l *slog.Logger) CompositorOption {
	return func(c *Compositor) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCompositor returns a compositor with an empty cache.
func NewCompositor(opts ...CompositorOption) *Compositor {
	c := &Compositor{backend: CPU{}, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Surface returns the keyed full-resolution surface for src.
func (c *Compositor) Surface(src Source, cfg Config) (*image.NRGBA, error) {
	if !src.Valid() {
		return nil, ErrNoSource
	}
	k := cacheKey{source: src.ID(), config: cfg}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface != nil && c.key == k {
		c.hits++
		return c.surface, nil
	}
	start := time.Now()
	out, err := c.backend.Draw(cfg.Bind(src))
	if err != nil {
		return nil, err
	}
	c.misses++
	c.key = k
	c.surface = out
	c.logger.Debug("chroma-key pass",
		"source", src.ID(),
		"size", out.Bounds().Size(),
		"config", cfg.String(),
		"elapsed", time.Since(start))
	return out, nil
}

// Invalidate drops the cached surface.
func (c *Compositor) Invalidate() {
	c.mu.Lock()
	c.surface = nil
	c.key = cacheKey{}
	c.mu.Unlock()
}

// Stats reports cache hits and misses since construction.
func (c *Compositor) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
