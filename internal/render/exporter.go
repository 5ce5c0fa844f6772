package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
)

// ErrExportInFlight is returned when an export is started while another is
// still running.
var ErrExportInFlight = errors.New("render: export already in progress")

// Job describes one export: the rendered crop, the sizes to resample it to
// and where to write the files.
type Job struct {
	Image  image.Image
	Sizes  []int
	Smooth bool
	Dir    string
	Base   string
	Format Format
}

// Result lists what a job produced.
type Result struct {
	Assets []Asset
	Paths  []string
}

// Exporter serializes exports. At most one job runs at a time.
type Exporter struct {
	mu   sync.Mutex
	busy bool

	write func(ctx context.Context, job Job) (Result, error)
}

// NewExporter returns an idle exporter.
func NewExporter() *Exporter {
	return &Exporter{write: writeJob}
}

// Busy reports whether a job is running.
func (e *Exporter) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

func (e *Exporter) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return false
	}
	e.busy = true
	return true
}

func (e *Exporter) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// Start runs job on a new goroutine and calls done with its outcome. The
// guard is released before done runs.
func (e *Exporter) Start(ctx context.Context, job Job, done func(Result, error)) error {
	if !e.acquire() {
		return ErrExportInFlight
	}
	go func() {
		res, err := e.write(ctx, job)
		e.release()
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

// Run is the synchronous form of Start.
func (e *Exporter) Run(ctx context.Context, job Job) (Result, error) {
	if !e.acquire() {
		return Result{}, ErrExportInFlight
	}
	defer e.release()
	return e.write(ctx, job)
}

func writeJob(ctx context.Context, job Job) (Result, error) {
	assets, err := ExportAt(job.Image, job.Sizes, job.Smooth)
	if err != nil {
		return Result{}, err
	}
	res := Result{Assets: assets}
	if job.Dir != "" {
		if err := os.MkdirAll(job.Dir, 0o755); err != nil {
			return res, fmt.Errorf("create %s: %w", job.Dir, err)
		}
	}
	base := job.Base
	if base == "" {
		base = "emote"
	}
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path := filepath.Join(job.Dir, FileName(base, a.Size, job.Format))
		if err := writeFile(path, a.Image, job.Format); err != nil {
			return res, err
		}
		res.Paths = append(res.Paths, path)
	}
	return res, nil
}

func writeFile(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
