package transform

import "math"

// MinScale is the smallest view zoom accepted by SetScale.
const MinScale = 0.1

// ChangeKind identifies which part of the state a mutation touched.
type ChangeKind int

const (
	ChangeCrop ChangeKind = iota
	ChangeScale
	ChangeRotation
	ChangeFlip
	ChangeResolution
	ChangeOrigin
	ChangeName
	ChangeAspect
	ChangeRestore
)

var changeNames = [...]string{"crop", "scale", "rotation", "flip", "resolution", "origin", "name", "aspect", "restore"}

func (k ChangeKind) String() string {
	if int(k) < len(changeNames) {
		return changeNames[k]
	}
	return "unknown"
}

// ContentChanged reports whether the exported raster may differ after a
// change of this kind. View-only changes return false.
func (k ChangeKind) ContentChanged() bool {
	switch k {
	case ChangeScale, ChangeOrigin, ChangeName:
		return false
	}
	return true
}

// Change is delivered to listeners after every mutation.
type Change struct {
	Kind ChangeKind
}

type listener struct {
	id int
	fn func(Change)
}

// State is the crop/transform record of one loaded image. It is owned by a
// single editor session and is not safe for concurrent mutation.
type State struct {
	sourceW, sourceH int
	crop             Rect
	scale            float64
	rotation         float64
	flip             bool
	lock             AspectLock
	origin           Point
	fileName         string

	minW, minH float64
	bounds     BoundsPolicy

	suspended    bool
	suspendDirty bool
	shapeRatio   float64

	listeners []listener
	nextID    int
}

// Option configures a State.
type Option func(*State)

// WithMinimum sets the smallest crop size. Non-positive values are ignored.
func WithMinimum(w, h int) Option {
	return func(s *State) {
		if w > 0 {
			s.minW = float64(w)
		}
		if h > 0 {
			s.minH = float64(h)
		}
	}
}

// WithBounds sets the bounds policy.
func WithBounds(b BoundsPolicy) Option {
	return func(s *State) { s.bounds = b }
}

// WithLock sets the initial aspect lock.
func WithLock(l AspectLock) Option {
	return func(s *State) { s.lock = l }
}

// New returns an empty state: 18x18 minimum, square lock, clamped bounds.
func New(opts ...Option) *State {
	s := &State{
		scale:    1,
		lock:     Fixed(1),
		minW:     18,
		minH:     18,
		bounds:   BoundsClamp,
		fileName: "emote",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *State) Subscribe(fn func(Change)) func() {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *State) emit(kind ChangeKind) {
	ch := Change{Kind: kind}
	for _, l := range append([]listener(nil), s.listeners...) {
		l.fn(ch)
	}
}

func (s *State) Loaded() bool { return s.sourceW > 0 && s.sourceH > 0 }
func (s *State) SourceSize() (int, int) { return s.sourceW, s.sourceH }
func (s *State) Crop() Rect { return s.crop }
func (s *State) Scale() float64 { return s.scale }
func (s *State) Rotation() float64 { return s.rotation }
func (s *State) Flipped() bool { return s.flip }
func (s *State) Lock() AspectLock { return s.lock }
func (s *State) Origin() Point { return s.origin }
func (s *State) FileName() string { return s.fileName }
func (s *State) Bounds() BoundsPolicy { return s.bounds }
func (s *State) Minimum() (float64, float64) { return s.minW, s.minH }
func (s *State) LockSuspended() bool { return s.suspended }
func (s *State) ShapeRatio() float64 { return s.shapeRatio }

func (s *State) constraints() Constraints {
	lock := s.lock
	if s.suspended {
		lock = Free()
	}
	return Constraints{
		MinWidth:     s.minW,
		MinHeight:    s.minH,
		Lock:         lock,
		Bounds:       s.bounds,
		SourceWidth:  float64(s.sourceW),
		SourceHeight: float64(s.sourceH),
	}
}

// SetCrop applies a partial crop edit through Solve and notifies listeners.
func (s *State) SetCrop(e Edit) {
	s.crop = Solve(s.crop, e, s.constraints())
	s.captureShape()
	if s.suspended {
		s.suspendDirty = true
	}
	s.emit(ChangeCrop)
}

func (s *State) captureShape() {
	if s.crop.Height > 0 {
		s.shapeRatio = s.crop.Width / s.crop.Height
	}
}

// SetScale sets the view zoom, never below MinScale.
func (s *State) SetScale(v float64) {
	if math.IsNaN(v) {
		v = 1
	}
	s.scale = math.Max(v, MinScale)
	s.emit(ChangeScale)
}

// SetRotation stores deg as given.
func (s *State) SetRotation(deg float64) {
	s.rotation = deg
	s.emit(ChangeRotation)
}

// SetResolution records a new source size and resets the crop to the full
// image.
func (s *State) SetResolution(w, h int) {
	s.sourceW, s.sourceH = w, h
	s.crop = Rect{
		Width:  math.Max(float64(w), s.minW),
		Height: math.Max(float64(h), s.minH),
	}
	s.captureShape()
	s.emit(ChangeResolution)
}

// FlipCanvas toggles the horizontal mirror.
func (s *State) FlipCanvas() {
	s.flip = !s.flip
	s.emit(ChangeFlip)
}

// SetAspectRatio changes the lock and resets the crop to the largest
// rectangle of that shape at the image origin.
func (s *State) SetAspectRatio(l AspectLock) {
	s.lock = l
	s.suspended = false
	s.suspendDirty = false
	if s.Loaded() {
		s.crop = FitAspect(l, s.sourceW, s.sourceH, s.constraints())
		s.captureShape()
	}
	s.emit(ChangeAspect)
}

// SetLock changes the lock for later edits and leaves the crop as it is.
func (s *State) SetLock(l AspectLock) {
	s.lock = l
	s.suspended = false
	s.suspendDirty = false
	s.emit(ChangeAspect)
}

// SuspendLock disables the aspect lock until ResumeLock.
func (s *State) SuspendLock() {
	if s.suspended {
		return
	}
	s.suspended = true
	s.suspendDirty = false
}

// ResumeLock re-enables the aspect lock. A fixed lock adopts the shape the
// crop was given while suspended.
func (s *State) ResumeLock() {
	if !s.suspended {
		return
	}
	s.suspended = false
	if _, fixed := s.lock.Ratio(); fixed && s.suspendDirty && s.shapeRatio > 0 {
		s.lock = Fixed(s.shapeRatio)
		s.emit(ChangeAspect)
	}
	s.suspendDirty = false
}

// SetBounds changes the bounds policy for later edits.
func (s *State) SetBounds(b BoundsPolicy) {
	s.bounds = b
}

// SetOrigin moves the view pan offset.
func (s *State) SetOrigin(p Point) {
	s.origin = p
	s.emit(ChangeOrigin)
}

// Pan shifts the view origin by dx, dy source pixels.
func (s *State) Pan(dx, dy float64) {
	s.SetOrigin(Point{X: s.origin.X + dx, Y: s.origin.Y + dy})
}

// SetFileName changes the export base name.
func (s *State) SetFileName(name string) {
	s.fileName = name
	s.emit(ChangeName)
}

// Load resets every transform for a new w by h source. An empty name keeps
// the current file name.
func (s *State) Load(w, h int, name string) {
	s.scale, s.rotation, s.flip = 1, 0, false
	s.origin = Point{}
	s.suspended, s.suspendDirty = false, false
	if name != "" {
		s.fileName = name
	}
	s.SetResolution(w, h)
}
