package transform

// Snapshot is a copy of the user-editable part of a State.
type Snapshot struct {
	SourceWidth, SourceHeight int
	Crop                      Rect
	Scale                     float64
	Rotation                  float64
	Flip                      bool
	Lock                      AspectLock
	Origin                    Point
	FileName                  string
}

// Snapshot captures the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		SourceWidth:  s.sourceW,
		SourceHeight: s.sourceH,
		Crop:         s.crop,
		Scale:        s.scale,
		Rotation:     s.rotation,
		Flip:         s.flip,
		Lock:         s.lock,
		Origin:       s.origin,
		FileName:     s.fileName,
	}
}

// Restore applies snap. Snapshots taken for a different source size are
// ignored and Restore returns false.
func (s *State) Restore(snap Snapshot) bool {
	if snap.SourceWidth != s.sourceW || snap.SourceHeight != s.sourceH {
		return false
	}
	s.crop = snap.Crop
	s.scale = snap.Scale
	s.rotation = snap.Rotation
	s.flip = snap.Flip
	s.lock = snap.Lock
	s.origin = snap.Origin
	s.fileName = snap.FileName
	s.suspended, s.suspendDirty = false, false
	s.captureShape()
	s.emit(ChangeRestore)
	return true
}

// History keeps bounded undo and redo stacks of snapshots.
type History struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int
}

// NewHistory returns a history holding at most limit undo steps.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 50
	}
	return &History{limit: limit}
}

// Push records snap as an undo point and clears the redo stack. Pushing the
// same snapshot twice in a row is a no-op.
func (h *History) Push(snap Snapshot) {
	if n := len(h.undo); n > 0 && h.undo[n-1] == snap {
		return
	}
	h.undo = append(h.undo, snap)
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// Undo returns the previous snapshot, saving current for Redo. The
// returned snapshot stays on the undo stack as the checkpoint of the
// restored state.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	for len(h.undo) > 0 {
		last := h.undo[len(h.undo)-1]
		if last == current {
			h.undo = h.undo[:len(h.undo)-1]
			continue
		}
		h.redo = append(h.redo, current)
		return last, true
	}
	return Snapshot{}, false
}

// Redo returns the snapshot undone most recently, saving current for Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	if n := len(h.undo); n == 0 || h.undo[n-1] != current {
		h.undo = append(h.undo, current)
	}
	return next, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}
