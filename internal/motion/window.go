package motion

// Window is a fixed-capacity ring of boolean motion observations with a
// running count of true entries. Not safe for concurrent use; each state
// owns its window and touches it only from the machine's goroutine.
type Window struct {
	flags []bool
	pos   int
	count int
}

// NewWindow creates a window of the given capacity.
func NewWindow(capacity int) *Window {
	return &Window{flags: make([]bool, capacity)}
}

// Reset clears every slot and returns the cursor to the start.
func (w *Window) Reset() {
	for i := range w.flags {
		w.flags[i] = false
	}
	w.pos = 0
	w.count = 0
}

// Record advances the cursor, overwrites the slot it lands on, and returns
// the updated count of true entries. The count is adjusted by the net
// change at the overwritten slot so it never drifts from the buffer.
func (w *Window) Record(flag bool) int {
	w.pos = (w.pos + 1) % len(w.flags)
	if w.flags[w.pos] {
		w.count--
	}
	w.flags[w.pos] = flag
	if flag {
		w.count++
	}
	return w.count
}

// Count returns the number of true entries currently in the window.
func (w *Window) Count() int { return w.count }

// Cursor returns the slot written by the most recent Record call. A cursor
// of zero after at least one Record means the window has wrapped.
func (w *Window) Cursor() int { return w.pos }

// Capacity returns the fixed size of the window.
func (w *Window) Capacity() int { return len(w.flags) }
