package recommend

// Window is a fixed-capacity ring of metric vectors indexed by insertion order.
// Pushing past capacity overwrites the oldest slot.
type Window struct {
	slots []MetricVector
	// next is the sequence number the next push receives.
	next uint64
}

// NewWindow returns an empty ring holding at most capacity vectors.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{slots: make([]MetricVector, capacity)}
}

// RestoreWindow rebuilds a ring from entries listed oldest first.
func RestoreWindow(capacity int, entries []MetricVector) *Window {
	w := NewWindow(capacity)
	w.Push(entries...)
	return w
}

func (w *Window) Cap() int { return len(w.slots) }

func (w *Window) Len() int {
	if w.next < uint64(len(w.slots)) {
		return int(w.next)
	}
	return len(w.slots)
}

// Seq is the total number of vectors ever pushed.
func (w *Window) Seq() uint64 { return w.next }

// Push appends vectors in order.
func (w *Window) Push(vs ...MetricVector) {
	for _, v := range vs {
		w.slots[w.next%uint64(len(w.slots))] = v
		w.next++
	}
}

// Entries returns the held vectors oldest first.
func (w *Window) Entries() []MetricVector {
	n := w.Len()
	out := make([]MetricVector, 0, n)
	start := w.next - uint64(n)
	for seq := start; seq < w.next; seq++ {
		out = append(out, w.slots[seq%uint64(len(w.slots))])
	}
	return out
}

// Rescale converts entries recorded under scale from to scale to. Every metric is
// proportional to its scale. An unknown from (zero or negative) yields no entries.
func Rescale(entries []MetricVector, from, to float64) []MetricVector {
	if from <= 0 {
		return nil
	}
	if from == to {
		return entries
	}
	factor := to / from
	out := make([]MetricVector, len(entries))
	for i, v := range entries {
		for j := range v {
			out[i][j] = v[j] * factor
		}
	}
	return out
}

// SlotFor returns the ring slot a given sequence number lands in.
func SlotFor(seq uint64, capacity int) int {
	return int(seq % uint64(capacity))
}
