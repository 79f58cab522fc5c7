package stretch

// Phase locking assigns every output bin a phase exactly once per step.
// Bins are visited loudest first. A bin reached from the heap on its own is a
// peak and advances its previous output phase by its frequency (time
// direction). Its neighbours inherit the peak's phase plus the source phase
// step between them (frequency direction), and pass it on in turn, so each
// spectral peak keeps the phase relationships of its lobe. Across channels
// the loudest channel of a bin is the reference and the others keep their
// source phase offset from it, which preserves the stereo image.

type entryKind uint8

const (
	// entryTime is a bin that has not been reached from a louder neighbour.
	entryTime entryKind = iota
	// entryFrequency is an assigned bin whose neighbours may inherit from it.
	entryFrequency
)

type heapEntry struct {
	priority float64
	bin      int32
	kind     entryKind
}

// peakHeap is a max-heap on priority; equal priorities pop the lower bin
// first. Storage is preallocated so pushes never allocate.
type peakHeap struct {
	entries []heapEntry
}

func newPeakHeap(capacity int) peakHeap {
	return peakHeap{entries: make([]heapEntry, 0, capacity)}
}

func (h *peakHeap) len() int { return len(h.entries) }

func (h *peakHeap) reset() { h.entries = h.entries[:0] }

func (h *peakHeap) less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}

	if a.bin != b.bin {
		return a.bin < b.bin
	}

	return a.kind < b.kind
}

// init restores the heap property after entries were appended directly.
func (h *peakHeap) init() {
	for i := len(h.entries)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
}

func (h *peakHeap) push(e heapEntry) {
	h.entries = append(h.entries, e)
	h.up(len(h.entries) - 1)
}

func (h *peakHeap) pop() heapEntry {
	top := h.entries[0]
	last := len(h.entries) - 1
	h.entries[0] = h.entries[last]
	h.entries = h.entries[:last]

	if last > 0 {
		h.down(0)
	}

	return top
}

func (h *peakHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}

		h.entries[i], h.entries[parent] = h.entries[parent], h.entries[i]
		i = parent
	}
}

func (h *peakHeap) down(i int) {
	n := len(h.entries)

	for {
		best := i
		if l := 2*i + 1; l < n && h.less(l, best) {
			best = l
		}

		if r := 2*i + 2; r < n && h.less(r, best) {
			best = r
		}

		if best == i {
			return
		}

		h.entries[i], h.entries[best] = h.entries[best], h.entries[i]
		i = best
	}
}

type phaseLocker struct {
	heap      peakHeap
	assigned  []bool
	reference []int
	priority  []float64
}

func newPhaseLocker(bins int) phaseLocker {
	return phaseLocker{
		heap:      newPeakHeap(2 * bins),
		assigned:  make([]bool, bins),
		reference: make([]int, bins),
		priority:  make([]float64, bins),
	}
}

// lock fills s.newPhase from the remapped bins and the previous output
// phases. On the first step there is no phase history, so output
// phases start from the source phases.
func (l *phaseLocker) lock(s *Stretch, first bool) {
	b := s.bins

	if first {
		copy(s.newPhase, s.mapPhase)
		return
	}

	l.heap.reset()

	for k := range b {
		ref := 0
		for ch := 1; ch < s.channels; ch++ {
			if s.mapMag[ch*b+k] > s.mapMag[ref*b+k] {
				ref = ch
			}
		}

		l.reference[k] = ref
		l.priority[k] = s.mapMag[ref*b+k]
		l.assigned[k] = false
		l.heap.entries = append(l.heap.entries, heapEntry{priority: l.priority[k], bin: int32(k), kind: entryTime})
	}

	l.heap.init()

	hop := float64(s.interval)

	for l.heap.len() > 0 {
		e := l.heap.pop()
		k := int(e.bin)

		switch e.kind {
		case entryTime:
			if l.assigned[k] {
				continue
			}

			idx := l.reference[k]*b + k
			s.newPhase[idx] = s.outPhase[idx] + s.mapFreq[idx]*hop
			l.assign(s, k)
		case entryFrequency:
			if k > 0 {
				l.inherit(s, k-1, k)
			}

			if k+1 < b {
				l.inherit(s, k+1, k)
			}
		}
	}
}

// inherit assigns bin n from its assigned neighbour k = n±1 by stepping along
// the source phase slope.
func (l *phaseLocker) inherit(s *Stretch, n, k int) {
	if l.assigned[n] {
		return
	}

	base := l.reference[n] * s.bins
	if n > k {
		s.newPhase[base+n] = s.newPhase[base+k] + s.mapSlope[base+k]
	} else {
		s.newPhase[base+n] = s.newPhase[base+k] - s.mapSlope[base+n]
	}

	l.assign(s, n)
}

// assign completes bin k once its reference channel has a phase: other
// channels keep their source offset from the reference, and the bin is queued
// to pass its phase on to its neighbours.
func (l *phaseLocker) assign(s *Stretch, k int) {
	b := s.bins
	ref := l.reference[k]*b + k

	for ch := range s.channels {
		idx := ch*b + k
		if idx != ref {
			s.newPhase[idx] = s.newPhase[ref] + (s.mapPhase[idx] - s.mapPhase[ref])
		}
	}

	l.assigned[k] = true
	l.heap.push(heapEntry{priority: l.priority[k], bin: int32(k), kind: entryFrequency})
}
