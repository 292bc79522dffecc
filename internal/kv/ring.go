package kv

// Ring is a fixed-capacity circular buffer that keeps the most recent values.
type Ring[T any] struct {
	buf  []T
	next int // slot the next Push writes
	n    int
}

// NewRing returns an empty ring holding up to size values.
func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		panic("kv: ring size must be positive")
	}
	return &Ring[T]{buf: make([]T, size)}
}

// Push stores v, overwriting the oldest value when full.
func (r *Ring[T]) Push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// Len returns the number of stored values.
func (r *Ring[T]) Len() int { return r.n }

// Items returns the stored values from oldest to newest.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.n)
	start := (r.next - r.n + len(r.buf)) % len(r.buf)
	for i := 0; i < r.n; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Clear drops every stored value.
func (r *Ring[T]) Clear() {
	clear(r.buf)
	r.next, r.n = 0, 0
}

// smoothCharacters replaces each character guess in start with the best
// scoring guess for the same quadrant found in history.
func smoothCharacters(start *Screen, history []Screen) {
	for i := range start.Players {
		p := &start.Players[i]
		for _, h := range history {
			hp := h.Players[i]
			if hp.Character == "" {
				continue
			}
			better(&p.Character, &p.CharScore, hp.Character, hp.CharScore)
		}
	}
}
