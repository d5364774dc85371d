package pairing

// History answers whether two players have already met. Implementations must be
// symmetric: Played(a, b) == Played(b, a).
type History interface {
	Played(a, b PlayerID) bool
}

// HistoryFunc adapts an ordinary function to History.
type HistoryFunc func(a, b PlayerID) bool

// Played calls f(a, b).
func (f HistoryFunc) Played(a, b PlayerID) bool {
	return f(a, b)
}

type pairKey struct {
	lo, hi PlayerID
}

func keyOf(a, b PlayerID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// PlayedSet is an in-memory History. The zero value is not usable; call NewPlayedSet.
type PlayedSet struct {
	pairs map[pairKey]int
}

// NewPlayedSet returns an empty set.
func NewPlayedSet() *PlayedSet {
	return &PlayedSet{pairs: make(map[pairKey]int)}
}

// Add records a match between a and b, in either direction.
func (s *PlayedSet) Add(a, b PlayerID) {
	s.pairs[keyOf(a, b)]++
}

// Played reports whether a and b have met at least once.
func (s *PlayedSet) Played(a, b PlayerID) bool {
	if s == nil {
		return false
	}
	return s.pairs[keyOf(a, b)] > 0
}

// Count returns how many times a and b have met.
func (s *PlayedSet) Count(a, b PlayerID) int {
	if s == nil {
		return 0
	}
	return s.pairs[keyOf(a, b)]
}

// Len returns the number of distinct pairs that have met.
func (s *PlayedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}
