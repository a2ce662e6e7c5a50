package irffit

// mulberry32 is the seeded PRNG Differential Evolution is contractually
// pinned to (SPEC_FULL.md §4.3/§9): given the same seed, it must produce
// bit-identical streams across implementations. Go's uint32 arithmetic
// wraps natively on overflow, which is the 32-bit unsigned semantics the
// spec's ">>> 0" truncation idiom (borrowed from the original JS) calls for.
type mulberry32 struct {
	state uint32
}

// newMulberry32 seeds a new stream.
func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

// next returns the next uniform float64 in [0, 1).
func (m *mulberry32) next() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64((t^(t>>14))>>0) / 4294967296.0
}

// intn returns a uniform integer in [0, n).
func (m *mulberry32) intn(n int) int {
	return int(m.next() * float64(n))
}
