package runtime

const (
	randomTableSize  = 344
	randomMultiplier = 16807
	randomModulus    = 2147483647
	// The first block of draws is replayed once before the sequence moves on.
	randomRepeatAt = 22
)

// RandomSequence reproduces the legacy calculator's additive feedback
// generator bit for bit, including its one-time repeat of the first 22 draws.
// The zero value is not usable; construct with NewRandomSequence.
type RandomSequence struct {
	table    [randomTableSize]uint32
	index    int
	repeated bool
}

// NewRandomSequence returns a generator seeded with seed.
func NewRandomSequence(seed int32) *RandomSequence {
	r := &RandomSequence{}
	r.Reseed(seed)
	return r
}

// Reseed rebuilds the table from seed and rewinds the read index. Whether the
// first block has already been replayed is left as it was.
func (r *RandomSequence) Reseed(seed int32) {
	// The multiplicative stage runs in signed 64-bit arithmetic so negative
	// seeds keep their truncated-remainder behaviour before masking.
	prev := int64(seed)
	r.table[0] = uint32(prev)
	for i := 1; i < randomTableSize; i++ {
		if i < 31 {
			prev = ((randomMultiplier * prev) % randomModulus) & 0xffffffff
			r.table[i] = uint32(prev)
			continue
		}
		r.table[i] = r.table[i-31]
		if i >= 34 {
			r.table[i] += r.table[i-3]
		}
	}
	r.index = 0
}

// Next returns the next non-negative value of the sequence.
func (r *RandomSequence) Next() int32 {
	v := r.table[(r.index+313)%randomTableSize] + r.table[(r.index+341)%randomTableSize]
	r.table[r.index] = v

	r.index = (r.index + 1) % randomTableSize
	if !r.repeated && r.index == randomRepeatAt {
		r.repeated = true
		r.index = 0
	}
	return int32(v >> 1)
}
