// internal/prng/prng.go
//
// Seeded, reproducible pseudo-random number source.
// Responsibilities:
//   - Map a string key to a 32-bit seed with a fixed, order-sensitive hash.
//   - Produce a float64 sequence in [0,1) fully determined by that seed.
//   - Provide the derived helpers (IntN, Shuffle) every generator uses.
//
// The sequence is the cross-platform contract of the whole engine: two
// processes holding the same key regenerate identical puzzle content without
// ever transmitting the content itself. The generator is mulberry32, a
// non-cryptographic 32-bit mixer; every operation below is pure uint32
// arithmetic so the output is identical on any architecture.

package prng

// Stream is a deterministic random stream. The zero value is a valid stream
// seeded with 0; use Seed to derive one from a string key.
type Stream struct {
	state uint32
}

// Seed hashes key into a 32-bit seed and returns a fresh stream positioned
// at the start of its sequence.
func Seed(key string) *Stream {
	return &Stream{state: HashKey(key)}
}

// HashKey maps a string to a uint32 with the classic multiply-by-31 rolling
// hash over the UTF-8 bytes. Order-sensitive; overflow wraps mod 2^32.
func HashKey(key string) uint32 {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*31 + uint32(key[i])
	}
	return h
}

// Next advances the stream and returns a float64 in [0,1).
func (s *Stream) Next() float64 {
	s.state += 0x6d2b79f5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	t ^= t >> 14
	return float64(t) / 4294967296
}

// IntN returns a deterministic integer in [0,n). Panics if n <= 0.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		panic("prng: IntN with non-positive n")
	}
	return int(s.Next() * float64(n))
}

// Shuffle permutes vals in place with a Fisher-Yates walk driven by the
// stream. Same seed and same input length always yield the same permutation.
func Shuffle[T any](s *Stream, vals []T) {
	for i := len(vals) - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		vals[i], vals[j] = vals[j], vals[i]
	}
}
