package generator

import (
	"hash/fnv"
	"math/rand/v2"
	"net"
)

// Source is the randomness used by one generator call. It is not safe for
// concurrent use; give each goroutine its own Source.
type Source struct {
	r *rand.Rand
}

// NewSource returns a deterministic Source for the given seed.
func NewSource(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// DeriveSeed mixes an archetype name into a base seed so that archetypes
// generated from the same base seed draw independent streams.
func DeriveSeed(seed uint64, name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return seed ^ h.Sum64()
}

// IntRange returns a value in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Uint32 returns a value in [0, 2^32-1].
func (s *Source) Uint32() uint32 { return s.r.Uint32() }

// Uint16 returns a value in [0, 65535].
func (s *Source) Uint16() uint16 { return uint16(s.r.Uint32() >> 16) }

// Port returns a non-zero port.
func (s *Source) Port() uint16 { return uint16(s.IntRange(1, 65535)) }

// EphemeralPort returns a port above the well-known range.
func (s *Source) EphemeralPort() uint16 { return uint16(s.IntRange(1024, 65535)) }

// TTL returns a TTL in [lo, hi], clamped to [1, 255].
func (s *Source) TTL(lo, hi int) uint8 {
	lo = max(lo, 1)
	hi = min(hi, 255)
	return uint8(s.IntRange(lo, hi))
}

// IPv4 returns a random unicast address. This-network (0/8), loopback
// (127/8), multicast and reserved (224/3) space is skipped.
func (s *Source) IPv4() net.IP {
	for {
		v := s.r.Uint32()
		first := byte(v >> 24)
		if first == 0 || first == 127 || first >= 224 {
			continue
		}
		return net.IPv4(first, byte(v>>16), byte(v>>8), byte(v)).To4()
	}
}

// Bytes returns n pseudo-random bytes.
func (s *Source) Bytes(n int) []byte {
	b := make([]byte, n)
	for i := 0; i < n; i += 8 {
		v := s.r.Uint64()
		for j := 0; j < 8 && i+j < n; j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
	return b
}

// Pick returns an element of choices chosen uniformly.
func (s *Source) Pick(choices []int) int {
	return choices[s.r.IntN(len(choices))]
}

// Shuffle randomizes the order of n elements.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

func filler(b byte, n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = b
	}
	return p
}
