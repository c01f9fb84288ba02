// Package entropy provides the injectable randomness used by zone tie-breaking,
// Gumbel exploration noise and goal identifiers.
// Simulations and tests use a seeded source; production may use crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"
	mrand "math/rand"
	"sync"
)

// Source is the randomness contract consumed by the decision pipeline.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int
	// Uint64 returns 64 random bits.
	Uint64() uint64
}

// Seeded is a deterministic Source. Safe for concurrent use.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded creates a reproducible source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Seeded) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}

// Crypto is a non-deterministic Source backed by crypto/rand.
type Crypto struct{}

func (Crypto) Float64() float64 {
	return cryptoRandFloat()
}

func (c Crypto) Intn(n int) int {
	if n <= 0 {
		panic("entropy: Intn called with n <= 0")
	}
	return int(c.Uint64() % uint64(n))
}

func (Crypto) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 0x9e3779b97f4a7c15
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := Crypto{}.Uint64() >> 11
	return float64(n) / float64(1<<53)
}

// Gumbel draws from the standard Gumbel distribution: -ln(-ln(U)), U in (0,1).
// U is kept strictly inside the interval so the result is always finite.
func Gumbel(src Source) float64 {
	u := 1 - src.Float64() // (0, 1]
	if u >= 1 {
		u = math.Nextafter(1, 0)
	}
	return -math.Log(-math.Log(u))
}

// Reader adapts a Source to io.Reader so byte-oriented consumers
// (uuid generation) draw from the same stream.
func Reader(src Source) io.Reader {
	return &sourceReader{src: src}
}

type sourceReader struct {
	src Source
}

func (r *sourceReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.src.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}
