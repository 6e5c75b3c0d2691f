package engine

import (
	"encoding/binary"
	"encoding/hex"
	mathrand "math/rand"

	"github.com/zeebo/blake3"
)

// InitRNG returns a generator seeded with seed, or with a seed derived from
// sourceHash when seed is zero. The same source therefore always yields the
// same names unless the caller picks a seed.
func InitRNG(seed int64, sourceHash []byte) *mathrand.Rand {
	if seed == 0 && len(sourceHash) >= 8 {
		seed = int64(binary.LittleEndian.Uint64(sourceHash[:8]))
	}
	return mathrand.New(mathrand.NewSource(seed))
}

const (
	identFirst = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	identRest  = identFirst + "0123456789_"
)

func RandIdent(r *mathrand.Rand, n int) string {
	if n < 1 {
		n = 1
	}
	b := make([]byte, n)
	b[0] = identFirst[r.Intn(len(identFirst))]
	for i := 1; i < n; i++ {
		b[i] = identRest[r.Intn(len(identRest))]
	}
	return string(b)
}

// shortIdent returns the i-th name of the sequence a..Z, aa, ba, .. (bijective numbering).
func shortIdent(i int) string {
	first := i % len(identFirst)
	i /= len(identFirst)
	b := []byte{identFirst[first]}
	for i > 0 {
		i--
		b = append(b, identRest[i%len(identRest)])
		i /= len(identRest)
	}
	return string(b)
}

// Namer hands out fresh variable names (with "$") that are never in taken.
type Namer interface {
	Next() string
}

type shortNamer struct {
	i     int
	taken map[string]bool
}

func (n *shortNamer) Next() string {
	for {
		name := "$" + shortIdent(n.i)
		n.i++
		if !n.taken[name] && !isReservedVariable(name) {
			n.taken[name] = true
			return name
		}
	}
}

type randomNamer struct {
	r     *mathrand.Rand
	taken map[string]bool
	size  int
}

func (n *randomNamer) Next() string {
	for attempt := 0; ; attempt++ {
		// Grow the name length when the space gets crowded.
		if attempt > 0 && attempt%16 == 0 {
			n.size++
		}
		name := "$" + RandIdent(n.r, n.size)
		if !n.taken[name] && !isReservedVariable(name) {
			n.taken[name] = true
			return name
		}
	}
}

// NewNamer builds the generator for style. taken is updated as names are handed out.
func NewNamer(style string, r *mathrand.Rand, taken map[string]bool) Namer {
	if style == NameStyleRandom {
		return &randomNamer{r: r, taken: taken, size: 4}
	}
	return &shortNamer{taken: taken}
}

// SumBlake3 returns the 32-byte BLAKE3 digest of b.
func SumBlake3(b []byte) []byte {
	h := blake3.Sum256(b)
	return h[:]
}

func HexString(b []byte) string {
	return hex.EncodeToString(b)
}
