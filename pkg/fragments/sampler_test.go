package fragments

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSamplerStaysInRange(t *testing.T) {
	s := NewSampler(3, rand.NewPCG(1, 2))

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := s.Next()
		require.GreaterOrEqual(t, id, int64(1))
		require.LessOrEqual(t, id, int64(3))
		seen[id] = true
	}
	// Every id of a tiny space shows up, duplicates included.
	require.Len(t, seen, 3)
}

func TestSamplerSeededIsDeterministic(t *testing.T) {
	a := NewSampler(1_000_000, rand.NewPCG(42, 7))
	b := NewSampler(1_000_000, rand.NewPCG(42, 7))
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestSamplerFullRange(t *testing.T) {
	s := NewSampler(math.MaxInt64, nil)
	for i := 0; i < 1000; i++ {
		require.GreaterOrEqual(t, s.Next(), int64(1))
	}
}

func TestSamplerClampsMaxID(t *testing.T) {
	s := NewSampler(0, nil)
	require.EqualValues(t, 1, s.Next())
}
