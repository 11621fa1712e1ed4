package fragments

import (
	"math/rand/v2"
	"sync"
)

// Sampler draws candidate ids uniformly from [1, maxID]. Draws are
// independent, so the same id may come up more than once.
type Sampler struct {
	mu    sync.Mutex
	rng   *rand.Rand
	maxID int64
}

// NewSampler returns a sampler over [1, maxID]. A nil src seeds from the
// runtime's random source.
func NewSampler(maxID int64, src rand.Source) *Sampler {
	if maxID < 1 {
		maxID = 1
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Sampler{rng: rand.New(src), maxID: maxID}
}

// Next returns the next candidate id. It is safe for concurrent use.
func (s *Sampler) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 1 + s.rng.Int64N(s.maxID)
}
