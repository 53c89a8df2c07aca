package suggestion

import (
	"math/rand"
	"sync"
)

// Selector picks the next fill suggestion from the candidates that are not
// already in the list. ok=false stops the fill.
type Selector interface {
	Pick(pool []string) (item string, ok bool)
}

// FirstAvailable always takes the first candidate, so results are stable.
type FirstAvailable struct{}

func (FirstAvailable) Pick(pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	return pool[0], true
}

// RandomSelector samples uniformly from the candidates.
type RandomSelector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rnd: rand.New(rand.NewSource(seed))}
}

func (s *RandomSelector) Pick(pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	s.mu.Lock()
	i := s.rnd.Intn(len(pool))
	s.mu.Unlock()
	return pool[i], true
}
