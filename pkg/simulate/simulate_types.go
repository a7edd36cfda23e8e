package simulate

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Batch sizes per domain. They are fixed, not caller-configurable.
const (
	IndicatorCount = 500
	AlertCount     = 200
	AnomalyCount   = 50
)

// Rand is the randomness the generators draw from. *rand.Rand from
// math/rand/v2 satisfies it; tests inject scripted implementations.
type Rand interface {
	// IntN returns a uniform int in [0, n). n must be positive.
	IntN(n int) int
	// Float64 returns a uniform float in [0.0, 1.0).
	Float64() float64
}

// Clock returns the generator's notion of "now"
type Clock func() time.Time

// Generator synthesizes plausible threat intelligence batches
type Generator struct {
	rng Rand
	now Clock
}

// Option configures a Generator
type Option func(*Generator)

// WithRand sets the random source
func WithRand(r Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithSeed uses a deterministic PCG source seeded with seed
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = NewLockedRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	}
}

// WithClock sets the clock used for every generated timestamp
func WithClock(now Clock) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// globalRand draws from the process-wide math/rand/v2 source, which is safe
// for concurrent use
type globalRand struct{}

func (globalRand) IntN(n int) int    { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// LockedRand serializes access to a Rand that is not safe for concurrent use
type LockedRand struct {
	mu  sync.Mutex
	src Rand
}

// NewLockedRand wraps src with a mutex
func NewLockedRand(src Rand) *LockedRand {
	return &LockedRand{src: src}
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}
