package service

import (
	"math/rand"
	"sync"
)

// Decider decides whether a ready lead converts and on which plan. The
// production path is the billing webhook; deciders only serve demo batches.
type Decider interface {
	Decide() (won bool, plan Plan)
}

// SimulatedDecider converts with a fixed probability and picks a plan
// uniformly at random. Demo stand-in for a real closing trigger.
type SimulatedDecider struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// NewSimulatedDecider creates a decider with the standard 70% conversion rate.
func NewSimulatedDecider(seed int64) *SimulatedDecider {
	return &SimulatedDecider{
		rng:         rand.New(rand.NewSource(seed)),
		probability: 0.70,
	}
}

func (d *SimulatedDecider) Decide() (bool, Plan) {
	d.mu.Lock()
	defer d.mu.Unlock()

	plans := Plans()
	plan := plans[d.rng.Intn(len(plans))]
	return d.rng.Float64() < d.probability, plan
}
