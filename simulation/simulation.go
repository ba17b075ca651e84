package simulation

import (
	"fmt"
	"math/rand"

	"github.com/dominant-strategies/go-quai/event"
	"github.com/sirupsen/logrus"

	"github.com/forklab/propsim/config"
)

// TicksPerPeriod is the number of one-second ticks in one block period.
const TicksPerPeriod = 600

// Simulation is the driver: it owns the miner registry, the simulated
// clock and the single seeded random source every miner draws from. The
// whole run is single-threaded and synchronous; a run is reproducible from
// (seed, topology, hashrates, duration) alone.
type Simulation struct {
	miners []*Miner
	ticks  uint64

	// rng is the only shared mutable resource of the run. It is owned
	// here and handed to each miner; no package-global random state is
	// involved anywhere.
	rng randSource

	feed event.Feed
	log  *logrus.Entry
}

// NewSimulation builds miners and connections from cfg. Miners are
// registered in cfg order, and both tick phases iterate them in that
// order; with zero-delay links this order decides whose block is broadcast
// first within a tick, so it is part of the run's observable parameters.
func NewSimulation(cfg *config.Config, logger *logrus.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	sim := &Simulation{
		ticks: uint64(cfg.Periods) * TicksPerPeriod,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		log:   logger.WithField("component", "simulation"),
	}

	genesis := GenesisBlock()
	index := make(map[string]*Miner, len(cfg.Miners))
	for id, mc := range cfg.Miners {
		m := NewMiner(id, mc.Name, genesis, mc.Hashrate)
		m.rng = sim.rng
		m.feed = &sim.feed
		m.log = logger.WithField("miner", mc.Name)
		sim.miners = append(sim.miners, m)
		index[mc.Name] = m
	}

	for _, link := range cfg.Links {
		index[link.From].AddConnection(index[link.To], link.Delay)
	}

	return sim, nil
}

// Miners returns the registry in registration order.
func (sim *Simulation) Miners() []*Miner {
	return sim.miners
}

// Feed exposes the instrumentation bus, for attaching a Recorder or any
// other observer before Run.
func (sim *Simulation) Feed() *event.Feed {
	return &sim.feed
}

// Ticks reports the total number of ticks a full Run executes.
func (sim *Simulation) Ticks() uint64 {
	return sim.ticks
}

// Run executes the whole simulation horizon: ticks = periods × 600, each
// tick a deliver phase over every connection followed by a mine phase over
// every miner.
func (sim *Simulation) Run() {
	sim.log.WithFields(logrus.Fields{
		"miners": len(sim.miners),
		"ticks":  sim.ticks,
	}).Info("starting run")

	for t := uint64(1); t <= sim.ticks; t++ {
		sim.Step(t)
	}

	sim.log.Info("run complete")
}

// Step executes a single tick at simulated time t: first every miner's
// outgoing links advance and deliver due blocks, then every miner takes
// its mining trial. Deliveries always land before any mining in the same
// tick, so a zero-delay block queued at tick t is seen at tick t+1.
func (sim *Simulation) Step(t uint64) {
	for _, m := range sim.miners {
		m.SendMessages()
	}
	for _, m := range sim.miners {
		m.Mine(t)
	}
}
