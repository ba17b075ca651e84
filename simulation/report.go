package simulation

// MinerReport is the end-of-run summary for one miner, the simulation's
// entire output surface.
type MinerReport struct {
	Name     string
	Hashrate float64

	TipHeight   uint64
	KnownBlocks int

	// BlocksInChain counts blocks mined by this miner that sit in the
	// ancestor chain of its final tip; BlocksMined counts everything it
	// ever found. Stale = mined − in-chain.
	BlocksInChain int
	BlocksMined   int

	// ChainShare is BlocksInChain over the tip height, 0 while the chain
	// is still at genesis.
	ChainShare float64

	StaleBlocks int

	// StaleRate is StaleBlocks over BlocksMined. A miner that never mined
	// has no meaningful rate; it is reported as 0 rather than trapped as
	// a division by zero.
	StaleRate float64
}

// Report summarizes a miner's final state.
func (m *Miner) Report() MinerReport {
	r := MinerReport{
		Name:        m.name,
		Hashrate:    m.hashrate,
		TipHeight:   m.tipBlock.Height(),
		KnownBlocks: len(m.known),
		BlocksMined: m.minedCount,
	}

	for block := m.tipBlock; !block.IsGenesis(); block = block.Parent() {
		if block.MinerID() == m.id {
			r.BlocksInChain++
		}
	}

	if r.TipHeight > 0 {
		r.ChainShare = float64(r.BlocksInChain) / float64(r.TipHeight)
	}

	r.StaleBlocks = r.BlocksMined - r.BlocksInChain
	if r.BlocksMined > 0 {
		r.StaleRate = float64(r.StaleBlocks) / float64(r.BlocksMined)
	}
	return r
}

// Report returns one summary per miner, in registration order.
func (sim *Simulation) Report() []MinerReport {
	reports := make([]MinerReport, 0, len(sim.miners))
	for _, m := range sim.miners {
		reports = append(reports, m.Report())
	}
	return reports
}
