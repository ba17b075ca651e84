package simulation

import (
	"math"
	"testing"
)

func TestReportFreshMiner(t *testing.T) {
	m := newTestMiner(0, "a", GenesisBlock(), 0.3)
	r := m.Report()

	if r.TipHeight != 0 || r.KnownBlocks != 1 || r.BlocksMined != 0 {
		t.Errorf("fresh miner report = %+v", r)
	}
	if r.StaleRate != 0 {
		t.Errorf("stale rate with zero mined blocks = %v, want 0", r.StaleRate)
	}
	if r.ChainShare != 0 {
		t.Errorf("chain share at genesis = %v, want 0", r.ChainShare)
	}
	if math.IsNaN(r.StaleRate) || math.IsNaN(r.ChainShare) {
		t.Error("report must never contain NaN")
	}
}

func TestReportChainAttribution(t *testing.T) {
	g := GenesisBlock()
	m := newTestMiner(0, "a", g, 0.3)

	// Final chain g <- b1(a) <- b2(rival) <- b3(a); a also mined one block
	// that fell off the chain.
	b1 := NewBlock(g, 0, 1)
	b2 := NewBlock(b1, 1, 2)
	b3 := NewBlock(b2, 0, 3)
	for _, b := range []*Block{b1, b2, b3} {
		m.known[b.Hash()] = b
	}
	m.setTip(b3)
	m.minedCount = 3

	r := m.Report()
	if r.TipHeight != 3 {
		t.Errorf("tip height = %d, want 3", r.TipHeight)
	}
	if r.BlocksInChain != 2 {
		t.Errorf("in-chain = %d, want 2", r.BlocksInChain)
	}
	if got, want := r.ChainShare, 2.0/3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("chain share = %v, want %v", got, want)
	}
	if r.StaleBlocks != 1 {
		t.Errorf("stale = %d, want 1", r.StaleBlocks)
	}
	if got, want := r.StaleRate, 1.0/3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("stale rate = %v, want %v", got, want)
	}
}
