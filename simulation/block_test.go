package simulation

import "testing"

func TestGenesisBlock(t *testing.T) {
	g := GenesisBlock()
	if !g.IsGenesis() {
		t.Error("genesis block should report IsGenesis")
	}
	if g.Height() != 0 {
		t.Errorf("genesis height = %d, want 0", g.Height())
	}
	if g.MinerID() != NoMiner {
		t.Errorf("genesis miner = %d, want NoMiner", g.MinerID())
	}
	if g.Parent() != nil {
		t.Error("genesis should have no parent")
	}
	if g.ParentHash() != (Hash{}) {
		t.Errorf("genesis parent hash = %s, want zero", g.ParentHash())
	}
}

func TestNewBlock(t *testing.T) {
	g := GenesisBlock()
	b := NewBlock(g, 3, 42)
	if b.IsGenesis() {
		t.Error("mined block should not report IsGenesis")
	}
	if b.Height() != g.Height()+1 {
		t.Errorf("height = %d, want %d", b.Height(), g.Height()+1)
	}
	if b.Time() != 42 {
		t.Errorf("time = %d, want 42", b.Time())
	}
	if b.MinerID() != 3 {
		t.Errorf("miner = %d, want 3", b.MinerID())
	}
	if b.Parent() != g {
		t.Error("parent should be genesis")
	}
	if b.ParentHash() != g.Hash() {
		t.Error("parent hash should match genesis hash")
	}
}

func TestNewBlockPanicsWithoutParent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewBlock(nil, ...) should panic")
		}
	}()
	NewBlock(nil, 0, 1)
}

func TestHashDeterminism(t *testing.T) {
	g := GenesisBlock()
	a := NewBlock(g, 1, 10)
	b := NewBlock(g, 1, 10)
	if a.Hash() != b.Hash() {
		t.Error("same (height, miner, parent) must produce the same hash")
	}
}

func TestHashCommitsToIdentityTuple(t *testing.T) {
	g := GenesisBlock()
	base := NewBlock(g, 1, 10)

	tests := []struct {
		name  string
		other *Block
		same  bool
	}{
		{"different miner", NewBlock(g, 2, 10), false},
		{"different parent", NewBlock(NewBlock(g, 1, 5), 1, 10), false},
		{"different time only", NewBlock(g, 1, 99), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.other.Hash() == base.Hash()) != tt.same {
				t.Errorf("hash equality = %v, want %v", !tt.same, tt.same)
			}
		})
	}
}

func TestHashString(t *testing.T) {
	s := GenesisBlock().Hash().String()
	if len(s) != 2+2*HashLength {
		t.Errorf("hash string length = %d, want %d", len(s), 2+2*HashLength)
	}
	if s[:2] != "0x" {
		t.Errorf("hash string should start with 0x, got %q", s[:2])
	}
}
