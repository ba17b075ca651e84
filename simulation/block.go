package simulation

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"

	"lukechampine.com/blake3"
)

const HashLength = 32

type Hash [HashLength]byte

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}

	copy(h[HashLength-len(b):], b)
}

func (h Hash) String() string {
	enc := make([]byte, len(h[:])*2+2)
	copy(enc, "0x")
	hex.Encode(enc[2:], h[:])
	return string(enc)
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// NoMiner is the miner identity carried by the genesis block and by no
// other block.
const NoMiner = -1

// Block is an immutable node of the append-only block graph. Two variants
// exist: the genesis block (no parent, no miner, height 0) and mined blocks
// (parent and miner always present, height = parent height + 1). The variant
// is fixed by the constructor used; the hash commits to the tuple
// (height, miner, parent hash) and is the identity the rest of the
// simulation relies on for deduplication.
type Block struct {
	height     uint64
	time       uint64
	hash       Hash
	minerID    int
	parent     *Block
	parentHash Hash
}

// GenesisBlock returns the shared starting block. Its parent hash is the
// zero digest and its miner identity is NoMiner.
func GenesisBlock() *Block {
	b := &Block{
		height:  0,
		time:    0,
		minerID: NoMiner,
	}
	b.hash = sealHash(b.height, NoMiner, b.parentHash)
	return b
}

// NewBlock constructs a mined block extending parent. A nil parent is a
// programming error: only genesis has no parent, and genesis is built by
// GenesisBlock.
func NewBlock(parent *Block, minerID int, time uint64) *Block {
	if parent == nil {
		panic("simulation: mined block requires a parent")
	}
	b := &Block{
		height:     parent.height + 1,
		time:       time,
		minerID:    minerID,
		parent:     parent,
		parentHash: parent.hash,
	}
	b.hash = sealHash(b.height, minerID, b.parentHash)
	return b
}

// sealHash digests the identity tuple of a block. The encoding covers
// exactly (height, miner, parent hash), so two constructions from the same
// tuple always collide and nothing else ever does (up to the strength of
// the hash).
func sealHash(height uint64, minerID int, parentHash Hash) (hash Hash) {
	sealData := struct {
		Height     uint64
		Miner      int64
		ParentHash Hash
	}{
		Height:     height,
		Miner:      int64(minerID),
		ParentHash: parentHash,
	}
	buf := bytes.Buffer{}
	if err := gob.NewEncoder(&buf).Encode(sealData); err != nil {
		panic("simulation: seal encoding failed: " + err.Error())
	}
	sum := blake3.Sum256(buf.Bytes())
	hash.SetBytes(sum[:])
	return hash
}

func (b *Block) Height() uint64 {
	return b.height
}

func (b *Block) Time() uint64 {
	return b.time
}

func (b *Block) Hash() Hash {
	return b.hash
}

// MinerID returns the identity of the miner that found this block, or
// NoMiner for genesis.
func (b *Block) MinerID() int {
	return b.minerID
}

// Parent returns the block this one extends, nil only for genesis.
func (b *Block) Parent() *Block {
	return b.parent
}

func (b *Block) ParentHash() Hash {
	return b.parentHash
}

func (b *Block) IsGenesis() bool {
	return b.parent == nil
}
