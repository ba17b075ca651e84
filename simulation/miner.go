package simulation

import (
	"math"

	"github.com/dominant-strategies/go-quai/event"
	"github.com/sirupsen/logrus"
)

// targetBlockTime is the mean inter-block time of the whole network in
// simulated seconds.
const targetBlockTime = 600

// randSource is the slice of the random-number generator the miner needs.
// *math/rand.Rand satisfies it; tests substitute scripted sources.
type randSource interface {
	Float64() float64
	Intn(n int) int
}

// Miner owns a local view of the block graph, a mining process and the
// fork-choice logic. All entry points (Mine, ReceiveBlock) are synchronous
// calls from the driver; a Miner has no goroutines of its own.
type Miner struct {
	id       int
	name     string
	hashrate float64

	// Per-tick success probability. The run advances in one-second ticks
	// and each miner performs one independent Bernoulli trial per tick
	// with p = hashrate × (1 − e^(−1/600)). This approximates a Poisson
	// arrival process with a 600 s mean inter-block time scaled by the
	// miner's share of global hashrate; at one-second granularity the
	// discretization error is intentional and acceptable.
	probability float64

	tipBlock    *Block
	candidates  []*Block
	connections []*Connection

	// known always contains the tip and every ancestor of the tip and
	// never shrinks. rejected holds orphans, blocks whose parent has not
	// been seen yet; byParent indexes them for reconciliation and both
	// shrink only when an orphan is promoted into known.
	known    map[Hash]*Block
	rejected map[Hash]*Block
	byParent map[Hash][]*Block

	minedCount int

	rng  randSource
	feed *event.Feed
	log  *logrus.Entry
}

// NewMiner creates a miner seeded with the shared genesis block. The driver
// wires the shared random source, event feed and logger after construction.
func NewMiner(id int, name string, genesis *Block, hashrate float64) *Miner {
	m := &Miner{
		id:          id,
		name:        name,
		hashrate:    hashrate,
		probability: hashrate * (1 - math.Exp(-1.0/targetBlockTime)),
		known:       map[Hash]*Block{genesis.Hash(): genesis},
		rejected:    make(map[Hash]*Block),
		byParent:    make(map[Hash][]*Block),
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	m.setTip(genesis)
	return m
}

func (m *Miner) ID() int {
	return m.id
}

func (m *Miner) Name() string {
	return m.name
}

func (m *Miner) Hashrate() float64 {
	return m.hashrate
}

// Tip returns the block this miner is currently mining on.
func (m *Miner) Tip() *Block {
	return m.tipBlock
}

// KnownCount reports the size of the accepted block set, genesis included.
func (m *Miner) KnownCount() int {
	return len(m.known)
}

// RejectedCount reports the number of orphans awaiting a parent.
func (m *Miner) RejectedCount() int {
	return len(m.rejected)
}

// MinedCount reports how many blocks this miner has found over the run,
// stale ones included.
func (m *Miner) MinedCount() int {
	return m.minedCount
}

// Knows reports whether the block with the given hash has been accepted.
func (m *Miner) Knows(h Hash) bool {
	_, ok := m.known[h]
	return ok
}

// AddConnection creates a directed link from this miner to other. The
// reverse direction is a separate link with its own delay.
func (m *Miner) AddConnection(other *Miner, delay int) *Connection {
	conn := NewConnection(m, other, delay)
	m.connections = append(m.connections, conn)
	return conn
}

// SendMessages advances every outgoing link by one tick.
func (m *Miner) SendMessages() {
	for _, conn := range m.connections {
		conn.Advance()
	}
}

// Mine runs this miner's slice of a tick. Any pending fork candidates are
// resolved first so the miner only ever extends its chosen tip, then a
// single uniform draw decides whether a block is found this second. On
// success the new block is recorded, becomes a candidate for the miner's
// own next evaluation, and is broadcast on every outgoing link.
func (m *Miner) Mine(now uint64) {
	if len(m.candidates) > 0 {
		m.evaluateCandidates()
	}
	if m.rng.Float64() >= m.probability {
		return
	}
	found := NewBlock(m.tipBlock, m.id, now)
	m.known[found.Hash()] = found
	m.candidates = append(m.candidates, found)
	m.broadcast(found)
	m.emit(Event{Kind: EventMined, Miner: m.name, Hash: found.Hash(), Height: found.Height(), Time: now})
	m.log.WithFields(logrus.Fields{
		"height": found.Height(),
		"hash":   found.Hash().String(),
		"time":   now,
	}).Debug("mined block")
}

// broadcast queues the block on every outgoing connection and counts it
// toward this miner's mined total.
func (m *Miner) broadcast(block *Block) {
	m.minedCount++
	for _, conn := range m.connections {
		conn.Queue(block)
	}
}

// evaluateCandidates picks the new tip from the accumulated candidate set
// and clears the set. Only candidates at the maximum height are considered;
// on a height tie the miner always keeps its own block over an equal-height
// rival, and only genuinely external ties are broken by a uniform draw.
// Lower-height candidates are discarded outright.
func (m *Miner) evaluateCandidates() {
	if len(m.candidates) == 0 {
		panic("simulation: evaluateCandidates with no candidates")
	}

	maxHeight := uint64(0)
	for _, c := range m.candidates {
		if c.Height() > maxHeight {
			maxHeight = c.Height()
		}
	}

	best := m.candidates[:0:0]
	for _, c := range m.candidates {
		if c.Height() == maxHeight {
			best = append(best, c)
		}
	}

	var chosen *Block
	for _, c := range best {
		if c.MinerID() == m.id {
			chosen = c
			break
		}
	}
	if chosen == nil {
		chosen = best[m.rng.Intn(len(best))]
	}

	m.setTip(chosen)
	m.candidates = nil
}

// ReceiveBlock is invoked by a connection on delivery. Duplicate deliveries
// are no-ops. A block whose parent is unknown is parked as an orphan;
// otherwise the block is accepted and any orphans it unblocks are promoted
// transitively. Genesis is never transmitted, so a parentless block here is
// a programming error.
func (m *Miner) ReceiveBlock(block *Block) {
	if block.Parent() == nil {
		panic("simulation: received block without parent")
	}

	if _, ok := m.known[block.Hash()]; ok {
		return
	}

	if _, ok := m.known[block.ParentHash()]; !ok {
		if _, dup := m.rejected[block.Hash()]; dup {
			return
		}
		m.rejected[block.Hash()] = block
		m.byParent[block.ParentHash()] = append(m.byParent[block.ParentHash()], block)
		m.emit(Event{Kind: EventOrphaned, Miner: m.name, Hash: block.Hash(), Height: block.Height(), Time: block.Time()})
		m.log.WithFields(logrus.Fields{
			"height": block.Height(),
			"hash":   block.Hash().String(),
		}).Debug("orphaned block, parent unknown")
		return
	}

	m.accept(block, EventAccepted)
	m.refreshRejects(block)
}

// accept inserts a block into the known set and, when it overtakes the
// current tip height, into the candidate set. Blocks at or below tip height
// are never candidates: that height was already settled by an earlier
// evaluation.
func (m *Miner) accept(block *Block, kind EventKind) {
	m.known[block.Hash()] = block
	if block.Height() > m.tipBlock.Height() {
		m.candidates = append(m.candidates, block)
	}
	m.emit(Event{Kind: kind, Miner: m.name, Hash: block.Hash(), Height: block.Height(), Time: block.Time()})
}

// refreshRejects promotes every orphan made reachable by the insertion of
// from, transitively: one promotion can unblock a whole chain of parked
// descendants. The worklist over the parent-hash index yields exactly the
// blocks an exhaustive rescan of the reject map would move, in near-linear
// time.
func (m *Miner) refreshRejects(from *Block) {
	work := []Hash{from.Hash()}
	for len(work) > 0 {
		parent := work[0]
		work = work[1:]

		children := m.byParent[parent]
		if len(children) == 0 {
			continue
		}
		delete(m.byParent, parent)

		for _, child := range children {
			delete(m.rejected, child.Hash())
			m.accept(child, EventReconciled)
			m.log.WithFields(logrus.Fields{
				"height": child.Height(),
				"hash":   child.Hash().String(),
			}).Debug("reconciled orphan")
			work = append(work, child.Hash())
		}
	}
}

func (m *Miner) setTip(block *Block) {
	m.tipBlock = block
}

func (m *Miner) emit(ev Event) {
	if m.feed != nil {
		m.feed.Send(ev)
	}
}
