package simulation

// Connection is one directed, delayed link from a sender to a receiver.
// A pair of miners exchanging blocks in both directions holds two
// independent Connections, each with its own delay.
type Connection struct {
	sender   *Miner
	receiver *Miner
	delay    int

	// Pending deliveries in insertion order, each with a countdown that
	// starts at the link delay.
	pending []queueEntry
}

type queueEntry struct {
	block *Block
	ttd   int // ticks to delivery
}

func NewConnection(sender, receiver *Miner, delay int) *Connection {
	return &Connection{
		sender:   sender,
		receiver: receiver,
		delay:    delay,
	}
}

func (c *Connection) Sender() *Miner {
	return c.sender
}

func (c *Connection) Receiver() *Miner {
	return c.receiver
}

func (c *Connection) Delay() int {
	return c.delay
}

// Pending reports the number of queued, not yet delivered blocks.
func (c *Connection) Pending() int {
	return len(c.pending)
}

// Queue appends a block to the pending deliveries. The block is not
// validated here; acceptance is entirely the receiver's business.
func (c *Connection) Queue(block *Block) {
	c.pending = append(c.pending, queueEntry{block: block, ttd: c.delay})
}

// Advance runs one tick of the link. Entries whose countdown has reached
// zero are delivered to the receiver and dropped; all others count down by
// one. Entries are walked in insertion order and survivors keep that order,
// so blocks queued in the same tick arrive in the order they were queued.
// A delay of zero delivers on the tick after Queue, never within the
// broadcasting tick itself.
func (c *Connection) Advance() {
	if len(c.pending) == 0 {
		return
	}
	remaining := c.pending[:0]
	for _, entry := range c.pending {
		if entry.ttd == 0 {
			c.receiver.ReceiveBlock(entry.block)
			continue
		}
		entry.ttd--
		remaining = append(remaining, entry)
	}
	c.pending = remaining
}
