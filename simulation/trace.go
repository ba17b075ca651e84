package simulation

import (
	"github.com/dominant-strategies/go-quai/event"
	lru "github.com/hashicorp/golang-lru/v2"
)

type EventKind uint8

const (
	// EventMined: a miner found a block.
	EventMined EventKind = iota
	// EventAccepted: a delivered block entered a miner's known set.
	EventAccepted
	// EventOrphaned: a delivered block was parked, its parent unknown.
	EventOrphaned
	// EventReconciled: a parked orphan was promoted into the known set.
	EventReconciled
)

func (k EventKind) String() string {
	switch k {
	case EventMined:
		return "mined"
	case EventAccepted:
		return "accepted"
	case EventOrphaned:
		return "orphaned"
	case EventReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// Event is the unit published on the simulation's instrumentation feed.
// Events are purely observational: nothing in the engine's final state
// depends on whether anyone subscribes.
type Event struct {
	Kind   EventKind
	Miner  string
	Hash   Hash
	Height uint64
	Time   uint64
}

// Recorder subscribes to a simulation's event feed and keeps the most
// recent events in a bounded cache for post-run inspection. Older events
// are evicted once capacity is reached.
type Recorder struct {
	cache *lru.Cache[uint64, Event]
	ch    chan Event
	sub   event.Subscription
	seq   uint64
	done  chan struct{}
}

// NewRecorder builds a recorder holding at most capacity events.
func NewRecorder(capacity int) (*Recorder, error) {
	cache, err := lru.New[uint64, Event](capacity)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		cache: cache,
		ch:    make(chan Event, 128),
		done:  make(chan struct{}),
	}, nil
}

// Start attaches the recorder to the feed and begins capturing.
func (r *Recorder) Start(feed *event.Feed) {
	r.sub = feed.Subscribe(r.ch)
	go r.loop()
}

func (r *Recorder) loop() {
	defer close(r.done)
	for {
		select {
		case ev := <-r.ch:
			r.cache.Add(r.seq, ev)
			r.seq++
		case <-r.sub.Err():
			// Drain whatever was buffered before the unsubscribe.
			for {
				select {
				case ev := <-r.ch:
					r.cache.Add(r.seq, ev)
					r.seq++
				default:
					return
				}
			}
		}
	}
}

// Stop detaches from the feed and waits for buffered events to be recorded.
func (r *Recorder) Stop() {
	r.sub.Unsubscribe()
	<-r.done
}

// Recent returns the retained events, oldest first.
func (r *Recorder) Recent() []Event {
	keys := r.cache.Keys()
	events := make([]Event, 0, len(keys))
	for _, k := range keys {
		if ev, ok := r.cache.Peek(k); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Len reports how many events are currently retained.
func (r *Recorder) Len() int {
	return r.cache.Len()
}
