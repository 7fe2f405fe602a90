package service

import (
	"context"
	"go.uber.org/zap"
	"sync"
	"time"
)

// Publisher delivers committed events to one kind of subscriber.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublishTimeout bounds the delivery of one event to one publisher.
const PublishTimeout = 10 * time.Second

// Notifier hands events to its publishers on a worker goroutine, in commit
// order, so a slow publisher never holds the round lock.
type Notifier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	publishers []Publisher
	pending    []Event
	running    bool
	closing    sync.WaitGroup
	logger     *zap.Logger
}

func NewNotifier(logger *zap.Logger, publishers ...Publisher) *Notifier {
	n := &Notifier{publishers: publishers, logger: logger, running: true}
	n.cond = sync.NewCond(&n.mu)
	n.closing.Add(1)
	go n.worker()
	return n
}

// Register adds publishers. Events queued before the call reach them too if
// the worker has not picked them up yet.
func (n *Notifier) Register(publishers ...Publisher) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.publishers = append(n.publishers, publishers...)
}

// Notify queues ev. Events queued after Close are dropped.
func (n *Notifier) Notify(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.running {
		n.logger.Warn("notifier closed, dropping event", zap.Int("type", ev.EventType()))
		return
	}
	n.pending = append(n.pending, ev)
	n.cond.Broadcast()
}

// Close delivers the events already queued and stops the worker.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.running {
		n.running = false
		n.cond.Broadcast()
	}
	n.mu.Unlock()
	n.closing.Wait()
}

func (n *Notifier) worker() {
	defer n.closing.Done()
	n.mu.Lock()

	for {
		for n.running && len(n.pending) == 0 {
			n.cond.Wait()
		}

		if !n.running && len(n.pending) == 0 {
			n.mu.Unlock()
			return
		}

		events := n.pending
		publishers := n.publishers
		n.pending = nil
		n.mu.Unlock()

		for _, ev := range events {
			for _, publisher := range publishers {
				n.deliver(publisher, ev)
			}
		}

		n.mu.Lock()
	}
}

func (n *Notifier) deliver(publisher Publisher, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, ev); err != nil {
		n.logger.Error("publish event",
			zap.Int("type", ev.EventType()),
			zap.Int("round", ev.Round()),
			zap.Error(err))
	}
}
