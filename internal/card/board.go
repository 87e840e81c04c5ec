package card

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Board keeps one card per workout so local state survives between requests.
// Cards not used for longer than the idle timeout are evicted by Sweep.
type Board struct {
	ctrl     Controller
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	cards map[primitive.ObjectID]*boardEntry
}

type boardEntry struct {
	card     *Card
	lastUsed time.Time
}

func NewBoard(ctrl Controller, exporter Exporter, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		ctrl:     ctrl,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
		cards:    make(map[primitive.ObjectID]*boardEntry),
	}
}

// Card returns the card for workoutID, creating it on first use.
func (b *Board) Card(workoutID primitive.ObjectID) *Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.cards[workoutID]
	if !ok {
		e = &boardEntry{card: New(workoutID, b.ctrl, b.exporter, b.logger)}
		b.cards[workoutID] = e
	}
	e.lastUsed = b.now()
	return e.card
}

// Sweep drops cards idle for longer than maxIdle and returns how many were dropped.
func (b *Board) Sweep(maxIdle time.Duration) int {
	cutoff := b.now().Add(-maxIdle)
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, e := range b.cards {
		if e.lastUsed.Before(cutoff) {
			delete(b.cards, id)
			n++
		}
	}
	return n
}

// Run sweeps idle cards every interval until ctx is done.
func (b *Board) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.Sweep(maxIdle); n > 0 {
				b.logger.Debug("evicted idle cards", zap.Int("count", n))
			}
		}
	}
}

// Len reports how many cards are held.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cards)
}
