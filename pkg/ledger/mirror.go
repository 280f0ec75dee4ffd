package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskforge-hq/taskforge/pkg/cost"
)

// DefaultFlushInterval is how often the mirror drains the tracker's
// usage history when no interval is configured.
const DefaultFlushInterval = 30 * time.Second

// Mirror periodically copies new usage records from a cost tracker into a
// ledger store. Writes are behind the tracker by at most one flush
// interval, so routing never blocks on the database.
//
// The tracker's history is append-only, so the mirror only needs to
// remember how many records it has already written.
type Mirror struct {
	tracker       *cost.Tracker
	store         *Store
	flushInterval time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	written int
	running bool
	done    chan struct{}
	stopped chan struct{}
}

// NewMirror creates a mirror from tracker to store. A zero flushInterval
// uses DefaultFlushInterval.
func NewMirror(tracker *cost.Tracker, store *Store, flushInterval time.Duration) *Mirror {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Mirror{
		tracker:       tracker,
		store:         store,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "ledger.mirror"),
	}
}

// Start begins the background flush loop. It returns immediately; the
// loop stops when ctx is cancelled or Stop is called.
func (m *Mirror) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})

	go m.loop(ctx, m.done, m.stopped)

	m.logger.Info("ledger mirror started", "flush_interval", m.flushInterval)
}

// Stop halts the flush loop and performs a final flush so no records are
// lost on shutdown.
func (m *Mirror) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	done, stopped := m.done, m.stopped
	m.mu.Unlock()

	close(done)
	<-stopped

	if err := m.Flush(context.Background()); err != nil {
		m.logger.Error("final ledger flush failed", "error", err)
	}
	m.logger.Info("ledger mirror stopped")
}

func (m *Mirror) loop(ctx context.Context, done, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(m.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Flush(ctx); err != nil {
				m.logger.Error("ledger flush failed", "error", err)
			}
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

// Flush writes any usage records recorded since the previous flush.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.tracker.UsageHistory()
	if len(history) <= m.written {
		return nil
	}

	pending := history[m.written:]
	records := make([]Record, len(pending))
	for i, usage := range pending {
		records[i] = Record{
			ID:    uuid.NewString(),
			Usage: usage,
		}
	}

	if err := m.store.Append(ctx, records); err != nil {
		return err
	}
	m.written = len(history)

	m.logger.Debug("flushed usage records to ledger", "count", len(records))
	return nil
}
