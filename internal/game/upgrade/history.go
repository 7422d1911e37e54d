package upgrade

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// History is the ordered log of upgrades granted in the current session.
type History interface {
	OrderedHistory() []Record
	Append(rec Record)
}

// MemoryHistory keeps the log in memory only.
type MemoryHistory struct {
	records []Record
}

// NewMemoryHistory creates a history seeded with records.
func NewMemoryHistory(records ...Record) *MemoryHistory {
	return &MemoryHistory{records: slices.Clone(records)}
}

// OrderedHistory returns a copy of the log in grant order.
func (h *MemoryHistory) OrderedHistory() []Record {
	return slices.Clone(h.records)
}

// Append adds rec to the end of the log.
func (h *MemoryHistory) Append(rec Record) {
	h.records = append(h.records, rec)
}

// Store persists a session's upgrade log.
type Store interface {
	LoadSession(ctx context.Context, sessionID string) ([]Record, error)
	AppendRecord(ctx context.Context, sessionID string, seq int, rec Record) error
}

const (
	writeQueueSize = 64
	writeTimeout   = 5 * time.Second
)

type pendingWrite struct {
	seq int
	rec Record
}

// PersistentHistory serves the log from memory and writes grants through
// to a Store from a background goroutine (Run), so the simulation never
// waits on storage.
type PersistentHistory struct {
	MemoryHistory
	store     Store
	sessionID string
	writes    chan pendingWrite
}

// LoadPersistentHistory reads the existing log of sessionID from store.
func LoadPersistentHistory(ctx context.Context, store Store, sessionID string) (*PersistentHistory, error) {
	records, err := store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading upgrade history for session %s: %w", sessionID, err)
	}
	slog.Info("upgrade history loaded", "session", sessionID, "records", len(records))
	return &PersistentHistory{
		MemoryHistory: MemoryHistory{records: records},
		store:         store,
		sessionID:     sessionID,
		writes:        make(chan pendingWrite, writeQueueSize),
	}, nil
}

// Append records rec in memory and queues it for persistence.
func (h *PersistentHistory) Append(rec Record) {
	h.MemoryHistory.Append(rec)
	w := pendingWrite{seq: len(h.records), rec: rec}
	select {
	case h.writes <- w:
	default:
		slog.Warn("upgrade history write queue full, writing inline", "session", h.sessionID)
		h.persist(w)
	}
}

// Run persists queued writes until ctx is canceled, then flushes what is left.
// Writes are not bound to ctx so a shutdown does not drop them half way.
func (h *PersistentHistory) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.flush()
			return nil
		case w := <-h.writes:
			h.persist(w)
		}
	}
}

func (h *PersistentHistory) flush() {
	for {
		select {
		case w := <-h.writes:
			h.persist(w)
		default:
			return
		}
	}
}

func (h *PersistentHistory) persist(w pendingWrite) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := h.store.AppendRecord(ctx, h.sessionID, w.seq, w.rec); err != nil {
		slog.Error("persisting upgrade record",
			"session", h.sessionID,
			"seq", w.seq,
			"type", w.rec.Type,
			"err", err)
	}
}
