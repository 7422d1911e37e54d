package redis

import (
	"context"
	"fmt"
	"strconv"
)

// StatStore accumulates stat counters per session in a hash.
type StatStore struct {
	client Client
}

// NewStatStore creates a stat counter store.
func NewStatStore(client Client) *StatStore {
	return &StatStore{client: client}
}

// AddCounts adds counts to the session's counters in one transaction.
func (s *StatStore) AddCounts(ctx context.Context, sessionID string, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	key := statsKey(sessionID)
	pipe := s.client.TxPipeline()
	for name, n := range counts {
		pipe.HIncrBy(ctx, key, name, n)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adding stat counts for session %s: %w", sessionID, err)
	}
	return nil
}

// Counts returns the session's counters.
func (s *StatStore) Counts(ctx context.Context, sessionID string) (map[string]int64, error) {
	fields, err := s.client.HGetAll(ctx, statsKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading stat counts for session %s: %w", sessionID, err)
	}
	counts := make(map[string]int64, len(fields))
	for name, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("session %s: bad counter %s=%q: %w", sessionID, name, raw, err)
		}
		counts[name] = n
	}
	return counts, nil
}
