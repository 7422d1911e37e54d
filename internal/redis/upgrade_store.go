package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/udisondev/skillcore/internal/game/upgrade"
)

// recordDoc is the stored form of one upgrade record.
type recordDoc struct {
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
	SkillID string  `json:"skill_id,omitempty"`
}

// UpgradeStore keeps each session's upgrade history in a hash keyed by
// sequence number.
type UpgradeStore struct {
	client Client
}

// NewUpgradeStore creates an upgrade history store.
func NewUpgradeStore(client Client) *UpgradeStore {
	return &UpgradeStore{client: client}
}

// LoadSession returns the session's records in grant order.
func (s *UpgradeStore) LoadSession(ctx context.Context, sessionID string) ([]upgrade.Record, error) {
	fields, err := s.client.HGetAll(ctx, upgradesKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading upgrades for session %s: %w", sessionID, err)
	}

	type entry struct {
		seq int
		rec upgrade.Record
	}
	entries := make([]entry, 0, len(fields))
	for field, raw := range fields {
		seq, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("session %s: bad upgrade seq %q: %w", sessionID, field, err)
		}
		var doc recordDoc
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("session %s: decoding upgrade %d: %w", sessionID, seq, err)
		}
		typ, err := upgrade.ParseType(doc.Type)
		if err != nil {
			return nil, fmt.Errorf("session %s: upgrade %d: %w", sessionID, seq, err)
		}
		entries = append(entries, entry{seq: seq, rec: upgrade.Record{Type: typ, Value: doc.Value, SkillID: doc.SkillID}})
	}
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.seq, b.seq) })

	records := make([]upgrade.Record, len(entries))
	for i, e := range entries {
		records[i] = e.rec
	}
	return records, nil
}

// AppendRecord stores rec at position seq. An existing position is kept.
func (s *UpgradeStore) AppendRecord(ctx context.Context, sessionID string, seq int, rec upgrade.Record) error {
	raw, err := json.Marshal(recordDoc{Type: rec.Type.String(), Value: rec.Value, SkillID: rec.SkillID})
	if err != nil {
		return fmt.Errorf("encoding upgrade record: %w", err)
	}
	if err := s.client.HSetNX(ctx, upgradesKey(sessionID), strconv.Itoa(seq), raw).Err(); err != nil {
		return fmt.Errorf("appending upgrade %d for session %s: %w", seq, sessionID, err)
	}
	return nil
}

// DeleteSession drops the session's history.
func (s *UpgradeStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, upgradesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting upgrades for session %s: %w", sessionID, err)
	}
	return nil
}
