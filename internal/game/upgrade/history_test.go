package upgrade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skillcore/internal/testutil"
)

type memStore struct {
	mu      sync.Mutex
	loaded  []Record
	loadErr error
	written []pendingWrite
}

func (s *memStore) LoadSession(_ context.Context, _ string) ([]Record, error) {
	return s.loaded, s.loadErr
}

func (s *memStore) AppendRecord(_ context.Context, _ string, seq int, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, pendingWrite{seq: seq, rec: rec})
	return nil
}

func (s *memStore) writes() []pendingWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pendingWrite(nil), s.written...)
}

func TestMemoryHistory(t *testing.T) {
	h := NewMemoryHistory(Record{Type: DamageIncrease, Value: 1})
	h.Append(Record{Type: SizeIncrease, Value: 2})

	got := h.OrderedHistory()
	require.Len(t, got, 2)
	assert.Equal(t, DamageIncrease, got[0].Type)
	assert.Equal(t, SizeIncrease, got[1].Type)

	got[0].Value = 99
	assert.InDelta(t, 1.0, h.OrderedHistory()[0].Value, 1e-9, "returns a copy")
}

func TestPersistentHistory_WritesThrough(t *testing.T) {
	store := &memStore{loaded: []Record{{Type: CooldownReduction, Value: 0.1}}}
	h, err := LoadPersistentHistory(context.Background(), store, "s1")
	require.NoError(t, err)
	require.Len(t, h.OrderedHistory(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	h.Append(Record{Type: DamageIncrease, Value: 0.5})
	h.Append(Record{Type: SizeIncrease, Value: 0.5})
	assert.Len(t, h.OrderedHistory(), 3, "visible immediately")

	require.Eventually(t, func() bool { return len(store.writes()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	w := store.writes()
	assert.Equal(t, 2, w[0].seq)
	assert.Equal(t, 3, w[1].seq)
	assert.Equal(t, SizeIncrease, w[1].rec.Type)
}

func TestPersistentHistory_FlushOnStop(t *testing.T) {
	store := &memStore{}
	h, err := LoadPersistentHistory(context.Background(), store, "s1")
	require.NoError(t, err)

	h.Append(Record{Type: DamageIncrease, Value: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Run(ctx))
	assert.Len(t, store.writes(), 1)
}

func TestLoadPersistentHistory_Error(t *testing.T) {
	store := &memStore{loadErr: testutil.ErrSimulated}
	_, err := LoadPersistentHistory(context.Background(), store, "s1")
	assert.ErrorIs(t, err, testutil.ErrSimulated)
}
