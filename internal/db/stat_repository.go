package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatRepository accumulates skill stat counters per session.
// Implements stats.Store.
type StatRepository struct {
	db *pgxpool.Pool
}

// NewStatRepository creates a new StatRepository.
func NewStatRepository(db *pgxpool.Pool) *StatRepository {
	return &StatRepository{db: db}
}

// AddCounts adds counts to the stored counters in one transaction.
func (r *StatRepository) AddCounts(ctx context.Context, sessionID string, counts map[string]int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// rollback after commit is expected to fail
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO skill_stats (session_id, context, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, context)
		DO UPDATE SET count = skill_stats.count + EXCLUDED.count, updated_at = now()
	`
	for name, n := range counts {
		if _, err := tx.Exec(ctx, query, sessionID, name, n); err != nil {
			return fmt.Errorf("upserting stat %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing stats: %w", err)
	}

	return nil
}

// Counts returns the stored counters of a session.
func (r *StatRepository) Counts(ctx context.Context, sessionID string) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT context, count FROM skill_stats WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying stats for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			name string
			n    int64
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning stat row: %w", err)
		}
		counts[name] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stat rows: %w", err)
	}

	return counts, nil
}
