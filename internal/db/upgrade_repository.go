package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/skillcore/internal/game/upgrade"
)

// UpgradeRepository stores the ordered upgrade history of each session.
// Implements upgrade.Store.
type UpgradeRepository struct {
	db *pgxpool.Pool
}

// NewUpgradeRepository creates a new UpgradeRepository.
func NewUpgradeRepository(db *pgxpool.Pool) *UpgradeRepository {
	return &UpgradeRepository{db: db}
}

// LoadSession returns the session's records in grant order.
func (r *UpgradeRepository) LoadSession(ctx context.Context, sessionID string) ([]upgrade.Record, error) {
	query := `
		SELECT type, value, skill_id
		FROM upgrade_history
		WHERE session_id = $1
		ORDER BY seq
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying upgrade history for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	records := make([]upgrade.Record, 0, 16)
	for rows.Next() {
		var (
			typeName string
			rec      upgrade.Record
		)
		if err := rows.Scan(&typeName, &rec.Value, &rec.SkillID); err != nil {
			return nil, fmt.Errorf("scanning upgrade row: %w", err)
		}
		rec.Type, err = upgrade.ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating upgrade rows: %w", err)
	}

	return records, nil
}

// AppendRecord stores rec at position seq (1-based) of the session log.
// Re-writing an existing position is a no-op.
func (r *UpgradeRepository) AppendRecord(ctx context.Context, sessionID string, seq int, rec upgrade.Record) error {
	query := `
		INSERT INTO upgrade_history (session_id, seq, type, value, skill_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, seq) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, sessionID, seq, rec.Type.String(), rec.Value, rec.SkillID); err != nil {
		return fmt.Errorf("inserting upgrade %d for session %s: %w", seq, sessionID, err)
	}

	return nil
}

// DeleteSession removes a session's history.
func (r *UpgradeRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM upgrade_history WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("deleting upgrade history for session %s: %w", sessionID, err)
	}
	return nil
}
