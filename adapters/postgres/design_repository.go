package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gotreat/app"
	"gotreat/domain/core"
	apperrors "gotreat/internal/errors"
	"gotreat/ports"
)

// designRepository implements ports.DesignRepository on Postgres, storing
// the full serialized design as a JSONB payload
type designRepository struct {
	db *sqlx.DB
}

// NewDesignRepository creates a new design repository
func NewDesignRepository(db *sqlx.DB) ports.DesignRepository {
	return &designRepository{db: db}
}

// Schema is the DDL for the designs table, applied by the migration step
const Schema = `
CREATE TABLE IF NOT EXISTS treatment_designs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	outcome_column TEXT NOT NULL,
	variable_count INT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// Migrate creates the designs table if missing
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate treatment_designs: %w", err)
	}
	return nil
}

// Save inserts a fitted design. The payload is written in one statement so
// a failed serialization never leaves a partial row behind.
func (r *designRepository) Save(ctx context.Context, name string, design *app.TreatmentDesign) error {
	payload, err := json.Marshal(design)
	if err != nil {
		return fmt.Errorf("failed to marshal design: %w", err)
	}

	query := `INSERT INTO treatment_designs (
		id, name, outcome_column, variable_count, payload, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		design.ID.String(), name, design.OutcomeColumn, len(design.Descriptors), payload, design.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save design: %w", err)
	}
	return nil
}

// GetByID retrieves a design by its ID
func (r *designRepository) GetByID(ctx context.Context, id core.DesignID) (*app.TreatmentDesign, error) {
	query := `SELECT payload FROM treatment_designs WHERE id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("design " + id.String())
		}
		return nil, apperrors.Wrap(err, "failed to get design")
	}

	var design app.TreatmentDesign
	if err := json.Unmarshal(payload, &design); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design: %w", err)
	}
	return &design, nil
}

// List returns design summaries newest first
func (r *designRepository) List(ctx context.Context, limit, offset int) ([]ports.DesignSummary, error) {
	query := `SELECT id, name, outcome_column, variable_count, created_at
	FROM treatment_designs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	var out []ports.DesignSummary
	for rows.Next() {
		var s ports.DesignSummary
		var createdAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &s.OutcomeColumn, &s.VariableCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan design summary: %w", err)
		}
		if createdAt.Valid {
			s.CreatedAt = core.NewTimestamp(createdAt.Time)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a design by ID
func (r *designRepository) Delete(ctx context.Context, id core.DesignID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM treatment_designs WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete design: %w", err)
	}
	return nil
}
