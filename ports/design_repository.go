package ports

import (
	"context"

	"gotreat/app"
	"gotreat/domain/core"
)

// DesignSummary is the listing projection of a stored treatment design
type DesignSummary struct {
	ID            core.DesignID  `json:"id"`
	Name          string         `json:"name"`
	OutcomeColumn string         `json:"outcome_column"`
	VariableCount int            `json:"variable_count"`
	CreatedAt     core.Timestamp `json:"created_at"`
}

// DesignRepository persists fitted treatment designs. Implementations must
// never store a partial design: Save is all-or-nothing.
type DesignRepository interface {
	Save(ctx context.Context, name string, design *app.TreatmentDesign) error
	GetByID(ctx context.Context, id core.DesignID) (*app.TreatmentDesign, error)
	List(ctx context.Context, limit, offset int) ([]DesignSummary, error)
	Delete(ctx context.Context, id core.DesignID) error
}
