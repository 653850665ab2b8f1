package memory

import (
	"context"
	"sort"
	"sync"

	"gotreat/app"
	"gotreat/domain/core"
	"gotreat/internal/errors"
	"gotreat/ports"
)

// designRepository is an in-memory ports.DesignRepository, used by the API
// when no database is configured and by tests
type designRepository struct {
	mu      sync.RWMutex
	designs map[core.DesignID]*app.TreatmentDesign
	names   map[core.DesignID]string
}

// NewDesignRepository creates an empty in-memory repository
func NewDesignRepository() ports.DesignRepository {
	return &designRepository{
		designs: make(map[core.DesignID]*app.TreatmentDesign),
		names:   make(map[core.DesignID]string),
	}
}

func (r *designRepository) Save(ctx context.Context, name string, design *app.TreatmentDesign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.designs[design.ID]; exists {
		return errors.InvalidInput("design already stored: " + design.ID.String())
	}
	r.designs[design.ID] = design
	r.names[design.ID] = name
	return nil
}

func (r *designRepository) GetByID(ctx context.Context, id core.DesignID) (*app.TreatmentDesign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	design, ok := r.designs[id]
	if !ok {
		return nil, errors.NotFound("design " + id.String())
	}
	return design, nil
}

func (r *designRepository) List(ctx context.Context, limit, offset int) ([]ports.DesignSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summaries := make([]ports.DesignSummary, 0, len(r.designs))
	for id, d := range r.designs {
		summaries = append(summaries, ports.DesignSummary{
			ID:            id,
			Name:          r.names[id],
			OutcomeColumn: d.OutcomeColumn,
			VariableCount: len(d.Descriptors),
			CreatedAt:     d.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if offset >= len(summaries) {
		return nil, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (r *designRepository) Delete(ctx context.Context, id core.DesignID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.designs[id]; !ok {
		return errors.NotFound("design " + id.String())
	}
	delete(r.designs, id)
	delete(r.names, id)
	return nil
}
