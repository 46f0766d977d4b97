// Package memory keeps predictions in process when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/port"
)

// PredictionRepository is a mutex-guarded in-memory port.PredictionRepository.
type PredictionRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*model.ChurnPrediction
	byRef map[string][]uuid.UUID
}

var _ port.PredictionRepository = (*PredictionRepository)(nil)

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{
		byID:  make(map[uuid.UUID]*model.ChurnPrediction),
		byRef: make(map[string][]uuid.UUID),
	}
}

func (r *PredictionRepository) Save(_ context.Context, p *model.ChurnPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID()]; !exists {
		r.byRef[p.SubscriberRef()] = append(r.byRef[p.SubscriberRef()], p.ID())
	}
	r.byID[p.ID()] = p
	return nil
}

func (r *PredictionRepository) FindByID(_ context.Context, id uuid.UUID) (*model.ChurnPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id], nil
}

func (r *PredictionRepository) FindBySubscriberRef(_ context.Context, subscriberRef string, limit, offset int) ([]*model.ChurnPrediction, error) {
	r.mu.RLock()
	ids := r.byRef[subscriberRef]
	all := make([]*model.ChurnPrediction, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		all = append(all, r.byID[ids[i]])
	}
	r.mu.RUnlock()

	// Newest first; later inserts win ties.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt().After(all[j].CreatedAt())
	})

	if offset >= len(all) {
		return []*model.ChurnPrediction{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Ping always succeeds.
func (r *PredictionRepository) Ping(context.Context) error { return nil }

// Len reports how many predictions are held.
func (r *PredictionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
