package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aarondl/null/v8"

	"optilab/internal/entities"
	"optilab/internal/workflow"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

// MemoryStore - хранилище в памяти с той же семантикой, что и Postgres:
// все изменения под одной блокировкой, пачка применяется целиком или никак.
// Используется при STORE_DRIVER=memory и в тестах сервисов.
type MemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]*entities.Job
	orders map[string]*entities.SparePartOrder
}

var (
	_ JobRepositoryInterface       = (*MemoryStore)(nil)
	_ SparePartRepositoryInterface = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:   make(map[string]*entities.Job),
		orders: make(map[string]*entities.SparePartOrder),
	}
}

func (s *MemoryStore) FindJob(ctx context.Context, id string) (*entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("работа %s: %w", id, apperrors.ErrNotFound)
	}
	c := job.Clone()
	return &c, nil
}

func (s *MemoryStore) ListJobs(ctx context.Context, c workflow.JobCriteria) ([]entities.Job, uint64, error) {
	s.mu.RLock()
	all := make([]entities.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		row := j.Clone()
		row.History = nil
		all = append(all, row)
	}
	s.mu.RUnlock()

	page, total := workflow.FilterJobs(all, c)
	return page, total, nil
}

func (s *MemoryStore) LoadHistory(ctx context.Context, ids []string) (map[string][]entities.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]entities.HistoryEntry, len(ids))
	for _, id := range ids {
		if j, ok := s.jobs[id]; ok {
			result[id] = append([]entities.HistoryEntry(nil), j.History...)
		}
	}
	return result, nil
}

func (s *MemoryStore) CreateJob(ctx context.Context, job *entities.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("работа %s уже существует: %w", job.ID, apperrors.ErrConflict)
	}
	c := job.Clone()
	c.LinkedSparePart = nil
	s.jobs[job.ID] = &c
	return nil
}

// updateLocked работает с копиями: в карту они попадают только после успеха всей пачки.
func (s *MemoryStore) updateLocked(ids []string, fn JobUpdateFunc, strict bool) ([]*entities.Job, error) {
	var changed []*entities.Job
	for _, id := range ids {
		current, ok := s.jobs[id]
		if !ok {
			if strict {
				return nil, fmt.Errorf("работа %s: %w", id, apperrors.ErrNotFound)
			}
			continue
		}
		c := current.Clone()
		entries, err := fn(&c)
		if !strict && errors.Is(err, workflow.ErrNotEligible) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			continue
		}
		changed = append(changed, &c)
	}
	return changed, nil
}

func (s *MemoryStore) UpdateJob(ctx context.Context, id string, fn JobUpdateFunc) (*entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.updateLocked([]string{id}, fn, true)
	if err != nil {
		return nil, err
	}
	for _, j := range changed {
		s.jobs[j.ID] = j
	}
	c := s.jobs[id].Clone()
	return &c, nil
}

func (s *MemoryStore) UpdateJobs(ctx context.Context, ids []string, fn JobUpdateFunc) ([]entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.updateLocked(ids, fn, false)
	if err != nil {
		return nil, err
	}
	result := make([]entities.Job, 0, len(changed))
	for _, j := range changed {
		s.jobs[j.ID] = j
		result = append(result, j.Clone())
	}
	return result, nil
}

func (s *MemoryStore) DeleteJob(ctx context.Context, id string, actor types.Actor, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return nil, fmt.Errorf("работа %s: %w", id, apperrors.ErrNotFound)
	}

	var unlinked []string
	for _, o := range s.orders {
		if !o.JobID.Valid || o.JobID.String != id {
			continue
		}
		ts := workflow.Stamp(now, o.UpdatedAt)
		o.JobID = null.String{}
		o.UpdatedAt = ts
		o.History = append(o.History, workflow.UnlinkNote(o.ID, id, actor, ts))
		unlinked = append(unlinked, o.ID)
	}
	delete(s.jobs, id)
	return unlinked, nil
}

func (s *MemoryStore) FindSparePart(ctx context.Context, id string) (*entities.SparePartOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("заказ %s: %w", id, apperrors.ErrNotFound)
	}
	c := o.Clone()
	return &c, nil
}

func (s *MemoryStore) ListSpareParts(ctx context.Context, c workflow.SparePartCriteria) ([]entities.SparePartOrder, uint64, error) {
	s.mu.RLock()
	all := make([]entities.SparePartOrder, 0, len(s.orders))
	for _, o := range s.orders {
		row := o.Clone()
		row.History = nil
		all = append(all, row)
	}
	s.mu.RUnlock()

	page, total := workflow.FilterSpareParts(all, c)
	return page, total, nil
}

func (s *MemoryStore) activeByJobIDLocked(jobID string) *entities.SparePartOrder {
	for _, o := range s.orders {
		if o.JobID.Valid && o.JobID.String == jobID && o.IsActive() {
			c := o.Clone()
			return &c
		}
	}
	return nil
}

func (s *MemoryStore) FindActiveByJobID(ctx context.Context, jobID string) (*entities.SparePartOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeByJobIDLocked(jobID), nil
}

func (s *MemoryStore) CreateSparePart(ctx context.Context, order *entities.SparePartOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.JobID.Valid {
		if err := workflow.ValidateSparePartLink(order, s.jobs[order.JobID.String], s.activeByJobIDLocked(order.JobID.String)); err != nil {
			return err
		}
	}
	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("заказ %s уже существует: %w", order.ID, apperrors.ErrConflict)
	}
	c := order.Clone()
	s.orders[order.ID] = &c
	return nil
}

func (s *MemoryStore) UpdateSparePart(ctx context.Context, id string, fn SparePartUpdateFunc) (*entities.SparePartOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("заказ %s: %w", id, apperrors.ErrNotFound)
	}
	c := current.Clone()
	entries, err := fn(&c)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		s.orders[id] = &c
	}
	out := s.orders[id].Clone()
	return &out, nil
}

func (s *MemoryStore) DeleteSparePart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return fmt.Errorf("заказ %s: %w", id, apperrors.ErrNotFound)
	}
	delete(s.orders, id)
	return nil
}
