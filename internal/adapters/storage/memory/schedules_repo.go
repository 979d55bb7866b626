package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"medication-reminders/internal/domain/schedules"
)

type scheduleKey struct {
	UserID         string
	PrescriptionID string
	MedicineName   string
}

type scheduleRepo struct {
	mu    sync.RWMutex
	byID  map[string]schedules.Schedule
	byKey map[scheduleKey]string // identidad lógica -> id
}

func NewScheduleRepo() schedules.Repository {
	return &scheduleRepo{
		byID:  make(map[string]schedules.Schedule),
		byKey: make(map[scheduleKey]string),
	}
}

func keyOf(s schedules.Schedule) scheduleKey {
	return scheduleKey{
		UserID:         s.UserID,
		PrescriptionID: s.PrescriptionID,
		MedicineName:   s.MedicineName,
	}
}

func (r *scheduleRepo) Create(ctx context.Context, s schedules.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return errors.New("schedule id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("schedule already exists")
	}
	if _, exists := r.byKey[keyOf(s)]; exists {
		return errors.New("schedule key already exists")
	}

	r.byID[s.ID] = s
	r.byKey[keyOf(s)] = s.ID
	return nil
}

func (r *scheduleRepo) Update(ctx context.Context, s schedules.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[s.ID]
	if !ok {
		return ErrNotFound
	}

	// La identidad lógica puede no cambiar en la práctica, pero el índice
	// se mantiene consistente igual.
	delete(r.byKey, keyOf(old))
	r.byID[s.ID] = s
	r.byKey[keyOf(s)] = s.ID
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return schedules.Schedule{}, ErrNotFound
	}
	return s, nil
}

func (r *scheduleRepo) GetByKey(ctx context.Context, userID, prescriptionID, medicineName string) (schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[scheduleKey{UserID: userID, PrescriptionID: prescriptionID, MedicineName: medicineName}]
	if !ok {
		return schedules.Schedule{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *scheduleRepo) ListByUser(ctx context.Context, userID string) ([]schedules.Schedule, error) {
	return r.list(userID, false)
}

func (r *scheduleRepo) ListActiveByUser(ctx context.Context, userID string) ([]schedules.Schedule, error) {
	return r.list(userID, true)
}

func (r *scheduleRepo) list(userID string, onlyActive bool) ([]schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedules.Schedule, 0)
	for _, s := range r.byID {
		if s.UserID != userID {
			continue
		}
		if onlyActive && !s.IsActive {
			continue
		}
		out = append(out, s)
	}

	// Orden estable por creación (útil en tests)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MedicineName < out[j].MedicineName
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
