package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"medication-reminders/internal/domain/reminders"
)

type reminderRepo struct {
	mu    sync.RWMutex
	byID  map[string]reminders.Reminder
	byKey map[reminders.Key]string // clave compuesta -> id
}

// NewReminderRepo arma el repo in-memory de reminders. La unicidad sobre
// (user, prescription, medicine, scheduled_at) se aplica acá igual que
// el constraint de la tabla en Postgres: es el único mecanismo de
// seguridad frente a generación concurrente.
func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID:  make(map[string]reminders.Reminder),
		byKey: make(map[reminders.Key]string),
	}
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rem.ID == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; exists {
		return errors.New("reminder already exists")
	}
	if _, exists := r.byKey[rem.Key()]; exists {
		return reminders.ErrDuplicate
	}

	r.byID[rem.ID] = rem
	r.byKey[rem.Key()] = rem.ID
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.byID[id]
	if !ok {
		return reminders.Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r *reminderRepo) ListRange(ctx context.Context, userID string, from, to time.Time) ([]reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, rem := range r.byID {
		if rem.UserID != userID {
			continue
		}
		// Rango semiabierto [from, to)
		if rem.ScheduledAt.Before(from) || !rem.ScheduledAt.Before(to) {
			continue
		}
		out = append(out, rem)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})

	return out, nil
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}

	delete(r.byID, id)
	delete(r.byKey, rem.Key())
	return nil
}
