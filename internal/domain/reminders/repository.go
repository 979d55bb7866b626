package reminders

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate lo devuelve Create cuando ya existe un reminder con la
// misma identidad lógica (user, prescription, medicine, scheduled_at).
// Los adapters traducen su error nativo (p.ej. SQLSTATE 23505) a este
// sentinel; el generador lo trata como éxito.
var ErrDuplicate = errors.New("duplicate reminder")

type Repository interface {
	// Create inserta un reminder; colisión de identidad => ErrDuplicate.
	Create(ctx context.Context, rem Reminder) error

	GetByID(ctx context.Context, id string) (Reminder, error)

	// ListRange devuelve los reminders del usuario con
	// from <= scheduled_at < to, ordenados ascendente por scheduled_at.
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]Reminder, error)

	// Delete borra definitivamente; el ciclo de vida no marca, borra.
	Delete(ctx context.Context, id string) error
}
