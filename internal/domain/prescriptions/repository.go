package prescriptions

import "context"

type Repository interface {
	Create(ctx context.Context, p Prescription) error
	GetByID(ctx context.Context, id string) (Prescription, error)
	ListByUser(ctx context.Context, userID string) ([]Prescription, error)
}
