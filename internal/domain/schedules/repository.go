package schedules

import "context"

type Repository interface {
	Create(ctx context.Context, s Schedule) error
	Update(ctx context.Context, s Schedule) error
	GetByID(ctx context.Context, id string) (Schedule, error)

	// GetByKey busca por la identidad lógica (user, prescription, medicine).
	GetByKey(ctx context.Context, userID, prescriptionID, medicineName string) (Schedule, error)

	ListByUser(ctx context.Context, userID string) ([]Schedule, error)
	ListActiveByUser(ctx context.Context, userID string) ([]Schedule, error)
}
