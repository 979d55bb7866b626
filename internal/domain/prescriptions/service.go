package prescriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name       string
	DoctorName string
	Notes      string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Prescription, error) {
	if strings.TrimSpace(userID) == "" {
		return Prescription{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Prescription{}, ErrInvalidInput
	}

	now := s.now()
	p := Prescription{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		DoctorName: strings.TrimSpace(in.DoctorName),
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Prescription{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Prescription{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Prescription, error) {
	return s.repo.ListByUser(ctx, userID)
}

// DisplayName resuelve el nombre de la receta para mostrar junto a un
// reminder. Si la receta no existe, devuelve el placeholder fijo en vez
// de error (los reminders huérfanos se siguen mostrando).
func (s *Service) DisplayName(ctx context.Context, prescriptionID string) string {
	p, err := s.repo.GetByID(ctx, prescriptionID)
	if err != nil {
		return PlaceholderName
	}
	return p.Name
}

// OwnerOf expone el userID dueño de una receta.
// Se usa desde schedules/reminders para autorizar sin ciclos de imports.
func (s *Service) OwnerOf(ctx context.Context, prescriptionID string) (string, error) {
	p, err := s.GetByID(ctx, prescriptionID)
	if err != nil {
		return "", err
	}
	return p.UserID, nil
}
