package schedules

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
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

type SaveInput struct {
	PrescriptionID string
	MedicineName   string
	Dosage         string
	Frequency      Frequency
	StartTime      string // "HH:MM"
	TimesPerDay    int    // solo se respeta con frequency=custom
	IntervalHours  int    // idem
	IsActive       bool
}

// Save guarda el plan de tomas de un medicamento (== saveSchedule).
// Valida acá lo que el core de generación asume como dado: frecuencia
// conocida, start_time parseable, enteros positivos para custom.
// Deduplica por (user, prescription, medicine): si ya existe un schedule
// con esa identidad se actualiza en el lugar (mismo ID, CreatedAt intacto).
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Schedule, error) {
	userID = strings.TrimSpace(userID)
	prescriptionID := strings.TrimSpace(in.PrescriptionID)
	medicine := strings.TrimSpace(in.MedicineName)

	if userID == "" || prescriptionID == "" || medicine == "" {
		return Schedule{}, ErrInvalidInput
	}
	if !in.Frequency.Valid() {
		return Schedule{}, ErrInvalidInput
	}

	// Presets mandan: el par (n, h) del enum pisa lo que venga en el input.
	// Custom exige valores positivos cargados por el usuario.
	timesPerDay, intervalHours, isPreset := in.Frequency.Preset()
	if !isPreset {
		timesPerDay = in.TimesPerDay
		intervalHours = in.IntervalHours
		if timesPerDay <= 0 || intervalHours <= 0 {
			return Schedule{}, ErrInvalidInput
		}
	}

	candidate := Schedule{
		UserID:         userID,
		PrescriptionID: prescriptionID,
		MedicineName:   medicine,
		Dosage:         strings.TrimSpace(in.Dosage),
		Frequency:      in.Frequency,
		StartTime:      strings.TrimSpace(in.StartTime),
		TimesPerDay:    timesPerDay,
		IntervalHours:  intervalHours,
		IsActive:       in.IsActive,
	}
	if _, _, err := candidate.StartClock(); err != nil {
		return Schedule{}, ErrInvalidInput
	}

	now := s.now()

	existing, err := s.repo.GetByKey(ctx, userID, prescriptionID, medicine)
	if err == nil && existing.ID != "" {
		candidate.ID = existing.ID
		candidate.CreatedAt = existing.CreatedAt
		candidate.UpdatedAt = now

		if err := s.repo.Update(ctx, candidate); err != nil {
			return Schedule{}, err
		}
		return candidate, nil
	}

	candidate.ID = uuid.NewString()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	if err := s.repo.Create(ctx, candidate); err != nil {
		return Schedule{}, err
	}
	return candidate, nil
}

// Deactivate apaga un schedule sin borrarlo; la generación lo ignora.
func (s *Service) Deactivate(ctx context.Context, scheduleID, userID string) (Schedule, error) {
	scheduleID = strings.TrimSpace(scheduleID)
	userID = strings.TrimSpace(userID)
	if scheduleID == "" || userID == "" {
		return Schedule{}, ErrInvalidInput
	}

	sch, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return Schedule{}, ErrNotFound
	}
	if sch.UserID != userID {
		return Schedule{}, ErrForbidden
	}

	// Idempotente
	if !sch.IsActive {
		return sch, nil
	}

	sch.IsActive = false
	sch.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, sch); err != nil {
		return Schedule{}, err
	}
	return sch, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Schedule, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListActiveByUser es lo que consume el generador de reminders.
func (s *Service) ListActiveByUser(ctx context.Context, userID string) ([]Schedule, error) {
	return s.repo.ListActiveByUser(ctx, userID)
}
