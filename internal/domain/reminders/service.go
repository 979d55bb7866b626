package reminders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"medication-reminders/internal/domain/prescriptions"
	"medication-reminders/internal/domain/schedules"
	"medication-reminders/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrActionInFlight = errors.New("action already in flight for reminder")
)

// NextReminderFunc es el hook que corre después de marcar una toma como
// tomada, con la identidad (prescription, medicine) del reminder borrado.
//
// Hoy el hook por defecto no hace nada: la "próxima toma" no se
// re-agenda hacia adelante, el llamador simplemente relee la lista de
// hoy. Queda enchufable para una futura estrategia de recurrencia
// post-toma.
type NextReminderFunc func(ctx context.Context, userID, prescriptionID, medicineName string) error

// NoopNextReminder es el hook por defecto (solo refresco del lado del caller).
func NoopNextReminder(ctx context.Context, userID, prescriptionID, medicineName string) error {
	return nil
}

type Service struct {
	repo          Repository
	schedules     *schedules.Service
	prescriptions *prescriptions.Service
	log           logger.Logger

	now          func() time.Time
	nextReminder NextReminderFunc

	// Guardia por reminder: a lo sumo una acción en vuelo por ID.
	// No es un lock entre entidades; dos reminders distintos avanzan
	// en paralelo sin tocarse.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(repo Repository, schedulesSvc *schedules.Service, prescriptionsSvc *prescriptions.Service, log logger.Logger) *Service {
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Warn})
	}
	return &Service{
		repo:          repo,
		schedules:     schedulesSvc,
		prescriptions: prescriptionsSvc,
		log:           log,
		now:           time.Now,
		nextReminder:  NoopNextReminder,
		inFlight:      make(map[string]struct{}),
	}
}

// SetNextReminderHook reemplaza la estrategia post-toma. nil restaura el no-op.
func (s *Service) SetNextReminderHook(fn NextReminderFunc) {
	if fn == nil {
		fn = NoopNextReminder
	}
	s.nextReminder = fn
}

// ListToday devuelve los reminders de hoy del usuario, ascendente por
// hora agendada, con el nombre de receta resuelto (placeholder si la
// receta no existe). Sin identidad devuelve vacío sin error.
func (s *Service) ListToday(ctx context.Context, userID string) ([]Reminder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []Reminder{}, nil
	}

	start, end := dayBounds(s.now())

	items, err := s.repo.ListRange(ctx, userID, start, end)
	if err != nil {
		s.log.Error("list today reminders failed", map[string]any{
			"user_id": userID,
			"err":     err.Error(),
		})
		return nil, err
	}

	for i := range items {
		if items[i].PrescriptionName == "" {
			items[i].PrescriptionName = s.prescriptions.DisplayName(ctx, items[i].PrescriptionID)
		}
	}
	return items, nil
}

// EnsureTodayGenerated materializa los reminders de hoy a partir de los
// schedules activos del usuario. Idempotente: los que ya existen
// (colisión de clave compuesta) se ignoran en silencio, nunca se mutan.
//
// Solo se crean tomas de hoy y estrictamente futuras al momento de la
// llamada; las tomas tempranas ya pasadas no se rellenan hacia atrás.
//
// Política de lote: best-effort. Un schedule que falla se loguea y no
// frena a los demás; los errores no-duplicado se juntan y se devuelven.
func (s *Service) EnsureTodayGenerated(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	active, err := s.schedules.ListActiveByUser(ctx, userID)
	if err != nil {
		s.log.Error("load active schedules failed", map[string]any{
			"user_id": userID,
			"err":     err.Error(),
		})
		return err
	}
	if len(active) == 0 {
		return nil
	}

	now := s.now()

	var errs []error
	created := 0

	for _, sch := range active {
		times, err := IntakeTimes(now, sch)
		if err != nil {
			// Schedule con start_time corrupto: se saltea, no aborta el lote.
			s.log.Warn("skip schedule with invalid start_time", map[string]any{
				"schedule_id": sch.ID,
				"err":         err.Error(),
			})
			errs = append(errs, err)
			continue
		}

		for _, t := range times {
			if !t.After(now) {
				continue
			}
			if !SameDay(t, now) {
				continue
			}

			rem := Reminder{
				ID:             uuid.NewString(),
				UserID:         userID,
				PrescriptionID: sch.PrescriptionID,
				MedicineName:   sch.MedicineName,
				ScheduledAt:    t,
				IsTaken:        false,
				Frequency:      sch.Frequency,
				CreatedAt:      now,
			}

			err := s.repo.Create(ctx, rem)
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrDuplicate):
				// Ya generado en una pasada anterior: es éxito.
			default:
				s.log.Error("insert reminder failed", map[string]any{
					"user_id":      userID,
					"medicine":     sch.MedicineName,
					"scheduled_at": t,
					"err":          err.Error(),
				})
				errs = append(errs, err)
			}
		}
	}

	if created > 0 {
		s.log.Info("reminders generated", map[string]any{
			"user_id": userID,
			"count":   created,
		})
	}

	return errors.Join(errs...)
}

// MarkTaken registra que el paciente tomó la dosis: borra el reminder y
// dispara el hook de próxima toma. Una segunda acción concurrente sobre
// el mismo ID falla rápido con ErrActionInFlight; la guardia se libera
// pase lo que pase, así el usuario puede reintentar a mano.
func (s *Service) MarkTaken(ctx context.Context, userID, reminderID string) error {
	return s.resolve(ctx, userID, reminderID, true)
}

// MarkMissed registra que la dosis se salteó: borra el reminder sin hook.
func (s *Service) MarkMissed(ctx context.Context, userID, reminderID string) error {
	return s.resolve(ctx, userID, reminderID, false)
}

func (s *Service) resolve(ctx context.Context, userID, reminderID string, taken bool) error {
	userID = strings.TrimSpace(userID)
	reminderID = strings.TrimSpace(reminderID)
	if userID == "" || reminderID == "" {
		return ErrInvalidInput
	}

	if !s.acquire(reminderID) {
		return ErrActionInFlight
	}
	defer s.release(reminderID)

	rem, err := s.repo.GetByID(ctx, reminderID)
	if err != nil {
		return ErrNotFound
	}
	if rem.UserID != userID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, reminderID); err != nil {
		s.log.Error("delete reminder failed", map[string]any{
			"reminder_id": reminderID,
			"taken":       taken,
			"err":         err.Error(),
		})
		return err
	}

	if taken {
		if err := s.nextReminder(ctx, userID, rem.PrescriptionID, rem.MedicineName); err != nil {
			// El borrado ya está hecho; el hook no lo deshace.
			s.log.Warn("next reminder hook failed", map[string]any{
				"reminder_id": reminderID,
				"err":         err.Error(),
			})
			return err
		}
	}

	return nil
}

func (s *Service) acquire(reminderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[reminderID]; busy {
		return false
	}
	s.inFlight[reminderID] = struct{}{}
	return true
}

func (s *Service) release(reminderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, reminderID)
}

// dayBounds devuelve [inicio de hoy, inicio de mañana) en el huso de now.
func dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
