package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"medication-reminders/internal/domain/prescriptions"
	"medication-reminders/internal/domain/schedules"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testReminderRepo struct {
	byID  map[string]Reminder
	byKey map[Key]string

	// failMedicine hace fallar los inserts de ese medicamento, para
	// probar la política best-effort del generador.
	failMedicine string
}

func newTestReminderRepo() *testReminderRepo {
	return &testReminderRepo{
		byID:  map[string]Reminder{},
		byKey: map[Key]string{},
	}
}

func (r *testReminderRepo) Create(ctx context.Context, rem Reminder) error {
	if rem.ID == "" {
		return errors.New("repo: id required")
	}
	if r.failMedicine != "" && rem.MedicineName == r.failMedicine {
		return errors.New("repo: induced failure")
	}
	if _, ok := r.byKey[rem.Key()]; ok {
		return ErrDuplicate
	}
	r.byID[rem.ID] = rem
	r.byKey[rem.Key()] = rem.ID
	return nil
}

func (r *testReminderRepo) GetByID(ctx context.Context, id string) (Reminder, error) {
	rem, ok := r.byID[id]
	if !ok {
		return Reminder{}, errRepoNotFound
	}
	return rem, nil
}

func (r *testReminderRepo) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Reminder, error) {
	out := make([]Reminder, 0)
	for _, rem := range r.byID {
		if rem.UserID != userID {
			continue
		}
		if rem.ScheduledAt.Before(from) || !rem.ScheduledAt.Before(to) {
			continue
		}
		out = append(out, rem)
	}
	// Orden ascendente por inserción simple (los tests lo reordenan si importa)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ScheduledAt.Before(out[i].ScheduledAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *testReminderRepo) Delete(ctx context.Context, id string) error {
	rem, ok := r.byID[id]
	if !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	delete(r.byKey, rem.Key())
	return nil
}

type testScheduleRepo struct {
	items []schedules.Schedule
}

func (r *testScheduleRepo) Create(ctx context.Context, s schedules.Schedule) error { return nil }
func (r *testScheduleRepo) Update(ctx context.Context, s schedules.Schedule) error { return nil }
func (r *testScheduleRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	return schedules.Schedule{}, errRepoNotFound
}
func (r *testScheduleRepo) GetByKey(ctx context.Context, userID, prescriptionID, medicineName string) (schedules.Schedule, error) {
	return schedules.Schedule{}, errRepoNotFound
}
func (r *testScheduleRepo) ListByUser(ctx context.Context, userID string) ([]schedules.Schedule, error) {
	return r.items, nil
}
func (r *testScheduleRepo) ListActiveByUser(ctx context.Context, userID string) ([]schedules.Schedule, error) {
	out := make([]schedules.Schedule, 0)
	for _, s := range r.items {
		if s.UserID == userID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

type testPrescriptionRepo struct {
	byID map[string]prescriptions.Prescription
}

func (r *testPrescriptionRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	return nil
}
func (r *testPrescriptionRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	p, ok := r.byID[id]
	if !ok {
		return prescriptions.Prescription{}, errRepoNotFound
	}
	return p, nil
}
func (r *testPrescriptionRepo) ListByUser(ctx context.Context, userID string) ([]prescriptions.Prescription, error) {
	return nil, nil
}

// -------------------------
// Helpers
// -------------------------

func newTestService(remRepo *testReminderRepo, schRepo *testScheduleRepo, prescRepo *testPrescriptionRepo, now time.Time) *Service {
	if prescRepo == nil {
		prescRepo = &testPrescriptionRepo{byID: map[string]prescriptions.Prescription{}}
	}
	svc := NewService(
		remRepo,
		schedules.NewService(schRepo),
		prescriptions.NewService(prescRepo),
		nil,
	)
	svc.now = func() time.Time { return now }
	return svc
}

func activeSchedule(user, presc, medicine, start string, freq schedules.Frequency, n, h int) schedules.Schedule {
	return schedules.Schedule{
		ID:             "sch-" + medicine,
		UserID:         user,
		PrescriptionID: presc,
		MedicineName:   medicine,
		Frequency:      freq,
		StartTime:      start,
		TimesPerDay:    n,
		IntervalHours:  h,
		IsActive:       true,
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_EnsureTodayGenerated_FutureSameDayOnly(t *testing.T) {
	now := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	schRepo := &testScheduleRepo{items: []schedules.Schedule{
		// 08:00, 14:00, 20:00, 02:00(+1d): pasada, futura, futura, otro día
		activeSchedule("user-1", "presc-1", "Ibuprofen", "08:00", schedules.FreqEvery6Hours, 4, 6),
	}}
	svc := newTestService(remRepo, schRepo, nil, now)

	if err := svc.EnsureTodayGenerated(context.Background(), "user-1"); err != nil {
		t.Fatalf("EnsureTodayGenerated returned error: %v", err)
	}

	items, err := svc.ListToday(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListToday returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 reminders (future, same day), got %d", len(items))
	}

	want14 := time.Date(2025, 12, 22, 14, 0, 0, 0, time.UTC)
	want20 := time.Date(2025, 12, 22, 20, 0, 0, 0, time.UTC)
	if !items[0].ScheduledAt.Equal(want14) || !items[1].ScheduledAt.Equal(want20) {
		t.Fatalf("expected [14:00, 20:00] ascending, got [%v, %v]", items[0].ScheduledAt, items[1].ScheduledAt)
	}

	for _, rem := range items {
		if rem.IsTaken {
			t.Fatalf("generated reminder must not be taken")
		}
		if rem.Frequency != schedules.FreqEvery6Hours {
			t.Fatalf("frequency should be copied from schedule, got %s", rem.Frequency)
		}
	}
}

func TestService_EnsureTodayGenerated_Idempotent(t *testing.T) {
	now := time.Date(2025, 12, 22, 7, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	schRepo := &testScheduleRepo{items: []schedules.Schedule{
		activeSchedule("user-1", "presc-1", "Amoxicillin", "08:00", schedules.FreqThreeTimesDaily, 3, 8),
	}}
	svc := newTestService(remRepo, schRepo, nil, now)

	if err := svc.EnsureTodayGenerated(context.Background(), "user-1"); err != nil {
		t.Fatalf("first generation error: %v", err)
	}
	first, _ := svc.ListToday(context.Background(), "user-1")

	// Segunda pasada inmediata: mismas claves, cero duplicados, cero error.
	if err := svc.EnsureTodayGenerated(context.Background(), "user-1"); err != nil {
		t.Fatalf("second generation error: %v", err)
	}
	second, _ := svc.ListToday(context.Background(), "user-1")

	// 08:00 y 16:00 de hoy; la de 00:00(+1d) no se materializa en esta pasada.
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 reminders after each pass, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("second pass must not replace existing reminders")
		}
	}
}

func TestService_EnsureTodayGenerated_SkipsInactive(t *testing.T) {
	now := time.Date(2025, 12, 22, 6, 0, 0, 0, time.UTC)

	inactive := activeSchedule("user-1", "presc-1", "Paracetamol", "08:00", schedules.FreqTwiceDaily, 2, 12)
	inactive.IsActive = false

	remRepo := newTestReminderRepo()
	schRepo := &testScheduleRepo{items: []schedules.Schedule{inactive}}
	svc := newTestService(remRepo, schRepo, nil, now)

	if err := svc.EnsureTodayGenerated(context.Background(), "user-1"); err != nil {
		t.Fatalf("EnsureTodayGenerated returned error: %v", err)
	}
	if len(remRepo.byID) != 0 {
		t.Fatalf("inactive schedule must not generate, got %d reminders", len(remRepo.byID))
	}
}

func TestService_EnsureTodayGenerated_NoIdentity_NoOp(t *testing.T) {
	remRepo := newTestReminderRepo()
	schRepo := &testScheduleRepo{items: []schedules.Schedule{
		activeSchedule("user-1", "presc-1", "Amoxicillin", "08:00", schedules.FreqOnceDaily, 1, 24),
	}}
	svc := newTestService(remRepo, schRepo, nil, time.Date(2025, 12, 22, 6, 0, 0, 0, time.UTC))

	if err := svc.EnsureTodayGenerated(context.Background(), "  "); err != nil {
		t.Fatalf("expected nil for missing identity, got %v", err)
	}
	if len(remRepo.byID) != 0 {
		t.Fatalf("no identity: nothing should be generated")
	}

	items, err := svc.ListToday(context.Background(), "")
	if err != nil {
		t.Fatalf("ListToday without identity must not error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("ListToday without identity must be empty")
	}
}

func TestService_EnsureTodayGenerated_BestEffort(t *testing.T) {
	now := time.Date(2025, 12, 22, 6, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	remRepo.failMedicine = "Ibuprofen"
	schRepo := &testScheduleRepo{items: []schedules.Schedule{
		activeSchedule("user-1", "presc-1", "Ibuprofen", "08:00", schedules.FreqOnceDaily, 1, 24),
		activeSchedule("user-1", "presc-1", "Amoxicillin", "09:00", schedules.FreqOnceDaily, 1, 24),
	}}
	svc := newTestService(remRepo, schRepo, nil, now)

	err := svc.EnsureTodayGenerated(context.Background(), "user-1")
	if err == nil {
		t.Fatalf("expected joined error from failing schedule")
	}

	// El schedule sano se generó igual.
	items, _ := svc.ListToday(context.Background(), "user-1")
	if len(items) != 1 || items[0].MedicineName != "Amoxicillin" {
		t.Fatalf("healthy schedule should still generate, got %#v", items)
	}
}

func TestService_ListToday_ResolvesPrescriptionName(t *testing.T) {
	now := time.Date(2025, 12, 22, 6, 0, 0, 0, time.UTC)

	prescRepo := &testPrescriptionRepo{byID: map[string]prescriptions.Prescription{
		"presc-1": {ID: "presc-1", UserID: "user-1", Name: "Dr. Soto - Post Op"},
	}}
	remRepo := newTestReminderRepo()
	svc := newTestService(remRepo, &testScheduleRepo{}, prescRepo, now)

	seed := []Reminder{
		{ID: "r1", UserID: "user-1", PrescriptionID: "presc-1", MedicineName: "Amoxicillin",
			ScheduledAt: time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC)},
		{ID: "r2", UserID: "user-1", PrescriptionID: "presc-gone", MedicineName: "Ibuprofen",
			ScheduledAt: time.Date(2025, 12, 22, 9, 0, 0, 0, time.UTC)},
	}
	for _, rem := range seed {
		if err := remRepo.Create(context.Background(), rem); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, err := svc.ListToday(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListToday error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(items))
	}
	if items[0].PrescriptionName != "Dr. Soto - Post Op" {
		t.Fatalf("expected resolved name, got %q", items[0].PrescriptionName)
	}
	if items[1].PrescriptionName != prescriptions.PlaceholderName {
		t.Fatalf("expected placeholder for missing prescription, got %q", items[1].PrescriptionName)
	}
}

func TestService_MarkTaken_DeletesAndRunsHook(t *testing.T) {
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	svc := newTestService(remRepo, &testScheduleRepo{}, nil, now)

	rem := Reminder{ID: "r1", UserID: "user-1", PrescriptionID: "presc-1", MedicineName: "Amoxicillin",
		ScheduledAt: time.Date(2025, 12, 22, 9, 30, 0, 0, time.UTC)}
	if err := remRepo.Create(context.Background(), rem); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var hookPresc, hookMed string
	hookCalls := 0
	svc.SetNextReminderHook(func(ctx context.Context, userID, prescriptionID, medicineName string) error {
		hookCalls++
		hookPresc = prescriptionID
		hookMed = medicineName
		return nil
	})

	if err := svc.MarkTaken(context.Background(), "user-1", "r1"); err != nil {
		t.Fatalf("MarkTaken error: %v", err)
	}

	if hookCalls != 1 || hookPresc != "presc-1" || hookMed != "Amoxicillin" {
		t.Fatalf("hook should receive (prescription, medicine): calls=%d presc=%q med=%q",
			hookCalls, hookPresc, hookMed)
	}

	items, _ := svc.ListToday(context.Background(), "user-1")
	if len(items) != 0 {
		t.Fatalf("taken reminder must disappear from today's list")
	}
}

func TestService_MarkMissed_DeletesWithoutHook(t *testing.T) {
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	svc := newTestService(remRepo, &testScheduleRepo{}, nil, now)

	rem := Reminder{ID: "r1", UserID: "user-1", PrescriptionID: "presc-1", MedicineName: "Amoxicillin",
		ScheduledAt: time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC)}
	if err := remRepo.Create(context.Background(), rem); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc.SetNextReminderHook(func(ctx context.Context, userID, prescriptionID, medicineName string) error {
		t.Fatalf("missed must not run the next-reminder hook")
		return nil
	})

	if err := svc.MarkMissed(context.Background(), "user-1", "r1"); err != nil {
		t.Fatalf("MarkMissed error: %v", err)
	}

	items, _ := svc.ListToday(context.Background(), "user-1")
	if len(items) != 0 {
		t.Fatalf("missed reminder must disappear from today's list")
	}
}

func TestService_Resolve_OwnershipAndNotFound(t *testing.T) {
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	svc := newTestService(remRepo, &testScheduleRepo{}, nil, now)

	rem := Reminder{ID: "r1", UserID: "user-1", PrescriptionID: "presc-1", MedicineName: "Amoxicillin",
		ScheduledAt: time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC)}
	_ = remRepo.Create(context.Background(), rem)

	if err := svc.MarkTaken(context.Background(), "user-2", "r1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign reminder, got %v", err)
	}
	if err := svc.MarkTaken(context.Background(), "user-1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Resolve_InFlightGuard(t *testing.T) {
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	remRepo := newTestReminderRepo()
	svc := newTestService(remRepo, &testScheduleRepo{}, nil, now)

	rem := Reminder{ID: "r1", UserID: "user-1", PrescriptionID: "presc-1", MedicineName: "Amoxicillin",
		ScheduledAt: time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC)}
	_ = remRepo.Create(context.Background(), rem)

	hookEntered := make(chan struct{})
	hookRelease := make(chan struct{})
	svc.SetNextReminderHook(func(ctx context.Context, userID, prescriptionID, medicineName string) error {
		close(hookEntered)
		<-hookRelease
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- svc.MarkTaken(context.Background(), "user-1", "r1")
	}()

	<-hookEntered

	// Con la primera acción en vuelo, la segunda sobre el mismo ID rebota.
	if err := svc.MarkMissed(context.Background(), "user-1", "r1"); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("expected ErrActionInFlight, got %v", err)
	}

	close(hookRelease)
	if err := <-done; err != nil {
		t.Fatalf("in-flight MarkTaken error: %v", err)
	}

	// La guardia se libera al terminar: una nueva acción corre (y da
	// not found porque el reminder ya no existe).
	if err := svc.MarkMissed(context.Background(), "user-1", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after release, got %v", err)
	}
}
