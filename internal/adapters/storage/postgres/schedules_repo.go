package postgres

import (
	"context"
	"database/sql"
	"strings"

	"medication-reminders/internal/domain/schedules"
)

type SchedulesRepo struct {
	db *sql.DB
}

func NewSchedulesRepo(db *sql.DB) *SchedulesRepo {
	return &SchedulesRepo{db: db}
}

// Create inserta un schedule. La tabla tiene unique sobre
// (user_id, prescription_id, medicine_name); si dos sesiones guardan el
// mismo plan a la vez, la segunda pisa los campos del primero (upsert)
// en vez de fallar. El service ya deduplica antes, esto cubre la carrera.
func (r *SchedulesRepo) Create(ctx context.Context, s schedules.Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_schedules (
			id, user_id, prescription_id,
			medicine_name, dosage,
			frequency, start_time, times_per_day, interval_hours,
			is_active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (user_id, prescription_id, medicine_name) DO UPDATE SET
			dosage = EXCLUDED.dosage,
			frequency = EXCLUDED.frequency,
			start_time = EXCLUDED.start_time,
			times_per_day = EXCLUDED.times_per_day,
			interval_hours = EXCLUDED.interval_hours,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`,
		s.ID,
		s.UserID,
		s.PrescriptionID,
		s.MedicineName,
		s.Dosage,
		string(s.Frequency),
		s.StartTime,
		s.TimesPerDay,
		s.IntervalHours,
		s.IsActive,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *SchedulesRepo) Update(ctx context.Context, s schedules.Schedule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medication_schedules
		SET
			dosage = $2,
			frequency = $3,
			start_time = $4,
			times_per_day = $5,
			interval_hours = $6,
			is_active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		s.ID,
		s.Dosage,
		string(s.Frequency),
		s.StartTime,
		s.TimesPerDay,
		s.IntervalHours,
		s.IsActive,
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SchedulesRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedules.Schedule{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectSchedule+` WHERE id = $1`, id)
	return scanSchedule(row)
}

func (r *SchedulesRepo) GetByKey(ctx context.Context, userID, prescriptionID, medicineName string) (schedules.Schedule, error) {
	row := r.db.QueryRowContext(ctx, selectSchedule+`
		WHERE user_id = $1 AND prescription_id = $2 AND medicine_name = $3
	`, userID, prescriptionID, medicineName)
	return scanSchedule(row)
}

func (r *SchedulesRepo) ListByUser(ctx context.Context, userID string) ([]schedules.Schedule, error) {
	return r.list(ctx, userID, false)
}

func (r *SchedulesRepo) ListActiveByUser(ctx context.Context, userID string) ([]schedules.Schedule, error) {
	return r.list(ctx, userID, true)
}

const selectSchedule = `
	SELECT
		id, user_id, prescription_id,
		medicine_name, dosage,
		frequency, start_time, times_per_day, interval_hours,
		is_active,
		created_at, updated_at
	FROM medication_schedules
`

func (r *SchedulesRepo) list(ctx context.Context, userID string, onlyActive bool) ([]schedules.Schedule, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	q := selectSchedule + ` WHERE user_id = $1`
	if onlyActive {
		q += ` AND is_active = TRUE`
	}
	q += ` ORDER BY created_at ASC, medicine_name ASC`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]schedules.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (schedules.Schedule, error) {
	var s schedules.Schedule
	var freq string

	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PrescriptionID,
		&s.MedicineName,
		&s.Dosage,
		&freq,
		&s.StartTime,
		&s.TimesPerDay,
		&s.IntervalHours,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return schedules.Schedule{}, ErrNotFound
		}
		return schedules.Schedule{}, err
	}

	s.Frequency = schedules.Frequency(freq)
	return s, nil
}
