package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"medication-reminders/internal/domain/prescriptions"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/schedules"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

// Create inserta un reminder. El unique de la tabla sobre
// (user_id, prescription_id, medicine_name, scheduled_time) es el único
// mecanismo contra generación concurrente: la colisión se reporta como
// reminders.ErrDuplicate y el generador la trata como éxito.
func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_reminders (
			id, user_id, prescription_id,
			medicine_name, scheduled_time,
			is_taken, taken_at,
			frequency, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (user_id, prescription_id, medicine_name, scheduled_time) DO NOTHING
	`,
		rem.ID,
		rem.UserID,
		rem.PrescriptionID,
		rem.MedicineName,
		rem.ScheduledAt,
		rem.IsTaken,
		toNullTime(rem.TakenAt),
		string(rem.Frequency),
		rem.CreatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrDuplicate
	}
	return nil
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			m.id, m.user_id, m.prescription_id,
			COALESCE(p.name, '`+prescriptions.PlaceholderName+`'),
			m.medicine_name, m.scheduled_time,
			m.is_taken, m.taken_at,
			m.frequency, m.created_at
		FROM medication_reminders m
		LEFT JOIN prescriptions p ON p.id = m.prescription_id
		WHERE m.id = $1
	`, id)

	rem, err := scanReminder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return reminders.Reminder{}, ErrNotFound
		}
		return reminders.Reminder{}, err
	}
	return rem, nil
}

// ListRange lee el rango semiabierto [from, to) del usuario, ascendente
// por hora agendada, resolviendo el nombre de la receta en el join
// (placeholder fijo si la receta no existe).
func (r *RemindersRepo) ListRange(ctx context.Context, userID string, from, to time.Time) ([]reminders.Reminder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			m.id, m.user_id, m.prescription_id,
			COALESCE(p.name, '`+prescriptions.PlaceholderName+`'),
			m.medicine_name, m.scheduled_time,
			m.is_taken, m.taken_at,
			m.frequency, m.created_at
		FROM medication_reminders m
		LEFT JOIN prescriptions p ON p.id = m.prescription_id
		WHERE m.user_id = $1
		  AND m.scheduled_time >= $2
		  AND m.scheduled_time < $3
		ORDER BY m.scheduled_time ASC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}

	return out, rows.Err()
}

func (r *RemindersRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medication_reminders
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReminder(row rowScanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	var freq string
	var takenAt sql.NullTime

	if err := row.Scan(
		&rem.ID,
		&rem.UserID,
		&rem.PrescriptionID,
		&rem.PrescriptionName,
		&rem.MedicineName,
		&rem.ScheduledAt,
		&rem.IsTaken,
		&takenAt,
		&freq,
		&rem.CreatedAt,
	); err != nil {
		return reminders.Reminder{}, err
	}

	rem.Frequency = schedules.Frequency(freq)
	if takenAt.Valid {
		t := takenAt.Time
		rem.TakenAt = &t
	}
	return rem, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
