package reminders

import (
	"time"

	"medication-reminders/internal/domain/schedules"
)

// Reminder es una ocurrencia concreta y fechada de una toma, generada
// a partir de un schedule para el día de hoy.
//
// Identidad lógica: (user, prescription, medicine, scheduled_at). Esa
// tupla es la clave de deduplicación de la generación: el store nunca
// guarda dos reminders con la misma.
//
// Ciclo de vida: el reminder se BORRA cuando el paciente registra un
// desenlace (tomado o salteado), no se marca. IsTaken/TakenAt quedan en
// el modelo para un futuro historial de adherencia, pero hoy todo
// reminder visible tiene IsTaken=false (decisión heredada del producto:
// la consulta de "hoy" no arrastra filas terminadas).
type Reminder struct {
	ID     string
	UserID string

	PrescriptionID string
	// PrescriptionName se resuelve al leer, contra la receta; si la
	// receta no existe se usa el placeholder fijo.
	PrescriptionName string

	MedicineName string

	ScheduledAt time.Time

	IsTaken bool
	TakenAt *time.Time

	// Frequency se copia del schedule al generar, para mostrar sin join.
	Frequency schedules.Frequency

	CreatedAt time.Time
}

// Key es la identidad lógica de un reminder, usable como clave de mapa.
// ScheduledUnix va en epoch para que dos time.Time equivalentes (con o
// sin reloj monotónico) produzcan la misma clave.
type Key struct {
	UserID         string
	PrescriptionID string
	MedicineName   string
	ScheduledUnix  int64
}

func (r Reminder) Key() Key {
	return Key{
		UserID:         r.UserID,
		PrescriptionID: r.PrescriptionID,
		MedicineName:   r.MedicineName,
		ScheduledUnix:  r.ScheduledAt.Unix(),
	}
}
