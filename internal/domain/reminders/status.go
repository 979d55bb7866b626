package reminders

import (
	"math"
	"time"
)

// Status clasifica la urgencia de un reminder respecto de "ahora".
// Es una vista: se recalcula en cada lectura, nunca se persiste.
// @Enum upcoming, due, overdue, missed
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusDue      Status = "due"
	StatusOverdue  Status = "overdue"
	StatusMissed   Status = "missed"
)

// Classify mapea (now, scheduledAt) a un Status sobre
// delta = floor(minutos entre now y scheduledAt):
//
//	delta < 0        => upcoming
//	0 <= delta <= 30 => due
//	30 < delta <= 60 => overdue
//	delta > 60       => missed
//
// Función pura y total. El floor importa en los bordes negativos:
// 30 segundos antes de la toma sigue siendo upcoming, no due.
func Classify(now, scheduledAt time.Time) Status {
	delta := int(math.Floor(now.Sub(scheduledAt).Minutes()))

	switch {
	case delta < 0:
		return StatusUpcoming
	case delta <= 30:
		return StatusDue
	case delta <= 60:
		return StatusOverdue
	default:
		return StatusMissed
	}
}
