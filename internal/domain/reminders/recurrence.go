package reminders

import (
	"time"

	"medication-reminders/internal/domain/schedules"
)

// IntakeTimes calcula las tomas de un schedule para el día de `day`:
// la toma i es day@start_time + i*interval_hours, para i = 0..n-1.
//
// Función pura de (day, schedule). No normaliza al cruzar medianoche:
// una toma calculada pasadas las 24:00 cae en la fecha siguiente por
// aritmética de reloj común.
//
// Un schedule inactivo devuelve vacío sin mirar el resto de los campos
// (acá se concentra ese chequeo; los llamadores no lo repiten).
func IntakeTimes(day time.Time, sch schedules.Schedule) ([]time.Time, error) {
	if !sch.IsActive {
		return nil, nil
	}
	if sch.TimesPerDay <= 0 {
		return nil, nil
	}

	hour, minute, err := sch.StartClock()
	if err != nil {
		return nil, err
	}

	first := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())

	out := make([]time.Time, 0, sch.TimesPerDay)
	for i := 0; i < sch.TimesPerDay; i++ {
		out = append(out, first.Add(time.Duration(i*sch.IntervalHours)*time.Hour))
	}
	return out, nil
}

// SameDay responde si t cae en la misma fecha calendario que day.
// La generación solo materializa tomas de "hoy": las que el cálculo
// empujó al día siguiente no se crean en esta pasada.
func SameDay(t, day time.Time) bool {
	ty, tm, td := t.Date()
	dy, dm, dd := day.Date()
	return ty == dy && tm == dm && td == dd
}
