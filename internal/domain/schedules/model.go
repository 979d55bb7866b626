package schedules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency define los patrones de recurrencia soportados.
// Cada preset fija su par (times_per_day, interval_hours);
// custom lleva los valores que el usuario cargó a mano.
// @Enum once_daily, twice_daily, three_times_daily, every_6_hours, every_8_hours, every_12_hours, custom
type Frequency string

const (
	FreqOnceDaily       Frequency = "once_daily"
	FreqTwiceDaily      Frequency = "twice_daily"
	FreqThreeTimesDaily Frequency = "three_times_daily"
	FreqEvery6Hours     Frequency = "every_6_hours"
	FreqEvery8Hours     Frequency = "every_8_hours"
	FreqEvery12Hours    Frequency = "every_12_hours"
	FreqCustom          Frequency = "custom"
)

// Preset devuelve el par (timesPerDay, intervalHours) de un preset.
// Para custom (o un valor desconocido) devuelve ok=false: ahí mandan
// los enteros que vienen en el schedule.
func (f Frequency) Preset() (timesPerDay, intervalHours int, ok bool) {
	switch f {
	case FreqOnceDaily:
		return 1, 24, true
	case FreqTwiceDaily:
		return 2, 12, true
	case FreqThreeTimesDaily:
		return 3, 8, true
	case FreqEvery6Hours:
		return 4, 6, true
	case FreqEvery8Hours:
		return 3, 8, true
	case FreqEvery12Hours:
		return 2, 12, true
	default:
		return 0, 0, false
	}
}

func (f Frequency) Valid() bool {
	if f == FreqCustom {
		return true
	}
	_, _, ok := f.Preset()
	return ok
}

// Schedule es la regla de tomas recurrentes de un medicamento dentro de
// una receta. Se identifica lógicamente por (user, prescription, medicine):
// re-guardar sobreescribe en vez de duplicar.
type Schedule struct {
	ID             string
	UserID         string
	PrescriptionID string

	MedicineName string
	Dosage       string // "500mg", "10ml" — texto libre

	Frequency     Frequency
	StartTime     string // "HH:MM", primera toma del día
	TimesPerDay   int
	IntervalHours int

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartClock parsea StartTime ("HH:MM") a hora y minuto.
func (s Schedule) StartClock() (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s.StartTime), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("start_time must be HH:MM, got %q", s.StartTime)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("start_time must be HH:MM, got %q", s.StartTime)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("start_time must be HH:MM, got %q", s.StartTime)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("start_time out of range: %q", s.StartTime)
	}
	return hour, minute, nil
}
