package reminders

import (
	"testing"
	"time"

	"medication-reminders/internal/domain/schedules"
)

func mkSchedule(freq schedules.Frequency, start string, n, h int, active bool) schedules.Schedule {
	return schedules.Schedule{
		ID:             "sch-1",
		UserID:         "user-1",
		PrescriptionID: "presc-1",
		MedicineName:   "Amoxicillin",
		Frequency:      freq,
		StartTime:      start,
		TimesPerDay:    n,
		IntervalHours:  h,
		IsActive:       active,
	}
}

func TestIntakeTimes_ThreeTimesDaily_RollsPastMidnight(t *testing.T) {
	day := time.Date(2025, 12, 22, 7, 0, 0, 0, time.UTC)

	got, err := IntakeTimes(day, mkSchedule(schedules.FreqThreeTimesDaily, "08:00", 3, 8, true))
	if err != nil {
		t.Fatalf("IntakeTimes returned error: %v", err)
	}

	want := []time.Time{
		time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 22, 16, 0, 0, 0, time.UTC),
		// 16:00 + 8h cruza medianoche: cae en la fecha siguiente
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d times, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("time[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestIntakeTimes_Custom(t *testing.T) {
	day := time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)

	got, err := IntakeTimes(day, mkSchedule(schedules.FreqCustom, "09:00", 2, 5, true))
	if err != nil {
		t.Fatalf("IntakeTimes returned error: %v", err)
	}

	want := []time.Time{
		time.Date(2025, 12, 22, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 22, 14, 0, 0, 0, time.UTC),
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 times, got %d", len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("time[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestIntakeTimes_CountSpacingAndOrder(t *testing.T) {
	day := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	cases := []struct {
		freq schedules.Frequency
		n, h int
	}{
		{schedules.FreqOnceDaily, 1, 24},
		{schedules.FreqTwiceDaily, 2, 12},
		{schedules.FreqThreeTimesDaily, 3, 8},
		{schedules.FreqEvery6Hours, 4, 6},
		{schedules.FreqCustom, 5, 3},
	}

	for _, tc := range cases {
		got, err := IntakeTimes(day, mkSchedule(tc.freq, "06:15", tc.n, tc.h, true))
		if err != nil {
			t.Fatalf("%s: error: %v", tc.freq, err)
		}
		if len(got) != tc.n {
			t.Fatalf("%s: expected %d times, got %d", tc.freq, tc.n, len(got))
		}
		for i := 1; i < len(got); i++ {
			if !got[i].After(got[i-1]) {
				t.Fatalf("%s: times not strictly increasing at %d", tc.freq, i)
			}
			if got[i].Sub(got[i-1]) != time.Duration(tc.h)*time.Hour {
				t.Fatalf("%s: expected %dh spacing, got %v", tc.freq, tc.h, got[i].Sub(got[i-1]))
			}
		}
	}
}

func TestIntakeTimes_InactiveAndZeroCount(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := IntakeTimes(day, mkSchedule(schedules.FreqOnceDaily, "08:00", 1, 24, false))
	if err != nil {
		t.Fatalf("inactive: unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("inactive schedule: expected no times, got %d", len(got))
	}

	got, err = IntakeTimes(day, mkSchedule(schedules.FreqCustom, "08:00", 0, 4, true))
	if err != nil {
		t.Fatalf("zero count: unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("times_per_day=0: expected no times, got %d", len(got))
	}
}

func TestIntakeTimes_BadStartTime(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := IntakeTimes(day, mkSchedule(schedules.FreqOnceDaily, "ocho", 1, 24, true)); err == nil {
		t.Fatalf("expected error for unparseable start_time")
	}
	if _, err := IntakeTimes(day, mkSchedule(schedules.FreqOnceDaily, "25:00", 1, 24, true)); err == nil {
		t.Fatalf("expected error for out-of-range start_time")
	}
}

func TestSameDay(t *testing.T) {
	day := time.Date(2025, 12, 22, 23, 0, 0, 0, time.UTC)

	if !SameDay(time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC), day) {
		t.Fatalf("midnight of same date should be same day")
	}
	if SameDay(time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC), day) {
		t.Fatalf("next midnight should not be same day")
	}
}
