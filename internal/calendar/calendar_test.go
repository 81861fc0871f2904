package calendar

import (
	"testing"
	"time"

	"github.com/Gt-kt/dealertire-Autoworld/internal/config"
	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCalendar(t *testing.T) *Calendar {
	t.Helper()

	cal, err := Parse(config.DefaultConfig().Calendar.Holidays)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cal
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cal := mustCalendar(t)
	tests := []struct {
		name string
		date time.Time
		want model.DayType
	}{
		{"plain wednesday", day(2025, 10, 15), model.Weekday},
		{"saturday", day(2025, 10, 18), model.Weekend},
		{"sunday", day(2025, 10, 19), model.Weekend},
		{"holiday on friday", day(2025, 10, 3), model.Weekend},
		{"holiday on monday", day(2025, 10, 6), model.Weekend},
		{"new year", day(2025, 1, 1), model.Weekend},
	}
	for _, tt := range tests {
		if got := cal.Classify(tt.date); got != tt.want {
			t.Fatalf("%s: Classify(%s)=%s, want %s", tt.name, tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestParseRejectsBadDate(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]string{"2025-13-40"}); err == nil {
		t.Fatalf("expected error for invalid holiday")
	}
	cal, err := Parse([]string{"", " 2025-05-05 "})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cal.HolidayCount() != 1 {
		t.Fatalf("HolidayCount=%d, want 1", cal.HolidayCount())
	}
}

func TestRemainingDayCounts_October2025(t *testing.T) {
	t.Parallel()

	cal := mustCalendar(t)

	wd, we := cal.RemainingDayCounts(day(2025, 10, 15))
	if wd != 12 || we != 4 {
		t.Fatalf("from 10-15: weekdays=%d weekends=%d, want 12/4", wd, we)
	}

	// 10-03、10-06~10-09 为节假日
	wd, we = cal.RemainingDayCounts(day(2025, 10, 1))
	if wd != 17 || we != 13 {
		t.Fatalf("from 10-01: weekdays=%d weekends=%d, want 17/13", wd, we)
	}

	wd, we = cal.RemainingDayCounts(day(2025, 10, 31))
	if wd != 0 || we != 0 {
		t.Fatalf("month end: weekdays=%d weekends=%d, want 0/0", wd, we)
	}
}

func TestRemainingDayCounts_PartitionsRestOfMonth(t *testing.T) {
	t.Parallel()

	cal := mustCalendar(t)
	for m := time.January; m <= time.December; m++ {
		last := DaysInMonth(2025, m)
		for d := 1; d <= last; d++ {
			wd, we := cal.RemainingDayCounts(day(2025, m, d))
			if wd+we != last-d {
				t.Fatalf("2025-%02d-%02d: %d+%d != %d", m, d, wd, we, last-d)
			}
		}
	}
}

func TestNewMonthContext(t *testing.T) {
	t.Parallel()

	cal := mustCalendar(t)
	records := []model.Record{
		{OrderDate: day(2025, 10, 2)},
		{OrderDate: day(2025, 10, 15)},
		{OrderDate: day(2025, 10, 10)},
	}

	mc := cal.NewMonthContext(records, day(2026, 1, 1))
	if mc.Year != 2025 || mc.Month != 10 || mc.LastObservedDay != 15 {
		t.Fatalf("unexpected month context: %+v", mc)
	}
	if mc.DaysInMonth != 31 {
		t.Fatalf("DaysInMonth=%d, want 31", mc.DaysInMonth)
	}
	if mc.RemainingWeekdays != 12 || mc.RemainingWeekends != 4 {
		t.Fatalf("remaining=%d/%d, want 12/4", mc.RemainingWeekdays, mc.RemainingWeekends)
	}
	if mc.Remaining(model.Weekend) != 4 {
		t.Fatalf("Remaining(Weekend)=%d, want 4", mc.Remaining(model.Weekend))
	}
}

func TestNewMonthContext_Empty(t *testing.T) {
	t.Parallel()

	cal := mustCalendar(t)
	now := time.Date(2025, 2, 10, 15, 4, 5, 0, time.UTC)

	mc := cal.NewMonthContext(nil, now)
	if mc.RemainingWeekdays != 0 || mc.RemainingWeekends != 0 {
		t.Fatalf("empty dataset should have no remaining days: %+v", mc)
	}
	if !mc.LatestDate.Equal(day(2025, 2, 10)) {
		t.Fatalf("LatestDate=%v, want 2025-02-10", mc.LatestDate)
	}
	if mc.DaysInMonth != 28 {
		t.Fatalf("DaysInMonth=%d, want 28", mc.DaysInMonth)
	}
}
