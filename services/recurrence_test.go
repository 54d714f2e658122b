package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

func TestParseSchedule_Valid(t *testing.T) {
	sched, err := ParseSchedule(models.RecurrenceDaily, `{"type":"daily","time":"07:30"}`)
	require.NoError(t, err)
	assert.Equal(t, 7, sched.Hour)
	assert.Equal(t, 30, sched.Minute)

	sched, err = ParseSchedule(models.RecurrenceWeekly, `{"type":"weekly","day":"Monday","time":"08:00"}`)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, sched.Weekday)

	sched, err = ParseSchedule(models.RecurrenceMonthly, `{"type":"monthly","day":15,"time":"09:00"}`)
	require.NoError(t, err)
	assert.Equal(t, 15, sched.DayOfMonth)
}

func TestParseSchedule_OneOffNeedsNoSchedule(t *testing.T) {
	sched, err := ParseSchedule(models.RecurrenceOneOff, "")
	require.NoError(t, err)
	assert.Nil(t, sched)

	// A schedule on a one-off is simply ignored.
	sched, err = ParseSchedule(models.RecurrenceOneOff, `{"type":"daily","time":"08:00"}`)
	require.NoError(t, err)
	assert.Nil(t, sched)
}

func TestParseSchedule_TimeDefaultsToMidnight(t *testing.T) {
	sched, err := ParseSchedule(models.RecurrenceDaily, `{"type":"daily"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, sched.Hour)
	assert.Equal(t, 0, sched.Minute)
}

func TestParseSchedule_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		recurrence string
		schedule   string
	}{
		{"missing schedule", models.RecurrenceDaily, ""},
		{"bad json", models.RecurrenceDaily, `{not json`},
		{"type mismatch", models.RecurrenceDaily, `{"type":"weekly","day":"monday"}`},
		{"unknown recurrence", "yearly", `{"type":"yearly"}`},
		{"bad hour", models.RecurrenceDaily, `{"type":"daily","time":"24:00"}`},
		{"bad minute", models.RecurrenceDaily, `{"type":"daily","time":"10:60"}`},
		{"not a clock", models.RecurrenceDaily, `{"type":"daily","time":"morning"}`},
		{"bad weekday", models.RecurrenceWeekly, `{"type":"weekly","day":"funday","time":"08:00"}`},
		{"weekly day missing", models.RecurrenceWeekly, `{"type":"weekly","time":"08:00"}`},
		{"monthly day missing", models.RecurrenceMonthly, `{"type":"monthly","time":"08:00"}`},
		{"monthly day zero", models.RecurrenceMonthly, `{"type":"monthly","day":0,"time":"08:00"}`},
		{"monthly day 32", models.RecurrenceMonthly, `{"type":"monthly","day":32,"time":"08:00"}`},
		{"monthly day string", models.RecurrenceMonthly, `{"type":"monthly","day":"15","time":"08:00"}`},
		{"monthly day fractional", models.RecurrenceMonthly, `{"type":"monthly","day":15.5,"time":"08:00"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseSchedule(c.recurrence, c.schedule)
			require.Error(t, err)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeInvalidSchedule, appErr.Code)
		})
	}
}

func mustSchedule(t *testing.T, recurrence, raw string) *Schedule {
	t.Helper()
	sched, err := ParseSchedule(recurrence, raw)
	require.NoError(t, err)
	return sched
}

func TestNextGenerationTime_DailyFirstGeneration(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceDaily, `{"type":"daily","time":"08:00"}`)

	// Never generated: today's slot comes back even though 08:00 already
	// passed, so the template fires on the very next pass.
	now := time.Date(2026, 1, 7, 14, 30, 0, 0, time.UTC)
	next := NextGenerationTime(sched, nil, now)
	assert.Equal(t, time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_DailyAlreadyGeneratedToday(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceDaily, `{"type":"daily","time":"08:00"}`)

	now := time.Date(2026, 1, 7, 14, 30, 0, 0, time.UTC)
	last := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, &last, now)
	assert.Equal(t, time.Date(2026, 1, 8, 8, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_DailyGeneratedYesterday(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceDaily, `{"type":"daily","time":"08:00"}`)

	now := time.Date(2026, 1, 7, 6, 0, 0, 0, time.UTC)
	last := time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, &last, now)
	assert.Equal(t, time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_WeeklyUpcomingDay(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceWeekly, `{"type":"weekly","day":"friday","time":"18:00"}`)

	// Wednesday Jan 7 2026; Friday is two days out.
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, nil, now)
	assert.Equal(t, time.Date(2026, 1, 9, 18, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_WeeklySameDayTimePassed(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceWeekly, `{"type":"weekly","day":"wednesday","time":"08:00"}`)

	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC) // Wednesday, past 08:00
	next := NextGenerationTime(sched, nil, now)
	assert.Equal(t, time.Date(2026, 1, 14, 8, 0, 0, 0, time.UTC), next)

	earlier := time.Date(2026, 1, 7, 6, 0, 0, 0, time.UTC) // Wednesday, before 08:00
	next = NextGenerationTime(sched, nil, earlier)
	assert.Equal(t, time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_WeeklyAlreadyGeneratedThisWeek(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceWeekly, `{"type":"weekly","day":"monday","time":"08:00"}`)

	// Generated on schedule Monday Jan 5; next natural slot is Monday Jan 12,
	// exactly 7 days later, which is allowed.
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	last := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, &last, now)
	assert.Equal(t, time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC), next)

	// A manual generation on Tuesday would make Monday Jan 12 less than a
	// week later, so the slot skips to Jan 19.
	manual := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)
	next = NextGenerationTime(sched, &manual, now)
	assert.Equal(t, time.Date(2026, 1, 19, 8, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_MonthlyUpcoming(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceMonthly, `{"type":"monthly","day":15,"time":"09:00"}`)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, nil, now)
	assert.Equal(t, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_MonthlyDayPassedRollsForward(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceMonthly, `{"type":"monthly","day":15,"time":"09:00"}`)

	// The 15th is gone and last month's generation doesn't block: April it is.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	last := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, &last, now)
	assert.Equal(t, time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_MonthlyClampsToMonthEnd(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceMonthly, `{"type":"monthly","day":31,"time":"10:00"}`)

	// 2026 is not a leap year.
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, nil, now)
	assert.Equal(t, time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC), next)

	// 2028 is.
	now = time.Date(2028, 2, 10, 12, 0, 0, 0, time.UTC)
	next = NextGenerationTime(sched, nil, now)
	assert.Equal(t, time.Date(2028, 2, 29, 10, 0, 0, 0, time.UTC), next)
}

func TestNextGenerationTime_MonthlyAlreadyGeneratedDecemberRollsToJanuary(t *testing.T) {
	sched := mustSchedule(t, models.RecurrenceMonthly, `{"type":"monthly","day":15,"time":"09:00"}`)

	now := time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC)
	last := time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC)
	next := NextGenerationTime(sched, &last, now)
	assert.Equal(t, time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC), next)
}
