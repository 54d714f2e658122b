package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// Schedule is the parsed, validated form of a template's JSON schedule
// column, e.g. {"type":"weekly","day":"monday","time":"08:00"}.
type Schedule struct {
	Type       string
	Hour       int
	Minute     int
	Weekday    time.Weekday // weekly only
	DayOfMonth int          // monthly only, 1..31 before clamping
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func invalidSchedule(format string, args ...interface{}) *apperrors.AppError {
	return apperrors.New(apperrors.CodeInvalidSchedule).WithMessage(fmt.Sprintf(format, args...))
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		hour, err1 := strconv.Atoi(parts[0])
		minute, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil && hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59 {
			return hour, minute, nil
		}
	}
	return 0, 0, invalidSchedule("Invalid time format: %s. Expected HH:MM (00:00 to 23:59)", s)
}

// ParseSchedule validates a template's recurrence + schedule pair and returns
// the parsed schedule. One-off templates have no schedule and return nil.
func ParseSchedule(recurrence, scheduleJSON string) (*Schedule, error) {
	switch recurrence {
	case models.RecurrenceOneOff:
		return nil, nil
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		return nil, invalidSchedule("Invalid recurrence '%s'. Must be one of one-off, daily, weekly, monthly", recurrence)
	}

	if scheduleJSON == "" {
		return nil, invalidSchedule("Schedule is required for %s recurrence", recurrence)
	}

	// "day" is a weekday name for weekly schedules but a number for monthly
	// ones, so it decodes as interface{} and is narrowed per type below.
	var raw struct {
		Type string      `json:"type"`
		Time string      `json:"time"`
		Day  interface{} `json:"day"`
	}
	if err := json.Unmarshal([]byte(scheduleJSON), &raw); err != nil {
		return nil, invalidSchedule("Schedule must be valid JSON")
	}

	if raw.Type != recurrence {
		return nil, invalidSchedule("Schedule type '%s' must match recurrence '%s'", raw.Type, recurrence)
	}

	if raw.Time == "" {
		raw.Time = "00:00"
	}
	hour, minute, err := parseClock(raw.Time)
	if err != nil {
		return nil, err
	}

	sched := &Schedule{Type: raw.Type, Hour: hour, Minute: minute}

	switch recurrence {
	case models.RecurrenceWeekly:
		name, _ := raw.Day.(string)
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, invalidSchedule(
				"Invalid day: %s. Must be one of monday, tuesday, wednesday, thursday, friday, saturday, sunday",
				strings.ToLower(name))
		}
		sched.Weekday = weekday

	case models.RecurrenceMonthly:
		num, ok := raw.Day.(float64)
		day := int(num)
		if !ok || num != float64(day) || day < 1 || day > 31 {
			return nil, invalidSchedule("Invalid day: %v. Must be an integer between 1 and 31", raw.Day)
		}
		sched.DayOfMonth = day
	}

	return sched, nil
}

// NextGenerationTime computes when a recurring template is next due to spawn
// instances, given when it last did. The rules, per recurrence:
//
//   - daily: today at the scheduled time. Never generated means "generate
//     now" even if the time already passed today (covers fresh templates and
//     server downtime); already generated today pushes to tomorrow.
//   - weekly: the next occurrence of the scheduled weekday+time, skipping a
//     week if this week's instance was already generated.
//   - monthly: the scheduled day this month, or next month when that moment
//     passed or this month already generated. Days beyond the month's end
//     clamp to its last day (31st in February becomes the 28th or 29th).
//
// The result can be in the past; callers generate when now >= result. A
// template is never backfilled more than one cycle regardless of how long it
// went ungenerated.
func NextGenerationTime(sched *Schedule, lastGeneratedAt *time.Time, now time.Time) time.Time {
	loc := now.Location()

	switch sched.Type {
	case models.RecurrenceDaily:
		todayScheduled := time.Date(now.Year(), now.Month(), now.Day(), sched.Hour, sched.Minute, 0, 0, loc)
		if lastGeneratedAt == nil {
			return todayScheduled
		}
		ly, lm, ld := lastGeneratedAt.In(loc).Date()
		ny, nm, nd := now.Date()
		if ly == ny && lm == nm && ld == nd {
			return todayScheduled.AddDate(0, 0, 1)
		}
		return todayScheduled

	case models.RecurrenceWeekly:
		daysAhead := int(sched.Weekday) - int(now.Weekday())
		if daysAhead < 0 {
			daysAhead += 7
		} else if daysAhead == 0 {
			if now.Hour() > sched.Hour || (now.Hour() == sched.Hour && now.Minute() >= sched.Minute) {
				daysAhead = 7
			}
		}
		target := now.AddDate(0, 0, daysAhead)
		next := time.Date(target.Year(), target.Month(), target.Day(), sched.Hour, sched.Minute, 0, 0, loc)

		// Already generated within the last 7 days and the next occurrence
		// lands inside that same week: skip one week so a template never
		// fires twice per cycle.
		if lastGeneratedAt != nil && !lastGeneratedAt.Before(now.AddDate(0, 0, -7)) {
			if next.Sub(*lastGeneratedAt) < 7*24*time.Hour {
				next = next.AddDate(0, 0, 7)
			}
		}
		return next

	case models.RecurrenceMonthly:
		if lastGeneratedAt != nil {
			lt := lastGeneratedAt.In(loc)
			if lt.Month() == now.Month() && lt.Year() == now.Year() {
				year, month := nextMonth(now.Year(), now.Month())
				return monthlyTarget(year, month, sched.DayOfMonth, sched.Hour, sched.Minute, loc)
			}
		}
		target := monthlyTarget(now.Year(), now.Month(), sched.DayOfMonth, sched.Hour, sched.Minute, loc)
		if !target.After(now) {
			year, month := nextMonth(now.Year(), now.Month())
			target = monthlyTarget(year, month, sched.DayOfMonth, sched.Hour, sched.Minute, loc)
		}
		return target
	}

	// Unknown types are filtered out by ParseSchedule.
	return now
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// monthlyTarget builds the scheduled moment in a given month, clamping the
// day to the month's length.
func monthlyTarget(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
