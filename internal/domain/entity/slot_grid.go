package entity

import (
	"time"

	"go-reservation-board/pkg/timeformat"
)

// SlotRule overrides the base grid for matching dates. A rule applies when
// the date's weekday is in Weekdays (empty means any) and the date falls
// inside [FromDate, ToDate] (empty bounds are open).
type SlotRule struct {
	Weekdays    []time.Weekday
	FromDate    string
	ToDate      string
	SlotMinutes int
	DayStart    string
	DayEnd      string
}

// SlotGrid describes how a business day is divided into fixed slots.
// The zero value is unusable; build one from config.
type SlotGrid struct {
	SlotMinutes int
	DayStart    string
	DayEnd      string
	Rules       []SlotRule
}

func (r SlotRule) matches(date string) bool {
	if r.FromDate != "" && date < r.FromDate {
		return false
	}
	if r.ToDate != "" && date > r.ToDate {
		return false
	}
	if len(r.Weekdays) == 0 {
		return true
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	for _, wd := range r.Weekdays {
		if t.Weekday() == wd {
			return true
		}
	}
	return false
}

// resolve returns the effective slot duration and day window for a date,
// first matching rule wins.
func (g SlotGrid) resolve(date string) (slotMinutes int, dayStart, dayEnd string) {
	slotMinutes, dayStart, dayEnd = g.SlotMinutes, g.DayStart, g.DayEnd
	for _, rule := range g.Rules {
		if !rule.matches(date) {
			continue
		}
		if rule.SlotMinutes > 0 {
			slotMinutes = rule.SlotMinutes
		}
		if rule.DayStart != "" {
			dayStart = rule.DayStart
		}
		if rule.DayEnd != "" {
			dayEnd = rule.DayEnd
		}
		break
	}
	return slotMinutes, dayStart, dayEnd
}

// NormalizeToSlotBase snaps hhmm down to the nearest slot start at or
// before it on the given date, clamped to the day's first slot. This is
// the canonical bucket key; it is idempotent.
func (g SlotGrid) NormalizeToSlotBase(date, hhmm string) string {
	slotMinutes, dayStart, dayEnd := g.resolve(date)

	mins := timeformat.MinutesOfDay(timeformat.To24h(hhmm))
	start := timeformat.MinutesOfDay(dayStart)
	end := timeformat.MinutesOfDay(dayEnd)
	if mins < 0 || start < 0 || slotMinutes <= 0 {
		return timeformat.To24h(hhmm)
	}

	if mins < start {
		return timeformat.ClockFromMinutes(start)
	}

	base := start + ((mins-start)/slotMinutes)*slotMinutes
	if end > start && base >= end {
		base = start + ((end-start-1)/slotMinutes)*slotMinutes
	}
	return timeformat.ClockFromMinutes(base)
}
