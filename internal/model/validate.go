package model

import (
	"time"

	"github.com/anescall/callsched/internal/calendar"
	"github.com/anescall/callsched/internal/scheduleerr"
)

// ValidateCalendar checks invariant 3: every day classified as Workday must
// be a true workday per cal, and every day classified as Weekend must not
// be. This is kept separate from Validate because it needs the Calendar,
// which the Schedule itself does not carry.
func (s *Schedule) ValidateCalendar(cal *calendar.Calendar) error {
	for _, d := range s.Days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return scheduleerr.InputMalformed("schedule", "malformed calendar date "+d.Date)
		}
		workday, _ := cal.IsWorkday(date)
		switch d.Kind {
		case Workday:
			if !workday {
				return scheduleerr.ValidationFailed("schedule", d.Date, "day-kind-consistency",
					"day is classified Workday but is a holiday or weekend")
			}
		case Weekend:
			if workday {
				return scheduleerr.ValidationFailed("schedule", d.Date, "day-kind-consistency",
					"day is classified Weekend but is a true workday")
			}
		}
	}
	return nil
}
