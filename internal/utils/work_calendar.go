package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/es"
)

// create once at init
var workCal = cal.NewBusinessCalendar()

func init() {
	workCal.AddHoliday(es.Holidays...)
}

// WorkCalendar returns the business calendar used for overtime decisions
// (Mon-Fri minus Spanish national holidays).
func WorkCalendar() *cal.BusinessCalendar {
	return workCal
}

// IsWorkingDay reports whether t falls on a business day.
func IsWorkingDay(t time.Time) bool {
	return workCal.IsWorkday(t)
}
