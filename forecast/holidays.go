package forecast

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// HolidayCalendar reports whether a calendar date is a holiday.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

var usCalendar = newUSCalendar()

func newUSCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// USHolidays is the US federal holiday calendar, including observed days
// for fixed-date holidays that fall on a weekend.
type USHolidays struct{}

func (USHolidays) IsHoliday(date time.Time) bool {
	d := civilDate(date)
	if actual, observed, _ := usCalendar.IsHoliday(d); actual || observed {
		return true
	}
	// A Saturday New Year's Day is observed on Dec 31 of the year before.
	if d.Month() == time.December && d.Day() == 31 {
		_, observed := us.NewYear.Calc(d.Year() + 1)
		return civilDate(observed).Equal(d)
	}
	return false
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
