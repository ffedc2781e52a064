package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUSHolidays(t *testing.T) {
	cal := USHolidays{}

	holidays := []time.Time{
		day(2024, time.January, 1),
		day(2024, time.January, 15),  // MLK
		day(2024, time.February, 19), // Presidents
		day(2024, time.May, 27),      // Memorial
		day(2024, time.June, 19),
		day(2024, time.July, 4),
		day(2024, time.September, 2), // Labor
		day(2024, time.October, 14),  // Columbus
		day(2024, time.November, 11),
		day(2024, time.November, 28), // Thanksgiving
		day(2024, time.December, 25),
		day(2021, time.December, 24), // Christmas 2021 observed
		day(2022, time.December, 26), // Christmas 2022 observed
		day(2021, time.December, 31), // New Year 2022 observed
	}
	for _, h := range holidays {
		assert.True(t, cal.IsHoliday(h), h.Format("2006-01-02"))
	}

	for _, d := range []time.Time{
		day(2024, time.January, 2),
		day(2024, time.May, 20),
		day(2020, time.June, 19),
		day(2024, time.December, 31),
	} {
		assert.False(t, cal.IsHoliday(d), d.Format("2006-01-02"))
	}
}

func TestUSHolidaysIgnoresTimeOfDay(t *testing.T) {
	cal := USHolidays{}

	assert.True(t, cal.IsHoliday(time.Date(2024, time.July, 4, 18, 30, 0, 0, time.UTC)))
	assert.True(t, cal.IsHoliday(time.Date(2027, time.July, 5, 9, 0, 0, 0, time.UTC))) // Sunday July 4 observed
	assert.True(t, cal.IsHoliday(time.Date(2022, time.January, 17, 0, 0, 0, 0, time.UTC)))
}
