package dateutil

import (
	"fmt"
	"time"

	"github.com/questforge-lab/backend/internal/entity"
)

// GetCurrentWeekRange returns the [begin, end) interval of the ISO week
// containing t, in the location of t.
func GetCurrentWeekRange(t time.Time) (time.Time, time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	year, month, day := t.AddDate(0, 0, 1-weekday).Date()
	begin := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return begin, begin.AddDate(0, 0, 7)
}

// GetCurrentMonthRange returns the [begin, end) interval of the calendar
// month containing t, in the location of t.
func GetCurrentMonthRange(t time.Time) (time.Time, time.Time) {
	year, month, _ := t.Date()
	begin := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	return begin, begin.AddDate(0, 1, 0)
}

// GetRangeByPeriod resolves a leader board period to the interval it covers
// at time t. The total period returns two zero times, meaning unbounded.
func GetRangeByPeriod(t time.Time, period entity.LeaderBoardPeriodType) (time.Time, time.Time, error) {
	switch period {
	case entity.LeaderBoardPeriodWeek:
		begin, end := GetCurrentWeekRange(t)
		return begin, end, nil

	case entity.LeaderBoardPeriodMonth:
		begin, end := GetCurrentMonthRange(t)
		return begin, end, nil

	case entity.LeaderBoardPeriodTotal:
		return time.Time{}, time.Time{}, nil
	}

	return time.Time{}, time.Time{},
		fmt.Errorf("leader board period must be week, month, or total, but got %s", period)
}
