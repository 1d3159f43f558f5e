// Package points turns tracked activity time and completed todos into a daily
// score, banks the surplus into a weekly bonus pool and keeps the day-over-day
// streak.
package points

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/streakr/internal/store"
)

const (
	// DailyTarget is the total a day needs to count towards the streak.
	DailyTarget = 100
	// WeeklyBonusCap bounds the spendable pool of one week. Surplus earned
	// beyond it is discarded.
	WeeklyBonusCap = 200

	DefaultGoalPoints              = 10
	DefaultNegativePointsPerMinute = 0.5
)

var (
	ErrInsufficientBonus = errors.New("insufficient bonus")
	ErrInvalidDate       = errors.New("invalid date")
)

// InsufficientBonusError is returned when a bonus application exceeds the
// current week's pool or is not positive.
type InsufficientBonusError struct {
	Requested int
	Available int
}

func (e *InsufficientBonusError) Error() string {
	return fmt.Sprintf("insufficient bonus: requested %d, only %d available this week", e.Requested, e.Available)
}

func (e *InsufficientBonusError) Is(target error) bool {
	return target == ErrInsufficientBonus
}

// ParseDate parses a YYYY-MM-DD day key.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(store.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, date)
	}
	return t, nil
}

// DateKey formats t as a day key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(store.DateLayout)
}

// AddDays shifts a day key by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return DateKey(t.AddDate(0, 0, n)), nil
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	return DateKey(t.AddDate(0, 0, offset)), nil
}
