package points

import (
	"fmt"

	"github.com/sadopc/streakr/internal/store"
)

// WeekSummary is the per-day view of one Monday-to-Sunday week.
type WeekSummary struct {
	WeekStart   string
	Days        []store.DailyPoints // seven entries, Monday first
	DaysReached int
	TotalPoints int
	Bonus       store.WeeklyBonus
}

// WeekSummary collects the stored scores of the week containing date. Days
// that were never scored appear with only their Date set. Only the current
// week's ledger is created when missing.
func (s *Service) WeekSummary(date string) (WeekSummary, error) {
	ws, err := WeekStart(date)
	if err != nil {
		return WeekSummary{}, err
	}
	end, _ := AddDays(ws, 7)

	stored, err := s.repo.ListDailyPoints(ws, end)
	if err != nil {
		return WeekSummary{}, fmt.Errorf("load week %s: %w", ws, err)
	}
	byDate := make(map[string]store.DailyPoints, len(stored))
	for _, dp := range stored {
		byDate[dp.Date] = dp
	}

	sum := WeekSummary{WeekStart: ws, Days: make([]store.DailyPoints, 0, 7)}
	for i := 0; i < 7; i++ {
		d, _ := AddDays(ws, i)
		dp, ok := byDate[d]
		if !ok {
			dp = store.DailyPoints{Date: d}
		}
		if dp.ReachedGoal {
			sum.DaysReached++
		}
		sum.TotalPoints += dp.TotalPoints
		sum.Days = append(sum.Days, dp)
	}

	currentWeek, err := WeekStart(s.Today())
	if err != nil {
		return WeekSummary{}, err
	}
	sum.Bonus, err = s.weeklyBonus(ws, ws == currentWeek)
	if err != nil {
		return WeekSummary{}, err
	}
	return sum, nil
}
