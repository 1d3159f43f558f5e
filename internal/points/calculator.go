package points

import (
	"math"

	"github.com/sadopc/streakr/internal/store"
)

// Calculate scores one day. sessions and todos may contain entries for other
// days; only those belonging to date count. priorBonus is the bonus already
// applied to the day and is carried into the result unchanged.
func Calculate(date string, activities []store.Activity, sessions []store.Session, todos []store.Todo, goals []store.Goal, priorBonus int) store.DailyPoints {
	tracked := make(map[string]int64)
	for _, s := range sessions {
		if s.Date != date || s.Running() {
			continue
		}
		tracked[s.ActivityID] += s.Duration
	}

	goalByActivity := make(map[string]*store.Goal, len(goals))
	for i := range goals {
		goalByActivity[goals[i].ActivityID] = &goals[i]
	}

	breakdown := []store.Breakdown{}
	var sum float64

	for _, a := range activities {
		secs := tracked[a.ID]
		if secs == 0 {
			continue
		}

		if a.IsNegative {
			pts := -float64(secs/60) * a.NegativePointsPerMinute
			if pts == 0 {
				pts = 0 // drop negative zero
			}
			breakdown = append(breakdown, store.Breakdown{
				Source:     store.SourceActivity,
				SourceID:   a.ID,
				SourceName: a.Name,
				Points:     pts,
				TimeSpent:  secs,
			})
			sum += pts
			continue
		}

		goal := goalByActivity[a.ID]
		met, participates := GoalMet(secs, goal)
		if !participates {
			continue
		}
		var pts float64
		if met {
			pts = float64(a.GoalPoints)
		}
		breakdown = append(breakdown, store.Breakdown{
			Source:     store.SourceActivity,
			SourceID:   a.ID,
			SourceName: a.Name,
			Points:     pts,
			GoalMet:    met,
			TimeSpent:  secs,
			GoalTime:   int64(goal.MinimumMinutes) * 60,
		})
		sum += pts
	}

	for _, t := range todos {
		if !t.Completed || t.CompletedAt == nil || t.Points <= 0 {
			continue
		}
		if DateKey(*t.CompletedAt) != date {
			continue
		}
		pts := float64(t.Points)
		breakdown = append(breakdown, store.Breakdown{
			Source:     store.SourceTodo,
			SourceID:   t.ID,
			SourceName: t.Title,
			Points:     pts,
			GoalMet:    true,
		})
		sum += pts
	}

	earned := int(math.Round(sum))
	total := earned + priorBonus
	return store.DailyPoints{
		Date:         date,
		EarnedPoints: earned,
		BonusApplied: priorBonus,
		TotalPoints:  total,
		ReachedGoal:  total >= DailyTarget,
		Breakdown:    breakdown,
	}
}

// BonusEarned is the part of a day's total above DailyTarget.
func BonusEarned(dp store.DailyPoints) int {
	return max(0, dp.TotalPoints-DailyTarget)
}
