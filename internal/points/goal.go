package points

import "github.com/sadopc/streakr/internal/store"

// GoalMet evaluates one activity's tracked time against its goal.
// participates is false when the goal is missing or disabled: the activity
// then takes no part in scoring, which is not the same as failing.
func GoalMet(trackedSeconds int64, goal *store.Goal) (met, participates bool) {
	if goal == nil || !goal.Enabled {
		return false, false
	}
	return trackedSeconds >= int64(goal.MinimumMinutes)*60, true
}
