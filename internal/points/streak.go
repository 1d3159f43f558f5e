package points

import "github.com/sadopc/streakr/internal/store"

// Transition names the branch Advance took.
type Transition int

const (
	Unchanged Transition = iota
	Started              // goal reached after a gap or on first use
	Continued            // goal reached the day after the last update
	Repeated             // goal reached again on the last updated day
	Broken               // goal missed the day after the last update
)

func (t Transition) String() string {
	switch t {
	case Started:
		return "started"
	case Continued:
		return "continued"
	case Repeated:
		return "repeated"
	case Broken:
		return "broken"
	}
	return "unchanged"
}

// Advance applies one day's outcome to the streak.
//
// Days earlier than LastUpdateDate are not rejected. Feeding one in restarts
// or leaves the streak depending on how it lines up with LastUpdateDate, and
// can move LastUpdateDate backwards.
func Advance(st store.Streak, date string, goalReached bool) (store.Streak, Transition, error) {
	prev, err := AddDays(date, -1)
	if err != nil {
		return st, Unchanged, err
	}

	var tr Transition
	switch {
	case goalReached && st.LastUpdateDate == prev:
		st.CurrentStreak++
		st.LastUpdateDate = date
		tr = Continued
	case goalReached && st.LastUpdateDate == date:
		tr = Repeated
	case goalReached:
		st.CurrentStreak = 1
		st.LastUpdateDate = date
		tr = Started
	case st.LastUpdateDate == prev && st.CurrentStreak > 0:
		st.CurrentStreak = 0
		st.LastUpdateDate = date
		tr = Broken
	default:
		tr = Unchanged
	}

	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	return st, tr, nil
}
