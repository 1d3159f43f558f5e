package store

import "time"

type Activity struct {
	ID                      string
	Name                    string
	Color                   string
	IsNegative              bool
	GoalPoints              int
	NegativePointsPerMinute float64
	Archived                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Goal is the daily minimum configured for one activity.
type Goal struct {
	ActivityID     string
	MinimumMinutes int
	Enabled        bool
}

type Session struct {
	ID         int64
	ActivityID string
	Date       string // YYYY-MM-DD, local calendar day of StartTime
	StartTime  time.Time
	EndTime    *time.Time
	Duration   int64 // seconds
	CreatedAt  time.Time
}

// Running reports whether the session's timer has not been stopped yet.
func (s Session) Running() bool { return s.EndTime == nil }

type Todo struct {
	ID          string
	Title       string
	Completed   bool
	CompletedAt *time.Time
	Points      int
	CreatedAt   time.Time
}

const (
	SourceActivity = "activity"
	SourceTodo     = "todo"
)

// Breakdown is one contribution to a day's earned points.
type Breakdown struct {
	Source     string  `json:"source"`
	SourceID   string  `json:"sourceId"`
	SourceName string  `json:"sourceName"`
	Points     float64 `json:"points"`
	GoalMet    bool    `json:"goalMet"`
	TimeSpent  int64   `json:"timeSpent,omitempty"` // seconds
	GoalTime   int64   `json:"goalTime,omitempty"`  // seconds
}

type DailyPoints struct {
	Date         string      `json:"date"`
	EarnedPoints int         `json:"earnedPoints"`
	BonusApplied int         `json:"bonusApplied"`
	TotalPoints  int         `json:"totalPoints"`
	ReachedGoal  bool        `json:"reachedGoal"`
	Breakdown    []Breakdown `json:"breakdown"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// BonusDay tracks how much bonus one date added to and drew from its week.
type BonusDay struct {
	Date   string `json:"date"`
	Earned int    `json:"earned"`
	Used   int    `json:"used"`
}

type WeeklyBonus struct {
	WeekStart      string     `json:"weekStart"` // Monday, YYYY-MM-DD
	AvailableBonus int        `json:"availableBonus"`
	UsedBonus      int        `json:"usedBonus"`
	DailyBreakdown []BonusDay `json:"dailyBreakdown"`
}

type Streak struct {
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
	LastUpdateDate string `json:"lastUpdateDate"`
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	ActivityID *string
	From       string // inclusive date
	To         string // exclusive date
	Limit      int
}

// DailySummary represents aggregated tracked time per activity per day.
type DailySummary struct {
	Date          string
	ActivityID    string
	ActivityName  string
	ActivityColor string
	TotalSeconds  int64
	SessionCount  int
}
