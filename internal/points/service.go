package points

import (
	"fmt"
	"log"
	"time"

	"github.com/sadopc/streakr/internal/store"
)

// Repository is the persistence the engine reads its inputs from and writes
// its records to. *store.Store implements it.
type Repository interface {
	ListActivities(includeArchived bool) ([]store.Activity, error)
	ListGoals() ([]store.Goal, error)
	ListSessionsByDate(date string) ([]store.Session, error)
	ListTodos() ([]store.Todo, error)

	GetDailyPoints(date string) (*store.DailyPoints, error)
	SetDailyPoints(dp store.DailyPoints) error
	ListDailyPoints(from, to string) ([]store.DailyPoints, error)
	GetWeeklyBonus(weekStart string) (*store.WeeklyBonus, error)
	SetWeeklyBonus(wb store.WeeklyBonus) error
	GetStreak() (store.Streak, error)
	SetStreak(st store.Streak) error
}

// Service sequences the calculator, the bonus ledger and the streak tracker
// over a Repository. It is the only part of the engine with side effects and
// assumes a single caller at a time.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock replaces the source of "today", which decides the current week.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the current day key.
func (s *Service) Today() string {
	return DateKey(s.now())
}

// DayResult is the outcome of RecalculateDay.
type DayResult struct {
	Points      store.DailyPoints
	BonusEarned int
	Streak      store.Streak
	Transition  Transition
}

// RecalculateDay rescores date, banks its surplus and advances the streak.
// A storage error stops the pass; stages already written stay written.
func (s *Service) RecalculateDay(date string) (DayResult, error) {
	dp, err := s.CalculateDay(date)
	if err != nil {
		return DayResult{}, err
	}

	res := DayResult{Points: dp, BonusEarned: BonusEarned(dp)}
	if res.BonusEarned > 0 {
		if err := s.AddBonusToWeek(date, res.BonusEarned); err != nil {
			return res, err
		}
	}

	res.Streak, res.Transition, err = s.UpdateStreak(date, dp)
	if err != nil {
		return res, err
	}
	log.Printf("points: %s total=%d earned=%d bonus=%d streak=%d (%s)",
		date, dp.TotalPoints, dp.EarnedPoints, res.BonusEarned, res.Streak.CurrentStreak, res.Transition)
	return res, nil
}

// CalculateDay scores date from the stored inputs and persists the result.
// Bonus already applied to the day survives the recomputation.
func (s *Service) CalculateDay(date string) (store.DailyPoints, error) {
	dp, err := s.deriveDay(date)
	if err != nil {
		return store.DailyPoints{}, err
	}
	if err := s.repo.SetDailyPoints(dp); err != nil {
		return store.DailyPoints{}, fmt.Errorf("save daily points %s: %w", date, err)
	}
	return dp, nil
}

func (s *Service) deriveDay(date string) (store.DailyPoints, error) {
	if _, err := ParseDate(date); err != nil {
		return store.DailyPoints{}, err
	}

	prior := 0
	existing, err := s.repo.GetDailyPoints(date)
	if err != nil {
		return store.DailyPoints{}, fmt.Errorf("load daily points %s: %w", date, err)
	}
	if existing != nil {
		prior = existing.BonusApplied
	}

	activities, err := s.repo.ListActivities(true)
	if err != nil {
		return store.DailyPoints{}, fmt.Errorf("load activities: %w", err)
	}
	sessions, err := s.repo.ListSessionsByDate(date)
	if err != nil {
		return store.DailyPoints{}, fmt.Errorf("load sessions %s: %w", date, err)
	}
	todos, err := s.repo.ListTodos()
	if err != nil {
		return store.DailyPoints{}, fmt.Errorf("load todos: %w", err)
	}
	goals, err := s.repo.ListGoals()
	if err != nil {
		return store.DailyPoints{}, fmt.Errorf("load goals: %w", err)
	}

	dp := Calculate(date, activities, sessions, todos, goals, prior)
	dp.UpdatedAt = s.now().UTC()
	return dp, nil
}

// CurrentWeeklyBonus returns this week's ledger, creating an empty one on
// first use.
func (s *Service) CurrentWeeklyBonus() (store.WeeklyBonus, error) {
	return s.weeklyBonus(s.Today(), true)
}

func (s *Service) weeklyBonus(date string, create bool) (store.WeeklyBonus, error) {
	ws, err := WeekStart(date)
	if err != nil {
		return store.WeeklyBonus{}, err
	}
	wb, err := s.repo.GetWeeklyBonus(ws)
	if err != nil {
		return store.WeeklyBonus{}, fmt.Errorf("load weekly bonus %s: %w", ws, err)
	}
	if wb != nil {
		return *wb, nil
	}

	fresh := store.WeeklyBonus{WeekStart: ws, DailyBreakdown: []store.BonusDay{}}
	if create {
		if err := s.repo.SetWeeklyBonus(fresh); err != nil {
			return store.WeeklyBonus{}, fmt.Errorf("create weekly bonus %s: %w", ws, err)
		}
	}
	return fresh, nil
}

// AddBonusToWeek banks earned into the ledger of the week containing date.
// The pool never exceeds WeeklyBonusCap; the excess is dropped.
func (s *Service) AddBonusToWeek(date string, earned int) error {
	if earned <= 0 {
		return nil
	}
	wb, err := s.weeklyBonus(date, false)
	if err != nil {
		return err
	}

	if wb.AvailableBonus+earned > WeeklyBonusCap {
		log.Printf("points: weekly bonus %s capped, dropping %d", wb.WeekStart, wb.AvailableBonus+earned-WeeklyBonusCap)
	}
	wb.AvailableBonus = min(wb.AvailableBonus+earned, WeeklyBonusCap)
	entry := bonusDay(&wb, date)
	entry.Earned += earned

	if err := s.repo.SetWeeklyBonus(wb); err != nil {
		return fmt.Errorf("save weekly bonus %s: %w", wb.WeekStart, err)
	}
	return nil
}

// ApplyBonus spends amount from the current week's pool on date, which may
// lie in any week. Nothing is written when the pool cannot cover amount.
func (s *Service) ApplyBonus(date string, amount int) (store.DailyPoints, error) {
	if _, err := ParseDate(date); err != nil {
		return store.DailyPoints{}, err
	}
	wb, err := s.CurrentWeeklyBonus()
	if err != nil {
		return store.DailyPoints{}, err
	}
	if amount <= 0 || amount > wb.AvailableBonus {
		return store.DailyPoints{}, &InsufficientBonusError{Requested: amount, Available: wb.AvailableBonus}
	}

	wb.AvailableBonus -= amount
	wb.UsedBonus += amount
	entry := bonusDay(&wb, date)
	entry.Used += amount
	if err := s.repo.SetWeeklyBonus(wb); err != nil {
		return store.DailyPoints{}, fmt.Errorf("save weekly bonus %s: %w", wb.WeekStart, err)
	}

	existing, err := s.repo.GetDailyPoints(date)
	if err != nil {
		return store.DailyPoints{}, fmt.Errorf("load daily points %s: %w", date, err)
	}
	var dp store.DailyPoints
	if existing != nil {
		dp = *existing
	} else {
		dp, err = s.deriveDay(date)
		if err != nil {
			return store.DailyPoints{}, err
		}
	}

	dp.BonusApplied += amount
	dp.TotalPoints = dp.EarnedPoints + dp.BonusApplied
	dp.ReachedGoal = dp.TotalPoints >= DailyTarget
	dp.UpdatedAt = s.now().UTC()
	if err := s.repo.SetDailyPoints(dp); err != nil {
		return store.DailyPoints{}, fmt.Errorf("save daily points %s: %w", date, err)
	}

	if _, _, err := s.UpdateStreak(date, dp); err != nil {
		return dp, err
	}
	log.Printf("points: applied %d bonus to %s, total now %d", amount, date, dp.TotalPoints)
	return dp, nil
}

// UpdateStreak feeds one day's result into the stored streak. The record is
// saved even when nothing changed.
func (s *Service) UpdateStreak(date string, dp store.DailyPoints) (store.Streak, Transition, error) {
	st, err := s.repo.GetStreak()
	if err != nil {
		return store.Streak{}, Unchanged, fmt.Errorf("load streak: %w", err)
	}
	next, tr, err := Advance(st, date, dp.TotalPoints >= DailyTarget)
	if err != nil {
		return st, Unchanged, err
	}
	if err := s.repo.SetStreak(next); err != nil {
		return st, Unchanged, fmt.Errorf("save streak: %w", err)
	}
	return next, tr, nil
}

// Streak returns the stored streak.
func (s *Service) Streak() (store.Streak, error) {
	st, err := s.repo.GetStreak()
	if err != nil {
		return store.Streak{}, fmt.Errorf("load streak: %w", err)
	}
	return st, nil
}

// bonusDay returns the ledger row for date, appending an empty one if needed.
func bonusDay(wb *store.WeeklyBonus, date string) *store.BonusDay {
	for i := range wb.DailyBreakdown {
		if wb.DailyBreakdown[i].Date == date {
			return &wb.DailyBreakdown[i]
		}
	}
	wb.DailyBreakdown = append(wb.DailyBreakdown, store.BonusDay{Date: date})
	return &wb.DailyBreakdown[len(wb.DailyBreakdown)-1]
}
