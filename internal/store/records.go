package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	dailyPointsPrefix = "daily_points:"
	weeklyBonusPrefix = "weekly_bonus:"
	streakKey         = "streak"
)

// getRecord decodes the JSON document stored under key into v. It reports
// false when no document exists.
func (s *Store) getRecord(key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get record %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode record %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) putRecord(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("put record %q: %w", key, err)
	}
	return nil
}

// GetDailyPoints returns nil when the date has never been scored.
func (s *Store) GetDailyPoints(date string) (*DailyPoints, error) {
	var dp DailyPoints
	ok, err := s.getRecord(dailyPointsPrefix+date, &dp)
	if err != nil || !ok {
		return nil, err
	}
	return &dp, nil
}

func (s *Store) SetDailyPoints(dp DailyPoints) error {
	return s.putRecord(dailyPointsPrefix+dp.Date, dp)
}

// ListDailyPoints returns the stored days in [from, to), oldest first.
func (s *Store) ListDailyPoints(from, to string) ([]DailyPoints, error) {
	rows, err := s.db.Query(
		`SELECT value FROM records WHERE key >= ? AND key < ? ORDER BY key`,
		dailyPointsPrefix+from, dailyPointsPrefix+to,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily points: %w", err)
	}
	defer rows.Close()

	var days []DailyPoints
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var dp DailyPoints
		if err := json.Unmarshal([]byte(raw), &dp); err != nil {
			return nil, fmt.Errorf("decode daily points: %w", err)
		}
		days = append(days, dp)
	}
	return days, rows.Err()
}

// GetWeeklyBonus returns nil when no ledger exists for the week.
func (s *Store) GetWeeklyBonus(weekStart string) (*WeeklyBonus, error) {
	var wb WeeklyBonus
	ok, err := s.getRecord(weeklyBonusPrefix+weekStart, &wb)
	if err != nil || !ok {
		return nil, err
	}
	return &wb, nil
}

func (s *Store) SetWeeklyBonus(wb WeeklyBonus) error {
	return s.putRecord(weeklyBonusPrefix+wb.WeekStart, wb)
}

// GetStreak returns the zero streak when none has been saved yet.
func (s *Store) GetStreak() (Streak, error) {
	var st Streak
	if _, err := s.getRecord(streakKey, &st); err != nil {
		return Streak{}, err
	}
	return st, nil
}

func (s *Store) SetStreak(st Streak) error {
	return s.putRecord(streakKey, st)
}
