package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const activityColumns = `id, name, color, is_negative, goal_points, negative_points_per_minute, archived, created_at, updated_at`

// ActivityInput carries the editable fields of an activity.
type ActivityInput struct {
	Name                    string
	Color                   string
	IsNegative              bool
	GoalPoints              int
	NegativePointsPerMinute float64
}

func (s *Store) CreateActivity(in ActivityInput) (*Activity, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO activities (id, name, color, is_negative, goal_points, negative_points_per_minute, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Color, boolInt(in.IsNegative), in.GoalPoints, in.NegativePointsPerMinute, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return s.GetActivity(id)
}

func (s *Store) GetActivity(id string) (*Activity, error) {
	row := s.db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get activity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	return a, nil
}

// ListActivities returns activities ordered by name. Archived activities are
// still scored for days they were tracked on, so callers computing points
// must pass includeArchived.
func (s *Store) ListActivities(includeArchived bool) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (s *Store) UpdateActivity(id string, in ActivityInput) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE activities SET name = ?, color = ?, is_negative = ?, goal_points = ?, negative_points_per_minute = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.Color, boolInt(in.IsNegative), in.GoalPoints, in.NegativePointsPerMinute, now, id,
	)
	if err != nil {
		return fmt.Errorf("update activity %s: %w", id, err)
	}
	return nil
}

func (s *Store) ArchiveActivity(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE activities SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}

// SetGoal creates or replaces the goal of an activity.
func (s *Store) SetGoal(g Goal) error {
	_, err := s.db.Exec(
		`INSERT INTO goals (activity_id, minimum_minutes, enabled) VALUES (?, ?, ?)
		 ON CONFLICT(activity_id) DO UPDATE SET minimum_minutes = excluded.minimum_minutes, enabled = excluded.enabled`,
		g.ActivityID, g.MinimumMinutes, boolInt(g.Enabled),
	)
	if err != nil {
		return fmt.Errorf("set goal for %s: %w", g.ActivityID, err)
	}
	return nil
}

func (s *Store) DeleteGoal(activityID string) error {
	_, err := s.db.Exec(`DELETE FROM goals WHERE activity_id = ?`, activityID)
	return err
}

func (s *Store) ListGoals() ([]Goal, error) {
	rows, err := s.db.Query(`SELECT activity_id, minimum_minutes, enabled FROM goals ORDER BY activity_id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var enabled int
		if err := rows.Scan(&g.ActivityID, &g.MinimumMinutes, &enabled); err != nil {
			return nil, err
		}
		g.Enabled = enabled == 1
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(r rowScanner) (*Activity, error) {
	a := &Activity{}
	var createdAt, updatedAt string
	var negative, archived int
	err := r.Scan(&a.ID, &a.Name, &a.Color, &negative, &a.GoalPoints, &a.NegativePointsPerMinute, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.IsNegative = negative == 1
	a.Archived = archived == 1
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
