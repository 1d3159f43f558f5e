package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day key format used for sessions and records.
const DateLayout = "2006-01-02"

// MaxRunningSessions bounds how many activity timers may run at once.
const MaxRunningSessions = 3

var (
	ErrTooManyTimers  = fmt.Errorf("at most %d timers can run at once", MaxRunningSessions)
	ErrAlreadyRunning = errors.New("activity already has a running timer")
)

const sessionColumns = `id, activity_id, date, start_time, end_time, duration, created_at`

// StartSession opens a running session for activityID. The session's date is
// the calendar day of at in at's location.
func (s *Store) StartSession(activityID string, at time.Time) (*Session, error) {
	running, err := s.ListRunningSessions()
	if err != nil {
		return nil, err
	}
	if len(running) >= MaxRunningSessions {
		return nil, ErrTooManyTimers
	}
	for _, r := range running {
		if r.ActivityID == activityID {
			return nil, ErrAlreadyRunning
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO sessions (activity_id, date, start_time, created_at) VALUES (?, ?, ?, ?)`,
		activityID, at.Format(DateLayout), at.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

// StopSession closes a running session at end. Time spent paused is
// excluded from the stored duration.
func (s *Store) StopSession(id int64, end time.Time, paused time.Duration) (*Session, error) {
	sess, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if !sess.Running() {
		return sess, nil
	}

	duration := int64((end.Sub(sess.StartTime) - paused).Seconds())
	if duration < 0 {
		duration = 0
	}

	_, err = s.db.Exec(
		`UPDATE sessions SET end_time = ?, duration = ? WHERE id = ?`,
		end.UTC().Format(time.RFC3339), duration, id,
	)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}
	return s.GetSession(id)
}

// AddSession records an already completed session of the given length.
func (s *Store) AddSession(activityID string, start time.Time, durationSecs int64) (*Session, error) {
	end := start.Add(time.Duration(durationSecs) * time.Second)
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO sessions (activity_id, date, start_time, end_time, duration, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		activityID, start.Format(DateLayout), start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), durationSecs, now,
	)
	if err != nil {
		return nil, fmt.Errorf("add session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

// UpdateSessionDuration replaces the duration of a stopped session.
func (s *Store) UpdateSessionDuration(id int64, durationSecs int64) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET duration = ? WHERE id = ? AND end_time IS NOT NULL`, durationSecs, id,
	)
	if err != nil {
		return fmt.Errorf("update session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update session %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteSession(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *Store) GetSession(id int64) (*Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

func (s *Store) ListRunningSessions() ([]Session, error) {
	return s.querySessions(`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NULL ORDER BY id`)
}

// ListSessionsByDate returns every session whose date is date, running or not.
func (s *Store) ListSessionsByDate(date string) ([]Session, error) {
	return s.querySessions(`SELECT `+sessionColumns+` FROM sessions WHERE date = ? ORDER BY id`, date)
}

func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []any

	if f.ActivityID != nil {
		query += ` AND activity_id = ?`
		args = append(args, *f.ActivityID)
	}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	return s.querySessions(query, args...)
}

func (s *Store) querySessions(query string, args ...any) ([]Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// GetDailySummary aggregates stopped sessions per activity per day for dates
// in [from, to).
func (s *Store) GetDailySummary(from, to string) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT s.date, s.activity_id, a.name, a.color,
		       COALESCE(SUM(s.duration), 0), COUNT(*)
		FROM sessions s
		JOIN activities a ON a.id = s.activity_id
		WHERE s.end_time IS NOT NULL
		  AND s.date >= ? AND s.date < ?
		GROUP BY s.date, s.activity_id
		ORDER BY s.date, a.name`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.ActivityID, &ds.ActivityName, &ds.ActivityColor, &ds.TotalSeconds, &ds.SessionCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

// GetDayTotal returns the tracked seconds of all stopped sessions on date.
func (s *Store) GetDayTotal(date string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration), 0)
		FROM sessions
		WHERE date = ? AND end_time IS NOT NULL`, date,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func scanSession(r rowScanner) (*Session, error) {
	sess := &Session{}
	var startTime, createdAt string
	var endTime sql.NullString
	err := r.Scan(&sess.ID, &sess.ActivityID, &sess.Date, &startTime, &endTime, &sess.Duration, &createdAt)
	if err != nil {
		return nil, err
	}
	sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String)
		sess.EndTime = &t
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}
