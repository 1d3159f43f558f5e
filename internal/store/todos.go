package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const todoColumns = `id, title, completed, completed_at, points, created_at`

func (s *Store) CreateTodo(title string, points int) (*Todo, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO todos (id, title, points, created_at) VALUES (?, ?, ?, ?)`,
		id, title, points, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return s.GetTodo(id)
}

func (s *Store) GetTodo(id string) (*Todo, error) {
	row := s.db.QueryRow(`SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get todo %s: %w", id, err)
	}
	return t, nil
}

// ListTodos returns open todos first, then completed ones, newest first.
func (s *Store) ListTodos() ([]Todo, error) {
	rows, err := s.db.Query(`SELECT ` + todoColumns + ` FROM todos ORDER BY completed, created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// CompleteTodo marks a todo done at the given moment. The timestamp keeps
// at's offset so its date prefix is the day the user completed it on.
func (s *Store) CompleteTodo(id string, at time.Time) (*Todo, error) {
	_, err := s.db.Exec(
		`UPDATE todos SET completed = 1, completed_at = ? WHERE id = ?`,
		at.Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete todo %s: %w", id, err)
	}
	return s.GetTodo(id)
}

// ReopenTodo clears completion. The returned todo still carries the old
// CompletedAt so callers can recalculate the day it used to count for.
func (s *Store) ReopenTodo(id string) (*Todo, error) {
	before, err := s.GetTodo(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`UPDATE todos SET completed = 0, completed_at = NULL WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("reopen todo %s: %w", id, err)
	}
	before.Completed = false
	return before, nil
}

func (s *Store) DeleteTodo(id string) error {
	_, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	return err
}

func scanTodo(r rowScanner) (*Todo, error) {
	t := &Todo{}
	var completed int
	var completedAt sql.NullString
	var createdAt string
	if err := r.Scan(&t.ID, &t.Title, &completed, &completedAt, &t.Points, &createdAt); err != nil {
		return nil, err
	}
	t.Completed = completed == 1
	if completedAt.Valid {
		ts, _ := time.Parse(time.RFC3339, completedAt.String)
		t.CompletedAt = &ts
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}
