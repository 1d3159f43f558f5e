package tui

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewActivities
	viewTodos
	viewReports
)

var viewNames = []string{"Dashboard", "Activities", "Todos", "Reports"}

// --- Messages ---

type timerStartedMsg struct {
	activity string
}

type timerStoppedMsg struct {
	session *store.Session
}

// pointsUpdatedMsg follows a successful recalculation.
type pointsUpdatedMsg struct {
	date   string
	result points.DayResult
}

type bonusAppliedMsg struct {
	date   string
	amount int
	total  int
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func errorCmd(err error) tea.Cmd {
	return statusCmd(fmt.Sprintf("Error: %v", err), true)
}

// recalculate rescores date right away so engine writes stay on the update
// loop. A failure is logged and reported; whatever triggered it is already
// saved and is picked up by the next successful pass.
func recalculate(svc *points.Service, date string) tea.Cmd {
	res, err := svc.RecalculateDay(date)
	if err != nil {
		log.Printf("tui: recalculate %s: %v", date, err)
		return statusCmd(fmt.Sprintf("Points for %s not updated: %v", date, err), true)
	}
	return func() tea.Msg {
		return pointsUpdatedMsg{date: date, result: res}
	}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	return fmt.Sprintf("%.1fh", float64(secs)/3600)
}

func formatMinutes(secs int64) string {
	return fmt.Sprintf("%dm", secs/60)
}

// formatPoints renders a signed score with at most two decimals.
func formatPoints(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if p > 0 {
		return "+" + s
	}
	return s
}

func validateInt(least int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < least {
			return fmt.Errorf("must be at least %d", least)
		}
		return nil
	}
}

func validateRate(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
