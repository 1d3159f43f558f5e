package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
)

type dashboardModel struct {
	store  *store.Store
	svc    *points.Service
	timers timerPool
	width  int
	height int

	today      store.DailyPoints
	streak     store.Streak
	bonus      store.WeeklyBonus
	activities []store.Activity
	tracked    []store.DailySummary
	trackedSum int64
	cursor     int // selected timer

	// Activity picker state
	picking      bool
	pickerCursor int
	pickable     []store.Activity
}

func newDashboardModel(s *store.Store, svc *points.Service) dashboardModel {
	d := dashboardModel{
		store:  s,
		svc:    svc,
		timers: newTimerPool(s),
	}
	if err := d.timers.restore(); err != nil {
		log.Printf("tui: restore running timers: %v", err)
	}
	return d
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	today      store.DailyPoints
	streak     store.Streak
	bonus      store.WeeklyBonus
	activities []store.Activity
	tracked    []store.DailySummary
	trackedSum int64
}

// loadData only reads: the week's ledger is shown as empty until the engine
// creates it.
func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		date := d.svc.Today()
		msg := dashboardDataMsg{today: store.DailyPoints{Date: date}}

		if dp, err := d.store.GetDailyPoints(date); err != nil {
			log.Printf("tui: load points %s: %v", date, err)
		} else if dp != nil {
			msg.today = *dp
		}
		if st, err := d.svc.Streak(); err == nil {
			msg.streak = st
		}
		if ws, err := points.WeekStart(date); err == nil {
			msg.bonus.WeekStart = ws
			if wb, err := d.store.GetWeeklyBonus(ws); err == nil && wb != nil {
				msg.bonus = *wb
			}
		}
		msg.activities, _ = d.store.ListActivities(false)
		if next, err := points.AddDays(date, 1); err == nil {
			msg.tracked, _ = d.store.GetDailySummary(date, next)
		}
		msg.trackedSum, _ = d.store.GetDayTotal(date)
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.streak = msg.streak
		d.bonus = msg.bonus
		d.activities = msg.activities
		d.tracked = msg.tracked
		d.trackedSum = msg.trackedSum
		return d, nil

	case tickMsg:
		// Midnight rollover.
		if d.today.Date != "" && d.today.Date != d.svc.Today() {
			return d, d.loadData()
		}
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			return d.openPicker()

		case key.Matches(msg, keys.Stop):
			return d.stopTimer(d.cursor)

		case key.Matches(msg, keys.Pause):
			d.timers.toggle(d.cursor)
			return d, nil

		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < d.timers.count()-1 {
				d.cursor++
			}

		case key.Matches(msg, keys.Recalc):
			return d, tea.Batch(recalculate(d.svc, d.svc.Today()), d.loadData())
		}
	}
	return d, nil
}

func (d dashboardModel) openPicker() (dashboardModel, tea.Cmd) {
	if d.timers.full() {
		return d, errorCmd(store.ErrTooManyTimers)
	}
	if len(d.activities) == 0 {
		return d, statusCmd("No activities yet. Press 2 to go to Activities and create one.", true)
	}

	d.pickable = d.pickable[:0]
	for _, a := range d.activities {
		if !d.timers.tracking(a.ID) {
			d.pickable = append(d.pickable, a)
		}
	}
	switch len(d.pickable) {
	case 0:
		return d, statusCmd("Every activity already has a timer running.", true)
	case 1:
		return d.startTimer(d.pickable[0])
	}
	d.picking = true
	d.pickerCursor = 0
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.pickable)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		a := d.pickable[d.pickerCursor]
		d.picking = false
		return d.startTimer(a)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(a store.Activity) (dashboardModel, tea.Cmd) {
	if err := d.timers.start(a); err != nil {
		return d, errorCmd(err)
	}
	d.cursor = d.timers.count() - 1
	return d, func() tea.Msg { return timerStartedMsg{activity: a.Name} }
}

// stopTimer saves the session and rescores the day it belongs to.
func (d dashboardModel) stopTimer(i int) (dashboardModel, tea.Cmd) {
	if d.timers.count() == 0 {
		return d, nil
	}
	sess, err := d.timers.stop(i)
	if err != nil {
		return d, errorCmd(err)
	}
	if d.cursor >= d.timers.count() {
		d.cursor = max(0, d.timers.count()-1)
	}
	return d, tea.Batch(
		recalculate(d.svc, sess.Date),
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{session: sess} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	scorePanel := d.renderScorePanel(contentWidth)
	trackedPanel := d.renderTrackedPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderActivityPicker(contentWidth)
	} else {
		bottomPanel = d.renderBreakdownPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, scorePanel, trackedPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Timers %d/%d", d.timers.count(), store.MaxRunningSessions))

	if d.timers.count() == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("■  No timers running. Press s to start one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := d.timers.now()
	rows := []string{title}
	for i, t := range d.timers.timers {
		cursor := "  "
		if i == d.cursor {
			cursor = "> "
		}
		clock := timerRunningStyle.Render(formatDuration(t.elapsed(now)))
		state := successStyle.Render("●  RUNNING")
		if t.paused() {
			clock = timerPausedStyle.Render(formatDuration(t.elapsed(now)))
			state = warningStyle.Render("⏸  PAUSED")
		}
		rows = append(rows, fmt.Sprintf("%s%s %-20s %s  %s", cursor, dot(t.color), t.activityName, clock, state))
	}
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderScorePanel(w int) string {
	style := scoreStyle
	reached := mutedStyle.Render(fmt.Sprintf("%d to go", max(0, points.DailyTarget-d.today.TotalPoints)))
	if d.today.ReachedGoal {
		style = scoreReachedStyle
		reached = successStyle.Render("✓ target reached")
	}

	score := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("Today"),
		style.Render(fmt.Sprintf("%d / %d", d.today.TotalPoints, points.DailyTarget)),
		reached,
	)
	parts := mutedStyle.Render(fmt.Sprintf("earned %d  ·  bonus applied %d", d.today.EarnedPoints, d.today.BonusApplied))
	streak := fmt.Sprintf("%s  %s",
		streakStyle.Render(fmt.Sprintf("🔥 %d day streak", d.streak.CurrentStreak)),
		mutedStyle.Render(fmt.Sprintf("(best %d)", d.streak.LongestStreak)),
	)
	bonus := bonusStyle.Render(fmt.Sprintf("Weekly bonus: %d available, %d used (cap %d)",
		d.bonus.AvailableBonus, d.bonus.UsedBonus, points.WeeklyBonusCap))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, score, parts, "", streak, bonus))
}

func (d dashboardModel) renderTrackedPanel(w int) string {
	header := fmt.Sprintf("%s  %s", titleStyle.Render("Tracked today"), highlightStyle.Render(formatSeconds(d.trackedSum)))
	if len(d.tracked) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No finished sessions today"),
		))
	}

	rows := []string{header}
	for _, s := range d.tracked {
		rows = append(rows, fmt.Sprintf("  %s %-20s %s  (%d sessions)",
			dot(s.ActivityColor), s.ActivityName, formatSeconds(s.TotalSeconds), s.SessionCount))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderBreakdownPanel(w int) string {
	title := titleStyle.Render("Breakdown")
	if len(d.today.Breakdown) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing scored today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title}
	for _, b := range d.today.Breakdown {
		detail := ""
		switch {
		case b.Source == store.SourceTodo:
			detail = mutedStyle.Render("todo")
		case b.GoalTime > 0:
			mark := errorStyle.Render("✗")
			if b.GoalMet {
				mark = successStyle.Render("✓")
			}
			detail = fmt.Sprintf("%s %s / %s", mark, formatMinutes(b.TimeSpent), formatMinutes(b.GoalTime))
		default:
			detail = mutedStyle.Render(formatMinutes(b.TimeSpent))
		}
		pts := pointsStyle(b.Points).Render(fmt.Sprintf("%7s", formatPoints(b.Points)))
		rows = append(rows, fmt.Sprintf("  %-24s %s  %s", b.SourceName, pts, detail))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderActivityPicker(w int) string {
	title := titleStyle.Render("Select Activity")

	rows := []string{title}
	for i, a := range d.pickable {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, dot(a.Color), a.Name)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
