package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
)

var activityColors = []string{"#F2A541", "#2EC4B6", "#FF6B6B", "#7AA2F7", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

const sessionListLimit = 20

// activityFormValues backs the huh forms. It is held by pointer so it
// survives the value copies of the model.
type activityFormValues struct {
	name        string
	color       string
	negative    bool
	goalPoints  string
	rate        string
	goalMinutes string
	goalEnabled bool

	sessionDate    string
	sessionStart   string
	sessionMinutes string
}

type activitiesModel struct {
	store  *store.Store
	svc    *points.Service
	width  int
	height int

	activities      []store.Activity
	goals           map[string]store.Goal
	sessions        []store.Session
	cursor          int
	sessionCursor   int
	viewingSessions bool // true = viewing sessions of the selected activity

	formActive     bool
	form           *huh.Form
	formType       string // "activity", "session", "edit_session"
	values         *activityFormValues
	editingID      string // activity being edited, empty when creating
	editingSession int64
}

func newActivitiesModel(s *store.Store, svc *points.Service) activitiesModel {
	return activitiesModel{
		store:  s,
		svc:    svc,
		goals:  map[string]store.Goal{},
		values: &activityFormValues{},
	}
}

func (m *activitiesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type activitiesDataMsg struct {
	activities []store.Activity
	goals      map[string]store.Goal
}

type sessionsDataMsg struct {
	sessions []store.Session
}

func (m activitiesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		activities, _ := m.store.ListActivities(false)
		goals := map[string]store.Goal{}
		list, _ := m.store.ListGoals()
		for _, g := range list {
			goals[g.ActivityID] = g
		}
		return activitiesDataMsg{activities: activities, goals: goals}
	}
}

func (m activitiesModel) refreshSessions() tea.Cmd {
	if m.cursor >= len(m.activities) {
		return nil
	}
	id := m.activities[m.cursor].ID
	return func() tea.Msg {
		sessions, _ := m.store.ListSessions(store.SessionFilter{ActivityID: &id, Limit: sessionListLimit})
		return sessionsDataMsg{sessions: sessions}
	}
}

func (m activitiesModel) update(msg tea.Msg) (activitiesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case activitiesDataMsg:
		m.activities = msg.activities
		m.goals = msg.goals
		if m.cursor >= len(m.activities) {
			m.cursor = max(0, len(m.activities)-1)
		}
		return m, nil

	case sessionsDataMsg:
		m.sessions = msg.sessions
		if m.sessionCursor >= len(m.sessions) {
			m.sessionCursor = max(0, len(m.sessions)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.viewingSessions {
			return m.updateSessionView(msg)
		}
		return m.updateActivityList(msg)
	}
	return m, nil
}

func (m activitiesModel) updateActivityList(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.activities)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(m.activities) > 0 {
			m.viewingSessions = true
			m.sessionCursor = 0
			return m, m.refreshSessions()
		}
	case key.Matches(msg, keys.New):
		return m.showActivityForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(m.activities) > 0 {
			a := m.activities[m.cursor]
			return m.showActivityForm(&a)
		}
	case key.Matches(msg, keys.Delete):
		if len(m.activities) > 0 {
			a := m.activities[m.cursor]
			if err := m.store.ArchiveActivity(a.ID); err != nil {
				return m, errorCmd(err)
			}
			return m, tea.Batch(m.refresh(), statusCmd("Archived "+a.Name, false))
		}
	}
	return m, nil
}

func (m activitiesModel) updateSessionView(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingSessions = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.sessionCursor < len(m.sessions)-1 {
			m.sessionCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showSessionForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(m.sessions) > 0 {
			sess := m.sessions[m.sessionCursor]
			if sess.Running() {
				return m, statusCmd("Stop the timer before editing this session.", true)
			}
			return m.showSessionForm(&sess)
		}
	case key.Matches(msg, keys.Delete):
		if len(m.sessions) > 0 {
			sess := m.sessions[m.sessionCursor]
			if sess.Running() {
				return m, statusCmd("Stop the timer before deleting this session.", true)
			}
			if err := m.store.DeleteSession(sess.ID); err != nil {
				return m, errorCmd(err)
			}
			return m, tea.Batch(recalculate(m.svc, sess.Date), m.refreshSessions())
		}
	}
	return m, nil
}

// showActivityForm opens the create form, or the edit form when a is set.
func (m activitiesModel) showActivityForm(a *store.Activity) (activitiesModel, tea.Cmd) {
	*m.values = activityFormValues{
		color:       activityColors[0],
		goalPoints:  strconv.Itoa(points.DefaultGoalPoints),
		rate:        strconv.FormatFloat(points.DefaultNegativePointsPerMinute, 'f', -1, 64),
		goalMinutes: "30",
		goalEnabled: true,
	}
	m.formType = "activity"
	m.editingID = ""
	if a != nil {
		m.editingID = a.ID
		m.values.name = a.Name
		m.values.color = a.Color
		m.values.negative = a.IsNegative
		m.values.goalPoints = strconv.Itoa(a.GoalPoints)
		m.values.rate = strconv.FormatFloat(a.NegativePointsPerMinute, 'f', -1, 64)
		if g, ok := m.goals[a.ID]; ok {
			m.values.goalMinutes = strconv.Itoa(g.MinimumMinutes)
			m.values.goalEnabled = g.Enabled
		} else {
			m.values.goalEnabled = false
		}
	}

	colorOptions := make([]huh.Option[string], len(activityColors))
	for i, c := range activityColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	v := m.values
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Activity Name").Value(&v.name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(&v.color),
			huh.NewConfirm().Title("Negative activity?").
				Description("Negative activities cost points for every minute tracked.").
				Value(&v.negative),
		),
		huh.NewGroup(
			huh.NewInput().Title("Points when the goal is met").Value(&v.goalPoints).Validate(validateInt(0)),
			huh.NewInput().Title("Minimum minutes per day").Value(&v.goalMinutes).Validate(validateInt(0)),
			huh.NewConfirm().Title("Goal enabled?").Value(&v.goalEnabled),
		).WithHideFunc(func() bool { return v.negative }),
		huh.NewGroup(
			huh.NewInput().Title("Points lost per minute").Value(&v.rate).Validate(validateRate),
		).WithHideFunc(func() bool { return !v.negative }),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

// showSessionForm adds a past session, or edits the duration of sess.
func (m activitiesModel) showSessionForm(sess *store.Session) (activitiesModel, tea.Cmd) {
	v := m.values
	now := time.Now()
	v.sessionDate = points.DateKey(now)
	v.sessionStart = now.Add(-30 * time.Minute).Format("15:04")
	v.sessionMinutes = "30"

	var group *huh.Group
	if sess != nil {
		m.formType = "edit_session"
		m.editingSession = sess.ID
		v.sessionMinutes = strconv.FormatInt(sess.Duration/60, 10)
		group = huh.NewGroup(
			huh.NewInput().Title("Minutes on "+sess.Date).Value(&v.sessionMinutes).Validate(validateInt(0)),
		)
	} else {
		m.formType = "session"
		group = huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(&v.sessionDate).Validate(func(s string) error {
				_, err := points.ParseDate(strings.TrimSpace(s))
				return err
			}),
			huh.NewInput().Title("Start (HH:MM)").Value(&v.sessionStart).Validate(func(s string) error {
				_, err := time.Parse("15:04", strings.TrimSpace(s))
				return err
			}),
			huh.NewInput().Title("Minutes").Value(&v.sessionMinutes).Validate(validateInt(1)),
		)
	}
	m.form = huh.NewForm(group).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m activitiesModel) updateForm(msg tea.Msg) (activitiesModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "activity":
			if err := m.saveActivity(); err != nil {
				return m, errorCmd(err)
			}
			// Goal changes move today's score.
			return m, tea.Batch(m.refresh(), recalculate(m.svc, m.svc.Today()))
		case "session":
			sess, err := m.addSession()
			if err != nil {
				return m, errorCmd(err)
			}
			return m, tea.Batch(recalculate(m.svc, sess.Date), m.refreshSessions())
		case "edit_session":
			sess, err := m.editSession()
			if err != nil {
				return m, errorCmd(err)
			}
			return m, tea.Batch(recalculate(m.svc, sess.Date), m.refreshSessions())
		}
	}

	return m, cmd
}

func (m activitiesModel) saveActivity() error {
	v := m.values
	in := store.ActivityInput{
		Name:                    strings.TrimSpace(v.name),
		Color:                   v.color,
		IsNegative:              v.negative,
		GoalPoints:              atoi(v.goalPoints),
		NegativePointsPerMinute: atof(v.rate),
	}

	id := m.editingID
	if id == "" {
		a, err := m.store.CreateActivity(in)
		if err != nil {
			return err
		}
		id = a.ID
	} else if err := m.store.UpdateActivity(id, in); err != nil {
		return err
	}

	if v.negative {
		return m.store.DeleteGoal(id)
	}
	return m.store.SetGoal(store.Goal{
		ActivityID:     id,
		MinimumMinutes: atoi(v.goalMinutes),
		Enabled:        v.goalEnabled,
	})
}

func (m activitiesModel) addSession() (*store.Session, error) {
	if m.cursor >= len(m.activities) {
		return nil, store.ErrNotFound
	}
	v := m.values
	start, err := time.ParseInLocation("2006-01-02 15:04",
		strings.TrimSpace(v.sessionDate)+" "+strings.TrimSpace(v.sessionStart), time.Local)
	if err != nil {
		return nil, err
	}
	return m.store.AddSession(m.activities[m.cursor].ID, start, int64(atoi(v.sessionMinutes))*60)
}

func (m activitiesModel) editSession() (*store.Session, error) {
	id := m.editingSession
	if err := m.store.UpdateSessionDuration(id, int64(atoi(m.values.sessionMinutes))*60); err != nil {
		return nil, err
	}
	return m.store.GetSession(id)
}

func (m activitiesModel) view() string {
	if m.formActive && m.form != nil {
		var title string
		switch {
		case m.formType == "session":
			title = "Add Session"
		case m.formType == "edit_session":
			title = "Edit Session"
		case m.editingID != "":
			title = "Edit Activity"
		default:
			title = "New Activity"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	if m.viewingSessions {
		return m.renderSessionView()
	}
	return m.renderActivityList()
}

func (m activitiesModel) renderActivityList() string {
	w := m.width - 4
	title := titleStyle.Render("Activities")

	if len(m.activities) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No activities yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-18s %s", "", "Name", "Goal", "Points")))

	for i, a := range m.activities {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-18s %s", cursor, dot(a.Color), a.Name, m.goalLabel(a), m.pointsLabel(a))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  u: edit  d: archive  enter: sessions"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m activitiesModel) renderSessionView() string {
	w := m.width - 4
	if m.cursor >= len(m.activities) {
		return panelStyle.Width(w).Render(mutedStyle.Render("No activity selected"))
	}
	a := m.activities[m.cursor]
	title := titleStyle.Render(fmt.Sprintf("%s %s: sessions", dot(a.Color), a.Name))

	if len(m.sessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No sessions. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	for i, sess := range m.sessions {
		cursor := "  "
		style := normalItemStyle
		if i == m.sessionCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dur := formatSeconds(sess.Duration)
		if sess.Running() {
			dur = successStyle.Render("running")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s  %s", cursor, sess.Date, sess.StartTime.Local().Format("15:04")))+"  "+dur)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add  u: edit minutes  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m activitiesModel) goalLabel(a store.Activity) string {
	if a.IsNegative {
		return "negative"
	}
	g, ok := m.goals[a.ID]
	if !ok || !g.Enabled {
		return "no goal"
	}
	return fmt.Sprintf("%d min/day", g.MinimumMinutes)
}

func (m activitiesModel) pointsLabel(a store.Activity) string {
	if a.IsNegative {
		return fmt.Sprintf("-%s/min", strconv.FormatFloat(a.NegativePointsPerMinute, 'f', -1, 64))
	}
	return fmt.Sprintf("+%d", a.GoalPoints)
}
