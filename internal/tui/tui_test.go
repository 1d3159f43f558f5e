package tui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// goalActivity creates a positive activity worth 10 points for 20 minutes.
func goalActivity(t *testing.T, s *store.Store, name string) *store.Activity {
	t.Helper()
	a, err := s.CreateActivity(store.ActivityInput{Name: name, Color: "#000", GoalPoints: 10})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetGoal(store.Goal{ActivityID: a.ID, MinimumMinutes: 20, Enabled: true}); err != nil {
		t.Fatal(err)
	}
	return a
}

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findStatus(msgs []tea.Msg) (statusMsg, bool) {
	for _, m := range msgs {
		if s, ok := m.(statusMsg); ok {
			return s, true
		}
	}
	return statusMsg{}, false
}

var day = time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local)

// ============================================================
// Timers
// ============================================================

func TestTimerPauseResume(t *testing.T) {
	tm := activeTimer{state: timerRunning, startTime: day}

	tm.pause(day.Add(10 * time.Minute))
	if !tm.paused() {
		t.Fatal("timer should be paused")
	}
	if got := tm.elapsed(day.Add(15 * time.Minute)); got != 10*time.Minute {
		t.Fatalf("elapsed while paused = %v, want 10m", got)
	}

	tm.resume(day.Add(20 * time.Minute))
	if tm.paused() {
		t.Fatal("timer should be running after resume")
	}
	if tm.pauseGap != 10*time.Minute {
		t.Fatalf("pauseGap = %v, want 10m", tm.pauseGap)
	}
	if got := tm.elapsed(day.Add(30 * time.Minute)); got != 20*time.Minute {
		t.Fatalf("elapsed = %v, want 20m", got)
	}
}

func TestTimerPauseWhenNotRunning(t *testing.T) {
	tm := activeTimer{}
	tm.pause(day)
	if tm.state != timerStopped {
		t.Fatal("pause should be a no-op on a stopped timer")
	}
	if tm.elapsed(day.Add(time.Hour)) != 0 {
		t.Fatal("stopped timer should report 0 elapsed")
	}
}

func TestTimerResumeWhenNotPaused(t *testing.T) {
	tm := activeTimer{state: timerRunning, startTime: day}
	tm.resume(day.Add(time.Minute))
	if tm.pauseGap != 0 {
		t.Fatal("resume on a running timer should not add a pause gap")
	}
}

func TestTimerToggle(t *testing.T) {
	tm := activeTimer{state: timerRunning, startTime: day}

	tm.toggle(day.Add(time.Minute))
	if !tm.paused() {
		t.Fatal("toggle should pause")
	}
	if got := tm.pausedFor(day.Add(3 * time.Minute)); got != 2*time.Minute {
		t.Fatalf("pausedFor mid-pause = %v, want 2m", got)
	}
	tm.toggle(day.Add(4 * time.Minute))
	if tm.paused() {
		t.Fatal("toggle should resume")
	}
}

func TestTimerPoolStartStop(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Read")

	clock := day
	p := newTimerPool(s)
	p.now = func() time.Time { return clock }

	if err := p.start(*a); err != nil {
		t.Fatal(err)
	}
	if p.count() != 1 || !p.tracking(a.ID) {
		t.Fatal("pool should track the started activity")
	}

	clock = day.Add(5 * time.Minute)
	p.toggle(0)
	clock = day.Add(15 * time.Minute)
	p.toggle(0)
	clock = day.Add(30 * time.Minute)

	sess, err := p.stop(0)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Duration != 20*60 {
		t.Fatalf("duration = %d, want 1200 (pause excluded)", sess.Duration)
	}
	if sess.Date != "2026-10-14" {
		t.Fatalf("session date = %q", sess.Date)
	}
	if p.count() != 0 {
		t.Fatal("stopped timer should leave the pool")
	}
}

func TestTimerPoolStopWhilePaused(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Read")

	clock := day
	p := newTimerPool(s)
	p.now = func() time.Time { return clock }
	p.start(*a)

	clock = day.Add(10 * time.Minute)
	p.toggle(0)
	clock = day.Add(40 * time.Minute)

	sess, err := p.stop(0)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Duration != 10*60 {
		t.Fatalf("duration = %d, want 600", sess.Duration)
	}
}

func TestTimerPoolLimit(t *testing.T) {
	s := newTestStore(t)
	p := newTimerPool(s)

	for _, name := range []string{"A", "B", "C"} {
		if err := p.start(*goalActivity(t, s, name)); err != nil {
			t.Fatalf("start %s: %v", name, err)
		}
	}
	if !p.full() {
		t.Fatal("pool should be full at three timers")
	}
	err := p.start(*goalActivity(t, s, "D"))
	if !errors.Is(err, store.ErrTooManyTimers) {
		t.Fatalf("fourth timer: err = %v, want ErrTooManyTimers", err)
	}
	if p.count() != 3 {
		t.Fatalf("count = %d after refused start", p.count())
	}
}

func TestTimerPoolStopBadIndex(t *testing.T) {
	p := newTimerPool(newTestStore(t))
	if _, err := p.stop(0); err == nil {
		t.Fatal("expected error stopping a missing timer")
	}
}

func TestTimerPoolRestore(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Read")
	if _, err := s.StartSession(a.ID, day); err != nil {
		t.Fatal(err)
	}

	p := newTimerPool(s)
	if err := p.restore(); err != nil {
		t.Fatal(err)
	}
	if p.count() != 1 {
		t.Fatalf("restored %d timers, want 1", p.count())
	}
	if p.timers[0].activityName != "Read" || !p.anyRunning() {
		t.Fatalf("restored timer = %+v", p.timers[0])
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour, "01:00:00"},
		{time.Hour + 30*time.Minute + 45*time.Second, "01:30:45"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(3661); got != "01:01:01" {
		t.Fatalf("formatSeconds(3661) = %q", got)
	}
	if got := formatMinutes(1250); got != "20m" {
		t.Fatalf("formatMinutes(1250) = %q", got)
	}
}

func TestFormatPoints(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{10, "+10"},
		{-1.5, "-1.5"},
		{-0.25, "-0.25"},
	}
	for _, tt := range tests {
		if got := formatPoints(tt.in); got != tt.want {
			t.Errorf("formatPoints(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormValidators(t *testing.T) {
	v := validateInt(1)
	if v("3") != nil || v(" 12 ") != nil {
		t.Fatal("valid integers rejected")
	}
	if v("0") == nil || v("abc") == nil || v("") == nil {
		t.Fatal("invalid integers accepted")
	}
	if validateRate("0.5") != nil || validateRate("2") != nil {
		t.Fatal("valid rates rejected")
	}
	if validateRate("-1") == nil || validateRate("x") == nil {
		t.Fatal("invalid rates accepted")
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Dashboard", "Activities", "Todos", "Reports"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
	if viewDashboard != 0 || viewActivities != 1 || viewTodos != 2 || viewReports != 3 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Dashboard model
// ============================================================

func TestDashboardInit(t *testing.T) {
	s := newTestStore(t)
	d := newDashboardModel(s, points.NewService(s))

	if d.timers.count() != 0 {
		t.Fatal("dashboard should start with no timers")
	}
	msg := d.Init()()
	data, ok := msg.(dashboardDataMsg)
	if !ok {
		t.Fatalf("Init produced %T", msg)
	}
	if data.today.Date == "" {
		t.Fatal("today's date should be set even before scoring")
	}
}

func TestDashboardStopRecalculatesDay(t *testing.T) {
	s := newTestStore(t)
	svc := points.NewService(s)
	a := goalActivity(t, s, "Read")

	clock := day
	d := newDashboardModel(s, svc)
	d.timers.now = func() time.Time { return clock }
	d.activities = []store.Activity{*a}

	d, _ = d.openPicker()
	if d.timers.count() != 1 {
		t.Fatal("a single activity should start without the picker")
	}

	clock = day.Add(25 * time.Minute)
	d, cmd := d.stopTimer(0)
	if d.timers.count() != 0 {
		t.Fatal("timer should be stopped")
	}

	dp, err := s.GetDailyPoints("2026-10-14")
	if err != nil {
		t.Fatal(err)
	}
	if dp == nil || dp.EarnedPoints != 10 {
		t.Fatalf("day after stop = %+v, want 10 earned", dp)
	}

	var updated bool
	for _, m := range collect(cmd) {
		if u, ok := m.(pointsUpdatedMsg); ok && u.date == "2026-10-14" {
			updated = true
		}
	}
	if !updated {
		t.Fatal("stop should report the recalculation")
	}
}

func TestDashboardPicker(t *testing.T) {
	s := newTestStore(t)
	d := newDashboardModel(s, points.NewService(s))
	d.activities = []store.Activity{*goalActivity(t, s, "A"), *goalActivity(t, s, "B")}

	d, _ = d.openPicker()
	if !d.picking || len(d.pickable) != 2 {
		t.Fatalf("picker should list both activities, picking=%v pickable=%d", d.picking, len(d.pickable))
	}

	d, _ = d.updatePicker(tea.KeyMsg{Type: tea.KeyDown})
	d, _ = d.updatePicker(tea.KeyMsg{Type: tea.KeyEnter})
	if d.picking || d.timers.count() != 1 || d.timers.timers[0].activityName != "B" {
		t.Fatalf("expected B running, got %+v", d.timers.timers)
	}

	// A is the only one left, so the next start skips the picker.
	d, _ = d.openPicker()
	if d.picking || d.timers.count() != 2 {
		t.Fatal("last remaining activity should start directly")
	}
}

func TestDashboardPickerWithoutActivities(t *testing.T) {
	s := newTestStore(t)
	d := newDashboardModel(s, points.NewService(s))

	d, cmd := d.openPicker()
	if d.picking {
		t.Fatal("picker should not open without activities")
	}
	st, ok := findStatus(collect(cmd))
	if !ok || !st.isError {
		t.Fatal("expected an error status")
	}
}

func TestDashboardView(t *testing.T) {
	s := newTestStore(t)
	d := newDashboardModel(s, points.NewService(s))
	d.setSize(120, 40)
	d.today = store.DailyPoints{
		Date:         "2026-10-14",
		EarnedPoints: 8,
		TotalPoints:  8,
		Breakdown: []store.Breakdown{
			{Source: store.SourceActivity, SourceName: "Read", Points: 10, GoalMet: true, TimeSpent: 1500, GoalTime: 1200},
			{Source: store.SourceActivity, SourceName: "Doomscroll", Points: -2, TimeSpent: 240},
		},
	}
	d.streak = store.Streak{CurrentStreak: 3, LongestStreak: 5}

	out := d.view()
	for _, want := range []string{"8 / 100", "Read", "Doomscroll", "3 day streak", "best 5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dashboard view missing %q", want)
		}
	}
}

// ============================================================
// Activities model
// ============================================================

func TestActivitiesSaveCreatesGoal(t *testing.T) {
	s := newTestStore(t)
	m := newActivitiesModel(s, points.NewService(s))

	m, _ = m.showActivityForm(nil)
	m.values.name = " Guitar "
	m.values.goalPoints = "15"
	m.values.goalMinutes = "45"
	if err := m.saveActivity(); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListActivities(false)
	if len(list) != 1 || list[0].Name != "Guitar" || list[0].GoalPoints != 15 {
		t.Fatalf("activities = %+v", list)
	}
	goals, _ := s.ListGoals()
	if len(goals) != 1 || goals[0].MinimumMinutes != 45 || !goals[0].Enabled {
		t.Fatalf("goals = %+v", goals)
	}
}

func TestActivitiesSaveNegativeDropsGoal(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Scroll")
	m := newActivitiesModel(s, points.NewService(s))
	m.goals = map[string]store.Goal{a.ID: {ActivityID: a.ID, MinimumMinutes: 20, Enabled: true}}

	m, _ = m.showActivityForm(a)
	if m.editingID != a.ID || m.values.goalMinutes != "20" {
		t.Fatalf("edit form not prefilled: %+v", m.values)
	}
	m.values.negative = true
	m.values.rate = "1.5"
	if err := m.saveActivity(); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetActivity(a.ID)
	if !got.IsNegative || got.NegativePointsPerMinute != 1.5 {
		t.Fatalf("activity = %+v", got)
	}
	goals, _ := s.ListGoals()
	if len(goals) != 0 {
		t.Fatalf("negative activity kept its goal: %+v", goals)
	}
	if m.pointsLabel(*got) != "-1.5/min" || m.goalLabel(*got) != "negative" {
		t.Fatalf("labels = %q %q", m.pointsLabel(*got), m.goalLabel(*got))
	}
}

func TestActivitiesArchive(t *testing.T) {
	s := newTestStore(t)
	m := newActivitiesModel(s, points.NewService(s))
	goalActivity(t, s, "Old")

	m, _ = m.update(m.refresh()())
	if len(m.activities) != 1 {
		t.Fatal("refresh should load the activity")
	}
	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}
	if len(m.activities) != 0 {
		t.Fatal("archived activity should disappear from the list")
	}
}

func TestActivitiesAddSession(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Piano")
	m := newActivitiesModel(s, points.NewService(s))
	m, _ = m.update(m.refresh()())

	m, _ = m.showSessionForm(nil)
	if m.formType != "session" {
		t.Fatalf("formType = %q", m.formType)
	}
	m.values.sessionDate = "2026-10-14"
	m.values.sessionStart = "07:30"
	m.values.sessionMinutes = "25"
	sess, err := m.addSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess.ActivityID != a.ID || sess.Date != "2026-10-14" || sess.Duration != 25*60 {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Running() {
		t.Fatal("added session should be stopped")
	}
}

func TestActivitiesEditSession(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Piano")
	sess, _ := s.AddSession(a.ID, day, 10*60)
	m := newActivitiesModel(s, points.NewService(s))

	m, _ = m.showSessionForm(sess)
	if m.formType != "edit_session" || m.values.sessionMinutes != "10" {
		t.Fatalf("edit form not prefilled: %q %+v", m.formType, m.values)
	}
	m.values.sessionMinutes = "40"
	got, err := m.editSession()
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration != 40*60 {
		t.Fatalf("duration = %d, want %d", got.Duration, 40*60)
	}
}

func TestActivitiesDeleteSessionRecalculates(t *testing.T) {
	s := newTestStore(t)
	svc := points.NewService(s)
	a := goalActivity(t, s, "Piano")
	s.AddSession(a.ID, day, 30*60)
	if _, err := svc.RecalculateDay("2026-10-14"); err != nil {
		t.Fatal(err)
	}

	m := newActivitiesModel(s, svc)
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.viewingSessions {
		t.Fatal("enter should open the sessions view")
	}
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}
	if len(m.sessions) != 1 || !strings.Contains(m.view(), "2026-10-14") {
		t.Fatalf("sessions = %+v", m.sessions)
	}

	m, cmd = m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}
	if len(m.sessions) != 0 {
		t.Fatal("deleted session still listed")
	}
	dp, _ := s.GetDailyPoints("2026-10-14")
	if dp == nil || dp.EarnedPoints != 0 {
		t.Fatalf("day not rescored after delete: %+v", dp)
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.viewingSessions {
		t.Fatal("esc should go back to the list")
	}
}

func TestActivitiesRunningSessionLocked(t *testing.T) {
	s := newTestStore(t)
	a := goalActivity(t, s, "Piano")
	if _, err := s.StartSession(a.ID, day); err != nil {
		t.Fatal(err)
	}
	m := newActivitiesModel(s, points.NewService(s))
	m, _ = m.update(m.refresh()())
	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}

	_, cmd = m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if st, ok := findStatus(collect(cmd)); !ok || !st.isError {
		t.Fatal("deleting a running session should be refused")
	}
	if running, _ := s.ListRunningSessions(); len(running) != 1 {
		t.Fatal("running session was removed")
	}
}

// ============================================================
// Todos model
// ============================================================

func TestTodosToggleRecalculates(t *testing.T) {
	s := newTestStore(t)
	m := newTodosModel(s, points.NewService(s))
	m.now = func() time.Time { return day }

	todo, _ := s.CreateTodo("Taxes", 40)

	m, _ = m.toggle(*todo)
	dp, _ := s.GetDailyPoints("2026-10-14")
	if dp == nil || dp.EarnedPoints != 40 {
		t.Fatalf("after completing: %+v", dp)
	}

	done, _ := s.GetTodo(todo.ID)
	m, _ = m.toggle(*done)
	dp, _ = s.GetDailyPoints("2026-10-14")
	if dp.EarnedPoints != 0 {
		t.Fatalf("after reopening: earned = %d, want 0", dp.EarnedPoints)
	}
}

func TestTodosDeleteCompletedRecalculates(t *testing.T) {
	s := newTestStore(t)
	m := newTodosModel(s, points.NewService(s))
	m.now = func() time.Time { return day }

	todo, _ := s.CreateTodo("Taxes", 40)
	m, _ = m.toggle(*todo)
	done, _ := s.GetTodo(todo.ID)

	m, _ = m.remove(*done)
	if _, err := s.GetTodo(todo.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("todo should be deleted, err = %v", err)
	}
	dp, _ := s.GetDailyPoints("2026-10-14")
	if dp.EarnedPoints != 0 {
		t.Fatalf("deleted todo still counted: %d", dp.EarnedPoints)
	}
}

func TestTodosView(t *testing.T) {
	s := newTestStore(t)
	m := newTodosModel(s, points.NewService(s))
	m.setSize(120, 40)
	if !strings.Contains(m.view(), "No todos") {
		t.Fatal("empty view should say so")
	}

	s.CreateTodo("Write report", 25)
	m, _ = m.update(m.refresh()())
	out := m.view()
	if !strings.Contains(out, "Write report") || !strings.Contains(out, "+25") {
		t.Fatal("todo row missing")
	}
}

// ============================================================
// Reports model
// ============================================================

func TestReportsRefreshLoadsWeek(t *testing.T) {
	s := newTestStore(t)
	r := newReportsModel(s, points.NewService(s))
	r.setSize(120, 40)

	r, _ = r.update(r.refresh()())
	if len(r.week.Days) != 7 {
		t.Fatalf("week has %d days, want 7", len(r.week.Days))
	}
	if r.view() == "" {
		t.Fatal("reports view rendered empty")
	}
}

func TestReportsLegend(t *testing.T) {
	s := newTestStore(t)
	svc := points.NewService(s)
	a := goalActivity(t, s, "Piano")
	start, _ := points.ParseDate(svc.Today())
	s.AddSession(a.ID, start.Add(8*time.Hour), 90*60)

	r := newReportsModel(s, svc)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())
	if got := r.renderLegend(); !strings.Contains(got, "Piano") || !strings.Contains(got, "1.5h") {
		t.Fatalf("legend = %q", got)
	}
}

func TestReportsApplyBonusRefused(t *testing.T) {
	s := newTestStore(t)
	svc := points.NewService(s)
	r := newReportsModel(s, svc)

	_, cmd := r.applyBonus(svc.Today(), 5)
	st, ok := findStatus(collect(cmd))
	if !ok || !st.isError || !strings.Contains(st.text, "insufficient bonus") {
		t.Fatalf("expected insufficient bonus status, got %+v", st)
	}
	if dp, _ := s.GetDailyPoints(svc.Today()); dp != nil {
		t.Fatal("refused bonus must not write the day")
	}
}

func TestReportsApplyBonus(t *testing.T) {
	s := newTestStore(t)
	svc := points.NewService(s)
	if err := svc.AddBonusToWeek(svc.Today(), 50); err != nil {
		t.Fatal(err)
	}
	r := newReportsModel(s, svc)

	_, cmd := r.applyBonus(svc.Today(), 20)
	var applied bool
	for _, m := range collect(cmd) {
		if a, ok := m.(bonusAppliedMsg); ok && a.amount == 20 && a.total == 20 {
			applied = true
		}
	}
	if !applied {
		t.Fatal("expected bonusAppliedMsg")
	}

	wb, err := svc.CurrentWeeklyBonus()
	if err != nil {
		t.Fatal(err)
	}
	if wb.AvailableBonus != 30 || wb.UsedBonus != 20 {
		t.Fatalf("ledger = %+v", wb)
	}
}

func TestReportsBonusFormNeedsPool(t *testing.T) {
	s := newTestStore(t)
	r := newReportsModel(s, points.NewService(s))
	r, _ = r.update(r.refresh()())

	r, cmd := r.showBonusForm()
	if r.formActive {
		t.Fatal("form should not open with an empty pool")
	}
	if st, ok := findStatus(collect(cmd)); !ok || !st.isError {
		t.Fatal("expected an error status")
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	s := newTestStore(t)
	return NewApp(s, points.NewService(s), t.TempDir())
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t)
	app.width = 120
	app.height = 40

	for i := range viewNames {
		app.activeView = viewState(i)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < len(viewNames); i++ {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = model.(App)
	}
	if app.activeView != viewDashboard {
		t.Fatalf("tab should wrap around, got view %d", app.activeView)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app := newTestApp(t)
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t)
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "test status", isError: true})
	app = model.(App)
	if !app.statusError {
		t.Fatal("error flag not kept")
	}
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppPointsUpdatedStatus(t *testing.T) {
	app := newTestApp(t)
	msg := pointsUpdatedMsg{
		date: "2026-10-14",
		result: points.DayResult{
			Points:      store.DailyPoints{TotalPoints: 130},
			BonusEarned: 30,
			Streak:      store.Streak{CurrentStreak: 4},
			Transition:  points.Continued,
		},
	}
	model, _ := app.Update(msg)
	app = model.(App)
	for _, want := range []string{"130/100", "+30", "streak 4"} {
		if !strings.Contains(app.status, want) {
			t.Fatalf("status %q missing %q", app.status, want)
		}
	}
}

func TestAppExport(t *testing.T) {
	app := newTestApp(t)
	if err := app.store.SetDailyPoints(store.DailyPoints{Date: "2026-10-14", TotalPoints: 100, ReachedGoal: true}); err != nil {
		t.Fatal(err)
	}

	for format, ext := range []string{".csv", ".json"} {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("export %s returned %+v", ext, msg)
		}
		if !strings.HasSuffix(done.path, ext) {
			t.Fatalf("path %q should end in %s", done.path, ext)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatalf("export file missing: %v", err)
		}
	}
}

// ============================================================
// Key bindings and styles
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"activeTab":    func() string { return activeTabStyle.Render("test") },
		"panel":        func() string { return panelStyle.Render("test") },
		"timerRunning": func() string { return timerRunningStyle.Render("test") },
		"timerPaused":  func() string { return timerPausedStyle.Render("test") },
		"score":        func() string { return scoreStyle.Render("test") },
		"scoreReached": func() string { return scoreReachedStyle.Render("test") },
		"bonus":        func() string { return bonusStyle.Render("test") },
		"streak":       func() string { return streakStyle.Render("test") },
		"points":       func() string { return pointsStyle(-1).Render("test") },
		"highlight":    func() string { return highlightStyle.Render("test") },
	}
	for name, fn := range styles {
		if fn() == "" {
			t.Fatalf("style %q rendered empty", name)
		}
	}
}
