package tui

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
)

type reportsModel struct {
	store  *store.Store
	svc    *points.Service
	width  int
	height int

	offset  int // weeks back from the current one
	cursor  int // selected day, 0 = Monday
	week    points.WeekSummary
	current store.WeeklyBonus // the pool bonus is drawn from
	tracked []store.DailySummary

	chart barchart.Model

	formActive  bool
	form        *huh.Form
	formAmount  *string
	formConfirm *bool
	formDate    string
}

func newReportsModel(s *store.Store, svc *points.Service) reportsModel {
	amount, confirm := "", true
	return reportsModel{
		store:       s,
		svc:         svc,
		chart:       barchart.New(60, 12),
		formAmount:  &amount,
		formConfirm: &confirm,
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	week    points.WeekSummary
	current store.WeeklyBonus
	tracked []store.DailySummary
}

// refresh loads the week before returning: WeekSummary may create the
// current week's ledger and engine writes stay on the update loop.
func (r reportsModel) refresh() tea.Cmd {
	date, err := points.AddDays(r.svc.Today(), -7*r.offset)
	if err != nil {
		return errorCmd(err)
	}
	week, err := r.svc.WeekSummary(date)
	if err != nil {
		log.Printf("tui: week summary %s: %v", date, err)
		return errorCmd(err)
	}
	current := week.Bonus
	if r.offset != 0 {
		if current, err = r.svc.CurrentWeeklyBonus(); err != nil {
			return errorCmd(err)
		}
	}
	var tracked []store.DailySummary
	if end, err := points.AddDays(week.WeekStart, 7); err == nil {
		tracked, _ = r.store.GetDailySummary(week.WeekStart, end)
	}
	return func() tea.Msg {
		return reportsDataMsg{week: week, current: current, tracked: tracked}
	}
}

func (r reportsModel) selectedDay() (store.DailyPoints, bool) {
	if r.cursor < 0 || r.cursor >= len(r.week.Days) {
		return store.DailyPoints{}, false
	}
	return r.week.Days[r.cursor], true
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case reportsDataMsg:
		r.week = msg.week
		r.current = msg.current
		r.tracked = msg.tracked
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
				r.buildChart()
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < 6 {
				r.cursor++
				r.buildChart()
			}
		case key.Matches(msg, keys.Bonus):
			return r.showBonusForm()
		case key.Matches(msg, keys.Recalc):
			if day, ok := r.selectedDay(); ok {
				cmd := recalculate(r.svc, day.Date)
				return r, tea.Batch(cmd, r.refresh())
			}
		}
	}
	return r, nil
}

func (r reportsModel) showBonusForm() (reportsModel, tea.Cmd) {
	day, ok := r.selectedDay()
	if !ok {
		return r, nil
	}
	if r.current.AvailableBonus <= 0 {
		return r, statusCmd("No bonus available this week.", true)
	}

	r.formDate = day.Date
	*r.formAmount = fmt.Sprintf("%d", min(r.current.AvailableBonus, max(1, points.DailyTarget-day.TotalPoints)))
	*r.formConfirm = true

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bonus to apply to "+day.Date).
				Description(fmt.Sprintf("%d available this week, day total %d", r.current.AvailableBonus, day.TotalPoints)).
				Value(r.formAmount).
				Validate(validateInt(1)),
			huh.NewConfirm().Title("Apply?").Value(r.formConfirm),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r reportsModel) updateForm(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		if !*r.formConfirm {
			return r, nil
		}
		return r.applyBonus(r.formDate, atoi(*r.formAmount))
	}

	return r, cmd
}

// applyBonus spends from this week's pool. A refused amount leaves every
// record untouched and is reported as is.
func (r reportsModel) applyBonus(date string, amount int) (reportsModel, tea.Cmd) {
	dp, err := r.svc.ApplyBonus(date, amount)
	if err != nil {
		if !errors.Is(err, points.ErrInsufficientBonus) {
			log.Printf("tui: apply bonus %d to %s: %v", amount, date, err)
		}
		return r, tea.Batch(statusCmd(err.Error(), true), r.refresh())
	}
	return r, tea.Batch(
		func() tea.Msg { return bonusAppliedMsg{date: date, amount: amount, total: dp.TotalPoints} },
		r.refresh(),
	)
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, d := range r.week.Days {
		label := d.Date
		if t, err := points.ParseDate(d.Date); err == nil {
			label = t.Format("Mon 02")
		}

		color := colorPrimary
		switch {
		case i == r.cursor:
			color = colorHighlight
		case d.ReachedGoal:
			color = colorSuccess
		}
		// Bars start at zero; negative totals show up in the table.
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  d.Date,
				Value: float64(max(0, d.TotalPoints)),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Apply Bonus"), "", r.form.View())
		return panelStyle.Width(w).Render(content)
	}

	rangeLabel := r.week.WeekStart
	if len(r.week.Days) == 7 {
		rangeLabel = fmt.Sprintf("%s → %s", r.week.WeekStart, r.week.Days[6].Date)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Week"), "  ", mutedStyle.Render(rangeLabel),
	)
	stats := fmt.Sprintf("%s  %s  %s",
		scoreStyle.Render(fmt.Sprintf("%d pts", r.week.TotalPoints)),
		successStyle.Render(fmt.Sprintf("%d/7 days at target", r.week.DaysReached)),
		bonusStyle.Render(fmt.Sprintf("bonus %d available, %d used", r.week.Bonus.AvailableBonus, r.week.Bonus.UsedBonus)),
	)

	nav := mutedStyle.Render("  ←/→: week  ↑/↓: day  b: apply bonus  r: recalculate")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, stats, "", r.chart.View(), "", r.renderLegend(), "", r.renderDayTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderDayTable(w int) string {
	if len(r.week.Days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %8s %8s %8s  %s", "Date", "Earned", "Bonus", "Total", "Target")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 52))),
	}
	for i, d := range r.week.Days {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := mutedStyle.Render("·")
		if d.ReachedGoal {
			mark = successStyle.Render("✓")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %8d %8d %8d", cursor, d.Date, d.EarnedPoints, d.BonusApplied, d.TotalPoints))+"  "+mark)
	}
	return strings.Join(rows, "\n")
}

// renderLegend lists the week's tracked time per activity.
func (r reportsModel) renderLegend() string {
	totals := make(map[string]int64)
	var order []store.DailySummary
	for _, s := range r.tracked {
		if _, seen := totals[s.ActivityID]; !seen {
			order = append(order, s)
		}
		totals[s.ActivityID] += s.TotalSeconds
	}
	if len(order) == 0 {
		return mutedStyle.Render("  Nothing tracked this week")
	}

	items := make([]string, 0, len(order))
	for _, s := range order {
		items = append(items, fmt.Sprintf("%s %s %s", dot(s.ActivityColor), s.ActivityName, formatHours(totals[s.ActivityID])))
	}
	return "  " + strings.Join(items, "  ")
}
