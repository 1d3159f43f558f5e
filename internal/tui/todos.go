package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
)

type todosModel struct {
	store  *store.Store
	svc    *points.Service
	now    func() time.Time
	width  int
	height int

	todos  []store.Todo
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle  *string
	formPoints *string
}

func newTodosModel(s *store.Store, svc *points.Service) todosModel {
	title, pts := "", ""
	return todosModel{
		store:      s,
		svc:        svc,
		now:        time.Now,
		formTitle:  &title,
		formPoints: &pts,
	}
}

func (m *todosModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type todosDataMsg struct {
	todos []store.Todo
}

func (m todosModel) refresh() tea.Cmd {
	return func() tea.Msg {
		todos, _ := m.store.ListTodos()
		return todosDataMsg{todos: todos}
	}
}

func (m todosModel) update(msg tea.Msg) (todosModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todosDataMsg:
		m.todos = msg.todos
		if m.cursor >= len(m.todos) {
			m.cursor = max(0, len(m.todos)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.todos)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showNewForm()
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if len(m.todos) > 0 {
				return m.toggle(m.todos[m.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if len(m.todos) > 0 {
				return m.remove(m.todos[m.cursor])
			}
		}
	}
	return m, nil
}

// toggle flips completion and rescores the day the todo counts for, or
// used to count for when it is reopened.
func (m todosModel) toggle(t store.Todo) (todosModel, tea.Cmd) {
	var date string
	if t.Completed {
		prev, err := m.store.ReopenTodo(t.ID)
		if err != nil {
			return m, errorCmd(err)
		}
		if prev.CompletedAt == nil {
			return m, m.refresh()
		}
		date = points.DateKey(*prev.CompletedAt)
	} else {
		done, err := m.store.CompleteTodo(t.ID, m.now())
		if err != nil {
			return m, errorCmd(err)
		}
		date = points.DateKey(*done.CompletedAt)
	}
	return m, tea.Batch(recalculate(m.svc, date), m.refresh())
}

func (m todosModel) remove(t store.Todo) (todosModel, tea.Cmd) {
	if err := m.store.DeleteTodo(t.ID); err != nil {
		return m, errorCmd(err)
	}
	if t.Completed && t.CompletedAt != nil {
		return m, tea.Batch(recalculate(m.svc, points.DateKey(*t.CompletedAt)), m.refresh())
	}
	return m, m.refresh()
}

func (m todosModel) showNewForm() (todosModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formPoints = "10"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Todo").Value(m.formTitle).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("title is required")
				}
				return nil
			}),
			huh.NewInput().Title("Points").Value(m.formPoints).Validate(validateInt(0)),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m todosModel) updateForm(msg tea.Msg) (todosModel, tea.Cmd) {
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
		if _, err := m.store.CreateTodo(strings.TrimSpace(*m.formTitle), atoi(*m.formPoints)); err != nil {
			return m, errorCmd(err)
		}
		return m, m.refresh()
	}

	return m, cmd
}

func (m todosModel) view() string {
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Todo"), "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	w := m.width - 4
	title := titleStyle.Render("Todos")

	if len(m.todos) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No todos. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	for i, t := range m.todos {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		when := ""
		if t.Completed {
			check = successStyle.Render("[✓]")
			if t.CompletedAt != nil {
				when = mutedStyle.Render(" done " + points.DateKey(*t.CompletedAt))
			}
		}
		pts := bonusStyle.Render(fmt.Sprintf("+%d", t.Points))
		rows = append(rows, fmt.Sprintf("%s%s %s  %s%s", style.Render(cursor), check, style.Render(fmt.Sprintf("%-32s", t.Title)), pts, when))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  t/enter: toggle done  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
