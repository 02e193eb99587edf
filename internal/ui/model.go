package ui

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/estate/estate/internal/client"
	"github.com/estate/estate/internal/directory"
)

// mountStepMsg carries one mount result as soon as the session has applied it
type mountStepMsg struct {
	step directory.MountStep
	err  error
}

type mountDoneMsg struct{ err error }

type createDoneMsg struct{ err error }

// Model is the bubbletea model of one directory session
type Model struct {
	ctx     context.Context
	session *directory.Session
	steps   chan tea.Msg

	fields []directory.Field
	inputs []textinput.Model
	focus  int

	spinner  spinner.Model
	inFlight int

	view   directory.View
	hint   string
	styles Styles
	width  int
}

// New builds the view for a session. The session is closed when the user quits.
func New(ctx context.Context, session *directory.Session) Model {
	fields := directory.Fields(session.Schema())
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		inputs[i] = ti
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		session: session,
		steps:   make(chan tea.Msg, 2),
		fields:  fields,
		inputs:  inputs,
		spinner: sp,
		view:    session.Snapshot(),
		styles:  DefaultStyles(),
	}
}

// Init mounts the session. The health check and the first list fetch
// complete in any order and each redraws the view on arrival.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.mount(),
		m.waitForStep(),
	)
}

// mount runs the session mount, forwarding every step result to steps.
// The channel is closed once both steps have reported.
func (m Model) mount() tea.Cmd {
	return func() tea.Msg {
		err := m.session.Mount(m.ctx, func(step directory.MountStep, err error) {
			m.steps <- mountStepMsg{step: step, err: err}
		})
		if !errors.Is(err, directory.ErrAlreadyMounted) {
			close(m.steps)
		}
		return mountDoneMsg{err: err}
	}
}

// waitForStep blocks for the next mount result
func (m Model) waitForStep() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.steps
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) submit() tea.Cmd {
	return func() tea.Msg {
		return createDoneMsg{err: m.session.CreatePerson(m.ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.session.Close()
			return m, tea.Quit
		case "tab", "down":
			return m, m.setFocus((m.focus + 1) % len(m.inputs))
		case "shift+tab", "up":
			return m, m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		case "enter":
			if missing := m.missingLabels(); len(missing) > 0 {
				m.hint = "Please fill out: " + strings.Join(missing, ", ")
				return m, nil
			}
			m.hint = ""
			m.inFlight++
			return m, m.submit()
		}

		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		if err := m.session.SetField(m.fields[m.focus].Key, m.inputs[m.focus].Value()); err != nil {
			m.hint = err.Error()
		}
		return m, cmd

	case mountStepMsg:
		m.view = m.session.Snapshot()
		return m, m.waitForStep()

	case mountDoneMsg:
		m.view = m.session.Snapshot()
		return m, nil

	case createDoneMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		if errors.Is(msg.err, directory.ErrSessionClosed) {
			return m, nil
		}
		m.view = m.session.Snapshot()
		if msg.err != nil {
			m.hint = createFailureHint(msg.err)
			return m, nil
		}
		m.syncInputs()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func createFailureHint(err error) string {
	switch client.StatusCode(err) {
	case http.StatusConflict:
		return "This person is already in the directory"
	case http.StatusBadRequest:
		return "The backend rejected the form"
	default:
		return "Could not add person: " + err.Error()
	}
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

// syncInputs copies the session form into the text inputs
func (m *Model) syncInputs() {
	for i, f := range m.fields {
		m.inputs[i].SetValue(m.view.Form[f.Key])
	}
}

func (m Model) missingLabels() []string {
	var missing []string
	for i, f := range m.fields {
		if f.Required && m.inputs[i].Value() == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// View renders the page.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Digital Estate"))
	sb.WriteString("\n")

	var status string
	switch {
	case !m.view.Answered:
		status = m.styles.Muted.Render(m.view.Status)
	case m.view.Online:
		status = m.styles.StatusOK.Render(m.view.Status)
	default:
		status = m.styles.StatusError.Render(m.view.Status)
	}
	sb.WriteString(m.styles.Panel.Render("System Status:\n" + status))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.CardTitle.Render("People"))
	sb.WriteString("\n")
	sb.WriteString(RenderPeople(m.view.People, m.styles))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.CardTitle.Render("Add person"))
	if m.inFlight > 0 {
		sb.WriteString(" " + m.spinner.View())
	}
	sb.WriteString("\n")
	for i, f := range m.fields {
		label := f.Label
		if f.Required {
			label += "*"
		}
		if i == m.focus {
			sb.WriteString(m.styles.Focused.Render(label))
		} else {
			sb.WriteString(m.styles.Label.Render(label))
		}
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
	}
	if m.hint != "" {
		sb.WriteString(m.styles.Hint.Render(m.hint))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("tab/shift+tab: move • enter: submit • esc: quit"))
	sb.WriteString("\n")

	return sb.String()
}
