package ui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/client"
	"github.com/estate/estate/internal/directory"
	"github.com/estate/estate/internal/people"
)

type stubBackend struct {
	mu        sync.Mutex
	list      []people.Record
	healthErr error
	createErr error
	created   []any
}

func (b *stubBackend) Health(ctx context.Context) (*client.HealthResponse, error) {
	if b.healthErr != nil {
		return nil, b.healthErr
	}
	return &client.HealthResponse{Status: "ok", Message: "Backend is running"}, nil
}

func (b *stubBackend) ListPeople(ctx context.Context, schema people.Schema) ([]people.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]people.Record, len(b.list))
	copy(out, b.list)
	return out, nil
}

func (b *stubBackend) CreatePerson(ctx context.Context, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return b.createErr
	}
	b.created = append(b.created, payload)
	if p, ok := payload.(people.CreateV1); ok {
		b.list = append(b.list, people.Record{Schema: people.SchemaV1, V1: &people.PersonV1{ID: "1", Name: p.Name}})
	}
	return nil
}

func newModel(t *testing.T, backend *stubBackend, schema people.Schema) Model {
	t.Helper()
	s := directory.NewSession(context.Background(), backend, schema, zap.NewNop())
	t.Cleanup(s.Close)
	return New(context.Background(), s)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestInitialView(t *testing.T) {
	m := newModel(t, &stubBackend{}, people.SchemaV3)

	out := m.View()
	assert.Contains(t, out, "Digital Estate")
	assert.Contains(t, out, directory.StatusConnecting)
	assert.Contains(t, out, EmptyListMessage)
	assert.NotNil(t, m.Init())
}

// mountAll runs the mount command the way the program would and feeds every
// step result back into the model until the step channel is drained.
func mountAll(t *testing.T, m Model) Model {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- m.mount()() }()

	reported := 0
	for msg := m.waitForStep()(); msg != nil; msg = m.waitForStep()() {
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		require.NotNil(t, cmd, "each step must wait for the next one")
		reported++
	}
	assert.Equal(t, 2, reported)

	m, _ = update(t, m, <-done)
	return m
}

// tagStyles marks each status style so the rendered view shows which one was used
func tagStyles(m Model) Model {
	tag := func(prefix string) lipgloss.Style {
		return lipgloss.NewStyle().Transform(func(s string) string { return prefix + s })
	}
	m.styles.Muted = tag("[muted]")
	m.styles.StatusOK = tag("[ok]")
	m.styles.StatusError = tag("[error]")
	return m
}

func TestMountUpdatesStatusAndList(t *testing.T) {
	backend := &stubBackend{list: []people.Record{{Schema: people.SchemaV1, V1: &people.PersonV1{ID: "1", Name: "Grandma"}}}}
	m := newModel(t, backend, people.SchemaV1)

	m = mountAll(t, m)
	out := m.View()
	assert.Contains(t, out, "Backend says: Backend is running")
	assert.Contains(t, out, "Grandma")

	m = newModel(t, &stubBackend{healthErr: errors.New("connection refused")}, people.SchemaV1)
	m = mountAll(t, m)
	assert.Contains(t, m.View(), "Error connecting to backend: connection refused")
}

func TestMountStepRedrawsBeforeOtherStep(t *testing.T) {
	m := newModel(t, &stubBackend{}, people.SchemaV3)

	go m.mount()()
	msg := m.waitForStep()()
	step, ok := msg.(mountStepMsg)
	require.True(t, ok)

	m, _ = update(t, m, step)
	switch step.step {
	case directory.StepHealth:
		assert.True(t, m.view.Answered)
	case directory.StepList:
		assert.True(t, m.view.Loaded)
	}

	// a second mount is refused and leaves the step channel open
	msg = m.mount()()
	assert.ErrorIs(t, msg.(mountDoneMsg).err, directory.ErrAlreadyMounted)
	assert.NotNil(t, m.waitForStep()())
	assert.Nil(t, m.waitForStep()())
}

func TestStatusStyleFollowsHealthResult(t *testing.T) {
	m := tagStyles(newModel(t, &stubBackend{}, people.SchemaV3))
	assert.Contains(t, m.View(), "[muted]"+directory.StatusConnecting)
	assert.NotContains(t, m.View(), "[error]")

	m = mountAll(t, m)
	assert.Contains(t, m.View(), "[ok]Online: Backend is running")

	m = tagStyles(newModel(t, &stubBackend{healthErr: errors.New("down")}, people.SchemaV3))
	m = mountAll(t, m)
	assert.Contains(t, m.View(), "[error]Offline: down")
}

func TestSubmitClearsInputsAndRefreshesList(t *testing.T) {
	backend := &stubBackend{}
	m := newModel(t, backend, people.SchemaV1)

	m = typeText(t, m, "Grandma")
	assert.Equal(t, "Grandma", m.inputs[0].Value())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.inFlight)

	m, _ = update(t, m, cmd())
	assert.Equal(t, 0, m.inFlight)
	assert.Empty(t, m.inputs[0].Value())
	assert.Contains(t, m.View(), "Grandma")
	assert.Equal(t, []any{people.CreateV1{Name: "Grandma"}}, backend.created)
}

func TestSubmitFailureKeepsInputs(t *testing.T) {
	backend := &stubBackend{createErr: errors.New("boom")}
	m := newModel(t, backend, people.SchemaV1)

	m = typeText(t, m, "Grandma")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, "Grandma", m.inputs[0].Value())
	assert.Equal(t, "Grandma", m.view.Form["name"])
	assert.Contains(t, m.View(), "Could not add person: failed to create person: boom")
}

func TestSubmitConflictShowsHint(t *testing.T) {
	backend := &stubBackend{createErr: &client.RequestError{
		Kind: client.ErrorKindStatus, Method: "POST", Path: "/api/people/", StatusCode: 409,
	}}
	m := newModel(t, backend, people.SchemaV1)

	m = typeText(t, m, "Grandma")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, "This person is already in the directory", m.hint)

	// the next submit clears the previous failure
	backend.createErr = nil
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.hint)
	m, _ = update(t, m, cmd())
	assert.Empty(t, m.hint)
}

func TestTypingIntoUnknownFieldShowsHint(t *testing.T) {
	m := newModel(t, &stubBackend{}, people.SchemaV1)
	m.fields = append([]directory.Field(nil), m.fields...)
	m.fields[0].Key = "nickname"

	m = typeText(t, m, "Nana")
	assert.Contains(t, m.hint, `unknown form field "nickname"`)
	assert.Contains(t, m.View(), "unknown form field")
	assert.Empty(t, m.session.Snapshot().Form["name"])
}

func TestSubmitWithMissingFieldsShowsHint(t *testing.T) {
	backend := &stubBackend{}
	m := newModel(t, backend, people.SchemaV3)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please fill out")
	assert.Empty(t, backend.created)
}

func TestFocusCycles(t *testing.T) {
	m := newModel(t, &stubBackend{}, people.SchemaV3)
	n := len(m.inputs)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, n-1, m.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Doe")
	assert.Equal(t, "Doe", m.inputs[1].Value())
	assert.Equal(t, "Doe", m.session.Snapshot().Form[m.fields[1].Key])
}

func TestQuitClosesSession(t *testing.T) {
	m := newModel(t, &stubBackend{}, people.SchemaV3)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	select {
	case <-m.session.Done():
	default:
		t.Fatal("session not closed")
	}

	// results of requests still in flight are dropped
	msg, ok := m.mount()().(mountDoneMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.err, directory.ErrSessionClosed)
	assert.Nil(t, m.waitForStep()())
	assert.Equal(t, directory.StatusConnecting, m.session.Snapshot().Status)
}
