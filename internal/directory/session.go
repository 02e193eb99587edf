// Package directory keeps the client-side state of a directory session: the
// backend status line, the person list and the create form.
//
// The list is only ever replaced wholesale by a fetch. A successful create
// clears the form and fetches the list again; a failed create leaves the form
// exactly as typed. Every request is bound to the session and nothing is
// applied once the session is closed.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/estate/estate/internal/client"
	"github.com/estate/estate/internal/people"
)

const StatusConnecting = "Connecting to backend..."

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrAlreadyMounted = errors.New("session already mounted")
)

// Backend is the part of the REST client a session uses
type Backend interface {
	Health(ctx context.Context) (*client.HealthResponse, error)
	ListPeople(ctx context.Context, schema people.Schema) ([]people.Record, error)
	CreatePerson(ctx context.Context, payload any) error
}

// MountStep names one of the requests Mount runs
type MountStep int

const (
	StepHealth MountStep = iota
	StepList
)

func (st MountStep) String() string {
	switch st {
	case StepHealth:
		return "health"
	case StepList:
		return "list"
	default:
		return fmt.Sprintf("MountStep(%d)", int(st))
	}
}

// View is a copy of the session state for rendering
type View struct {
	Schema people.Schema
	Status string
	Online bool
	// Answered is false until the health check has succeeded or failed
	Answered bool
	// Loaded is false until the first successful list fetch
	Loaded bool
	People []people.Record
	Form   map[string]string
}

// Session holds all state of one mounted directory view
type Session struct {
	backend Backend
	schema  people.Schema
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	mounted  bool
	status   string
	online   bool
	answered bool
	loaded   bool
	people  []people.Record
	form    *Form
}

// NewSession creates a session whose lifetime is bounded by parent and Close
func NewSession(parent context.Context, backend Backend, schema people.Schema, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		backend: backend,
		schema:  schema,
		logger:  logger.With(zap.String("schema", string(schema))),
		ctx:     ctx,
		cancel:  cancel,
		status:  StatusConnecting,
		people:  make([]people.Record, 0),
		form:    NewForm(schema),
	}
}

// Mount runs the health check and the first list fetch concurrently and
// waits for both. It returns the first failure, which has already been
// applied to the state and logged.
//
// observe, when non-nil, is called from the request goroutine as soon as
// each step's result has been applied. It is not called for results dropped
// because the session was closed.
func (s *Session) Mount(ctx context.Context, observe func(MountStep, error)) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.mounted = true
	s.mu.Unlock()

	report := func(step MountStep, err error) error {
		if observe != nil && !errors.Is(err, ErrSessionClosed) {
			observe(step, err)
		}
		return err
	}

	var g errgroup.Group
	g.Go(func() error { return report(StepHealth, s.Probe(ctx)) })
	g.Go(func() error { return report(StepList, s.ListPeople(ctx)) })
	return g.Wait()
}

// Probe performs the health check and sets the status line
func (s *Session) Probe(ctx context.Context) error {
	reqCtx, done := s.bind(ctx)
	defer done()

	health, err := s.backend.Health(reqCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return ErrSessionClosed
	}

	s.answered = true
	if err != nil {
		s.status = offlineStatus(s.schema, err)
		s.online = false
		s.logger.Warn("Backend health check failed", zap.Error(err))
		return fmt.Errorf("health check failed: %w", err)
	}

	s.status = onlineStatus(s.schema, health.Message)
	s.online = true
	s.logger.Info("Backend online", zap.String("message", health.Message))
	return nil
}

// ListPeople replaces the local list with the server's. On failure the
// previous list is kept.
func (s *Session) ListPeople(ctx context.Context) error {
	reqCtx, done := s.bind(ctx)
	defer done()

	records, err := s.backend.ListPeople(reqCtx, s.schema)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return ErrSessionClosed
	}

	if err != nil {
		s.logger.Error("Failed to fetch people", zap.Error(err))
		return fmt.Errorf("failed to fetch people: %w", err)
	}

	s.people = records
	s.loaded = true
	s.logger.Debug("People fetched", zap.Int("count", len(records)))
	return nil
}

// CreatePerson submits the form. Empty required fields block the submit
// before any request. On success the form is cleared and the list is fetched
// again; a failure of that fetch is logged but does not fail the create.
// There is no in-flight guard: two calls send two requests.
func (s *Session) CreatePerson(ctx context.Context) error {
	s.mu.Lock()
	if s.closed() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if missing := s.form.Missing(); len(missing) > 0 {
		s.mu.Unlock()
		return &MissingFieldError{Fields: missing}
	}
	payload := s.form.Payload()
	s.mu.Unlock()

	reqCtx, done := s.bind(ctx)
	err := s.backend.CreatePerson(reqCtx, payload)
	done()

	s.mu.Lock()
	if s.closed() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("Failed to create person",
			zap.Int("status", client.StatusCode(err)),
			zap.Error(err))
		return fmt.Errorf("failed to create person: %w", err)
	}
	s.form.Reset()
	s.mu.Unlock()

	s.logger.Info("Person created")

	if err := s.ListPeople(ctx); errors.Is(err, ErrSessionClosed) {
		return err
	}
	return nil
}

// SetField updates one form value
func (s *Session) SetField(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Set(key, value)
}

// Schema returns the schema version the session speaks
func (s *Session) Schema() people.Schema {
	return s.schema
}

// Snapshot copies the current state
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]people.Record, len(s.people))
	copy(list, s.people)

	return View{
		Schema:   s.schema,
		Status:   s.status,
		Online:   s.online,
		Answered: s.answered,
		Loaded:   s.loaded,
		People:   list,
		Form:     s.form.Values(),
	}
}

// Close cancels in-flight requests; responses arriving later are dropped
func (s *Session) Close() {
	s.cancel()
}

// Done is closed when the session is closed or its parent context ends
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) closed() bool {
	return s.ctx.Err() != nil
}

// bind derives a request context that is also cancelled when the session closes
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}
