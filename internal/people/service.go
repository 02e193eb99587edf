package people

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Service implements the Manager interface on top of a Store
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new person service instance
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// CreatePerson builds a person from the request, derives its id and persists it
func (s *Service) CreatePerson(ctx context.Context, req *CreatePersonRequest) (*Person, error) {
	family := strings.TrimSpace(req.FamilyName)
	given := strings.TrimSpace(req.GivenName)
	suffix := strings.TrimSpace(req.Suffix)
	dob := strings.TrimSpace(req.DOB)

	if given == "" {
		return nil, NewValidationError("given_name", req.GivenName, "must not be empty")
	}
	if dob != "" {
		if _, err := time.Parse(dateLayout, dob); err != nil {
			return nil, NewValidationError("dob", req.DOB, "must be an ISO date (YYYY-MM-DD)")
		}
	}

	person := &Person{
		ID: GenerateID(family, given, suffix, dob),
		Names: []Name{{
			Type:    NameTypePrimary,
			Given:   given,
			Surname: family,
			Suffix:  suffix,
		}},
		Vitals: Vitals{Birth: Birth{Date: dob}},
		Bio:    req.Bio,
	}

	if !IDPattern.MatchString(person.ID) {
		return nil, NewValidationError("id", person.ID, "does not match the id pattern")
	}

	if err := s.store.Create(ctx, person); err != nil {
		s.logger.Error("Failed to create person",
			zap.String("person_id", person.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	s.logger.Info("Person created",
		zap.String("person_id", person.ID),
		zap.String("slug", person.Slug))

	return person, nil
}

// ListPeople returns every stored person in store order
func (s *Service) ListPeople(ctx context.Context) ([]Person, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return list, nil
}

// GetPerson looks a person up by slug
func (s *Service) GetPerson(ctx context.Context, slug string) (*Person, error) {
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return nil, ErrInvalidSlug
	}
	return s.store.Get(ctx, slug)
}
