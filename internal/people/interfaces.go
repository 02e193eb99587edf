package people

import (
	"context"
)

// Store persists people. Create fills in Slug and DisplayName.
type Store interface {
	Create(ctx context.Context, person *Person) error
	List(ctx context.Context) ([]Person, error)
	Get(ctx context.Context, slug string) (*Person, error)
	Ping(ctx context.Context) error
}

// Manager defines the person operations exposed by the backend
type Manager interface {
	CreatePerson(ctx context.Context, req *CreatePersonRequest) (*Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	GetPerson(ctx context.Context, slug string) (*Person, error)
}
