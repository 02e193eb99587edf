package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PersonSchema represents the people table schema in PostgreSQL
type PersonSchema struct {
	bun.BaseModel `bun:"table:people,alias:p"`

	UUID      uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()" json:"uuid"`
	PersonID  string    `bun:"person_id,notnull,unique" json:"person_id"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug"`
	Names     []Name    `bun:"names,type:jsonb,notnull" json:"names"`
	BirthDate string    `bun:"birth_date" json:"birth_date"`
	Bio       string    `bun:"bio" json:"bio"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// PostgresStore implements Store with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// OpenPostgres opens a bun database on the given DSN
func OpenPostgres(databaseURL string, maxConnections int) (*bun.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	if maxConnections <= 0 {
		maxConnections = 10
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(databaseURL)))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// CreateTables creates the people table if it does not exist
func CreateTables(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*PersonSchema)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create table for model %T: %w", (*PersonSchema)(nil), err)
	}
	return nil
}

// Create inserts a person. The slug follows the filesystem layout so both
// stores address people the same way.
func (s *PostgresStore) Create(ctx context.Context, person *Person) error {
	display := FullName(person.PrimaryName())
	slug := path.Join(ShardPath(person.ID), SlugifyName(display)+"--"+person.ID)

	schema := &PersonSchema{
		UUID:      uuid.New(),
		PersonID:  person.ID,
		Slug:      slug,
		Names:     person.Names,
		BirthDate: person.Vitals.Birth.Date,
		Bio:       person.Bio,
		CreatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return NewStoreConstraintError("create", person.ID, err)
		}
		return NewStoreQueryError("create", person.ID, err)
	}

	person.Slug = slug
	person.DisplayName = display
	return nil
}

// List returns all people in insertion order
func (s *PostgresStore) List(ctx context.Context) ([]Person, error) {
	var rows []PersonSchema
	err := s.db.NewSelect().
		Model(&rows).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, NewStoreQueryError("list", "people", err)
	}

	list := make([]Person, 0, len(rows))
	for _, row := range rows {
		list = append(list, *PersonSchemaToPerson(row))
	}
	return list, nil
}

// Get returns the person with the given slug
func (s *PostgresStore) Get(ctx context.Context, slug string) (*Person, error) {
	var row PersonSchema
	err := s.db.NewSelect().
		Model(&row).
		Where("slug = ?", slug).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, NewStoreQueryError("get", slug, err)
	}
	return PersonSchemaToPerson(row), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PersonSchemaToPerson converts a table row into a person with derived fields set
func PersonSchemaToPerson(schema PersonSchema) *Person {
	person := &Person{
		ID:     schema.PersonID,
		Names:  schema.Names,
		Vitals: Vitals{Birth: Birth{Date: schema.BirthDate}},
		Bio:    schema.Bio,
		Slug:   schema.Slug,
	}
	person.DisplayName = DisplayName(person.PrimaryName())
	return person
}
