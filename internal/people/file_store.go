package people

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const bioFile = "bio.yaml"

// FileStore keeps one bio.yaml per person under
// <root>/people/<shard>/<Surname,_Given>--<id>/
type FileStore struct {
	peopleDir string
	logger    *zap.Logger
}

// NewFileStore bootstraps the archive at root and opens its people directory
func NewFileStore(root string, logger *zap.Logger) (*FileStore, error) {
	if err := BootstrapArchive(root); err != nil {
		return nil, err
	}
	return &FileStore{
		peopleDir: filepath.Join(root, "people"),
		logger:    logger,
	}, nil
}

// Create writes the person's bio.yaml and fills in Slug and DisplayName
func (s *FileStore) Create(ctx context.Context, person *Person) error {
	display := FullName(person.PrimaryName())
	slug := path.Join(ShardPath(person.ID), SlugifyName(display)+"--"+person.ID)
	target := filepath.Join(s.peopleDir, filepath.FromSlash(slug))

	if err := os.MkdirAll(target, 0o755); err != nil {
		return NewStoreIOError("create", slug, err)
	}

	data, err := yaml.Marshal(person)
	if err != nil {
		return fmt.Errorf("failed to encode person %s: %w", person.ID, err)
	}

	if err := writeSafe(filepath.Join(target, bioFile), data); err != nil {
		return NewStoreIOError("create", slug, err)
	}

	person.Slug = slug
	person.DisplayName = display
	return nil
}

// List walks the people directory at any depth and loads every bio.yaml.
// Unreadable or malformed files are logged and skipped.
func (s *FileStore) List(ctx context.Context) ([]Person, error) {
	list := make([]Person, 0)

	err := filepath.WalkDir(s.peopleDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || d.Name() != bioFile {
			return nil
		}

		rel, err := filepath.Rel(s.peopleDir, filepath.Dir(p))
		if err != nil {
			return err
		}
		person, err := s.load(filepath.ToSlash(rel))
		if err != nil {
			s.logger.Warn("Skipping unreadable person",
				zap.String("path", p),
				zap.Error(err))
			return nil
		}
		list = append(list, *person)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return list, nil
		}
		return nil, NewStoreIOError("list", s.peopleDir, err)
	}

	return list, nil
}

// Get loads the person stored under the slug, a path relative to the people directory
func (s *FileStore) Get(ctx context.Context, slug string) (*Person, error) {
	if strings.Contains(slug, "..") || strings.HasPrefix(slug, "/") {
		return nil, ErrInvalidSlug
	}
	if _, err := os.Stat(filepath.Join(s.peopleDir, filepath.FromSlash(slug), bioFile)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPersonNotFound
		}
		return nil, NewStoreIOError("get", slug, err)
	}
	return s.load(slug)
}

// Ping checks the people directory is still reachable, e.g. the SSD is mounted
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.peopleDir)
	if err != nil {
		return NewStoreIOError("ping", s.peopleDir, err)
	}
	if !info.IsDir() {
		return NewStoreIOError("ping", s.peopleDir, fmt.Errorf("not a directory"))
	}
	return nil
}

func (s *FileStore) load(slug string) (*Person, error) {
	data, err := os.ReadFile(filepath.Join(s.peopleDir, filepath.FromSlash(slug), bioFile))
	if err != nil {
		return nil, NewStoreIOError("read", slug, err)
	}

	var person Person
	if err := yaml.Unmarshal(data, &person); err != nil {
		return nil, NewStoreCorruptionError("read", slug, err)
	}
	if !IDPattern.MatchString(person.ID) {
		return nil, NewStoreCorruptionError("read", slug, fmt.Errorf("invalid id %q", person.ID))
	}

	person.Slug = slug
	person.DisplayName = DisplayName(person.PrimaryName())
	return &person, nil
}
