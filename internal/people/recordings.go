package people

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// IngestStatusPending marks a recording that still needs a transcript
const IngestStatusPending = "pending_transcription"

// RecordingMetadata is the <stem>.yaml sidecar written next to a recording
type RecordingMetadata struct {
	OriginalFilename string `yaml:"original_filename"`
	ContentType      string `yaml:"content_type"`
	IngestStatus     string `yaml:"ingest_status"`
}

// Recording describes an imported file
type Recording struct {
	Filename string
	Kind     string // "audio" or "video"
	Path     string
}

// RecordingArchive stores recordings under
// <root>/people/<slug>/recordings/{audio|video}/
type RecordingArchive struct {
	peopleDir string
	people    Manager
	logger    *zap.Logger
}

// NewRecordingArchive creates an archive rooted at the same directory as the file store
func NewRecordingArchive(root string, manager Manager, logger *zap.Logger) *RecordingArchive {
	return &RecordingArchive{
		peopleDir: filepath.Join(root, "people"),
		people:    manager,
		logger:    logger,
	}
}

// RecordingKind maps a content type to the recordings subdirectory.
// Anything that is not audio is filed as video.
func RecordingKind(contentType string) string {
	if strings.Contains(contentType, "audio") && !strings.Contains(contentType, "video") {
		return "audio"
	}
	return "video"
}

// Import stores the recording of an existing person and writes its sidecar
// with a pending ingest status.
func (a *RecordingArchive) Import(ctx context.Context, slug, filename, contentType string, r io.Reader) (*Recording, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if filename == "" || name == "/" || name == "." {
		return nil, NewValidationError("file", filename, "must have a file name")
	}

	person, err := a.people.GetPerson(ctx, slug)
	if err != nil {
		return nil, err
	}

	kind := RecordingKind(contentType)
	dir := filepath.Join(a.peopleDir, filepath.FromSlash(person.Slug), "recordings", kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewStoreIOError("import", dir, err)
	}

	target := filepath.Join(dir, name)
	if err := writeSafeFrom(target, r); err != nil {
		return nil, NewStoreIOError("import", target, err)
	}

	meta, err := yaml.Marshal(RecordingMetadata{
		OriginalFilename: name,
		ContentType:      contentType,
		IngestStatus:     IngestStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode recording metadata: %w", err)
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if err := writeSafe(filepath.Join(dir, stem+".yaml"), meta); err != nil {
		return nil, NewStoreIOError("import", target, err)
	}

	a.logger.Info("Recording imported",
		zap.String("person_id", person.ID),
		zap.String("kind", kind),
		zap.String("path", target))

	return &Recording{Filename: name, Kind: kind, Path: target}, nil
}
