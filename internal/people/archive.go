package people

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// TempFilePattern matches files left behind by an interrupted safe write
const TempFilePattern = "*.tmp"

var (
	ErrArchiveMissing  = errors.New("archive root does not exist")
	ErrArchiveNotDir   = errors.New("archive root is not a directory")
	ErrArchiveReadOnly = errors.New("archive root is not writable")
	ErrPeopleDirIsFile = errors.New("cannot create people directory: a file with that name exists")
)

// BootstrapArchive validates the archive root and creates <root>/people.
// The root itself is never created: a missing root usually means the disk
// is not mounted.
func BootstrapArchive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArchiveMissing, root)
		}
		return NewStoreIOError("bootstrap", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrArchiveNotDir, root)
	}

	check, err := os.CreateTemp(root, ".write-check-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArchiveReadOnly, root, err)
	}
	check.Close()
	os.Remove(check.Name())

	peopleDir := filepath.Join(root, "people")
	if info, err := os.Stat(peopleDir); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPeopleDirIsFile, root)
	}
	if err := os.MkdirAll(peopleDir, 0o755); err != nil {
		return NewStoreIOError("bootstrap", peopleDir, err)
	}
	return nil
}

// CleanupTempFiles deletes every file under root whose name matches pattern
// and returns how many were removed. A missing root removes nothing.
func CleanupTempFiles(root, pattern string, logger *zap.Logger) (int, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return 0, nil
	}

	count := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		if err := os.Remove(p); err != nil {
			logger.Warn("Failed to delete temp file", zap.String("path", p), zap.Error(err))
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, NewStoreIOError("cleanup", root, err)
	}
	return count, nil
}

// writeSafe writes data to target through a temp file
func writeSafe(target string, data []byte) error {
	return writeSafeFrom(target, bytes.NewReader(data))
}

// writeSafeFrom streams r into "<target>.<random>.tmp" in the target
// directory, syncs it and renames it over target. The temp file is removed
// on failure; one left by a crash is swept by CleanupTempFiles.
func writeSafeFrom(target string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := io.Copy(tmp, r); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, target)
}
