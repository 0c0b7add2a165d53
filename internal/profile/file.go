package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Format is the serialization of a request profile.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from the file extension. Anything that is not
// .yaml or .yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Exists reports whether a regular file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readFile(op, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, newError(op, path, errors.New("path is required"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(op, path, err)
	}
	return data, nil
}

// writeFile replaces path with data while holding <path>.lock. The lock file is
// left in place: removing it would let two writers lock different inodes.
func writeFile(op, path string, data []byte, overwrite bool) (err error) {
	if strings.TrimSpace(path) == "" {
		return newError(op, path, errors.New("path is required"))
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newError(op, path, err)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return newError(op, path, fmt.Errorf("lock: %w", err))
	}
	if !locked {
		return newError(op, path, ErrLocked)
	}
	defer func() { _ = lock.Unlock() }()

	if !overwrite {
		if _, statErr := os.Stat(path); statErr == nil {
			return newError(op, path, ErrFileExists)
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return newError(op, path, statErr)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return newError(op, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return newError(op, path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return newError(op, path, err)
	}
	if err = tmp.Close(); err != nil {
		return newError(op, path, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return newError(op, path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return newError(op, path, err)
	}
	return nil
}
