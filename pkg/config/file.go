package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ErrFileExists is returned by [WriteFile] when the file exists and
// overwriting was not requested.
var ErrFileExists = errors.New("file already exists")

// ReadFile reads a config file from disk. The returned error wraps
// [os.ErrNotExist] when there is no file at path.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: unknown file state", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// Find searches for fileName starting at dir and walking up to the
// filesystem root. It returns an empty string when no file was found.
func Find(dir, fileName string) (string, error) {
	searchDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	for {
		path := filepath.Join(searchDir, fileName)

		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}

		parent := filepath.Dir(searchDir)
		if parent == searchDir {
			return "", nil
		}

		searchDir = parent
	}
}

// Resolve returns the config path to use: path itself when set, otherwise
// the nearest [DefaultFileName] at or above dir, otherwise [DefaultFileName]
// in dir.
func Resolve(path, dir string) (string, error) {
	if path != "" {
		return path, nil
	}

	found, err := Find(dir, DefaultFileName)
	if err != nil {
		return "", err
	}
	if found != "" {
		return found, nil
	}

	return filepath.Join(dir, DefaultFileName), nil
}

// WriteFile writes data to path. An existing file is left alone and
// [ErrFileExists] is returned, unless force is set, in which case the
// existing file is first renamed to a timestamped backup.
func WriteFile(path string, data []byte, force bool) error {
	exists := false

	info, err := os.Stat(path)
	if info != nil {
		switch {
		case err == nil && info.Mode().IsRegular():
			exists = true
		case info.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	if exists && !force {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if exists {
		backup := filepath.Join(filepath.Dir(path),
			fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano()))

		slog.Info("backing up existing config", slog.String("path", backup))

		err = os.Rename(path, backup)
		if err != nil {
			return fmt.Errorf("rename existing config to backup: %w", err)
		}
	}

	slog.Info("write config", slog.String("path", path))

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
