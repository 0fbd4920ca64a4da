package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"epicli/internal/errors"
	"epicli/internal/validation"
)

// Artifact describes one file a run produced, in render order
type Artifact struct {
	Name    string
	Path    string
	Caption string
	Size    int64
}

// Manager writes run artifacts into a single output directory. Artifacts
// land under their final name only after a complete, non-empty render, so
// an interrupted run never leaves a truncated chart behind.
type Manager struct {
	outputDir string
}

// NewManager creates a manager rooted at the given output directory
func NewManager(outputDir string) *Manager {
	return &Manager{outputDir: outputDir}
}

// OutputDir returns the directory artifacts are written to
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (m *Manager) EnsureOutputDir() error {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", m.outputDir), err)
	}
	return nil
}

// WriteArtifact streams the render callback into a temporary file and moves
// it over name once the write is complete, replacing any previous artifact
// atomically. Errors from the callback are returned unchanged so callers
// keep their classification; file system failures are storage errors.
// Zero-length output is rejected rather than published.
func (m *Manager) WriteArtifact(name, caption string, render func(io.Writer) error) (Artifact, error) {
	if err := validation.ValidateArtifactName(name); err != nil {
		return Artifact{}, errors.NewStorageError("refusing artifact name", err)
	}
	finalPath := filepath.Join(m.outputDir, name)

	tmp, err := os.CreateTemp(m.outputDir, name+".tmp-*")
	if err != nil {
		return Artifact{}, errors.NewStorageError(fmt.Sprintf("failed to create temp file for %s", name), err)
	}
	tmpPath := tmp.Name()

	slog.Debug("Writing artifact",
		slog.String("name", name),
		slog.String("tmp_path", tmpPath),
		slog.String("final_path", finalPath))

	if err := render(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Artifact{}, err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Artifact{}, errors.NewStorageError(fmt.Sprintf("failed to sync %s", name), err)
	}

	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Artifact{}, errors.NewStorageError(fmt.Sprintf("failed to stat %s", name), err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Artifact{}, errors.NewStorageError(fmt.Sprintf("failed to close %s", name), err)
	}

	if info.Size() == 0 {
		os.Remove(tmpPath)
		return Artifact{}, errors.NewStorageError(fmt.Sprintf("artifact %s rendered no bytes", name), nil)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return Artifact{}, errors.NewStorageError(fmt.Sprintf("failed to move %s into place", name), err)
	}

	slog.Info("Artifact written",
		slog.String("name", name),
		slog.String("path", finalPath),
		slog.Int64("size_bytes", info.Size()))

	return Artifact{Name: name, Path: finalPath, Caption: caption, Size: info.Size()}, nil
}
