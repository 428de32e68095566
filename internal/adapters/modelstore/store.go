package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
)

// EnvModelDir overrides the default model directory.
const EnvModelDir = "CYBERBULLYING_MODEL_DIR"

// Extension of artifact files.
const Extension = ".json"

// DefaultDir returns the installation directory of the model artifacts:
// $CYBERBULLYING_MODEL_DIR, else "models" next to the executable when it
// exists, else "models" in the working directory.
func DefaultDir() string {
	if dir := os.Getenv(EnvModelDir); dir != "" {
		return dir
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "models")
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return dir
		}
	}
	return "models"
}

// FileStore reads and writes artifacts as <dir>/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. An empty dir selects DefaultDir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the artifact path for a model name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+Extension)
}

// Load reads and validates the artifact called name.
func (s *FileStore) Load(ctx context.Context, name string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: invalid model name %q", domain.ErrInvalidArtifact, name)
	}

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	artifact := NewArtifact(name, "")
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidArtifact, path, err)
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return artifact, nil
}

// Save writes the artifact atomically under its name.
func (s *FileStore) Save(ctx context.Context, artifact *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := artifact.Validate(); err != nil {
		return err
	}
	if filepath.Base(artifact.Name) != artifact.Name {
		return fmt.Errorf("%w: invalid model name %q", domain.ErrInvalidArtifact, artifact.Name)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model %s: %w", artifact.Name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, artifact.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write model %s: %w", artifact.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model %s: %w", artifact.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(artifact.Name)); err != nil {
		return fmt.Errorf("install model %s: %w", artifact.Name, err)
	}
	return nil
}
