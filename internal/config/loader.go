package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileSystem is an abstraction for reading configuration files.
// This allows for easy testing with in-memory file systems such as
// fstest.MapFS.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader assembles a Config from defaults, a file and the environment.
type Loader struct {
	fs        FileSystem
	lookupEnv func(string) (string, bool)
	prefix    string
}

// NewLoader creates a loader backed by the OS file system and environment.
func NewLoader() *Loader {
	return NewLoaderWithFS(OSFS{}, os.LookupEnv)
}

// NewLoaderWithFS creates a loader with a custom file system and
// environment lookup.
func NewLoaderWithFS(fsys FileSystem, lookupEnv func(string) (string, bool)) *Loader {
	if lookupEnv == nil {
		lookupEnv = func(string) (string, bool) { return "", false }
	}
	return &Loader{fs: fsys, lookupEnv: lookupEnv, prefix: EnvPrefix}
}

// Load is shorthand for NewLoader().Load(path).
func Load(path string) (Config, error) {
	return NewLoader().Load(path)
}

// Load returns the defaults overlaid with the file at path (skipped when
// path is empty) and then the environment. The result is validated.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := l.loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes the file at path onto cfg. Keys absent from the file
// keep their current values; unknown keys are rejected.
func (l *Loader) loadFile(path string, cfg *Config) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil // empty document
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}
