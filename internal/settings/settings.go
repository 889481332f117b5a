// Package settings persists the user's preferred input and output folders.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"
)

// FileName is the base name of the preferences file.
const FileName = "settings.json"

// Settings holds the default folders offered when starting a conversion.
type Settings struct {
	DefaultInput  string `mapstructure:"default_input" json:"default_input" yaml:"default_input"`
	DefaultOutput string `mapstructure:"default_output" json:"default_output" yaml:"default_output"`
}

// Store reads and writes Settings as a JSON file. Writes are guarded by an
// advisory lock next to the file so concurrent processes do not interleave.
// A Store is safe for concurrent use.
type Store struct {
	path string
	// mu serializes callers sharing this Store; the flock handle is shared
	// too, and a second Lock on a held handle is a no-op.
	mu   sync.Mutex
	lock *flock.Flock
}

// DefaultPath returns <user config dir>/tokenprinter/settings.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "tokenprinter", FileName), nil
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the stored settings. A missing file yields empty settings and no
// error. A file that cannot be parsed also yields empty settings, together with
// the parse error so the caller can report it.
func (s *Store) Load() (Settings, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return Settings{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		return Settings{}, fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.read()
}

// Save replaces the stored settings.
func (s *Store) Save(st Settings) error {
	_, err := s.Update(func(cur *Settings) { *cur = st })
	return err
}

// Update applies fn to the current settings and writes the result back while
// holding the lock.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return Settings{}, fmt.Errorf("create settings dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return Settings{}, fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	// An unreadable file is replaced rather than blocking the save.
	cur, _ := s.read()
	fn(&cur)

	v := viper.New()
	v.SetConfigType("json")
	v.Set("default_input", cur.DefaultInput)
	v.Set("default_output", cur.DefaultOutput)
	if err := v.WriteConfigAs(s.path); err != nil {
		return Settings{}, fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return cur, nil
}

func (s *Store) read() (Settings, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", s.path, err)
	}

	var st Settings
	if err := v.Unmarshal(&st); err != nil {
		return Settings{}, fmt.Errorf("decode settings %s: %w", s.path, err)
	}
	return st, nil
}
