// Package settings persists the small set of user preferences that outlive
// an editing session. Preferences are stored in
// ~/.config/snapframe/settings.toml.
package settings

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

// Well known keys.
const (
	KeyDefaultBackground = "default_background"
	KeySaveDirectory     = "save_directory"
	// ShortcutPrefix prefixes per action keyboard overrides, for example
	// "shortcuts.undo".
	ShortcutPrefix = "shortcuts."
)

const defaultPath = "~/.config/snapframe/settings.toml"

// ErrKeyConflict is returned by Save when a plain key is also used as the
// section of a dotted key, such as "shortcuts" next to "shortcuts.undo".
var ErrKeyConflict = errors.New("settings key is also a section")

// DefaultPath returns the default settings file path.
func DefaultPath() string { return defaultPath }

// Store is a string key-value store with an explicit durable flush.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Save() error
}

// MemoryStore keeps values in memory only. Save is a no-op unless SaveErr
// is set.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	saves   int
	SaveErr error
}

// NewMemoryStore returns a store seeded with values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: map[string]string{}}
	maps.Copy(m.values, values)
	return m
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStore) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saves++
	return nil
}

// Saves returns how many successful Save calls were made.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FileStore is a Store backed by a TOML file. Keys with a dot are written as
// a single level table, so "shortcuts.undo" lands under [shortcuts].
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open reads the store at path, or the default path when empty. A missing or
// unreadable file yields an empty store; only path resolution can fail.
func Open(path string) (*FileStore, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	fs := &FileStore{path: resolved, values: map[string]string{}}

	f, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("settings: %v", err)
		}
		return fs, nil
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return fs, nil
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		log.Printf("settings: parse %s: %v", resolved, err)
		return fs, nil
	}
	flatten("", doc, fs.values)
	return fs, nil
}

func flatten(prefix string, doc map[string]any, out map[string]string) {
	for k, v := range doc {
		switch t := v.(type) {
		case map[string]any:
			flatten(prefix+k+".", t, out)
		case string:
			out[prefix+k] = t
		default:
			out[prefix+k] = fmt.Sprint(t)
		}
	}
}

// Path returns the resolved file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key.
func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns all keys in sorted order.
func (s *FileStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Save writes the store, creating directories as needed.
func (s *FileStore) Save() error {
	s.mu.Lock()
	doc := map[string]any{}
	for _, k := range slices.Sorted(maps.Keys(s.values)) {
		v := s.values[k]
		if section, name, ok := strings.Cut(k, "."); ok {
			if _, clash := s.values[section]; clash {
				s.mu.Unlock()
				return fmt.Errorf("%w: %q and %q", ErrKeyConflict, section, k)
			}
			table, _ := doc[section].(map[string]any)
			if table == nil {
				table = map[string]any{}
				doc[section] = table
			}
			table[name] = v
			continue
		}
		doc[k] = v
	}
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Shortcuts returns the shortcut overrides keyed by action name.
func Shortcuts(s Store, actions []string) map[string]string {
	out := map[string]string{}
	for _, a := range actions {
		if v, ok := s.Get(ShortcutPrefix + a); ok && strings.TrimSpace(v) != "" {
			out[a] = strings.TrimSpace(v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPath
	}
	return ExpandPath(path)
}

// ExpandPath expands a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	expanded, err := homedir.Expand(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Abs(expanded)
}
