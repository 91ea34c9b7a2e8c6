package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	s, err := Open(path)
	require.NoError(t, err)
	_, ok := s.Get(KeyDefaultBackground)
	assert.False(t, ok)

	s.Set(KeyDefaultBackground, "asset:ocean")
	s.Set(KeySaveDirectory, "~/Pictures")
	s.Set(ShortcutPrefix+"undo", "ctrl+z")
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[shortcuts]")

	again, err := Open(path)
	require.NoError(t, err)
	v, ok := again.Get(KeyDefaultBackground)
	require.True(t, ok)
	assert.Equal(t, "asset:ocean", v)
	v, _ = again.Get("shortcuts.undo")
	assert.Equal(t, "ctrl+z", v)
	assert.Equal(t, []string{"default_background", "save_directory", "shortcuts.undo"}, again.Keys())
}

func TestFileStoreSaveRejectsKeySectionClash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	s, err := Open(path)
	require.NoError(t, err)
	s.Set("x", "plain")
	s.Set("x.y", "nested")

	err = s.Save()
	require.ErrorIs(t, err, ErrKeyConflict)
	assert.Contains(t, err.Error(), `"x.y"`)
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing written")

	s.Delete("x")
	require.NoError(t, s.Save())
	again, err := Open(path)
	require.NoError(t, err)
	v, _ := again.Get("x.y")
	assert.Equal(t, "nested", v)
}

func TestFileStoreCorruptDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, s.Keys())
}

func TestFileStoreDelete(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "s.toml"))
	require.NoError(t, err)
	s.Set("a", "1")
	s.Delete("a")
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(map[string]string{KeyDefaultBackground: "/tmp/x.png"})
	v, ok := m.Get(KeyDefaultBackground)
	require.True(t, ok)
	assert.Equal(t, "/tmp/x.png", v)

	require.NoError(t, m.Save())
	assert.Equal(t, 1, m.Saves())

	m.SaveErr = errors.New("disk full")
	assert.Error(t, m.Save())
	assert.Equal(t, 1, m.Saves())
}

func TestShortcuts(t *testing.T) {
	m := NewMemoryStore(map[string]string{
		"shortcuts.undo": " ctrl+z ",
		"shortcuts.redo": "",
	})
	got := Shortcuts(m, []string{"undo", "redo", "save"})
	assert.Equal(t, map[string]string{"undo": "ctrl+z"}, got)
}

func TestExpandPath(t *testing.T) {
	_, err := ExpandPath("  ")
	assert.Error(t, err)

	p, err := ExpandPath("~/x")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p))
}
