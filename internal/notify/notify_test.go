package notify

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snapframe/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	orig := send
	send = func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			s.iconExisted = err == nil
		}
		got = append(got, s)
		return nil
	}
	t.Cleanup(func() { send = orig })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Save("/tmp/x.png")
	n.Copy("")
	n.Error(errors.New("boom"))

	var nilNotifier *Notifier
	nilNotifier.Error(errors.New("boom"))
	nilNotifier.Enable(EventSave, true)

	assert.Empty(t, *got)
}

func TestSaveAndCopy(t *testing.T) {
	got := capture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Enable(EventCopy, true)
	n.Save(path)
	n.Copy("")

	require.Len(t, *got, 2)
	assert.Equal(t, "Snapframe", (*got)[0].title)
	assert.Equal(t, "Saved "+path, (*got)[0].body)
	assert.Equal(t, path, (*got)[0].opts.IconPath)
	assert.Equal(t, "Copied image to clipboard", (*got)[1].body)
}

func TestErrorIsCritical(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventError, true)
	n.Error(nil)
	n.Error(errors.New("save image: disk full"))

	require.Len(t, *got, 1)
	assert.Equal(t, "save image: disk full", (*got)[0].body)
	assert.Equal(t, platform.UrgencyCritical, (*got)[0].opts.Urgency)
	assert.Equal(t, errorTimeout, (*got)[0].opts.Timeout)
}

func TestCaptureAttachesPreview(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventCapture, true)
	n.Capture("region", image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.Len(t, *got, 1)
	assert.Equal(t, "Captured region", (*got)[0].body)
	assert.True(t, (*got)[0].iconExisted)
	_, err := os.Stat((*got)[0].opts.IconPath)
	assert.True(t, os.IsNotExist(err), "preview should be removed after sending")
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("SNAPFRAME_NOTIFY_TITLE", "Shots")
	t.Setenv("SNAPFRAME_NOTIFY_SAVE_TEXT", "Wrote %s")
	t.Setenv("SNAPFRAME_NOTIFY_ERROR_TEXT", "Problem: %s")

	prefs := LoadPreferences()
	assert.Equal(t, "Shots", prefs.Title)
	assert.Equal(t, "Wrote %s", prefs.Events[EventSave].Template)
	assert.Equal(t, "Problem: %s", prefs.Events[EventError].Template)
	assert.Equal(t, "Captured %s", prefs.Events[EventCapture].Template)
}

func TestNewCopiesPreferences(t *testing.T) {
	got := capture(t)
	prefs := DefaultPreferences()
	n := New(prefs)
	prefs.Events[EventCopy] = EventPreference{Template: "changed %s"}
	n.Enable(EventCopy, true)
	n.Copy("x")
	require.Len(t, *got, 1)
	assert.Equal(t, "Copied x to clipboard", (*got)[0].body)
}
