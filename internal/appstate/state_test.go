package appstate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/imageio"
	"github.com/example/snapframe/internal/render"
	"github.com/example/snapframe/internal/settings"
)

type fakeSaver struct {
	mu     sync.Mutex
	saved  [][]byte
	dirs   []string
	copies [][]byte
	err    error

	// block, when set, holds SaveImage until closed.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeSaver) SaveImage(ctx context.Context, data []byte, dir string, copy bool) (string, error) {
	if f.block != nil {
		close(f.started)
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, data)
	f.dirs = append(f.dirs, dir)
	return filepath.Join(dir, "shot.png"), nil
}

func (f *fakeSaver) Copy(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.copies = append(f.copies, data)
	return nil
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 120, 200, 255})
		}
	}
	return img
}

func newSession(t *testing.T, opts ...Option) *AppState {
	t.Helper()
	base := []Option{
		WithImage(testImage(40, 30)),
		WithPreview(64, time.Hour),
		WithEditorOptions(editor.WithIDGenerator(annotation.SequenceGenerator("a"))),
	}
	a, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewWithoutImage(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, imageio.ErrLoad)
}

func TestOpenLoadFailureCreatesNoSession(t *testing.T) {
	a, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, imageio.ErrLoad)
	assert.Nil(t, a)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(20, 10)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	a, err := Open(context.Background(), path, WithPreview(64, time.Hour))
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, path, a.Source)
	assert.Equal(t, image.Rect(0, 0, 20, 10), a.Image.Bounds())
	assert.Equal(t, editor.DefaultSettings(), a.Editor().Settings())
}

func TestExportMatchesLayout(t *testing.T) {
	a := newSession(t)
	a.Editor().AddAnnotation(annotation.Rectangle{Box: annotation.Box{X: 2, Y: 2, Width: 10, Height: 10}, Style: annotation.DefaultStyle()})

	data, err := a.Export(context.Background())
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, render.Layout(40, 30, 1).Canvas, img.Bounds())
}

func TestSave(t *testing.T) {
	saver := &fakeSaver{}
	a := newSession(t, WithSaver(saver), WithSaveDir("/tmp/shots"))

	path, err := a.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/shots", "shot.png"), path)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, []string{"/tmp/shots"}, saver.dirs)
	assert.False(t, a.Busy())
}

func TestSaveFailureKeepsState(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	a := newSession(t, WithSaver(saver))
	a.Editor().SetBlur(10)
	before := a.Editor().Snapshot()

	_, err := a.Save(context.Background())
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, before, a.Editor().Snapshot())
	assert.False(t, a.Busy(), "a failed save can be retried")

	saver.err = nil
	_, err = a.Save(context.Background())
	assert.NoError(t, err)
}

func TestSaveWhileBusyIsDropped(t *testing.T) {
	saver := &fakeSaver{block: make(chan struct{}), started: make(chan struct{})}
	a := newSession(t, WithSaver(saver))

	done := make(chan error, 1)
	go func() {
		_, err := a.Save(context.Background())
		done <- err
	}()
	<-saver.started
	assert.True(t, a.Busy())

	_, err := a.Save(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, a.Copy(context.Background()), ErrBusy)

	close(saver.block)
	require.NoError(t, <-done)
	assert.Len(t, saver.saved, 1, "the dropped request was not queued")
	assert.Empty(t, saver.copies)
}

func TestCopy(t *testing.T) {
	saver := &fakeSaver{}
	a := newSession(t, WithSaver(saver))

	require.NoError(t, a.Copy(context.Background()))
	require.Len(t, saver.copies, 1)
	_, err := png.Decode(bytes.NewReader(saver.copies[0]))
	assert.NoError(t, err)

	saver.err = errors.New("no display")
	assert.EqualError(t, a.Copy(context.Background()), "no display")
}

func TestSaveDir(t *testing.T) {
	store := settings.NewMemoryStore(nil)
	a := newSession(t, WithSettings(store))
	assert.Equal(t, DefaultSaveDir, a.SaveDir())

	store.Set(settings.KeySaveDirectory, "/data/shots")
	assert.Equal(t, "/data/shots", a.SaveDir())

	b := newSession(t, WithSettings(store), WithSaveDir("/override"))
	assert.Equal(t, "/override", b.SaveDir())
}

func TestSetDefaultBackground(t *testing.T) {
	store := settings.NewMemoryStore(nil)
	a := newSession(t, WithSettings(store))
	<-a.Editor().Ready()
	a.Editor().SetGradient(editor.Gradients[1])

	require.NoError(t, a.SetDefaultBackground())
	v, ok := store.Get(settings.KeyDefaultBackground)
	assert.True(t, ok)
	assert.Equal(t, "gradient:"+editor.Gradients[1].ID, v)
	assert.Equal(t, 1, store.Saves())

	store.SaveErr = errors.New("read-only")
	assert.Error(t, a.SetDefaultBackground())

	noStore := newSession(t)
	assert.Error(t, noStore.SetDefaultBackground())
}

func TestDefaultBackgroundLoadedFromSettings(t *testing.T) {
	store := settings.NewMemoryStore(map[string]string{settings.KeyDefaultBackground: "black"})
	a := newSession(t, WithSettings(store))
	<-a.Editor().Ready()

	assert.Equal(t, editor.BackgroundBlack, a.Editor().Settings().Background.Kind)
	assert.False(t, a.Editor().CanUndo())
}

func TestKeymapPrecedence(t *testing.T) {
	store := settings.NewMemoryStore(map[string]string{settings.ShortcutPrefix + ActionUndo: "ctrl+k"})
	a := newSession(t, WithSettings(store), WithShortcuts(map[string]string{ActionUndo: "ctrl+u", ActionRedo: "ctrl+j"}))

	km, err := a.Keymap()
	require.NoError(t, err)
	assert.Equal(t, "ctrl+k", km.Label(ActionUndo))
	assert.Equal(t, "ctrl+j", km.Label(ActionRedo))
}

func TestCloseIsIdempotent(t *testing.T) {
	closed := 0
	a := newSession(t, WithOnClose(func() { closed++ }))
	a.Close()
	a.Close()
	assert.Equal(t, 1, closed)
}

func TestHostReceivesRepaintOnEdit(t *testing.T) {
	a := newSession(t)
	var mu sync.Mutex
	var events []any
	a.setHost(func(ev any) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	a.Editor().SetBlur(4)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, events)
}
