package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/mobile/event/paint"

	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/imageio"
	"github.com/example/snapframe/internal/interact"
	"github.com/example/snapframe/internal/notify"
	"github.com/example/snapframe/internal/render"
	"github.com/example/snapframe/internal/settings"
	"github.com/example/snapframe/internal/theme"
)

// DefaultSaveDir is used when neither an option nor the settings store
// name a save directory.
const DefaultSaveDir = "~/Pictures/Snapframe"

// ErrBusy is returned for a save or copy requested while another one is
// still running. The request is dropped, not queued.
var ErrBusy = errors.New("save or copy already in progress")

// Saver stores exported PNG data. imageio.FileSaver implements it.
type Saver interface {
	SaveImage(ctx context.Context, data []byte, dir string, copy bool) (string, error)
	Copy(ctx context.Context, data []byte) error
}

// AppState is one editing session: a single screenshot, its editor and
// interaction engine, the preview renderer and the collaborators used to
// save and copy the result.
type AppState struct {
	Image  *image.RGBA
	Source string

	ed      *editor.Editor
	engine  *interact.Engine
	preview *render.Previewer
	unsub   func()

	saveDir     string
	store       settings.Store
	saver       Saver
	notifier    *notify.Notifier
	backgrounds render.BackgroundSource
	previewSize int
	debounce    time.Duration
	copyOnSave  bool
	theme       *theme.Theme
	shortcuts   map[string]string
	editorOpts  []editor.Option

	busy atomic.Bool

	hostMu sync.Mutex
	post   func(any)

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithImage sets the screenshot being edited.
func WithImage(img *image.RGBA) Option { return func(a *AppState) { a.Image = img } }

// WithSource records the file the screenshot was loaded from.
func WithSource(path string) Option { return func(a *AppState) { a.Source = path } }

// WithSaveDir sets the directory saves are written to, overriding the
// settings store.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.saveDir = dir } }

// WithSettings sets the persisted preferences store. The default
// background is loaded from it when the session starts.
func WithSettings(store settings.Store) Option { return func(a *AppState) { a.store = store } }

// WithSaver replaces the file saver.
func WithSaver(s Saver) Option { return func(a *AppState) { a.saver = s } }

// WithNotifier sets where save, copy and error notifications go.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithBackgrounds sets the resolver for image backgrounds.
func WithBackgrounds(src render.BackgroundSource) Option {
	return func(a *AppState) { a.backgrounds = src }
}

// WithPreview bounds the preview size and sets its debounce delay. Zero
// values keep the defaults.
func WithPreview(maxSize int, debounce time.Duration) Option {
	return func(a *AppState) {
		if maxSize > 0 {
			a.previewSize = maxSize
		}
		if debounce > 0 {
			a.debounce = debounce
		}
	}
}

// WithCopyOnSave also copies every saved image to the clipboard.
func WithCopyOnSave(v bool) Option { return func(a *AppState) { a.copyOnSave = v } }

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithShortcuts sets keyboard overrides keyed by action name. Overrides in
// the settings store take precedence.
func WithShortcuts(m map[string]string) Option { return func(a *AppState) { a.shortcuts = m } }

// WithEditorOptions passes options through to the editor.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(a *AppState) { a.editorOpts = append(a.editorOpts, opts...) }
}

// WithOnClose registers a callback invoked once the session closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates a session for the screenshot given with WithImage. Without
// a screenshot there is nothing to edit and a load error is returned.
func New(opts ...Option) (*AppState, error) {
	a := &AppState{
		previewSize: render.DefaultPreviewSize,
		debounce:    render.DefaultDebounce,
	}
	for _, o := range opts {
		o(a)
	}
	if a.Image == nil || a.Image.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no screenshot", imageio.ErrLoad)
	}
	if a.saver == nil {
		a.saver = imageio.NewFileSaver()
	}
	if a.theme == nil {
		a.theme = theme.Default()
	}

	edOpts := append([]editor.Option(nil), a.editorOpts...)
	if a.store != nil {
		edOpts = append(edOpts, editor.WithDefaults(a.store))
	}
	a.ed = editor.New(edOpts...)
	a.engine = interact.New(a.ed)

	pOpts := []render.PreviewOption{
		render.WithDebounce(a.debounce),
		render.WithMaxSize(a.previewSize),
		render.OnPreview(func(render.Preview) { a.send(paint.Event{}) }),
		render.OnPreviewError(func(err error) {
			log.Printf("preview: %v", err)
			a.send(statusEvent{text: err.Error(), err: true})
		}),
	}
	if a.backgrounds != nil {
		pOpts = append(pOpts, render.WithBackgrounds(a.backgrounds))
	}
	a.preview = render.NewPreviewer(a.Image, pOpts...)
	a.unsub = a.ed.Subscribe(func(s editor.Snapshot) {
		a.preview.Trigger(s.State.Settings)
		a.send(paint.Event{})
	})
	a.preview.Trigger(a.ed.Settings())
	return a, nil
}

// Open loads the screenshot at path and starts a session for it. A load
// failure creates no session.
func Open(ctx context.Context, path string, opts ...Option) (*AppState, error) {
	img, err := imageio.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return New(append(opts, WithImage(img), WithSource(path))...)
}

func (a *AppState) Editor() *editor.Editor       { return a.ed }
func (a *AppState) Engine() *interact.Engine     { return a.engine }
func (a *AppState) Previewer() *render.Previewer { return a.preview }
func (a *AppState) Theme() *theme.Theme          { return a.theme }

// Busy reports whether a save or copy is running.
func (a *AppState) Busy() bool { return a.busy.Load() }

// SaveDir returns the directory Save writes to.
func (a *AppState) SaveDir() string {
	if a.saveDir != "" {
		return a.saveDir
	}
	if a.store != nil {
		if v, ok := a.store.Get(settings.KeySaveDirectory); ok && v != "" {
			return v
		}
	}
	return DefaultSaveDir
}

// Keymap returns the keyboard bindings for this session.
func (a *AppState) Keymap() (*Keymap, error) {
	var fromStore map[string]string
	if a.store != nil {
		fromStore = settings.Shortcuts(a.store, Actions())
	}
	return NewKeymap(a.shortcuts, fromStore)
}

// Export renders the current state at full resolution as PNG data.
func (a *AppState) Export(ctx context.Context) ([]byte, error) {
	return render.Export(ctx, a.Image, a.ed.State(), render.Options{Backgrounds: a.backgrounds})
}

// Save exports and writes the image to the save directory. Failures are
// also reported through the notifier; the editor state is left as it was
// so the save can be retried.
func (a *AppState) Save(ctx context.Context) (string, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer a.busy.Store(false)

	data, err := a.Export(ctx)
	if err != nil {
		a.notifier.Error(err)
		return "", err
	}
	path, err := a.saver.SaveImage(ctx, data, a.SaveDir(), a.copyOnSave)
	if err != nil {
		a.notifier.Error(err)
		return path, err
	}
	log.Printf("saved %s", path)
	a.notifier.Save(path)
	return path, nil
}

// Copy exports the image to the clipboard.
func (a *AppState) Copy(ctx context.Context) error {
	if !a.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer a.busy.Store(false)

	data, err := a.Export(ctx)
	if err != nil {
		a.notifier.Error(err)
		return err
	}
	if err := a.saver.Copy(ctx, data); err != nil {
		a.notifier.Error(err)
		return err
	}
	log.Print("image copied to clipboard")
	a.notifier.Copy("image")
	return nil
}

// SetDefaultBackground stores the current background as the default for
// future sessions.
func (a *AppState) SetDefaultBackground() error {
	if a.store == nil {
		return errors.New("no settings store")
	}
	a.store.Set(settings.KeyDefaultBackground, editor.FormatBackgroundRef(a.ed.Settings().Background))
	if err := a.store.Save(); err != nil {
		a.notifier.Error(err)
		return err
	}
	return nil
}

// Close ends the session. It is safe to call more than once.
func (a *AppState) Close() {
	a.closeOnce.Do(func() {
		a.setHost(nil)
		a.unsub()
		a.engine.Close()
		a.preview.Close()
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// statusEvent carries a message to the status bar.
type statusEvent struct {
	text string
	err  bool
}

func (a *AppState) setHost(fn func(any)) {
	a.hostMu.Lock()
	a.post = fn
	a.hostMu.Unlock()
}

func (a *AppState) send(ev any) {
	a.hostMu.Lock()
	fn := a.post
	a.hostMu.Unlock()
	if fn != nil {
		fn(ev)
	}
}
