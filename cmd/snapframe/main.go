package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/example/snapframe/assets"
	"github.com/example/snapframe/internal/appstate"
	"github.com/example/snapframe/internal/config"
	"github.com/example/snapframe/internal/imageio"
	"github.com/example/snapframe/internal/notify"
	"github.com/example/snapframe/internal/settings"
	"github.com/example/snapframe/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs             *flag.FlagSet
	program        string
	notifier       *notify.Notifier
	config         *config.Config
	captureAlerts  bool
	saveAlerts     bool
	copyAlerts     bool
	errorAlerts    bool
	themeName      string
	settingsPath   string
	backgroundsDir string
	saveDir        string
	activeTheme    *theme.Theme
	stdout         io.Writer
	stderr         io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	c := *r
	c.fs = nil
	c.program = program
	return &c
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("snapframe", flag.ExitOnError),
		program:  "snapframe",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a screenshot")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.errorAlerts, "notify-error", cfg.Notify.Error, "show a desktop notification when saving or copying fails")

	// The environment was already folded into cfg by the loader, so an
	// empty flag falls back to SNAPFRAME_THEME and then the config file.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark)")
	r.fs.StringVar(&r.settingsPath, "settings", cfg.SettingsPath, "settings file (default "+settings.DefaultPath()+")")
	r.fs.StringVar(&r.backgroundsDir, "backgrounds", cfg.BackgroundsDir, "directory holding image backgrounds")
	r.fs.StringVar(&r.saveDir, "save-dir", cfg.SaveDir, "directory exports are saved to")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventCapture, r.captureAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
		r.notifier.Enable(notify.EventError, r.errorAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "capture":
		cmd, err = parseCaptureCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "settings":
		cmd, err = parseSettingsCmd(subArgs, r)
	case "backgrounds":
		cmd, err = parseBackgroundsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd, err = parseVersionCmd(subArgs, r)
	case "help":
		err = &UsageError{of: r}
	default:
		err = &UsageError{of: r, msg: fmt.Sprintf("unknown command %q", cmdName)}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the window theme. A theme that fails to load falls
// back to the default with a warning.
func (r *root) resolveTheme() *theme.Theme {
	cfg := *r.config
	if r.themeName != "" {
		cfg.Theme = r.themeName
	}
	t, err := cfg.ResolveTheme(theme.NewLoader())
	if err != nil {
		if cfg.Theme != "" && cfg.Theme != "default" {
			fmt.Fprintf(r.errOut(), "warning: failed to load theme '%s': %v. using default.\n", cfg.Theme, err)
		}
		return theme.Default()
	}
	return t
}

func (r *root) out() io.Writer {
	if r.stdout != nil {
		return r.stdout
	}
	return os.Stdout
}

func (r *root) errOut() io.Writer {
	if r.stderr != nil {
		return r.stderr
	}
	return os.Stderr
}

func (r *root) openSettings() (*settings.FileStore, error) {
	store, err := settings.Open(r.settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return store, nil
}

func (r *root) backgrounds() *assets.Resolver {
	dir := r.backgroundsDir
	if dir != "" {
		expanded, err := settings.ExpandPath(dir)
		if err != nil {
			fmt.Fprintf(r.errOut(), "warning: backgrounds directory %s: %v\n", dir, err)
			dir = ""
		} else {
			dir = expanded
		}
	}
	return assets.NewResolver(dir)
}

// exportDir is the -save-dir flag, then the stored save directory, then
// the built in default.
func (r *root) exportDir(store settings.Store) string {
	if r.saveDir != "" {
		return r.saveDir
	}
	if store != nil {
		if v, ok := store.Get(settings.KeySaveDirectory); ok && v != "" {
			return v
		}
	}
	return appstate.DefaultSaveDir
}

// sessionOptions configures an interactive editing session.
func (r *root) sessionOptions(store settings.Store) []appstate.Option {
	opts := []appstate.Option{
		appstate.WithSettings(store),
		appstate.WithSaver(imageio.NewFileSaver()),
		appstate.WithBackgrounds(r.backgrounds()),
		appstate.WithNotifier(r.notifier),
		appstate.WithTheme(r.activeTheme),
	}
	if r.config != nil {
		opts = append(opts,
			appstate.WithShortcuts(r.config.Shortcuts),
			appstate.WithPreview(r.config.PreviewMaxSize, r.config.PreviewDebounce),
			appstate.WithCopyOnSave(r.config.CopyOnSave),
		)
	}
	if r.saveDir != "" {
		opts = append(opts, appstate.WithSaveDir(r.saveDir))
	}
	return opts
}

// runSession shows an editing session and blocks until its window closes.
// Tests replace it.
var runSession = func(a *appstate.AppState) { a.Run() }

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (r *root) notifyCapture(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Capture(detail, img)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}

func (r *root) notifyError(err error) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Error(err)
}
