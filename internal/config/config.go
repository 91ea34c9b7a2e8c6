package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/snapframe/internal/colorspec"
	"github.com/example/snapframe/internal/theme"
)

// Defaults for values the config file may leave out.
const (
	DefaultPreviewMaxSize  = 1280
	DefaultPreviewDebounce = 120 * time.Millisecond
)

// Notify selects which events raise a desktop notification.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
	Error   bool
}

// Config holds the application configuration.
type Config struct {
	Theme           string
	SaveDir         string
	SettingsPath    string
	BackgroundsDir  string
	PreviewMaxSize  int
	PreviewDebounce time.Duration
	CopyOnSave      bool
	Notify          Notify
	// Shortcuts maps an action name to a key chord, for example
	// "undo" to "ctrl+z".
	Shortcuts map[string]string
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		PreviewMaxSize:  DefaultPreviewMaxSize,
		PreviewDebounce: DefaultPreviewDebounce,
		Notify:          Notify{Error: true},
		Shortcuts:       make(map[string]string),
		Themes:          make(map[string]*theme.Theme),
	}
}

// ResolveTheme returns the theme named by c.Theme, preferring themes defined
// in the config file over the loader's search path.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t.Clone(), nil
	}
	if l == nil {
		l = theme.NewLoader()
	}
	return l.Load(c.Theme)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := [][2]string{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"settings_path", c.SettingsPath},
		{"backgrounds_dir", c.BackgroundsDir},
	}
	for _, kv := range root {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintf(&sb, "preview_max_size = %d\n", c.PreviewMaxSize)
	fmt.Fprintf(&sb, "preview_debounce = %s\n", c.PreviewDebounce)
	fmt.Fprintf(&sb, "copy_on_save = %v\n", c.CopyOnSave)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "error = %v\n", c.Notify.Error)
	sb.WriteString("\n")

	if len(c.Shortcuts) > 0 {
		sb.WriteString("[shortcuts]\n")
		for _, action := range sortedKeys(c.Shortcuts) {
			fmt.Fprintf(&sb, "%s = %s\n", action, c.Shortcuts[action])
		}
		sb.WriteString("\n")
	}

	for _, name := range sortedKeys(c.Themes) {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, colorspec.Format(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
