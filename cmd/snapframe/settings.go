package main

import (
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/example/snapframe/internal/appstate"
	"github.com/example/snapframe/internal/editor"
	"github.com/example/snapframe/internal/settings"
)

// settingsCmd reads and edits the persisted preferences.
type settingsCmd struct {
	*root
	fs *flag.FlagSet
}

func (s *settingsCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseSettingsCmd(args []string, r *root) (*settingsCmd, error) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	s := &settingsCmd{root: r.subcommand("settings"), fs: fs}
	fs.Usage = usageFunc(s)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	want := map[string]int{"list": 1, "get": 2, "set": 3, "unset": 2, "path": 1}
	if fs.NArg() < 1 || want[fs.Arg(0)] != fs.NArg() {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *settingsCmd) Run() error {
	store, err := s.openSettings()
	if err != nil {
		return err
	}
	args := s.fs.Args()
	switch args[0] {
	case "path":
		fmt.Fprintln(s.out(), store.Path())
	case "list":
		for _, k := range store.Keys() {
			v, _ := store.Get(k)
			fmt.Fprintf(s.out(), "%s = %s\n", k, v)
		}
	case "get":
		v, ok := store.Get(args[1])
		if !ok {
			return fmt.Errorf("%s is not set", args[1])
		}
		fmt.Fprintln(s.out(), v)
	case "set":
		value, err := s.normalize(args[1], args[2])
		if err != nil {
			return err
		}
		store.Set(args[1], value)
		return store.Save()
	case "unset":
		store.Delete(args[1])
		return store.Save()
	}
	return nil
}

// normalize validates value for key and returns the form to store.
// Background file paths inside the backgrounds directory are stored as
// asset identifiers.
func (s *settingsCmd) normalize(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case key == settings.KeyDefaultBackground:
		ref := s.backgrounds().Canonical(value)
		if _, err := editor.ParseBackgroundRef(ref, editor.DefaultSettings().Background); err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
		return ref, nil
	case key == settings.KeySaveDirectory:
		if value == "" {
			return "", fmt.Errorf("%s cannot be empty", key)
		}
		return value, nil
	case strings.HasPrefix(key, settings.ShortcutPrefix):
		action := strings.TrimPrefix(key, settings.ShortcutPrefix)
		if !slices.Contains(appstate.Actions(), action) {
			return "", fmt.Errorf("unknown action %q, want one of %s", action, strings.Join(appstate.Actions(), ", "))
		}
		for _, chord := range strings.Split(value, ",") {
			if _, err := appstate.ParseShortcut(chord); err != nil {
				return "", fmt.Errorf("%s: %w", key, err)
			}
		}
		return value, nil
	}
	return "", fmt.Errorf("unknown setting %q", key)
}
