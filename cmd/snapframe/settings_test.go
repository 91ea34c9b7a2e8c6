package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runSettings(t *testing.T, r *root, args ...string) error {
	t.Helper()
	cmd, err := parseSettingsCmd(args, r)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cmd.Run()
}

func TestSettingsSetGetList(t *testing.T) {
	r, out := newTestRoot(t)

	if err := runSettings(t, r, "set", "default_background", "gradient:mint"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := runSettings(t, r, "set", "shortcuts.undo", "ctrl+u, alt+backspace"); err != nil {
		t.Fatalf("set shortcut: %v", err)
	}
	out.Reset()
	if err := runSettings(t, r, "get", "default_background"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "gradient:mint" {
		t.Fatalf("expected gradient:mint, got %q", got)
	}

	out.Reset()
	if err := runSettings(t, r, "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "default_background = gradient:mint") {
		t.Fatalf("list is missing the background: %q", out.String())
	}
	if !strings.Contains(out.String(), "shortcuts.undo = ctrl+u, alt+backspace") {
		t.Fatalf("list is missing the shortcut: %q", out.String())
	}

	if err := runSettings(t, r, "unset", "default_background"); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if err := runSettings(t, r, "get", "default_background"); err == nil {
		t.Fatalf("expected unset key to be missing")
	}
}

func TestSettingsRejectsBadValues(t *testing.T) {
	r, _ := newTestRoot(t)
	bad := [][]string{
		{"set", "default_background", "gradient:plaid"},
		{"set", "shortcuts.fly", "f"},
		{"set", "shortcuts.undo", "hyper+z"},
		{"set", "colour_scheme", "blue"},
	}
	for _, args := range bad {
		if err := runSettings(t, r, args...); err == nil {
			t.Errorf("expected %v to fail", args)
		}
	}
	if _, err := os.Stat(r.settingsPath); !os.IsNotExist(err) {
		t.Fatalf("rejected values must not create the settings file, stat: %v", err)
	}
}

func TestSettingsStoresLegacyPathAsAsset(t *testing.T) {
	r, out := newTestRoot(t)
	dir := t.TempDir()
	r.backgroundsDir = dir
	path := filepath.Join(dir, "waves.png")
	if err := os.WriteFile(path, []byte("not decoded here"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := runSettings(t, r, "set", "default_background", path); err != nil {
		t.Fatalf("set: %v", err)
	}
	out.Reset()
	if err := runSettings(t, r, "get", "default_background"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "asset:waves" {
		t.Fatalf("expected asset:waves, got %q", got)
	}
}

func TestParseSettingsArity(t *testing.T) {
	r, _ := newTestRoot(t)
	for _, args := range [][]string{nil, {"get"}, {"set", "k"}, {"list", "x"}, {"frob"}} {
		if _, err := parseSettingsCmd(args, r); err == nil {
			t.Errorf("expected usage error for %v", args)
		}
	}
}
