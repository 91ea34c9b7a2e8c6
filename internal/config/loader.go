package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "SNAPFRAME_"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

func (l *Loader) dev() bool { return l.Version == "dev" }

// Load reads the config file, if any, then applies environment overrides.
// Dev builds also read a .env file from the working directory.
func (l *Loader) Load() (*Config, error) {
	if l.dev() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: .env: %v", err)
		}
	}

	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		parsed, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg = parsed
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.dev() {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".snapframerc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	return firstExisting(UserConfigPaths()...)
}

// UserConfigPaths lists the per user config locations, preferred first.
func UserConfigPaths() []string {
	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, ".config", "snapframe")
	return []string{
		filepath.Join(dir, "config.rc"),
		filepath.Join(dir, "snapframe.rc"),
	}
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ApplyEnv overrides cfg from SNAPFRAME_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("THEME", &cfg.Theme)
	str("SAVE_DIR", &cfg.SaveDir)
	str("SETTINGS_PATH", &cfg.SettingsPath)
	str("BACKGROUNDS_DIR", &cfg.BackgroundsDir)

	if v, ok := lookup(EnvPrefix + "COPY_ON_SAVE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOPY_ON_SAVE: %w", EnvPrefix, err)
		}
		cfg.CopyOnSave = b
	}
	if v, ok := lookup(EnvPrefix + "PREVIEW_MAX_SIZE"); ok && v != "" {
		if err := setRootField(cfg, "preview_max_size", v); err != nil {
			return fmt.Errorf("%sPREVIEW_MAX_SIZE: %w", EnvPrefix, err)
		}
	}
	return nil
}
