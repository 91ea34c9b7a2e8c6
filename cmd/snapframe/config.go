package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/snapframe/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	output string
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "file written by save (default: the loaded config file)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *configCmd) Run() error {
	switch sub := c.fs.Arg(0); sub {
	case "print":
		fmt.Fprint(c.out(), c.root.config.String())
		return nil
	case "path":
		fmt.Fprintln(c.out(), c.configPath())
		return nil
	case "save":
		return c.runSave()
	default:
		return &UsageError{of: c, msg: fmt.Sprintf("unknown config command: %s", sub)}
	}
}

// configPath is the file save writes to: -output, the file the loader
// found, or the first per user location.
func (c *configCmd) configPath() string {
	if c.output != "" {
		return c.output
	}
	if path := config.NewLoader(version, configPathOverride).GetConfigPath(); path != "" {
		return path
	}
	if paths := config.UserConfigPaths(); len(paths) > 0 {
		return paths[0]
	}
	return ""
}

func (c *configCmd) runSave() error {
	path := c.configPath()
	if path == "" {
		return fmt.Errorf("failed to determine a config file location")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(c.root.config.String()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(c.errOut(), "Configuration saved to %s\n", path)
	return nil
}
