package main

import (
	"flag"
	"fmt"

	"github.com/example/snapframe/internal/colorspec"
	"github.com/example/snapframe/internal/editor"
)

// backgroundsCmd lists the background references the editor understands.
type backgroundsCmd struct {
	*root
	fs *flag.FlagSet
}

func (b *backgroundsCmd) FlagSet() *flag.FlagSet {
	return b.fs
}

func parseBackgroundsCmd(args []string, r *root) (*backgroundsCmd, error) {
	fs := flag.NewFlagSet("backgrounds", flag.ExitOnError)
	b := &backgroundsCmd{root: r.subcommand("backgrounds"), fs: fs}
	fs.Usage = usageFunc(b)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: b}
	}
	return b, nil
}

func (b *backgroundsCmd) Run() error {
	out := b.out()
	for k := editor.BackgroundTransparent; k <= editor.BackgroundGray; k++ {
		fmt.Fprintln(out, k.String())
	}
	for _, g := range editor.Gradients {
		fmt.Fprintf(out, "gradient:%s\t%s -> %s\n", g.ID, colorspec.Format(g.From), colorspec.Format(g.To))
	}
	fmt.Fprintln(out, "color:<colour>")
	res := b.backgrounds()
	ids, err := res.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}
