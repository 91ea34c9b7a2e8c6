package main

import (
	"flag"
	"fmt"
)

type versionCmd struct {
	*root
	fs *flag.FlagSet
}

func (v *versionCmd) FlagSet() *flag.FlagSet {
	return v.fs
}

func parseVersionCmd(args []string, r *root) (*versionCmd, error) {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	v := &versionCmd{root: r.subcommand("version"), fs: fs}
	fs.Usage = usageFunc(v)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *versionCmd) Run() error {
	fmt.Fprintf(v.out(), "snapframe version %s", version)
	if commit != "" {
		fmt.Fprintf(v.out(), " (%s", commit)
		if date != "" {
			fmt.Fprintf(v.out(), ", %s", date)
		}
		fmt.Fprint(v.out(), ")")
	}
	fmt.Fprintln(v.out())
	return nil
}
