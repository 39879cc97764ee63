package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"remap.dev/internal/project"
)

type VersionCommand struct{}

func (cmd *VersionCommand) Name() string {
	return "version"
}

func (cmd *VersionCommand) Description() string {
	return "print the remap version"
}

func (cmd *VersionCommand) Parse(flagSet *pflag.FlagSet, args []string) error {
	return flagSet.Parse(args)
}

func (cmd *VersionCommand) Run() error {
	fmt.Printf("remap %s\n", project.Version)
	return nil
}
