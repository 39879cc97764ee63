package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"remap.dev/internal/project"
	"remap.dev/internal/server"
)

type ServeCommand struct {
	port        int
	bindAddress string
}

func (cmd *ServeCommand) Name() string {
	return "serve"
}

func (cmd *ServeCommand) Description() string {
	return "start the dev server"
}

func (cmd *ServeCommand) Parse(flagSet *pflag.FlagSet, args []string) error {
	flagSet.IntVar(&cmd.port, "port", 9720, "The port to listen on")
	flagSet.StringVar(&cmd.bindAddress, "bind", "127.0.0.1", "The address to bind to")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if cmd.port < 1 || cmd.port > 65535 {
		return fmt.Errorf("invalid port number: %d", cmd.port)
	}

	return nil
}

func (cmd *ServeCommand) Run() error {
	config, err := project.LoadFromEnv()
	if err != nil {
		return err
	}

	app := server.Server{
		BindAddress: cmd.bindAddress,
		Port:        cmd.port,
		Config:      config,
	}
	return app.Run()
}
