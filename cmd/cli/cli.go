package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"remap.dev/internal/project"
)

type Command interface {
	Name() string
	Description() string

	// Parse is given an allocated flagSet, and the set of args that are specific to this command.
	// It should parse the args, and return an error if unexpected values were received in the flags.
	Parse(flagSet *pflag.FlagSet, args []string) error

	// Run should run the command, and return an error if something went wrong.
	Run() error
}

var (
	commands = []Command{
		&BuildCommand{},
		&ServeCommand{},
		&VersionCommand{},
	}
)

func showUsage() {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Usage: remap [-p $REMAP_PROJECT_PATH] [command] [options]\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "All commands must be run from a valid remap project directory, or a sub-directory of one.\n")
	fmt.Fprintf(os.Stderr, "You can also override the project using the `-p` flag or the `REMAP_PROJECT_PATH` environment variable.\n")
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "Available commands:\n\n")

	longestCmdNameLength := 0
	for _, cmd := range commands {
		if len(cmd.Name()) > longestCmdNameLength {
			longestCmdNameLength = len(cmd.Name())
		}
	}

	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "\t%s%s\t%s\n", cmd.Name(), strings.Repeat(" ", longestCmdNameLength-len(cmd.Name())), cmd.Description())
	}

	fmt.Fprintf(os.Stderr, "\nremap %s\n\n", project.Version)
	os.Exit(1)
}

func showCommandUsage(cmd Command, flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Usage: remap %s [options]\n", cmd.Name())
	fmt.Fprintf(os.Stderr, "%s\n", cmd.Description())
	fmt.Fprintf(os.Stderr, "\n")

	if flagSet.HasFlags() {
		fmt.Fprintf(os.Stderr, "%s", flagSet.FlagUsages())
	} else {
		fmt.Fprintf(os.Stderr, "This command has no options.\n")
	}

	fmt.Fprintf(os.Stderr, "\nremap %s\n\n", project.Version)
	os.Exit(1)
}

func main() {
	args := os.Args[1:]

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		showUsage()
	}

	// First, allow a project path override to take place
	if args[0] == "--projectPath" || args[0] == "-p" {
		if len(args) < 3 {
			fmt.Fprintf(os.Stderr, "missing argument for --projectPath flag\n")
			showUsage()
		}

		if _, err := project.SetProjectPath(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		args = args[2:]
	}

	// Next, verify that a command was given
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "missing command\n")
		showUsage()
	}

	commandName := args[0]
	args = args[1:]

	// Make sure this is a real command
	var command Command
	for _, cmd := range commands {
		if cmd.Name() == commandName {
			command = cmd
			break
		}
	}

	if command == nil {
		fmt.Fprintf(os.Stderr, "unrecognized command: %s\n\n", commandName)
		showUsage()
	}

	// Perform parsing
	flagSet := pflag.NewFlagSet(commandName, pflag.ExitOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n")
		showCommandUsage(command, flagSet)
	}
	if err := command.Parse(flagSet, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		showCommandUsage(command, flagSet)
	}

	// Run the command
	startTime := time.Now()
	if err := command.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n\n", err)
		os.Exit(1)
	}

	execDuration := (time.Since(startTime) + time.Millisecond).Truncate(time.Millisecond)
	fmt.Printf("\n⚡️%s completed in %s\n", commandName, execDuration)
}
