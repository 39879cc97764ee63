package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"remap.dev/internal/compile"
	"remap.dev/internal/project"
)

type BuildCommand struct {
	minify bool
	outDir string
}

func (cmd *BuildCommand) Name() string {
	return "build"
}

func (cmd *BuildCommand) Description() string {
	return "bundle the project's entrypoints"
}

func (cmd *BuildCommand) Parse(flagSet *pflag.FlagSet, args []string) error {
	flagSet.BoolVar(&cmd.minify, "minify", false, "Minify the bundled output")
	flagSet.StringVar(&cmd.outDir, "outDir", "", "Override the output directory from remap.json")

	return flagSet.Parse(args)
}

func (cmd *BuildCommand) Run() error {
	config, err := project.LoadFromEnv()
	if err != nil {
		return err
	}

	if len(config.Entrypoints) == 0 {
		return fmt.Errorf("remap.json does not declare any entrypoints")
	}

	outDir := config.OutDir
	if cmd.outDir != "" {
		outDir = cmd.outDir
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(config.ProjectPath, outDir)
	}

	pluginOpts, err := config.PluginOptions()
	if err != nil {
		return err
	}

	var bundler compile.Bundler
	for _, entryPoint := range config.Entrypoints {
		bundle, err := bundler.Build(compile.Options{
			EntryPoint: entryPoint,
			WorkingDir: config.ProjectPath,
			Minify:     cmd.minify,
			Plugin:     pluginOpts,
		})
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", entryPoint, err)
		}

		for _, file := range bundle.Files {
			outPath := filepath.Join(outDir, filepath.Base(file.Path))
			if err := os.MkdirAll(filepath.Dir(outPath), 0777); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(outPath, file.Contents, 0666); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}

			fmt.Printf("  %s (%d bytes)\n", outPath, len(file.Contents))
		}
	}

	return nil
}
