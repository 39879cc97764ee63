// Package compile runs esbuild with the import map plugins and collects the
// output. The dev server reuses bundles through a per-entry cache; a rebuild
// always gets a fresh fetch cache, so remote module records never outlive one
// build invocation.
package compile

import (
	"fmt"
	"os"
	"sync"

	es "github.com/evanw/esbuild/pkg/api"
	"remap.dev/internal/log"
	"remap.dev/internal/plugins"
)

var logger log.Logger = log.New("compiler")

var cacheEnabled = os.Getenv("REMAP_CACHE") != "false"

// Options configures one bundle build.
type Options struct {
	// EntryPoint is the module the bundle starts from, relative to WorkingDir
	// unless absolute.
	EntryPoint string

	// WorkingDir is the bundler's working directory. It doubles as the
	// default base dir for relative import map targets.
	WorkingDir string

	// Minify enables esbuild's minification passes.
	Minify bool

	// Plugin carries the import map plugin configuration.
	Plugin plugins.Options
}

// OutputFile is one produced file, held in memory.
type OutputFile struct {
	Path     string
	Contents []byte
}

// Bundle is the result of building one entry point.
type Bundle struct {
	EntryPoint string
	Files      []OutputFile
	Cached     bool
}

// Bundler builds entry points and caches the results until invalidated.
type Bundler struct {
	mux   sync.Mutex
	cache map[string]*Bundle
}

// Build bundles the given entry point. Results are cached per entry point;
// Invalidate drops them so the next Build starts over with a fresh fetch
// cache.
func (bundler *Bundler) Build(opts Options) (*Bundle, error) {
	bundler.mux.Lock()
	defer bundler.mux.Unlock()

	if bundle, found := bundler.cache[opts.EntryPoint]; found {
		logger.Debug("Found existing bundle", log.Ctx{
			"entryPoint": opts.EntryPoint,
		})
		return &Bundle{EntryPoint: bundle.EntryPoint, Files: bundle.Files, Cached: true}, nil
	}

	if bundler.cache == nil && cacheEnabled {
		bundler.cache = make(map[string]*Bundle)
	}

	plugs, err := plugins.New(opts.Plugin)
	if err != nil {
		return nil, err
	}

	result := es.Build(es.BuildOptions{
		EntryPoints:       []string{opts.EntryPoint},
		AbsWorkingDir:     opts.WorkingDir,
		Outdir:            "dist",
		Bundle:            true,
		Platform:          es.PlatformBrowser,
		Write:             false,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		LogLevel:          es.LogLevelSilent,
		Plugins:           plugs,
	})

	if len(result.Errors) != 0 {
		return nil, buildError(opts.EntryPoint, result.Errors)
	}

	bundle := &Bundle{
		EntryPoint: opts.EntryPoint,
		Files:      make([]OutputFile, len(result.OutputFiles)),
	}
	for i, file := range result.OutputFiles {
		bundle.Files[i] = OutputFile{Path: file.Path, Contents: file.Contents}
	}

	if bundler.cache != nil {
		bundler.cache[opts.EntryPoint] = bundle
	}
	return bundle, nil
}

// Invalidate drops all cached bundles.
func (bundler *Bundler) Invalidate() {
	bundler.mux.Lock()
	bundler.cache = nil
	bundler.mux.Unlock()
}

func buildError(entryPoint string, messages []es.Message) error {
	errors := make([]string, len(messages))
	for i, message := range messages {
		if message.PluginName == "" {
			errors[i] = message.Text
		} else {
			errors[i] = fmt.Sprintf("%s: %s", message.PluginName, message.Text)
		}
	}

	logger.Warn("Failed to build bundle", log.Ctx{
		"entryPoint": entryPoint,
		"errors":     errors,
	})

	first := messages[0]
	errMessage := first.Text
	if len(messages) > 1 {
		errMessage = fmt.Sprintf("%s (and %d more errors)", errMessage, len(messages)-1)
	}

	if first.PluginName != "" {
		return fmt.Errorf("%s: %s", first.PluginName, errMessage)
	}
	return fmt.Errorf("%s", errMessage)
}
