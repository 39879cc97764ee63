// Package plugins wires import map matching and remote module fetching into
// esbuild's resolve/load hooks. The bundler calls into these plugins once per
// encountered specifier and once per remote module body; everything else
// (default resolution, bundling, output) stays the bundler's job.
package plugins

import (
	"fmt"
	"time"

	es "github.com/evanw/esbuild/pkg/api"
	"remap.dev/internal/httpcache"
	"remap.dev/internal/importmap"
	"remap.dev/internal/loader"
	"remap.dev/internal/log"
)

var logger = log.New("plugins")

// Namespace is the virtual namespace remote modules live in.
const Namespace = "http"

// Options is the configuration surface of the plugin pair.
type Options struct {
	// Imports is the raw import map table. Keys ending in '/' are prefix
	// entries; their targets must also end in '/'.
	Imports map[string]string

	// BaseDir anchors relative local targets. When empty, the bundler's
	// working directory is used, then the process working directory.
	BaseDir string

	// EnableHTTP opts in to resolving and bundling http(s) targets. Without
	// it, a specifier mapping to a remote URL fails the build.
	EnableHTTP bool

	// Timeout bounds each remote fetch. Zero means httpcache.DefaultTimeout.
	Timeout time.Duration

	// Loader, when set, gets the first say in how fetched content is parsed.
	Loader loader.Func

	// LogSink receives one diagnostic line per resolution or fetch. It has no
	// behavioral effect.
	LogSink func(message string)
}

type pluginState struct {
	opts   Options
	imap   *importmap.ImportMap
	client *httpcache.Client
}

// New builds the plugin pair for a single build invocation. The import map is
// validated here, before any module is processed, and the returned plugins
// share one fetch cache scoped to that build.
func New(opts Options) ([]es.Plugin, error) {
	imap, err := importmap.New(opts.Imports)
	if err != nil {
		return nil, err
	}

	state := &pluginState{
		opts:   opts,
		imap:   imap,
		client: httpcache.NewClient(opts.Timeout),
	}

	return []es.Plugin{
		importMapPlugin(state),
		httpPlugin(state),
	}, nil
}

func (state *pluginState) logf(msg string, ctx log.Ctx) {
	logger.Debug(msg, ctx)
	if state.opts.LogSink != nil {
		if len(ctx) > 0 {
			msg = fmt.Sprintf("%s %v", msg, map[string]any(ctx))
		}
		state.opts.LogSink(msg)
	}
}
