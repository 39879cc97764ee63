package plugins

import (
	es "github.com/evanw/esbuild/pkg/api"
	"remap.dev/internal/importmap"
	"remap.dev/internal/log"
	"remap.dev/internal/resolve"
)

// importMapPlugin rewrites bare specifiers through the import map. It runs in
// every namespace: a bare specifier found inside a fetched remote module is
// matched against the same top-level map, never reinterpreted as a URL
// relative to that module.
func importMapPlugin(state *pluginState) es.Plugin {
	return es.Plugin{
		Name: "remap-import-map",
		Setup: func(build es.PluginBuild) {
			resolver := &resolve.Resolver{
				Map:        state.imap,
				BaseDir:    resolve.BaseDir(state.opts.BaseDir, build.InitialOptions.AbsWorkingDir),
				EnableHTTP: state.opts.EnableHTTP,
			}

			logger.Debug("Configured import map", log.Ctx{
				"entries":    state.imap.Len(),
				"baseDir":    resolver.BaseDir,
				"enableHttp": resolver.EnableHTTP,
			})

			build.OnResolve(es.OnResolveOptions{Filter: "^[^./]"}, func(args es.OnResolveArgs) (es.OnResolveResult, error) {
				if !importmap.IsBareSpecifier(args.Path) {
					return es.OnResolveResult{}, nil
				}

				target, ok, err := resolver.ResolveBare(args.Path)
				if err != nil {
					return es.OnResolveResult{}, err
				}
				if !ok {
					// Not in the map; the bundler's default resolution decides.
					return es.OnResolveResult{}, nil
				}

				state.logf("Rewrote bare specifier", log.Ctx{
					"specifier": args.Path,
					"importer":  args.Importer,
					"target":    target.Path,
				})

				if target.Kind == resolve.KindRemote {
					return es.OnResolveResult{
						Path:      target.Path,
						Namespace: Namespace,
					}, nil
				}
				return es.OnResolveResult{Path: target.Path}, nil
			})
		},
	}
}
