package plugins

import (
	es "github.com/evanw/esbuild/pkg/api"
	"remap.dev/internal/loader"
	"remap.dev/internal/log"
	"remap.dev/internal/resolve"
)

// httpPlugin fetches and loads modules in the http namespace. Fetches go
// through the build-scoped cache, so a URL reachable from several specifiers
// still hits the network once.
func httpPlugin(state *pluginState) es.Plugin {
	return es.Plugin{
		Name: "remap-http",
		Setup: func(build es.PluginBuild) {
			// A fully-formed URL needs no resolution, but it is still gated on
			// the http opt-in. Without it we decline, and default resolution
			// fails the specifier.
			build.OnResolve(es.OnResolveOptions{Filter: "^https?://"}, func(args es.OnResolveArgs) (es.OnResolveResult, error) {
				if !state.opts.EnableHTTP {
					return es.OnResolveResult{}, nil
				}
				return es.OnResolveResult{
					Path:      args.Path,
					Namespace: Namespace,
				}, nil
			})

			// Relative (and root-relative) imports inside a remote module are
			// anchored to that module's final URL, not the URL it was
			// originally requested as. The filter is not scoped to the http
			// namespace so that remote importers in any namespace are caught;
			// local importers fall through to default resolution.
			build.OnResolve(es.OnResolveOptions{Filter: "^[./]"}, func(args es.OnResolveArgs) (es.OnResolveResult, error) {
				if args.Namespace != Namespace && !resolve.IsRemoteTarget(args.Importer) {
					return es.OnResolveResult{}, nil
				}

				anchor := args.Importer
				if finalUrl, ok := state.client.FinalURL(args.Importer); ok {
					anchor = finalUrl
				}

				resolvedUrl, err := resolve.ResolveAgainst(anchor, args.Path)
				if err != nil {
					return es.OnResolveResult{}, err
				}

				state.logf("Resolved relative remote import", log.Ctx{
					"specifier": args.Path,
					"importer":  args.Importer,
					"anchor":    anchor,
					"resolved":  resolvedUrl,
				})
				return es.OnResolveResult{
					Path:      resolvedUrl,
					Namespace: Namespace,
				}, nil
			})

			build.OnLoad(es.OnLoadOptions{Filter: ".*", Namespace: Namespace}, func(args es.OnLoadArgs) (es.OnLoadResult, error) {
				res, err := state.client.Get(args.Path)
				if err != nil {
					return es.OnLoadResult{}, err
				}

				moduleLoader, err := loader.Detect(
					state.opts.Loader,
					loader.Request{Path: args.Path, Namespace: Namespace},
					loader.Response{FinalURL: res.FinalURL, Header: res.Header},
				)
				if err != nil {
					return es.OnLoadResult{}, err
				}

				state.logf("Loaded remote module", log.Ctx{
					"url":      args.Path,
					"finalUrl": res.FinalURL,
					"loader":   loaderName(moduleLoader),
				})

				contents := string(res.Body)
				return es.OnLoadResult{
					Contents: &contents,
					Loader:   moduleLoader,
				}, nil
			})
		},
	}
}

func loaderName(l es.Loader) string {
	switch l {
	case es.LoaderJS:
		return "js"
	case es.LoaderJSX:
		return "jsx"
	case es.LoaderTS:
		return "ts"
	case es.LoaderTSX:
		return "tsx"
	case es.LoaderJSON:
		return "json"
	case es.LoaderCSS:
		return "css"
	case es.LoaderText:
		return "text"
	}
	return "unknown"
}
