// Package loader decides how fetched module content should be parsed by
// esbuild. Selection is layered: a caller-supplied override runs first, then
// extension inference from the final URL, then the declared content-type, and
// finally a plain JS fallback.
package loader

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	es "github.com/evanw/esbuild/pkg/api"
)

// Request describes the module being loaded, as the bundler saw it.
type Request struct {
	// Path is the requested URL (or path) of the module.
	Path string
	// Namespace is the bundler namespace the module lives in.
	Namespace string
}

// Response carries the parts of the fetch result that loader selection looks
// at.
type Response struct {
	// FinalURL is the post-redirect URL; its path extension drives inference.
	FinalURL string
	// Header holds the response headers, consulted for Content-Type.
	Header http.Header
}

// Func is a caller-supplied override. Returning ok=false declines, falling
// through to extension and content-type inference. The selector blocks on the
// call, so an implementation is free to do its own I/O.
type Func func(req Request, res Response) (loader es.Loader, ok bool, err error)

var extLoaders = map[string]es.Loader{
	".js":   es.LoaderJS,
	".mjs":  es.LoaderJS,
	".cjs":  es.LoaderJS,
	".jsx":  es.LoaderJSX,
	".ts":   es.LoaderTS,
	".mts":  es.LoaderTS,
	".cts":  es.LoaderTS,
	".tsx":  es.LoaderTSX,
	".json": es.LoaderJSON,
	".css":  es.LoaderCSS,
	".txt":  es.LoaderText,
}

var contentTypeLoaders = map[string]es.Loader{
	"text/javascript":          es.LoaderJS,
	"application/javascript":   es.LoaderJS,
	"application/x-javascript": es.LoaderJS,
	"text/jsx":                 es.LoaderJSX,
	"text/typescript":          es.LoaderTS,
	"application/typescript":   es.LoaderTS,
	"text/tsx":                 es.LoaderTSX,
	"application/json":         es.LoaderJSON,
	"text/css":                 es.LoaderCSS,
	"text/plain":               es.LoaderText,
}

// Detect picks the loader for a fetched module. Extension inference takes
// priority over the content-type header: CDNs routinely mislabel module
// responses, while the URL path extension is author-controlled.
func Detect(override Func, req Request, res Response) (es.Loader, error) {
	if override != nil {
		loader, ok, err := override(req, res)
		if err != nil {
			return es.LoaderNone, err
		}
		if ok {
			return loader, nil
		}
	}

	if loader, ok := ForPath(res.FinalURL); ok {
		return loader, nil
	}

	if loader, ok := forContentType(res.Header.Get("Content-Type")); ok {
		return loader, nil
	}

	return es.LoaderJS, nil
}

// ForPath infers a loader from the extension of a URL or file path.
func ForPath(target string) (es.Loader, bool) {
	pathname := target
	if parsed, err := url.Parse(target); err == nil && parsed.Scheme != "" {
		pathname = parsed.Path
	}
	loader, ok := extLoaders[strings.ToLower(path.Ext(pathname))]
	return loader, ok
}

func forContentType(contentType string) (es.Loader, bool) {
	if contentType == "" {
		return es.LoaderNone, false
	}

	// Strip parameters like "; charset=utf-8"
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	loader, ok := contentTypeLoaders[contentType]
	return loader, ok
}
