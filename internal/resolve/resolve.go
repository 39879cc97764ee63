// Package resolve turns matched import map targets into concrete build
// targets: absolute local paths, or remote URLs gated behind the http opt-in.
// It also anchors relative imports found inside remote modules to their
// module's resolved URL.
package resolve

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"remap.dev/internal/importmap"
)

// Kind distinguishes local filesystem targets from remote URLs.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
)

// Target is the outcome of resolving a mapped specifier. Path holds an
// absolute filesystem path for KindLocal, or a URL for KindRemote.
type Target struct {
	Kind Kind
	Path string
}

// PolicyError is returned when a specifier maps to a remote URL while http
// resolution is disabled. It names both the specifier and the target so the
// failing map entry is obvious from the build output.
type PolicyError struct {
	Specifier string
	Target    string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("cannot resolve %q to remote target %q: http imports are disabled (set enableHttp to allow them)", e.Specifier, e.Target)
}

// Resolver resolves bare specifiers through an import map against a fixed
// base directory. It is immutable for the duration of a build.
type Resolver struct {
	Map        *importmap.ImportMap
	BaseDir    string
	EnableHTTP bool
}

// ResolveBare rewrites a bare specifier through the import map and classifies
// the result. The second return value is false when the map has no entry for
// the specifier, deferring to the bundler's default resolution.
func (r *Resolver) ResolveBare(specifier string) (Target, bool, error) {
	target, ok := r.Map.Resolve(specifier)
	if !ok {
		return Target{}, false, nil
	}

	if IsRemoteTarget(target) {
		if !r.EnableHTTP {
			return Target{}, false, &PolicyError{Specifier: specifier, Target: target}
		}
		return Target{Kind: KindRemote, Path: target}, true, nil
	}

	// No existence check happens here: a mapped path that points at nothing
	// surfaces as a normal load error from the bundler.
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.BaseDir, target)
	}
	return Target{Kind: KindLocal, Path: filepath.Clean(target)}, true, nil
}

// IsRemoteTarget reports whether a map target names an http(s) URL.
func IsRemoteTarget(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// ResolveAgainst resolves a relative specifier found inside a remote module
// against that module's resolved URL, yielding the absolute URL to fetch
// next. Standard URL-relative resolution applies, so "./b.js", "../c.js" and
// "/d.js" all work.
func ResolveAgainst(importerUrl string, specifier string) (string, error) {
	parsed, err := url.Parse(importerUrl)
	if err != nil {
		return "", fmt.Errorf("failed to parse importer url %s: %w", importerUrl, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid importer url %s", importerUrl)
	}

	ref, err := url.Parse(specifier)
	if err != nil {
		return "", fmt.Errorf("failed to parse specifier %s: %w", specifier, err)
	}
	return parsed.ResolveReference(ref).String(), nil
}

// BaseDir picks the directory local relative targets resolve against:
// the explicitly configured directory, then the bundler's working directory,
// then the process working directory.
func BaseDir(explicit string, bundlerDir string) string {
	if explicit != "" {
		return explicit
	}
	if bundlerDir != "" {
		return bundlerDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
