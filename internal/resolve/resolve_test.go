package resolve

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"remap.dev/internal/importmap"
)

func newResolver(t *testing.T, imports map[string]string, baseDir string, enableHttp bool) *Resolver {
	t.Helper()

	m, err := importmap.New(imports)
	if err != nil {
		t.Fatal(err)
	}
	return &Resolver{Map: m, BaseDir: baseDir, EnableHTTP: enableHttp}
}

func TestResolveLocalTargets(t *testing.T) {
	resolver := newResolver(t, map[string]string{
		"lib":     "./vendor/lib.js",
		"abs":     "/opt/modules/abs.js",
		"vendor/": "./vendor/",
	}, "/project", false)

	target, ok, err := resolver.ResolveBare("lib")
	if err != nil || !ok {
		t.Fatalf("unexpected result: %v, %s", ok, err)
	}
	if target.Kind != KindLocal || target.Path != filepath.Clean("/project/vendor/lib.js") {
		t.Fatalf("unexpected target: %+v", target)
	}

	target, _, _ = resolver.ResolveBare("abs")
	if target.Kind != KindLocal || target.Path != filepath.Clean("/opt/modules/abs.js") {
		t.Fatalf("expected absolute targets to pass through, got %+v", target)
	}

	target, _, _ = resolver.ResolveBare("vendor/util.js")
	if target.Kind != KindLocal || target.Path != filepath.Clean("/project/vendor/util.js") {
		t.Fatalf("unexpected prefix target: %+v", target)
	}
}

func TestResolveUnmatched(t *testing.T) {
	resolver := newResolver(t, map[string]string{"lib": "./lib.js"}, "/project", false)

	_, ok, err := resolver.ResolveBare("unmapped")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if ok {
		t.Fatalf("expected unmapped specifiers to defer to default resolution")
	}
}

func TestRemoteTargetPolicy(t *testing.T) {
	imports := map[string]string{
		"react":   "https://esm.sh/react@18.2.0",
		"@scope/": "https://esm.sh/@scope/",
	}

	// Disabled: both exact and prefix matches fail with a policy error
	resolver := newResolver(t, imports, "/project", false)
	for specifier, wantTarget := range map[string]string{
		"react":         "https://esm.sh/react@18.2.0",
		"@scope/pkg.js": "https://esm.sh/@scope/pkg.js",
	} {
		_, _, err := resolver.ResolveBare(specifier)
		if err == nil {
			t.Fatalf("expected a policy error for %q", specifier)
		}

		var policyErr *PolicyError
		if !errors.As(err, &policyErr) {
			t.Fatalf("expected a PolicyError, got %T: %s", err, err)
		}
		if !strings.Contains(err.Error(), specifier) || !strings.Contains(err.Error(), wantTarget) {
			t.Fatalf("expected the error to name the specifier and target: %s", err)
		}
	}

	// Enabled: the same map yields remote targets
	resolver = newResolver(t, imports, "/project", true)
	target, ok, err := resolver.ResolveBare("react")
	if err != nil || !ok {
		t.Fatalf("unexpected result: %v, %s", ok, err)
	}
	if target.Kind != KindRemote || target.Path != "https://esm.sh/react@18.2.0" {
		t.Fatalf("unexpected target: %+v", target)
	}
}

func TestResolveAgainst(t *testing.T) {
	resolved, err := ResolveAgainst("https://cdn.test/pkg/v1/index.js", "./b.js")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "https://cdn.test/pkg/v1/b.js" {
		t.Fatalf("unexpected resolution: %s", resolved)
	}

	resolved, err = ResolveAgainst("https://cdn.test/pkg/v1/index.js", "../common/util.js")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "https://cdn.test/pkg/common/util.js" {
		t.Fatalf("unexpected resolution: %s", resolved)
	}

	resolved, err = ResolveAgainst("https://cdn.test/pkg/v1/index.js", "/root.js")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "https://cdn.test/root.js" {
		t.Fatalf("unexpected resolution: %s", resolved)
	}

	if _, err := ResolveAgainst("/local/file.js", "./b.js"); err == nil {
		t.Fatalf("expected an error for a non-http importer")
	}
}

func TestBaseDirPrecedence(t *testing.T) {
	if got := BaseDir("/explicit", "/bundler"); got != "/explicit" {
		t.Fatalf("expected the explicit dir to win, got %s", got)
	}
	if got := BaseDir("", "/bundler"); got != "/bundler" {
		t.Fatalf("expected the bundler dir to be used, got %s", got)
	}
	if got := BaseDir("", ""); got == "" {
		t.Fatalf("expected a process working dir fallback")
	}
}
