package importmap

import (
	"errors"
	"strings"
	"testing"
)

func mustMap(t *testing.T, imports map[string]string) *ImportMap {
	t.Helper()

	m, err := New(imports)
	if err != nil {
		t.Fatalf("unexpected error building import map: %s", err)
	}
	return m
}

func assertResolved(t *testing.T, m *ImportMap, specifier, expected string) {
	t.Helper()

	target, ok := m.Resolve(specifier)
	if !ok {
		t.Fatalf("expected %q to resolve, got no match", specifier)
	}
	if target != expected {
		t.Fatalf("expected %q to resolve to %q, got %q", specifier, expected, target)
	}
}

func assertUnmatched(t *testing.T, m *ImportMap, specifier string) {
	t.Helper()

	if target, ok := m.Resolve(specifier); ok {
		t.Fatalf("expected %q to have no match, resolved to %q", specifier, target)
	}
}

func TestExactMatch(t *testing.T) {
	m := mustMap(t, map[string]string{
		"react": "https://esm.sh/react@18.2.0",
		"lib":   "./vendor/lib.js",
	})

	assertResolved(t, m, "react", "https://esm.sh/react@18.2.0")
	assertResolved(t, m, "lib", "./vendor/lib.js")
	assertUnmatched(t, m, "react-dom")
	assertUnmatched(t, m, "vue")
}

func TestPrefixMatch(t *testing.T) {
	m := mustMap(t, map[string]string{
		"pkg/": "https://esm.sh/pkg/",
	})

	assertResolved(t, m, "pkg/index.js", "https://esm.sh/pkg/index.js")
	assertResolved(t, m, "pkg/nested/mod.js", "https://esm.sh/pkg/nested/mod.js")

	// The bare form of a prefix key is not a match
	assertUnmatched(t, m, "pkg")
}

func TestExactWinsOverPrefix(t *testing.T) {
	m := mustMap(t, map[string]string{
		"pkg":        "https://esm.sh/pkg@1.0.0/index.js",
		"pkg/":       "https://cdn.example.com/pkg/",
		"pkg/sub.js": "https://cdn.example.com/replaced.js",
	})

	// Exact entries always win, even when a longer prefix also matches
	assertResolved(t, m, "pkg", "https://esm.sh/pkg@1.0.0/index.js")
	assertResolved(t, m, "pkg/sub.js", "https://cdn.example.com/replaced.js")
	assertResolved(t, m, "pkg/other.js", "https://cdn.example.com/pkg/other.js")
}

func TestLongestPrefixWins(t *testing.T) {
	m := mustMap(t, map[string]string{
		"pkg/":       "https://cdn.example.com/pkg/",
		"pkg/utils/": "https://cdn.example.com/utils/",
	})

	assertResolved(t, m, "pkg/utils/index.js", "https://cdn.example.com/utils/index.js")
	assertResolved(t, m, "pkg/main.js", "https://cdn.example.com/pkg/main.js")
}

func TestInvalidPrefixTarget(t *testing.T) {
	_, err := New(map[string]string{
		"pkg/": "./pkg",
	})
	if err == nil {
		t.Fatalf("expected an error for a prefix key with a non-slash target")
	}

	var invalidTarget *InvalidTargetError
	if !errors.As(err, &invalidTarget) {
		t.Fatalf("expected an InvalidTargetError, got %T", err)
	}
	if invalidTarget.Key != "pkg/" || invalidTarget.Target != "./pkg" {
		t.Fatalf("unexpected error contents: %+v", invalidTarget)
	}
	if !strings.Contains(err.Error(), "pkg/") || !strings.Contains(err.Error(), "./pkg") {
		t.Fatalf("expected the error to name the key and target: %s", err)
	}
}

func TestParseJSON(t *testing.T) {
	m, err := ParseJSON([]byte(`{
		"imports": {
			"react": "https://esm.sh/react@18.2.0",
			"app/": "./src/app/"
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	assertResolved(t, m, "react", "https://esm.sh/react@18.2.0")
	assertResolved(t, m, "app/main.ts", "./src/app/main.ts")
}

func TestParseJSONRejectsScopes(t *testing.T) {
	_, err := ParseJSON([]byte(`{
		"imports": {},
		"scopes": {
			"/vendor/": {"react": "https://esm.sh/react@17.0.0"}
		}
	}`))
	if err == nil {
		t.Fatalf("expected scoped entries to be rejected")
	}
	if !strings.Contains(err.Error(), "/vendor/") {
		t.Fatalf("expected the error to name the scope key: %s", err)
	}
}

func TestIsBareSpecifier(t *testing.T) {
	bare := []string{"react", "pkg/sub.js", "@scope/pkg", "#internal"}
	for _, specifier := range bare {
		if !IsBareSpecifier(specifier) {
			t.Errorf("expected %q to be a bare specifier", specifier)
		}
	}

	notBare := []string{"", "./mod.js", "../mod.js", "/abs/mod.js", "https://esm.sh/react", "http://x.test/y", "data:text/javascript,1", "file:///x.js"}
	for _, specifier := range notBare {
		if IsBareSpecifier(specifier) {
			t.Errorf("expected %q to not be a bare specifier", specifier)
		}
	}
}
