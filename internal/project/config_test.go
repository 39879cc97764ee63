package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, contents := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fullPath, []byte(contents), 0666); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"remap.json": `{
			"name": "demo",
			"entrypoints": ["src/main.ts"],
			"enableHttp": true,
			"timeoutMs": 5000,
			"imports": {"react": "https://esm.sh/react@18.2.0"}
		}`,
	})

	var config Config
	if err := config.Load(dir); err != nil {
		t.Fatal(err)
	}

	if config.Name != "demo" {
		t.Fatalf("unexpected name: %s", config.Name)
	}
	if config.OutDir != "dist" {
		t.Fatalf("expected the default out dir, got %s", config.OutDir)
	}
	if !config.EnableHTTP {
		t.Fatalf("expected http imports to be enabled")
	}

	opts, err := config.PluginOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", opts.Timeout)
	}
	if opts.BaseDir != config.ProjectPath {
		t.Fatalf("expected the base dir to default to the project path, got %s", opts.BaseDir)
	}
	if opts.Imports["react"] != "https://esm.sh/react@18.2.0" {
		t.Fatalf("unexpected import table: %+v", opts.Imports)
	}
}

func TestLoadConfigRequiresName(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"remap.json": `{"entrypoints": ["main.js"]}`,
	})

	var config Config
	err := config.Load(dir)
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected a missing-name error, got %s", err)
	}
}

func TestLoadConfigValidatesImports(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"remap.json": `{
			"name": "demo",
			"imports": {"pkg/": "./pkg"}
		}`,
	})

	// A bad import table fails at load time, not mid-build
	var config Config
	err := config.Load(dir)
	if err == nil || !strings.Contains(err.Error(), "pkg/") {
		t.Fatalf("expected an invalid-target error naming the key, got %s", err)
	}
}

func TestImportTableMergesFileAndInline(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"remap.json": `{
			"name": "demo",
			"importMap": "importmap.json",
			"imports": {"react": "./vendor/react-local.js"}
		}`,
		"importmap.json": `{
			"imports": {
				"react": "https://esm.sh/react@18.2.0",
				"lodash": "https://esm.sh/lodash@4.17.21"
			}
		}`,
	})

	var config Config
	if err := config.Load(dir); err != nil {
		t.Fatal(err)
	}

	imports, err := config.ImportTable()
	if err != nil {
		t.Fatal(err)
	}

	// Inline entries win on conflicting keys
	if imports["react"] != "./vendor/react-local.js" {
		t.Fatalf("expected the inline entry to win, got %s", imports["react"])
	}
	if imports["lodash"] != "https://esm.sh/lodash@4.17.21" {
		t.Fatalf("expected file entries to carry over, got %s", imports["lodash"])
	}
}

func TestImportTableRejectsScopedMapFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"remap.json": `{
			"name": "demo",
			"importMap": "importmap.json"
		}`,
		"importmap.json": `{
			"imports": {},
			"scopes": {"/vendor/": {"react": "https://esm.sh/react@17.0.0"}}
		}`,
	})

	var config Config
	err := config.Load(dir)
	if err == nil || !strings.Contains(err.Error(), "/vendor/") {
		t.Fatalf("expected scoped maps to be rejected, got %s", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var config Config
	if err := config.Load(t.TempDir()); err == nil {
		t.Fatalf("expected an error for a folder without remap.json")
	}
}
