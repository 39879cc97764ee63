package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"remap.dev/internal/importmap"
	"remap.dev/internal/plugins"
)

// Config is the contents of a project's remap.json.
type Config struct {
	// Path to the project folder
	ProjectPath string `json:"-"`

	// Name of the project
	Name string `json:"name,omitempty"`

	// Entrypoints to bundle, relative to the project folder
	Entrypoints []string `json:"entrypoints,omitempty"`

	// OutDir receives built bundles; defaults to "dist"
	OutDir string `json:"outDir,omitempty"`

	// BaseDir anchors relative import map targets; defaults to the project
	// folder
	BaseDir string `json:"baseDir,omitempty"`

	// EnableHTTP opts in to bundling remote http(s) modules
	EnableHTTP bool `json:"enableHttp,omitempty"`

	// TimeoutMs bounds each remote fetch, in milliseconds
	TimeoutMs int `json:"timeoutMs,omitempty"`

	// Imports is an inline import map table
	Imports map[string]string `json:"imports,omitempty"`

	// ImportMap is a path to a browser-format import map file; inline entries
	// win on conflicting keys
	ImportMap string `json:"importMap,omitempty"`
}

// LoadFromEnv loads the config of the active project, discovered through the
// usual project-path rules.
func LoadFromEnv() (Config, error) {
	projectPath, err := GetProjectPath()
	if err != nil {
		return Config{}, err
	}

	var config Config
	err = config.Load(projectPath)
	return config, err
}

// Load reads and validates remap.json from the given project folder.
func (config *Config) Load(projectPath string) error {
	var err error

	config.ProjectPath, err = filepath.Abs(projectPath)
	if err != nil {
		return err
	}

	configPath := filepath.Join(config.ProjectPath, "remap.json")

	buf, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read remap.json: %w", err)
	}

	if err := json.Unmarshal(buf, config); err != nil {
		return fmt.Errorf("failed to parse remap.json: %w", err)
	}

	if config.Name == "" {
		return fmt.Errorf("remap.json is missing the 'name' field")
	}
	if config.OutDir == "" {
		config.OutDir = "dist"
	}

	// Validate the import map eagerly so a bad map fails setup, not some
	// arbitrary module resolution later.
	if _, err := config.ImportTable(); err != nil {
		return err
	}

	return nil
}

// ImportTable merges the import map file (if any) with the inline table.
func (config *Config) ImportTable() (map[string]string, error) {
	imports := make(map[string]string)

	if config.ImportMap != "" {
		mapPath := config.ImportMap
		if !filepath.IsAbs(mapPath) {
			mapPath = filepath.Join(config.ProjectPath, mapPath)
		}

		buf, err := os.ReadFile(mapPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read import map %s: %w", config.ImportMap, err)
		}

		fromFile, err := importmap.ParseJSON(buf)
		if err != nil {
			return nil, err
		}
		for key, target := range fromFile.Entries() {
			imports[key] = target
		}
	}

	for key, target := range config.Imports {
		imports[key] = target
	}

	if _, err := importmap.New(imports); err != nil {
		return nil, err
	}
	return imports, nil
}

// PluginOptions translates the config into the plugin configuration for one
// build.
func (config *Config) PluginOptions() (plugins.Options, error) {
	imports, err := config.ImportTable()
	if err != nil {
		return plugins.Options{}, err
	}

	baseDir := config.BaseDir
	if baseDir == "" {
		baseDir = config.ProjectPath
	} else if !filepath.IsAbs(baseDir) {
		baseDir = filepath.Join(config.ProjectPath, baseDir)
	}

	return plugins.Options{
		Imports:    imports,
		BaseDir:    baseDir,
		EnableHTTP: config.EnableHTTP,
		Timeout:    time.Duration(config.TimeoutMs) * time.Millisecond,
	}, nil
}
