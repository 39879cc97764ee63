package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"remap.dev/internal/static"
)

var (
	projectPath string
)

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

type ProjectPathNotFoundError struct {
	visited []string
}

func (e ProjectPathNotFoundError) Error() string {
	var sb strings.Builder

	sb.WriteString("Could not find a remap.json file\n\n")
	sb.WriteString("Checked:\n")
	for _, dir := range e.visited {
		sb.WriteString(fmt.Sprintf("\t%s\n", dir))
	}
	sb.WriteString("\n")

	return sb.String()
}

func findProjectPath(currentDir string, visited []string) (string, error) {
	if currentDir == filepath.Dir(currentDir) {
		return "", ProjectPathNotFoundError{visited: visited}
	}

	if !fileExists(filepath.Join(currentDir, "remap.json")) {
		return findProjectPath(filepath.Dir(currentDir), append(visited, currentDir))
	}
	return currentDir, nil
}

func SetProjectPath(givenProjectPath string) (string, error) {
	if !filepath.IsAbs(givenProjectPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get cwd: %w", err)
		}

		givenProjectPath = filepath.Join(cwd, givenProjectPath)
	}

	givenProjectPath = filepath.Clean(givenProjectPath)
	if fileExists(filepath.Join(givenProjectPath, "remap.json")) {
		projectPath = givenProjectPath
		return projectPath, nil
	}

	return "", ProjectPathNotFoundError{visited: []string{givenProjectPath}}
}

var GetProjectPath = static.CreateOnce(func() (string, error) {
	if projectPath == "" {
		// The env var is an exact path to the project, not a hint. We only
		// verify that it holds a remap.json.
		envProjectPath := os.Getenv("REMAP_PROJECT_PATH")
		if envProjectPath != "" {
			return SetProjectPath(envProjectPath)
		}

		// Otherwise walk up from the cwd to the closest remap project.
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get cwd: %w", err)
		}

		discoveredProjectPath, err := findProjectPath(cwd, nil)
		if err != nil {
			return "", err
		}
		return SetProjectPath(discoveredProjectPath)
	}
	return projectPath, nil
})
