// Package devcontainer locates and parses a project's devcontainer.json
// descriptor, following the search order defined by the Development
// Containers specification (containers.dev).
package devcontainer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DevContainer is the subset of a devcontainer.json descriptor this agent
// consumes: the container image to run the workspace in.
type DevContainer struct {
	Image string `json:"image"`
}

// Load finds and parses the devcontainer.json descriptor under directory.
func Load(directory string) (*DevContainer, error) {
	path, err := find(directory)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var dc DevContainer
	if err := json.NewDecoder(f).Decode(&dc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if dc.Image == "" {
		return nil, fmt.Errorf("%s: no image specified", path)
	}
	return &dc, nil
}

// find searches directory for a devcontainer.json descriptor in order of
// precedence:
//
//  1. .devcontainer/devcontainer.json
//  2. .devcontainer.json
//  3. .devcontainer/<subdir>/devcontainer.json, the first matching
//     one-level-deep subdirectory in directory-read order
//
// It is valid for descriptors to exist in more than one location; only the
// first one found is used.
func find(directory string) (string, error) {
	candidates := []string{
		filepath.Join(directory, ".devcontainer", "devcontainer.json"),
		filepath.Join(directory, ".devcontainer.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	devcontainerDir := filepath.Join(directory, ".devcontainer")
	if info, err := os.Stat(devcontainerDir); err == nil && info.IsDir() {
		entries, err := os.ReadDir(devcontainerDir)
		if err == nil {
			for _, entry := range entries {
				if !entry.IsDir() {
					continue
				}
				nested := filepath.Join(devcontainerDir, entry.Name(), "devcontainer.json")
				if _, err := os.Stat(nested); err == nil {
					return nested, nil
				}
			}
		}
	}

	return "", fmt.Errorf("no devcontainer.json found under %s", directory)
}
