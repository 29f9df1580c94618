package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Project projectSection `toml:"project"`
	Build   buildSection   `toml:"build"`
	UI      uiSection      `toml:"ui"`
}

type projectSection struct {
	Name string `toml:"name"`
}

type buildSection struct {
	Design string `toml:"design"`
	Out    string `toml:"out"`
	Rounds int    `toml:"rounds"`
	Jobs   int    `toml:"jobs"`
}

type uiSection struct {
	Progress string `toml:"progress"`
}

func findSilicaToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "silica.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findSilicaToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// loadProjectConfig parses silica.toml. Only [project].name is required;
// [build] and [ui] provide defaults the flags can override.
func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return projectConfig{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if meta.IsDefined("ui", "progress") {
		if _, err := readUIMode(cfg.UI.Progress); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [ui].progress: %w", path, err)
		}
	}
	if cfg.Build.Rounds < 0 {
		return projectConfig{}, fmt.Errorf("%s: [build].rounds must not be negative", path)
	}
	if cfg.Build.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	return cfg, nil
}
