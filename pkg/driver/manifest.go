// Package driver hosts the glue around the semantic core: the project
// manifest, module resolution, and dependency installation.
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is looked up from the entry script's directory upward.
const ManifestFileName = "paw.yml"

// DefaultScriptExtension is the extension module resolution appends to an
// import's joined path segments.
const DefaultScriptExtension = "paw"

// ErrManifestNotFound reports that no paw.yml exists from the start
// directory upward.
var ErrManifestNotFound = errors.New("paw.yml not found")

// EngineOptions replaces the original engine's process-wide knobs with an
// explicit configuration value handed into the run call.
type EngineOptions struct {
	// MaxCallDepth bounds nested function calls. Zero means the
	// interpreter default.
	MaxCallDepth int `yaml:"max_call_depth"`
	// ScriptExtension overrides DefaultScriptExtension.
	ScriptExtension string `yaml:"script_extension"`
}

// DependencySpec describes one git-hosted dependency.
type DependencySpec struct {
	Git    string `yaml:"git"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// Manifest represents the parsed contents of paw.yml.
type Manifest struct {
	Path         string                     `yaml:"-"`
	Name         string                     `yaml:"name"`
	Version      string                     `yaml:"version"`
	Entry        string                     `yaml:"entry"`
	Engine       EngineOptions              `yaml:"engine"`
	SearchPaths  []string                   `yaml:"search_paths"`
	Dependencies map[string]*DependencySpec `yaml:"dependencies"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path %s: %w", path, err)
	}
	m.Path = abs
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindManifest walks from start upward looking for paw.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestFileName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// WriteManifest serializes the manifest back to disk.
func WriteManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// ScriptExtension returns the configured or default script extension.
func (m *Manifest) ScriptExtension() string {
	if m != nil && strings.TrimSpace(m.Engine.ScriptExtension) != "" {
		return strings.TrimPrefix(strings.TrimSpace(m.Engine.ScriptExtension), ".")
	}
	return DefaultScriptExtension
}

// EntryPath resolves the manifest's entry script relative to paw.yml.
func (m *Manifest) EntryPath() (string, error) {
	entry := strings.TrimSpace(m.Entry)
	if entry == "" {
		return "", fmt.Errorf("manifest %s has no entry script", m.Path)
	}
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry), nil
	}
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(entry)), nil
}

func (m *Manifest) validate() error {
	var issues []string
	if strings.TrimSpace(m.Name) == "" {
		issues = append(issues, "name is required")
	}
	for name, dep := range m.Dependencies {
		if dep == nil || strings.TrimSpace(dep.Git) == "" {
			issues = append(issues, fmt.Sprintf("dependency %q needs a git URL", name))
			continue
		}
		if dep.Tag != "" && dep.Branch != "" {
			issues = append(issues, fmt.Sprintf("dependency %q sets both tag and branch", name))
		}
	}
	if m.Engine.MaxCallDepth < 0 {
		issues = append(issues, "engine.max_call_depth cannot be negative")
	}
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("manifest %s invalid: %s", m.Path, strings.Join(issues, "; "))
}
