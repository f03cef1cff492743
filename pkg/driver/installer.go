package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"
)

// Installer fetches the manifest's git dependencies into a local cache.
// Installed checkouts become module search paths so their scripts resolve
// like project-local files.
type Installer struct {
	Manifest *Manifest
	CacheDir string
	Log      zerolog.Logger
}

// NewInstaller builds an installer rooted at cacheDir.
func NewInstaller(m *Manifest, cacheDir string, log zerolog.Logger) *Installer {
	return &Installer{Manifest: m, CacheDir: cacheDir, Log: log}
}

// DefaultCacheDir returns the per-user dependency cache location.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	return filepath.Join(base, "paw", "pkg"), nil
}

// Install clones every dependency that is not already present and returns
// the search paths for the installed checkouts, sorted by dependency name.
func (in *Installer) Install() ([]string, error) {
	if in.Manifest == nil || len(in.Manifest.Dependencies) == 0 {
		return nil, nil
	}
	if in.CacheDir == "" {
		return nil, fmt.Errorf("dependency cache dir not configured")
	}

	names := make([]string, 0, len(in.Manifest.Dependencies))
	for name := range in.Manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		spec := in.Manifest.Dependencies[name]
		dir, err := in.ensureCheckout(name, spec)
		if err != nil {
			return nil, err
		}
		paths = append(paths, dir)
	}
	return paths, nil
}

// SearchPaths returns the checkout directories for already-installed
// dependencies without touching the network. Missing checkouts are
// reported so the caller can suggest an install.
func (in *Installer) SearchPaths() ([]string, error) {
	if in.Manifest == nil || len(in.Manifest.Dependencies) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(in.Manifest.Dependencies))
	for name := range in.Manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		spec := in.Manifest.Dependencies[name]
		dir := in.checkoutDir(name, spec)
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("dependency %q not installed (run `paw deps install`): %w", name, err)
		}
		paths = append(paths, dir)
	}
	return paths, nil
}

func (in *Installer) checkoutDir(name string, spec *DependencySpec) string {
	return filepath.Join(in.CacheDir, sanitizeSegment(name), sanitizeSegment(specVersion(spec)))
}

func (in *Installer) ensureCheckout(name string, spec *DependencySpec) (string, error) {
	target := in.checkoutDir(name, spec)
	if _, err := os.Stat(target); err == nil {
		in.Log.Debug().Str("dependency", name).Str("path", target).Msg("dependency already installed")
		return target, nil
	}

	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("dependency %q: create cache dir: %w", name, err)
	}
	tmpDir, err := os.MkdirTemp(parent, "fetch-*")
	if err != nil {
		return "", fmt.Errorf("dependency %q: %w", name, err)
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", fmt.Errorf("dependency %q: %w", name, err)
	}

	opts := &git.CloneOptions{
		URL:   spec.Git,
		Depth: 1,
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		opts.ReferenceName = plumbing.NewTagReferenceName(tag)
		opts.SingleBranch = true
	} else if branch := strings.TrimSpace(spec.Branch); branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	in.Log.Info().Str("dependency", name).Str("url", spec.Git).Str("version", specVersion(spec)).Msg("installing dependency")
	if _, err := git.PlainClone(tmpDir, false, opts); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("dependency %q: clone %s: %w", name, spec.Git, err)
	}

	if err := os.Rename(tmpDir, target); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("dependency %q: %w", name, err)
	}
	return target, nil
}

func specVersion(spec *DependencySpec) string {
	if spec == nil {
		return "head"
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return tag
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return branch
	}
	return "head"
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
