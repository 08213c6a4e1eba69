// Package cargo locates a Rust crate's sources from its Cargo manifest.
package cargo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestName is the Cargo manifest file name.
const ManifestName = "Cargo.toml"

// ErrNoPackage is returned when a manifest declares neither a package
// nor a workspace member with one.
var ErrNoPackage = errors.New("manifest declares no package")

// Manifest holds the Cargo.toml fields wcc reads.
type Manifest struct {
	Package *struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// Project is a crate resolved from a manifest.
type Project struct {
	// Name is the package name.
	Name string

	// Dir is the directory holding the package manifest. Coverage
	// file names are relative to it.
	Dir string

	// SourceDir is Dir/src.
	SourceDir string
}

// FindManifest returns the path of the nearest Cargo.toml at or above
// dir.
func FindManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no %s found at or above %s", ManifestName, dir)
		}
		abs = parent
	}
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// Resolve returns the project of the manifest at path. For a virtual
// workspace manifest the first member with a package is used.
func Resolve(path string) (*Project, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	if m.Package != nil {
		return &Project{
			Name:      m.Package.Name,
			Dir:       dir,
			SourceDir: filepath.Join(dir, "src"),
		}, nil
	}

	if m.Workspace != nil {
		for _, member := range m.Workspace.Members {
			matches, err := filepath.Glob(filepath.Join(dir, filepath.FromSlash(member)))
			if err != nil {
				return nil, fmt.Errorf("workspace member %q: %w", member, err)
			}
			for _, memberDir := range matches {
				p, err := Resolve(filepath.Join(memberDir, ManifestName))
				if err == nil {
					return p, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNoPackage)
}
