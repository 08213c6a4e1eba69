package coverage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/cover"
)

// GoProfile is a Go cover profile (go test -coverprofile). Blocks are
// expanded to lines; a line shared by several blocks takes the highest
// count, and lines outside every block are non-executable.
type GoProfile struct {
	fileSet

	// Unresolved lists profile file names that could not be mapped
	// to a file under the module directory.
	Unresolved []string
}

// LoadGoProfile reads a Go cover profile. Import-path file names are
// resolved against the module path declared in moduleDir/go.mod.
func LoadGoProfile(path, moduleDir string) (*GoProfile, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	modulePath := readModulePath(moduleDir)
	g := &GoProfile{fileSet: newFileSet()}
	for _, profile := range profiles {
		filePath := resolveFilePath(profile.FileName, moduleDir, modulePath)
		if filePath == "" {
			g.Unresolved = append(g.Unresolved, profile.FileName)
			continue
		}
		g.add(filePath, profileLines(profile))
	}
	return g, nil
}

// ProjectCoverage implements Source. Cover profiles carry no project
// total.
func (g *GoProfile) ProjectCoverage() (float64, bool) {
	return 0, false
}

// profileLines expands the blocks of one profile into line hits.
func profileLines(p *cover.Profile) LineCoverage {
	last := 0
	for _, b := range p.Blocks {
		if b.EndLine > last {
			last = b.EndLine
		}
	}

	lc := make(LineCoverage, last)
	for i := range lc {
		lc[i] = NonExecutable
	}
	for _, b := range p.Blocks {
		for line := b.StartLine; line <= b.EndLine; line++ {
			if line < 1 {
				continue
			}
			if b.Count > lc[line-1] {
				lc[line-1] = b.Count
			}
		}
	}
	return lc
}

// resolveFilePath maps a profile file name (import-path relative,
// e.g. "github.com/user/pkg/file.go") to an absolute filesystem path.
// It returns "" when the file cannot be found.
func resolveFilePath(profileName, moduleDir, modulePath string) string {
	// Some profiles use absolute paths.
	if filepath.IsAbs(profileName) {
		if _, err := os.Stat(profileName); err == nil {
			return profileName
		}
	}

	if modulePath == "" {
		return ""
	}
	if profileName != modulePath && !strings.HasPrefix(profileName, modulePath+"/") {
		return ""
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(profileName, modulePath), "/")
	absPath := filepath.Join(moduleDir, filepath.FromSlash(rel))
	if _, err := os.Stat(absPath); err != nil {
		return ""
	}
	return absPath
}

// readModulePath reads the module path from go.mod in dir.
func readModulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module")), `"`)
		}
	}
	return ""
}
