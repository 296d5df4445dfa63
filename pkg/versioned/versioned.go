// Package versioned locates installed, versioned tool directories such as
// Tools/Clang/v8.0.0/Ubuntu.
package versioned

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/apex/log"
	"github.com/binary-install/clangenv/pkg/platform"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Specs pins tool and library versions by name. Tools without a pin resolve
// to the newest installed version.
type Specs struct {
	Tools     map[string]string `yaml:"tools" json:"tools"`
	Libraries map[string]string `yaml:"libraries" json:"libraries"`
}

// Finder searches a filesystem for versioned directories
type Finder struct {
	FS       afero.Fs
	Platform platform.Platform
}

// Find returns the directory of the selected version under root/parts and
// the version string of that directory (as named on disk, e.g. "v8.0.0").
// Platform-specific subdirectories are descended into when present.
func (f *Finder) Find(specs Specs, root string, parts ...string) (string, string, error) {
	if len(parts) == 0 {
		return "", "", fmt.Errorf("no tool path given")
	}
	base := filepath.Join(append([]string{root}, parts...)...)
	toolName := parts[len(parts)-1]

	var version string
	if pinned := specs.Tools[toolName]; pinned != "" {
		v, err := f.pinnedVersion(base, pinned)
		if err != nil {
			return "", "", err
		}
		version = v
	} else {
		v, err := f.latestVersion(base)
		if err != nil {
			return "", "", err
		}
		version = v
	}

	dir := filepath.Join(base, version)
	for _, candidate := range []string{f.Platform.Name, f.Platform.Category} {
		if candidate == "" {
			continue
		}
		sub := filepath.Join(dir, candidate)
		if isDir(f.FS, sub) {
			dir = sub
			break
		}
	}

	log.WithField("dir", dir).WithField("version", version).Debugf("Found %s", toolName)
	return dir, version, nil
}

// pinnedVersion accepts the pin with or without a leading "v"
func (f *Finder) pinnedVersion(base, pinned string) (string, error) {
	candidates := []string{pinned}
	if strings.HasPrefix(pinned, "v") {
		candidates = append(candidates, strings.TrimPrefix(pinned, "v"))
	} else {
		candidates = append(candidates, "v"+pinned)
	}
	for _, c := range candidates {
		if isDir(f.FS, filepath.Join(base, c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("version '%s' was not found in '%s'", pinned, base)
}

// latestVersion picks the greatest semantic version among the directories in base
func (f *Finder) latestVersion(base string) (string, error) {
	infos, err := afero.ReadDir(f.FS, base)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("'%s' does not exist", base)
		}
		return "", errors.Wrapf(err, "failed to read %s", base)
	}

	type candidate struct {
		name    string
		version *semver.Version
	}
	var candidates []candidate
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		v, err := semver.NewVersion(info.Name())
		if err != nil {
			log.WithField("dir", info.Name()).Debug("Ignoring non-version directory")
			continue
		}
		candidates = append(candidates, candidate{name: info.Name(), version: v})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no versioned directories were found in '%s'", base)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].version.GreaterThan(candidates[j].version)
	})
	return candidates[0].name, nil
}

func isDir(fs afero.Fs, path string) bool {
	ok, err := afero.IsDir(fs, path)
	return err == nil && ok
}
