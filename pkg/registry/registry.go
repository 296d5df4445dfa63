package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/pkg/platform"
	"github.com/buildkite/interpolate"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// ToolchainEntry is one row of the registry
type ToolchainEntry struct {
	Name string `yaml:"name" json:"name"`
	// ContentHash is the sha256 of the install archive. Empty means the
	// toolchain is known but has no supported build.
	ContentHash string `yaml:"hash,omitempty" json:"hash,omitempty"`
	// Source is either an archive filename relative to the install
	// directory or a download URL.
	Source           string   `yaml:"source" json:"source"`
	InstallPathParts []string `yaml:"path" json:"path"`
}

// IsURL reports whether Source is a download URL rather than a local archive
func (e ToolchainEntry) IsURL() bool {
	return strings.HasPrefix(e.Source, "http://") || strings.HasPrefix(e.Source, "https://")
}

// InstallDir joins the install path parts onto root
func (e ToolchainEntry) InstallDir(root string) string {
	return filepath.Join(append([]string{root}, e.InstallPathParts...)...)
}

// Table is the registry data
type Table struct {
	Toolchain string       `yaml:"toolchain"`
	Version   string       `yaml:"version"`
	Windows   WindowsTable `yaml:"windows"`
	Ubuntu    UbuntuTable  `yaml:"ubuntu"`
}

// WindowsTable describes the single Windows build
type WindowsTable struct {
	Name    string   `yaml:"name"`
	Hash    string   `yaml:"hash"`
	Archive string   `yaml:"archive"`
	Path    []string `yaml:"path"`
}

// UbuntuTable describes the per-version Ubuntu builds
type UbuntuTable struct {
	Name        string   `yaml:"name"`
	URLTemplate string   `yaml:"url_template"`
	Path        []string `yaml:"path"`
	// Hashes maps a version to its archive hash. A null or empty hash marks
	// the version as known but unsupported.
	Hashes map[string]string `yaml:"hashes"`
	// Unsupported maps a known version to the reason it has no build
	Unsupported map[string]string `yaml:"unsupported"`
	// Aliases maps a version to the canonical version whose build it uses
	Aliases map[string]string `yaml:"aliases"`
}

// Overrides extends the Ubuntu table from configuration. A nil hash marks
// the version unsupported.
type Overrides struct {
	Hashes      map[string]*string `yaml:"hashes"`
	Unsupported map[string]string  `yaml:"unsupported"`
	Aliases     map[string]string  `yaml:"aliases"`
}

// noHashReason is reported for versions whose hash is null
const noHashReason = "no content hash is registered for this version"

var (
	defaultOnce  sync.Once
	defaultValue *Table
	defaultErr   error
)

// Default returns a copy of the embedded registry table
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultValue, defaultErr = Parse(defaultTable)
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultValue.clone(), nil
}

// Parse decodes registry data
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(err, "failed to parse registry data")
	}
	return &t, nil
}

func (t *Table) clone() *Table {
	c := *t
	c.Windows.Path = append([]string(nil), t.Windows.Path...)
	c.Ubuntu.Path = append([]string(nil), t.Ubuntu.Path...)
	c.Ubuntu.Hashes = copyMap(t.Ubuntu.Hashes)
	c.Ubuntu.Unsupported = copyMap(t.Ubuntu.Unsupported)
	c.Ubuntu.Aliases = copyMap(t.Ubuntu.Aliases)
	return &c
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge applies configuration overrides. A version given a hash stops being
// unsupported, and vice versa.
func (t *Table) Merge(o Overrides) {
	if t.Ubuntu.Hashes == nil {
		t.Ubuntu.Hashes = map[string]string{}
	}
	if t.Ubuntu.Unsupported == nil {
		t.Ubuntu.Unsupported = map[string]string{}
	}
	if t.Ubuntu.Aliases == nil {
		t.Ubuntu.Aliases = map[string]string{}
	}
	for version, hash := range o.Hashes {
		if hash == nil || *hash == "" {
			t.Ubuntu.Unsupported[version] = noHashReason
			delete(t.Ubuntu.Hashes, version)
			continue
		}
		t.Ubuntu.Hashes[version] = *hash
		delete(t.Ubuntu.Unsupported, version)
	}
	for version, reason := range o.Unsupported {
		t.Ubuntu.Unsupported[version] = reason
		delete(t.Ubuntu.Hashes, version)
	}
	for alias, canonical := range o.Aliases {
		t.Ubuntu.Aliases[alias] = canonical
	}
}

// BuildRegistry returns the entries for p from the embedded table
func BuildRegistry(p platform.Platform) ([]ToolchainEntry, error) {
	t, err := Default()
	if err != nil {
		return nil, err
	}
	return t.Build(p)
}

// Build returns the toolchain entries for p. Exactly one entry is produced
// for every supported platform.
func (t *Table) Build(p platform.Platform) ([]ToolchainEntry, error) {
	if p.Category == platform.Windows {
		if t.Windows.Hash == "" {
			return nil, &UnsupportedPlatformError{Platform: platform.Windows, Reason: noHashReason}
		}
		return []ToolchainEntry{{
			Name:             t.Windows.Name,
			ContentHash:      t.Windows.Hash,
			Source:           t.Windows.Archive,
			InstallPathParts: append([]string(nil), t.Windows.Path...),
		}}, nil
	}

	if p.Name == "Ubuntu" {
		entry, err := t.buildUbuntu(p.Version)
		if err != nil {
			return nil, err
		}
		return []ToolchainEntry{entry}, nil
	}

	return nil, &UnsupportedPlatformError{
		Platform: p.Name,
		Reason:   fmt.Sprintf("%s has not been configured for this operating system", t.Toolchain),
	}
}

func (t *Table) buildUbuntu(version string) (ToolchainEntry, error) {
	resolved := t.ResolveAlias(version)
	if resolved != version {
		log.WithField("alias", version).WithField("version", resolved).Debug("Using aliased Ubuntu version")
	}

	if reason, ok := t.Ubuntu.Unsupported[resolved]; ok {
		return ToolchainEntry{}, &UnsupportedPlatformError{Platform: "Ubuntu", Version: version, Reason: reason}
	}

	hash, ok := t.Ubuntu.Hashes[resolved]
	if !ok {
		return ToolchainEntry{}, &UnrecognizedPlatformError{Platform: "Ubuntu", Version: version}
	}
	if hash == "" {
		return ToolchainEntry{}, &UnsupportedPlatformError{Platform: "Ubuntu", Version: version, Reason: noHashReason}
	}

	url, err := interpolate.Interpolate(interpolate.NewMapEnv(map[string]string{
		"VERSION":   resolved,
		"TOOLCHAIN": t.Version,
	}), t.Ubuntu.URLTemplate)
	if err != nil {
		return ToolchainEntry{}, errors.Wrap(err, "failed to expand Ubuntu download URL")
	}

	return ToolchainEntry{
		Name:             t.Ubuntu.Name,
		ContentHash:      hash,
		Source:           url,
		InstallPathParts: append([]string(nil), t.Ubuntu.Path...),
	}, nil
}

// ResolveAlias follows the alias chain for an Ubuntu version. Cycles stop at
// the first repeated version.
func (t *Table) ResolveAlias(version string) string {
	seen := map[string]bool{}
	for !seen[version] {
		seen[version] = true
		canonical, ok := t.Ubuntu.Aliases[version]
		if !ok {
			break
		}
		version = canonical
	}
	return version
}

// UbuntuVersions lists every Ubuntu version the table knows, sorted
func (t *Table) UbuntuVersions() []string {
	seen := map[string]bool{}
	var versions []string
	for _, m := range []map[string]string{t.Ubuntu.Hashes, t.Ubuntu.Unsupported, t.Ubuntu.Aliases} {
		for v := range m {
			if !seen[v] {
				seen[v] = true
				versions = append(versions, v)
			}
		}
	}
	sort.Strings(versions)
	return versions
}
