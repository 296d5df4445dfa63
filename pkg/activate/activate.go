// Package activate computes the environment actions that make the pinned
// Clang toolchain the active compiler for a repository.
package activate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/pkg/action"
	"github.com/binary-install/clangenv/pkg/platform"
	"github.com/binary-install/clangenv/pkg/registry"
	"github.com/binary-install/clangenv/pkg/versioned"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// PythonConfiguration is the configuration for pure Python builds; it
	// needs no compiler environment.
	PythonConfiguration = "python"

	// ExtendedSuffix marks configurations built with the vendor drop-in
	// compiler on Windows. They also bring their own include directories.
	ExtendedSuffix = "_ex"

	// CompilerName is the value of CompilerNameVar once activation completes
	CompilerName = "Clang-8"
)

// Environment variables written during activation
const (
	CXXVar              = "CXX"
	CCVar               = "CC"
	IncludeVar          = "INCLUDE"
	LibVar              = "LIB"
	LDLibraryPathVar    = "LD_LIBRARY_PATH"
	ClangLibraryPathVar = "CLANG_LIBRARY_PATH"
	CompilerNameVar     = "DEVELOPMENT_ENVIRONMENT_CPP_COMPILER_NAME"
)

// Repository describes a sibling repository taking part in activation
type Repository struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Root string `yaml:"root" json:"root"`
}

// Context carries the orchestrator's arguments. Only Configuration, Fast and
// VersionSpecs affect the result; the rest are accepted so every activation
// hook shares one signature.
type Context struct {
	Output        io.Writer
	Configuration string
	VersionSpecs  versioned.Specs
	GeneratedDir  string
	Debug         bool
	Verbose       bool
	Fast          bool
	Repositories  []Repository
	IsMixinRepo   bool
}

// Activator produces the activation actions for one repository
type Activator struct {
	FS       afero.Fs
	Platform platform.Platform
	Registry []registry.ToolchainEntry
	// ScriptDir is the repository root the install paths are relative to
	ScriptDir string
	// FundamentalDir is the root of the bootstrap framework
	FundamentalDir string
}

// New creates an Activator for the given platform and registry
func New(fs afero.Fs, p platform.Platform, entries []registry.ToolchainEntry, scriptDir, fundamentalDir string) *Activator {
	return &Activator{
		FS:             fs,
		Platform:       p,
		Registry:       entries,
		ScriptDir:      scriptDir,
		FundamentalDir: fundamentalDir,
	}
}

// acquireScript is the external verifier/acquirer invoked by Execute actions
func (a *Activator) acquireScript() string {
	return filepath.Join(a.FundamentalDir, "RepositoryBootstrap", "SetupAndActivate", "AcquireBinaries.py")
}

// GetActions returns the ordered activation actions. Missing toolchain
// directories are fatal and panic with *AssertionError.
func (a *Activator) GetActions(ctx Context) (action.List, error) {
	var actions action.List

	if ctx.Fast {
		return action.List{
			action.Message{Text: fmt.Sprintf("** FAST: Activating without verifying content. (%s)", a.ScriptDir)},
		}, nil
	}

	for _, entry := range a.Registry {
		if entry.ContentHash == "" {
			return nil, &registry.UnsupportedPlatformError{
				Platform: a.Platform.Name,
				Version:  a.Platform.Version,
				Reason:   fmt.Sprintf("'%s' has no content hash", entry.Name),
			}
		}

		dir := entry.InstallDir(a.ScriptDir)
		a.mustBeDir(dir)

		actions = append(actions, action.Execute{
			CommandLine: fmt.Sprintf(`python "%s" Verify "%s" "%s" "%s"`, a.acquireScript(), entry.Name, dir, entry.ContentHash),
		})
	}

	finder := &versioned.Finder{FS: a.FS, Platform: a.Platform}
	clangDir, clangVersion, err := finder.Find(ctx.VersionSpecs, a.ScriptDir, "Tools", "Clang")
	if err != nil {
		return nil, errors.Wrap(err, "failed to locate the Clang installation")
	}
	clangVersion = strings.TrimPrefix(clangVersion, "v")

	log.WithFields(log.Fields{
		"dir":           clangDir,
		"version":       clangVersion,
		"configuration": ctx.Configuration,
	}).Debug("Activating Clang")

	if a.Platform.IsLinux() {
		actions = append(actions, action.Augment{Name: LDLibraryPathVar, Values: []string{filepath.Join(clangDir, "lib")}})
	}

	if ctx.Configuration == PythonConfiguration {
		return actions, nil
	}

	extended := strings.HasSuffix(ctx.Configuration, ExtendedSuffix)

	if a.Platform.IsWindows() && extended {
		actions = append(actions,
			action.Set{Name: CXXVar, Value: "clang-cl"},
			action.Set{Name: CCVar, Value: "clang-cl"},
		)
	} else {
		actions = append(actions,
			action.Set{Name: CXXVar, Value: "clang++"},
			action.Set{Name: CCVar, Value: "clang"},
		)
	}

	if !extended {
		includeDir := filepath.Join(clangDir, "include", "c++", "v1")
		a.mustBeDir(includeDir)

		actions = append(actions, action.Augment{Name: IncludeVar, Values: []string{includeDir}})
	}

	actions = append(actions, action.Augment{Name: LibVar, Values: a.libDirs(clangDir, clangVersion, ctx.Configuration)})

	if a.Platform.IsWindows() {
		actions = append(actions, action.Set{Name: ClangLibraryPathVar, Value: filepath.Join(clangDir, "bin")})
	} else {
		actions = append(actions, action.Set{Name: ClangLibraryPathVar, Value: filepath.Join(clangDir, "lib")})
	}

	return actions, nil
}

// libDirs returns the library search path: the base lib dir, the
// configuration-specific dir when it exists, then the compiler runtime dir.
func (a *Activator) libDirs(clangDir, clangVersion, configuration string) []string {
	libDir := filepath.Join(clangDir, "lib")
	a.mustBeDir(libDir)

	dirs := []string{libDir}

	if configuration != "" {
		configurationDir := filepath.Join(libDir, configuration)
		if isDir(a.FS, configurationDir) {
			dirs = append(dirs, configurationDir)
		}
	}

	runtimeDir := filepath.Join(libDir, "clang", clangVersion, "lib", strings.ToLower(a.Platform.Category))
	a.mustBeDir(runtimeDir)

	return append(dirs, runtimeDir)
}

// GetTrailingActions returns the actions that run after every repository
// has been activated.
func (a *Activator) GetTrailingActions(ctx Context) action.List {
	if ctx.Configuration == PythonConfiguration {
		return nil
	}
	return action.List{action.Set{Name: CompilerNameVar, Value: CompilerName}}
}

// GetSetupActions returns the actions that acquire each registry entry into
// its install directory. The directories are created by the acquirer, so
// their absence is expected here.
func (a *Activator) GetSetupActions(ctx Context) (action.List, error) {
	var actions action.List

	for _, entry := range a.Registry {
		if entry.ContentHash == "" {
			return nil, &registry.UnsupportedPlatformError{
				Platform: a.Platform.Name,
				Version:  a.Platform.Version,
				Reason:   fmt.Sprintf("'%s' has no content hash", entry.Name),
			}
		}

		dir := entry.InstallDir(a.ScriptDir)
		source := entry.Source
		if !entry.IsURL() {
			source = filepath.Join(dir, source)
		}

		actions = append(actions, action.Execute{
			CommandLine: fmt.Sprintf(
				`python "%s" Install "%s" "%s" "%s" "/unique_id=%s" /unique_id_is_hash`,
				a.acquireScript(),
				entry.Name,
				source,
				dir,
				entry.ContentHash,
			),
		})
	}

	return actions, nil
}
