package activate

import (
	"path/filepath"
	"testing"

	"github.com/binary-install/clangenv/pkg/action"
	"github.com/binary-install/clangenv/pkg/platform"
	"github.com/binary-install/clangenv/pkg/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	repoRoot    = filepath.FromSlash("/work/clang-repo")
	fundamental = filepath.FromSlash("/work/fundamental")
	verifier    = filepath.Join(fundamental, "RepositoryBootstrap", "SetupAndActivate", "AcquireBinaries.py")

	ubuntu  = platform.Platform{Category: platform.Linux, Name: "Ubuntu", Version: "20.04"}
	windows = platform.Platform{Category: platform.Windows, Name: platform.Windows}
)

// installDir is the directory a fake install for p lives in
func installDir(p platform.Platform) string {
	return filepath.Join(repoRoot, "Tools", "Clang", "v8.0.0", p.Name)
}

// newFixture lays out a complete toolchain install for p on an in-memory
// filesystem. Extra directories are relative to the install dir.
func newFixture(t *testing.T, p platform.Platform, extra ...string) *Activator {
	t.Helper()

	entries, err := registry.BuildRegistry(p)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	dir := installDir(p)
	dirs := append([]string{
		"bin",
		"include/c++/v1",
		"lib/clang/8.0.0/lib/" + lowerCategory(p),
	}, extra...)
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0755))
	}

	return New(fs, p, entries, repoRoot, fundamental)
}

func lowerCategory(p platform.Platform) string {
	switch p.Category {
	case platform.Windows:
		return "windows"
	case platform.Linux:
		return "linux"
	}
	return "unknown"
}

func verifyAction(p platform.Platform, hash string) action.Execute {
	return action.Execute{
		CommandLine: `python "` + verifier + `" Verify "Clang - 8.0.0" "` + installDir(p) + `" "` + hash + `"`,
	}
}

func TestGetActionsUbuntuEndToEnd(t *testing.T) {
	a := newFixture(t, ubuntu)
	dir := installDir(ubuntu)

	got, err := a.GetActions(Context{Configuration: "debug"})
	require.NoError(t, err)

	want := action.List{
		verifyAction(ubuntu, "0f5c314f375ebd5c35b8c1d5e5b161d9efaeff0523bac287f8b4e5b751272f51"),
		action.Augment{Name: LDLibraryPathVar, Values: []string{filepath.Join(dir, "lib")}},
		action.Set{Name: CXXVar, Value: "clang++"},
		action.Set{Name: CCVar, Value: "clang"},
		action.Augment{Name: IncludeVar, Values: []string{filepath.Join(dir, "include", "c++", "v1")}},
		action.Augment{Name: LibVar, Values: []string{
			filepath.Join(dir, "lib"),
			filepath.Join(dir, "lib", "clang", "8.0.0", "lib", "linux"),
		}},
		action.Set{Name: ClangLibraryPathVar, Value: filepath.Join(dir, "lib")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetActions() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetActionsFast(t *testing.T) {
	for _, p := range []platform.Platform{ubuntu, windows} {
		for _, configuration := range []string{"debug", "release_ex", PythonConfiguration} {
			t.Run(p.Name+"/"+configuration, func(t *testing.T) {
				// No install on disk: fast mode must not touch the filesystem.
				entries, err := registry.BuildRegistry(p)
				require.NoError(t, err)
				a := New(afero.NewMemMapFs(), p, entries, repoRoot, fundamental)

				got, err := a.GetActions(Context{Configuration: configuration, Fast: true})
				require.NoError(t, err)
				require.Len(t, got, 1)
				msg, ok := got[0].(action.Message)
				require.True(t, ok, "expected Message, got %T", got[0])
				assert.Contains(t, msg.Text, "** FAST: Activating without verifying content.")
			})
		}
	}
}

func TestGetActionsPython(t *testing.T) {
	tests := []struct {
		name        string
		platform    platform.Platform
		wantAugment int
	}{
		{name: "linux keeps the loader path", platform: ubuntu, wantAugment: 1},
		{name: "windows", platform: windows, wantAugment: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFixture(t, tt.platform)

			got, err := a.GetActions(Context{Configuration: PythonConfiguration})
			require.NoError(t, err)

			assert.Len(t, got.OfKind(action.KindExecute), 1)
			assert.Empty(t, got.OfKind(action.KindSet))
			augments := got.OfKind(action.KindAugment)
			assert.Len(t, augments, tt.wantAugment)
			for _, aug := range augments {
				assert.Equal(t, LDLibraryPathVar, aug.(action.Augment).Name)
			}
		})
	}
}

func TestCompilerSelection(t *testing.T) {
	tests := []struct {
		name          string
		platform      platform.Platform
		configuration string
		wantCXX       string
		wantCC        string
	}{
		{name: "windows extended", platform: windows, configuration: "release_ex", wantCXX: "clang-cl", wantCC: "clang-cl"},
		{name: "windows standard", platform: windows, configuration: "release", wantCXX: "clang++", wantCC: "clang"},
		{name: "windows suffix must be at the end", platform: windows, configuration: "debug_ex_x64", wantCXX: "clang++", wantCC: "clang"},
		{name: "linux extended", platform: ubuntu, configuration: "release_ex", wantCXX: "clang++", wantCC: "clang"},
		{name: "linux standard", platform: ubuntu, configuration: "debug", wantCXX: "clang++", wantCC: "clang"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFixture(t, tt.platform)

			got, err := a.GetActions(Context{Configuration: tt.configuration})
			require.NoError(t, err)

			cxx, ok := got.Find(CXXVar)
			require.True(t, ok)
			assert.Equal(t, tt.wantCXX, cxx.(action.Set).Value)

			cc, ok := got.Find(CCVar)
			require.True(t, ok)
			assert.Equal(t, tt.wantCC, cc.(action.Set).Value)

			_, hasInclude := got.Find(IncludeVar)
			assert.Equal(t, tt.configuration[len(tt.configuration)-3:] != ExtendedSuffix, hasInclude)
		})
	}
}

func TestLibDirs(t *testing.T) {
	tests := []struct {
		name          string
		platform      platform.Platform
		extra         []string
		configuration string
		want          []string
	}{
		{
			name:          "configuration dir absent",
			platform:      ubuntu,
			configuration: "debug",
			want:          []string{"lib", "lib/clang/8.0.0/lib/linux"},
		},
		{
			name:          "configuration dir present",
			platform:      ubuntu,
			extra:         []string{"lib/debug"},
			configuration: "debug",
			want:          []string{"lib", "lib/debug", "lib/clang/8.0.0/lib/linux"},
		},
		{
			name:          "other configuration dir ignored",
			platform:      ubuntu,
			extra:         []string{"lib/release"},
			configuration: "debug",
			want:          []string{"lib", "lib/clang/8.0.0/lib/linux"},
		},
		{
			name:          "windows runtime dir",
			platform:      windows,
			extra:         []string{"lib/release_ex"},
			configuration: "release_ex",
			want:          []string{"lib", "lib/release_ex", "lib/clang/8.0.0/lib/windows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFixture(t, tt.platform, tt.extra...)
			dir := installDir(tt.platform)

			got, err := a.GetActions(Context{Configuration: tt.configuration})
			require.NoError(t, err)

			lib, ok := got.Find(LibVar)
			require.True(t, ok)

			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(dir, filepath.FromSlash(w)))
			}
			assert.Equal(t, want, lib.(action.Augment).Values)
		})
	}
}

func TestClangLibraryPath(t *testing.T) {
	win := newFixture(t, windows)
	got, err := win.GetActions(Context{Configuration: "release"})
	require.NoError(t, err)
	v, ok := got.Find(ClangLibraryPathVar)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(installDir(windows), "bin"), v.(action.Set).Value)
	_, ok = got.Find(LDLibraryPathVar)
	assert.False(t, ok)

	lin := newFixture(t, ubuntu)
	got, err = lin.GetActions(Context{Configuration: "release"})
	require.NoError(t, err)
	v, ok = got.Find(ClangLibraryPathVar)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(installDir(ubuntu), "lib"), v.(action.Set).Value)
}

func TestMissingDirectoriesPanic(t *testing.T) {
	tests := []struct {
		name          string
		remove        string
		configuration string
	}{
		{name: "include dir", remove: "include", configuration: "debug"},
		{name: "runtime dir", remove: "lib/clang", configuration: "debug"},
		{name: "lib dir", remove: "lib", configuration: "release_ex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFixture(t, ubuntu)
			require.NoError(t, a.FS.RemoveAll(filepath.Join(installDir(ubuntu), filepath.FromSlash(tt.remove))))

			defer func() {
				r := recover()
				require.NotNil(t, r, "expected a panic")
				assertionErr, ok := r.(*AssertionError)
				require.True(t, ok, "expected *AssertionError, got %T", r)
				assert.Contains(t, assertionErr.Path, filepath.FromSlash(tt.remove))
			}()
			_, _ = a.GetActions(Context{Configuration: tt.configuration})
		})
	}
}

func TestMissingInstallDirPanics(t *testing.T) {
	entries, err := registry.BuildRegistry(ubuntu)
	require.NoError(t, err)
	a := New(afero.NewMemMapFs(), ubuntu, entries, repoRoot, fundamental)

	assert.PanicsWithError(t, "expected directory does not exist: "+installDir(ubuntu), func() {
		_, _ = a.GetActions(Context{Configuration: "debug"})
	})
}

func TestVersionedLookupFailure(t *testing.T) {
	// An entry whose install dir exists but no Tools/Clang version tree.
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join(repoRoot, "Other"), 0755))
	a := New(fs, ubuntu, []registry.ToolchainEntry{{
		Name:             "Other",
		ContentHash:      "0f5c314f375ebd5c35b8c1d5e5b161d9efaeff0523bac287f8b4e5b751272f51",
		Source:           "Install.7z",
		InstallPathParts: []string{"Other"},
	}}, repoRoot, fundamental)

	_, err := a.GetActions(Context{Configuration: "debug"})
	assert.Error(t, err)
}

func TestGetTrailingActions(t *testing.T) {
	a := New(afero.NewMemMapFs(), ubuntu, nil, repoRoot, fundamental)

	assert.Empty(t, a.GetTrailingActions(Context{Configuration: PythonConfiguration}))

	for _, configuration := range []string{"debug", "release", "release_ex", ""} {
		got := a.GetTrailingActions(Context{Configuration: configuration})
		assert.Equal(t, action.List{action.Set{Name: CompilerNameVar, Value: "Clang-8"}}, got, configuration)
	}
}

func TestGetSetupActions(t *testing.T) {
	tests := []struct {
		name     string
		platform platform.Platform
		want     string
	}{
		{
			name:     "ubuntu downloads",
			platform: ubuntu,
			want: `python "` + verifier + `" Install "Clang - 8.0.0" ` +
				`"http://releases.llvm.org/8.0.0/clang+llvm-8.0.0-x86_64-linux-gnu-ubuntu-18.04.tar.xz" ` +
				`"` + installDir(ubuntu) + `" ` +
				`"/unique_id=0f5c314f375ebd5c35b8c1d5e5b161d9efaeff0523bac287f8b4e5b751272f51" /unique_id_is_hash`,
		},
		{
			name:     "windows uses the local archive",
			platform: windows,
			want: `python "` + verifier + `" Install "Clang - 8.0.0" ` +
				`"` + filepath.Join(installDir(windows), "Install.7z") + `" ` +
				`"` + installDir(windows) + `" ` +
				`"/unique_id=5d340fea17c50f6243f96f72ac3df64d38c437fad31a40ca21507c4fae4a2c0b" /unique_id_is_hash`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := registry.BuildRegistry(tt.platform)
			require.NoError(t, err)
			// Nothing installed yet.
			a := New(afero.NewMemMapFs(), tt.platform, entries, repoRoot, fundamental)

			got, err := a.GetSetupActions(Context{})
			require.NoError(t, err)
			assert.Equal(t, action.List{action.Execute{CommandLine: tt.want}}, got)
		})
	}
}

func TestGetSetupActionsWithoutHash(t *testing.T) {
	a := New(afero.NewMemMapFs(), ubuntu, []registry.ToolchainEntry{{
		Name:             "Clang - 8.0.0",
		Source:           "Install.7z",
		InstallPathParts: []string{"Tools", "Clang"},
	}}, repoRoot, fundamental)

	_, err := a.GetSetupActions(Context{})
	assert.True(t, registry.IsUnsupported(err))
}

func TestGetActionsWithoutHash(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join(repoRoot, "Tools", "Clang"), 0755))
	a := New(fs, ubuntu, []registry.ToolchainEntry{{
		Name:             "Clang - 8.0.0",
		Source:           "Install.7z",
		InstallPathParts: []string{"Tools", "Clang"},
	}}, repoRoot, fundamental)

	got, err := a.GetActions(Context{Configuration: "debug"})
	assert.True(t, registry.IsUnsupported(err), "expected UnsupportedPlatformError, got %v", err)
	assert.Empty(t, got)
}
