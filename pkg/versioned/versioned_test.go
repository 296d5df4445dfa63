package versioned

import (
	"path/filepath"
	"testing"

	"github.com/binary-install/clangenv/pkg/platform"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	root := filepath.FromSlash("/repo")
	ubuntu := platform.Platform{Category: platform.Linux, Name: "Ubuntu", Version: "18.04"}

	tests := []struct {
		name        string
		dirs        []string
		platform    platform.Platform
		specs       Specs
		wantDir     string
		wantVersion string
		wantErr     bool
	}{
		{
			name:        "single version with distribution dir",
			dirs:        []string{"Tools/Clang/v8.0.0/Ubuntu", "Tools/Clang/v8.0.0/Windows"},
			platform:    ubuntu,
			wantDir:     "Tools/Clang/v8.0.0/Ubuntu",
			wantVersion: "v8.0.0",
		},
		{
			name:        "newest version wins",
			dirs:        []string{"Tools/Clang/v7.0.1/Ubuntu", "Tools/Clang/v10.0.0/Ubuntu", "Tools/Clang/v8.0.0/Ubuntu", "Tools/Clang/scratch"},
			platform:    ubuntu,
			wantDir:     "Tools/Clang/v10.0.0/Ubuntu",
			wantVersion: "v10.0.0",
		},
		{
			name:        "pinned version",
			dirs:        []string{"Tools/Clang/v7.0.1/Ubuntu", "Tools/Clang/v8.0.0/Ubuntu"},
			platform:    ubuntu,
			specs:       Specs{Tools: map[string]string{"Clang": "7.0.1"}},
			wantDir:     "Tools/Clang/v7.0.1/Ubuntu",
			wantVersion: "v7.0.1",
		},
		{
			name:     "pinned version missing",
			dirs:     []string{"Tools/Clang/v8.0.0/Ubuntu"},
			platform: ubuntu,
			specs:    Specs{Tools: map[string]string{"Clang": "v9.0.0"}},
			wantErr:  true,
		},
		{
			name:        "category dir when no distribution dir",
			dirs:        []string{"Tools/Clang/v8.0.0/Linux"},
			platform:    ubuntu,
			wantDir:     "Tools/Clang/v8.0.0/Linux",
			wantVersion: "v8.0.0",
		},
		{
			name:        "no platform dir",
			dirs:        []string{"Tools/Clang/v8.0.0/bin"},
			platform:    ubuntu,
			wantDir:     "Tools/Clang/v8.0.0",
			wantVersion: "v8.0.0",
		},
		{
			name:     "tool not installed",
			platform: ubuntu,
			wantErr:  true,
		},
		{
			name:     "no version directories",
			dirs:     []string{"Tools/Clang/README"},
			platform: ubuntu,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for _, d := range tt.dirs {
				require.NoError(t, fs.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755))
			}

			f := &Finder{FS: fs, Platform: tt.platform}
			dir, version, err := f.Find(tt.specs, root, "Tools", "Clang")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.wantDir)), dir)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestFindRequiresParts(t *testing.T) {
	f := &Finder{FS: afero.NewMemMapFs()}
	_, _, err := f.Find(Specs{}, "/repo")
	assert.Error(t, err)
}
