package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellSafeString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		errMsg  string
	}{
		{name: "empty string", value: ""},
		{name: "toolchain name", value: "Clang - 8.0.0"},
		{name: "download url", value: "http://releases.llvm.org/8.0.0/clang+llvm-8.0.0-x86_64-linux-gnu-ubuntu-18.04.tar.xz"},
		{name: "command substitution", value: "Clang$(rm -rf /)", wantErr: true, errMsg: "command substitution"},
		{name: "backtick", value: "Clang`id`", wantErr: true, errMsg: "backtick"},
		{name: "semicolon", value: "Clang; id", wantErr: true, errMsg: "semicolon"},
		{name: "double quote", value: `Clang" "x`, wantErr: true, errMsg: "double quote"},
		{name: "logical and", value: "a&&b", wantErr: true, errMsg: "logical AND"},
		{name: "control character", value: "a\x07b", wantErr: true, errMsg: "control character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShellSafeString(tt.value, "name")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := ToolchainEntry{
		Name:             "Clang - 8.0.0",
		ContentHash:      hashWin,
		Source:           "Install.7z",
		InstallPathParts: []string{"Tools", "Clang", "v8.0.0", "Windows"},
	}
	assert.NoError(t, Validate([]ToolchainEntry{valid}))

	unsupported := valid
	unsupported.ContentHash = ""
	assert.Error(t, Validate([]ToolchainEntry{unsupported}))

	badHash := valid
	badHash.ContentHash = "ABC"
	assert.Error(t, Validate([]ToolchainEntry{badHash}))

	badPath := valid
	badPath.InstallPathParts = []string{"Tools", ".."}
	assert.Error(t, Validate([]ToolchainEntry{badPath}))

	noPath := valid
	noPath.InstallPathParts = nil
	assert.Error(t, Validate([]ToolchainEntry{noPath}))
}
