package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpfulCommand(t *testing.T) {
	out, err := run(t, HelpfulCommand)
	require.NoError(t, err)

	for _, section := range []string{
		"## clangenv setup",
		"## clangenv activate",
		"## clangenv epilogue",
		"## clangenv registry",
		"## clangenv registry hash",
	} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "--configuration")
	assert.NotContains(t, out, "## clangenv helpful")
	assert.NotContains(t, out, "## clangenv completion")
}

func TestHelpfulCommandIsHidden(t *testing.T) {
	assert.True(t, HelpfulCommand.Hidden)

	var visible []string
	for _, c := range RootCmd.Commands() {
		if c.IsAvailableCommand() {
			visible = append(visible, c.Name())
		}
	}
	assert.NotContains(t, visible, "helpful")
}
