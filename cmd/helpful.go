package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// HelpfulCommand represents the helpful command
var HelpfulCommand = &cobra.Command{
	Use:    "helpful",
	Short:  "Print the help of every command in one styled document",
	Long:   `Prints the help of clangenv and all of its activation and utility commands, one section per command.`,
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		writeHelp(cmd.Root(), w)
		return nil
	},
}

// writeHelp prints c's help followed by that of its visible subcommands
func writeHelp(c *cobra.Command, w io.Writer) {
	if skipHelp(c) {
		return
	}

	if c.HasParent() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("## "+c.CommandPath()))
		fmt.Fprintln(w)
	}

	c.SetOut(w)
	_ = c.Help()
	c.SetOut(nil)

	fmt.Fprintln(w)
	fmt.Fprintln(w, labelStyle.Render(strings.Repeat("─", 80)))

	for _, sub := range c.Commands() {
		writeHelp(sub, w)
	}
}

func skipHelp(c *cobra.Command) bool {
	if c.Hidden {
		return true
	}
	switch c.Name() {
	case "completion", "help":
		return true
	}
	return false
}
