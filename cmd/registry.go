package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/pkg/registry"
	"github.com/binary-install/clangenv/pkg/verify"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Style definitions
var (
	// Color profile detection
	profile = colorprofile.Detect(os.Stdout, os.Environ())

	headerStyle = func() lipgloss.Style {
		if profile == colorprofile.TrueColor || profile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))
		}
		return lipgloss.NewStyle().Bold(true)
	}()

	labelStyle = func() lipgloss.Style {
		if profile == colorprofile.TrueColor || profile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
		}
		return lipgloss.NewStyle().Faint(true)
	}()
)

// RegistryCommand represents the registry command
var RegistryCommand = &cobra.Command{
	Use:   "registry",
	Short: "Show the toolchain registry for this platform",
	Long: `Shows the toolchain entries selected for the detected (or overridden)
platform, followed by the status of every Ubuntu version the registry knows.

Use --os-category/--os-name/--os-version to inspect other platforms.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("## %s %s on %s", env.Table.Toolchain, env.Table.Version, env.Platform)))
		fmt.Fprintln(w)

		entries, err := env.Table.Build(env.Platform)
		if err != nil {
			fmt.Fprintf(w, "%s %v\n", labelStyle.Render("error:"), err)
		}
		for _, entry := range entries {
			printEntry(w, entry, env.Config.ScriptDir)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("## Ubuntu versions"))
		fmt.Fprintln(w)
		for _, version := range env.Table.UbuntuVersions() {
			fmt.Fprintf(w, "  %-8s %s\n", version, ubuntuStatus(env.Table, version))
		}

		if err != nil {
			return fmt.Errorf("no toolchain for %s: %w", env.Platform, err)
		}
		return nil
	},
}

// RegistryHashCommand represents the registry hash command
var RegistryHashCommand = &cobra.Command{
	Use:   "hash <archive>",
	Short: "Compute the content hash of a toolchain archive",
	Long: `Computes the sha256 of a toolchain archive, the value stored in the registry.
When the platform has a registry entry the hash is also compared against it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive := args[0]

		sum, err := verify.ComputeChecksum(hostFS, archive)
		if err != nil {
			log.WithError(err).Errorf("Failed to hash %s", archive)
			return fmt.Errorf("failed to hash %s: %w", archive, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, archive)

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		entries, err := env.Table.Build(env.Platform)
		if err != nil {
			log.WithError(err).Debug("No registry entry to compare against")
			return nil
		}
		for _, entry := range entries {
			if err := verify.VerifyArchive(hostFS, entry, archive); err != nil {
				log.WithError(err).Warnf("%s does not match the registry", archive)
				return fmt.Errorf("hash mismatch: %w", err)
			}
			log.Infof("✓ %s matches the registry entry '%s'", archive, entry.Name)
		}
		return nil
	},
}

func printEntry(w io.Writer, entry registry.ToolchainEntry, scriptDir string) {
	hash := entry.ContentHash
	if hash == "" {
		hash = "(unsupported)"
	}
	source := entry.Source
	if !entry.IsURL() {
		source += " (local archive)"
	}
	rows := [][2]string{
		{"name", entry.Name},
		{"hash", hash},
		{"source", source},
		{"path", strings.Join(entry.InstallPathParts, "/")},
		{"install dir", entry.InstallDir(scriptDir)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", row[0]+":")), row[1])
	}
}

func ubuntuStatus(t *registry.Table, version string) string {
	if canonical := t.ResolveAlias(version); canonical != version {
		return "alias of " + canonical
	}
	if reason, ok := t.Ubuntu.Unsupported[version]; ok {
		return "unsupported: " + reason
	}
	if hash, ok := t.Ubuntu.Hashes[version]; ok {
		if hash == "" {
			return "unsupported: no content hash"
		}
		return "supported"
	}
	return "unknown"
}

func init() {
	RegistryCommand.AddCommand(RegistryHashCommand)
}
