package cmd

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/binary-install/clangenv/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool

	// Platform overrides
	osCategory string
	osName     string
	osVersion  string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "clangenv",
	Short: "Activation glue for the pinned Clang toolchain",
	Long: `clangenv (Clang environment) computes the environment changes that make the
pinned Clang 8.0.0 toolchain the active compiler for a repository.

It selects the toolchain build for the host platform, emits the commands that
verify the installed binaries, and sets the compiler, include and library
variables. The resulting actions are printed for the bootstrap framework (or a
POSIX shell) to apply.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(cli.New(cmd.ErrOrStderr()))
		if verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("Verbose logging enabled")
		} else if quiet {
			log.SetLevel(log.ErrorLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
		log.Debugf("Config file: %s", configFile)
	},
}

func init() {
	// Disable automatic command sorting to maintain semantic order
	cobra.EnableCommandSorting = false

	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the clangenv config file (default: "+config.DefaultConfigPath+" in this or a parent directory)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")
	RootCmd.PersistentFlags().StringVar(&osCategory, "os-category", "", "Override the detected OS category (Windows, Linux, ...)")
	RootCmd.PersistentFlags().StringVar(&osName, "os-name", "", "Override the detected OS distribution name (e.g. Ubuntu)")
	RootCmd.PersistentFlags().StringVar(&osVersion, "os-version", "", "Override the detected OS distribution version (e.g. 18.04)")

	RootCmd.AddGroup(&cobra.Group{
		ID:    "activation",
		Title: "Activation Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "utility",
		Title: "Utility Commands:",
	})

	RootCmd.SetHelpCommandGroupID("utility")
	RootCmd.SetCompletionCommandGroupID("utility")

	SetupCommand.GroupID = "activation"
	ActivateCommand.GroupID = "activation"
	EpilogueCommand.GroupID = "activation"
	RegistryCommand.GroupID = "utility"

	RootCmd.AddCommand(SetupCommand)    // Acquire the toolchain
	RootCmd.AddCommand(ActivateCommand) // Per-repository activation
	RootCmd.AddCommand(EpilogueCommand) // After every repository has activated
	RootCmd.AddCommand(RegistryCommand)
	RootCmd.AddCommand(HelpfulCommand)
}
