package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/pkg/activate"
	"github.com/spf13/cobra"
)

var (
	// Flags shared by the activation commands. Only --fast changes the
	// result; the others are accepted so every hook has the same interface.
	activateFast         bool
	activateDebug        bool
	activateMixin        bool
	activateGeneratedDir string
	activateTools        map[string]string
	activateRepositories []string

	// activateConfiguration is the build configuration being activated
	activateConfiguration string

	outputFormat string
	outputFile   string
)

// ActivateCommand represents the activate command
var ActivateCommand = &cobra.Command{
	Use:   "activate --configuration <configuration>",
	Short: "Print the actions that activate Clang for a build configuration",
	Long: `Prints the ordered environment actions for the given build configuration:

- one verification command per toolchain entry (skipped with --fast)
- LD_LIBRARY_PATH on Linux
- CXX/CC, INCLUDE, LIB and CLANG_LIBRARY_PATH (skipped for "python")

Configurations ending in "_ex" select clang-cl on Windows and do not add the
libc++ include directory.`,
	Example: `  # Actions for the bootstrap framework
  clangenv activate --configuration debug

  # Apply directly in a POSIX shell
  eval "$(clangenv activate --configuration release --format sh)"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration, err := requireConfiguration()
		if err != nil {
			return err
		}
		log.Infof("Activating Clang for configuration '%s'", configuration)

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		activator, err := env.activator()
		if err != nil {
			return err
		}
		ctx, err := activationContext(env, cmd.ErrOrStderr(), configuration)
		if err != nil {
			return err
		}

		actions, err := activator.GetActions(ctx)
		if err != nil {
			log.WithError(err).Error("Activation failed")
			return fmt.Errorf("activation failed: %w", err)
		}
		log.Debugf("Generated %d actions", len(actions))

		return writeActions(outputFile, cmd.OutOrStdout(), "clangenv activate "+configuration, actions, outputFormat)
	},
}

// EpilogueCommand represents the epilogue command
var EpilogueCommand = &cobra.Command{
	Use:   "epilogue --configuration <configuration>",
	Short: "Print the actions that run after every repository has activated",
	Long: `Prints the trailing actions for the given build configuration. The bootstrap
framework runs these after the activation actions of all repositories, so the
compiler name set here is the one that wins.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration, err := requireConfiguration()
		if err != nil {
			return err
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		ctx, err := activationContext(env, cmd.ErrOrStderr(), configuration)
		if err != nil {
			return err
		}

		// The trailing actions do not depend on the registry, so an
		// unsupported host is not an error here.
		activator := activate.New(hostFS, env.Platform, nil, env.Config.ScriptDir, env.Config.FundamentalDir)
		actions := activator.GetTrailingActions(ctx)

		return writeActions(outputFile, cmd.OutOrStdout(), "clangenv epilogue "+configuration, actions, outputFormat)
	},
}

// SetupCommand represents the setup command
var SetupCommand = &cobra.Command{
	Use:   "setup",
	Short: "Print the actions that acquire the toolchain for this platform",
	Long: `Prints one install command per toolchain entry. The external acquirer
downloads (or unpacks the local archive), verifies the content hash and
extracts the toolchain into its install directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		activator, err := env.activator()
		if err != nil {
			return err
		}
		ctx, err := activationContext(env, cmd.ErrOrStderr(), "")
		if err != nil {
			return err
		}

		actions, err := activator.GetSetupActions(ctx)
		if err != nil {
			log.WithError(err).Error("Setup failed")
			return fmt.Errorf("setup failed: %w", err)
		}

		return writeActions(outputFile, cmd.OutOrStdout(), "clangenv setup", actions, outputFormat)
	},
}

func addActivationFlags(c *cobra.Command) {
	c.Flags().BoolVar(&activateFast, "fast", false, "Skip content verification and trust the installed toolchain")
	c.Flags().BoolVar(&activateDebug, "debug", false, "Debug mode (accepted for compatibility)")
	c.Flags().BoolVar(&activateMixin, "mixin", false, "Activating a mixin repository (accepted for compatibility)")
	c.Flags().StringVar(&activateGeneratedDir, "generated-dir", "", "Directory for generated activation files (accepted for compatibility)")
	c.Flags().StringToStringVar(&activateTools, "tool", nil, "Pin a tool version, e.g. --tool Clang=v8.0.0")
	c.Flags().StringArrayVar(&activateRepositories, "repository", nil, "Repository taking part in activation as id,name,root (repeatable; accepted for compatibility)")
	c.Flags().StringVarP(&outputFormat, "format", "f", FormatYAML, "Output format: yaml, json or sh")
	c.Flags().StringVarP(&outputFile, "output", "o", "", "Write actions to this file instead of stdout")
}

func init() {
	addActivationFlags(ActivateCommand)
	addActivationFlags(EpilogueCommand)
	addActivationFlags(SetupCommand)

	for _, c := range []*cobra.Command{ActivateCommand, EpilogueCommand} {
		c.Flags().StringVar(&activateConfiguration, "configuration", "", "Build configuration to activate (e.g. debug, release_ex, python)")
	}
}
