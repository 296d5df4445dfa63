package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/internal/shell"
	"github.com/binary-install/clangenv/pkg/action"
	"github.com/binary-install/clangenv/pkg/activate"
	"github.com/binary-install/clangenv/pkg/config"
	"github.com/binary-install/clangenv/pkg/platform"
	"github.com/binary-install/clangenv/pkg/registry"
	"github.com/binary-install/clangenv/pkg/versioned"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// Output formats for action lists
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatSh   = "sh"
)

// hostFS is the filesystem every command reads from
var hostFS afero.Fs = afero.NewOsFs()

// environment is everything a command needs, resolved once per invocation
type environment struct {
	Config     *config.Config
	ConfigPath string
	Platform   platform.Platform
	Table      *registry.Table
}

// loadEnvironment loads the config, detects the platform and prepares the
// registry table.
func loadEnvironment() (*environment, error) {
	cfg, cfgPath, err := config.LoadOrDiscover(configFile)
	if err != nil {
		log.WithError(err).Error("Failed to load config")
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfgPath != "" {
		log.Debugf("Using config file: %s", cfgPath)
	}

	p, err := detectPlatform()
	if err != nil {
		return nil, err
	}

	table, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	table.Merge(cfg.Registry)

	return &environment{
		Config:     cfg,
		ConfigPath: cfgPath,
		Platform:   p,
		Table:      table,
	}, nil
}

// detectPlatform detects the host and applies the --os-* overrides.
// With a full override the host is not inspected at all.
func detectPlatform() (platform.Platform, error) {
	var p platform.Platform
	if osCategory == "" || osName == "" {
		detected, err := platform.Detect(hostFS)
		if err != nil {
			log.WithError(err).Error("Platform detection failed")
			return platform.Platform{}, fmt.Errorf("platform detection failed: %w", err)
		}
		p = detected
	}
	p = p.WithOverrides(osCategory, osName, osVersion)
	log.Debugf("Platform: %s", p)
	return p, nil
}

// activator builds the registry for the environment's platform
func (e *environment) activator() (*activate.Activator, error) {
	entries, err := e.Table.Build(e.Platform)
	if err != nil {
		log.WithError(err).Errorf("No toolchain for %s", e.Platform)
		return nil, fmt.Errorf("failed to build toolchain registry: %w", err)
	}
	if err := registry.Validate(entries); err != nil {
		log.WithError(err).Error("Registry validation failed")
		return nil, fmt.Errorf("invalid toolchain registry: %w", err)
	}
	if e.Config.FundamentalDir == "" {
		log.Warnf("%s is not set; verifier commands will use a relative path", config.FundamentalEnvVar)
	}
	return activate.New(hostFS, e.Platform, entries, e.Config.ScriptDir, e.Config.FundamentalDir), nil
}

// activationContext collects the orchestrator arguments shared by the
// activation commands.
func activationContext(e *environment, w io.Writer, configuration string) (activate.Context, error) {
	tools := map[string]string{}
	for k, v := range e.Config.Tools {
		tools[k] = v
	}
	for k, v := range activateTools {
		tools[k] = v
	}
	repositories, err := parseRepositories(activateRepositories)
	if err != nil {
		return activate.Context{}, err
	}
	return activate.Context{
		Output:        w,
		Configuration: configuration,
		VersionSpecs:  versioned.Specs{Tools: tools},
		GeneratedDir:  activateGeneratedDir,
		Debug:         activateDebug,
		Verbose:       verbose,
		Fast:          activateFast,
		Repositories:  repositories,
		IsMixinRepo:   activateMixin,
	}, nil
}

// parseRepositories decodes --repository values of the form id,name,root.
// The root is last so it may contain commas.
func parseRepositories(values []string) ([]activate.Repository, error) {
	var repositories []activate.Repository
	for _, value := range values {
		parts := strings.SplitN(value, ",", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid --repository %q (expected id,name,root)", value)
		}
		repositories = append(repositories, activate.Repository{
			ID:   parts[0],
			Name: parts[1],
			Root: parts[2],
		})
	}
	return repositories, nil
}

// encodeActions encodes actions in the requested format
func encodeActions(header string, actions action.List, format string) ([]byte, error) {
	var out []byte
	var err error

	switch format {
	case FormatYAML:
		if len(actions) == 0 {
			out = []byte("[]\n")
		} else {
			out, err = yaml.Marshal(actions)
		}
	case FormatJSON:
		if actions == nil {
			actions = action.List{}
		}
		out, err = json.MarshalIndent(actions, "", "  ")
		out = append(out, '\n')
	case FormatSh:
		out, err = shell.Render(header, actions)
	default:
		return nil, fmt.Errorf("unknown output format %q (expected %s, %s or %s)", format, FormatYAML, FormatJSON, FormatSh)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode actions as %s: %w", format, err)
	}
	return out, nil
}

// writeActions encodes actions and writes them to the -o file, or to
// fallback when no file is given. Nothing is written if encoding fails.
func writeActions(path string, fallback io.Writer, header string, actions action.List, format string) error {
	out, err := encodeActions(header, actions, format)
	if err != nil {
		return err
	}

	if path == "" || path == "-" {
		_, err = fallback.Write(out)
		return err
	}

	if err := afero.WriteFile(hostFS, path, out, 0644); err != nil {
		log.WithError(err).Errorf("Failed to write output file: %s", path)
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	log.Debugf("Wrote %d actions to %s", len(actions), path)
	return nil
}

// requireConfiguration rejects an empty --configuration
func requireConfiguration() (string, error) {
	if activateConfiguration == "" {
		return "", fmt.Errorf("--configuration is required")
	}
	return activateConfiguration, nil
}
