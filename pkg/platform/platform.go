package platform

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Operating system categories
const (
	Windows = "Windows"
	Linux   = "Linux"
	Darwin  = "Darwin"
)

// osReleasePaths are checked in order, following os-release(5)
var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// Platform identifies the host operating system
type Platform struct {
	Category string `yaml:"category" json:"category"` // OS family, e.g. "Windows" or "Linux"
	Name     string `yaml:"name" json:"name"`         // Distribution, e.g. "Ubuntu"
	Version  string `yaml:"version" json:"version"`   // Distribution version, e.g. "18.04"
	Arch     string `yaml:"arch" json:"arch"`
}

// IsWindows reports whether the platform belongs to the Windows category
func (p Platform) IsWindows() bool {
	return p.Category == Windows
}

// IsLinux reports whether the platform belongs to the Linux category
func (p Platform) IsLinux() bool {
	return p.Category == Linux
}

func (p Platform) String() string {
	if p.Version == "" {
		return fmt.Sprintf("%s/%s", p.Category, p.Name)
	}
	return fmt.Sprintf("%s/%s %s", p.Category, p.Name, p.Version)
}

// Detect identifies the host platform. It is meant to be called once at
// process start; the result is passed down explicitly.
func Detect(fs afero.Fs) (Platform, error) {
	return detect(fs, runtime.GOOS, runtime.GOARCH)
}

func detect(fs afero.Fs, goos, goarch string) (Platform, error) {
	p := Platform{Arch: goarch}
	switch goos {
	case "windows":
		p.Category = Windows
		p.Name = Windows
	case "darwin":
		p.Category = Darwin
		p.Name = Darwin
	case "linux":
		p.Category = Linux
		name, version, err := readOSRelease(fs)
		if err != nil {
			return Platform{}, err
		}
		p.Name = name
		p.Version = version
	default:
		// Unknown families are reported as-is; the registry rejects them.
		p.Category = strings.ToUpper(goos[:1]) + goos[1:]
		p.Name = p.Category
	}
	log.WithField("platform", p.String()).Debug("Detected platform")
	return p, nil
}

// readOSRelease returns the distribution name and version from os-release
func readOSRelease(fs afero.Fs) (string, string, error) {
	for _, path := range osReleasePaths {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", "", errors.Wrapf(err, "failed to read %s", path)
		}
		fields := parseOSRelease(data)
		name := fields["NAME"]
		if name == "" {
			name = fields["ID"]
		}
		if name == "" {
			return "", "", fmt.Errorf("%s does not declare a distribution name", path)
		}
		return name, fields["VERSION_ID"], nil
	}
	return "", "", fmt.Errorf("no os-release file found (looked in %s)", strings.Join(osReleasePaths, ", "))
}

// parseOSRelease parses the KEY=value lines of an os-release file.
// Values may be wrapped in single or double quotes.
func parseOSRelease(data []byte) map[string]string {
	result := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		result[strings.TrimSpace(key)] = value
	}
	return result
}

// WithOverrides returns a copy of p with every non-empty override applied
func (p Platform) WithOverrides(category, name, version string) Platform {
	if category != "" {
		p.Category = category
		// A category override without a name means a non-distribution host.
		if name == "" && category != Linux {
			p.Name = category
			p.Version = ""
		}
	}
	if name != "" {
		p.Name = name
	}
	if version != "" {
		p.Version = version
	}
	return p
}
