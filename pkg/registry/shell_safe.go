package registry

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ShellSafeString validates that a string can be embedded in a double-quoted
// command line argument without changing the command.
func ShellSafeString(value string, fieldName string) error {
	if value == "" {
		return nil
	}

	if strings.Contains(value, "$(") {
		return fmt.Errorf("%s contains dangerous command substitution '$(' pattern: %s", fieldName, value)
	}
	if strings.Contains(value, "`") {
		return fmt.Errorf("%s contains dangerous command substitution backtick '`' pattern: %s", fieldName, value)
	}

	dangerousChars := []struct {
		char string
		desc string
	}{
		// Check longer patterns first
		{">>", "append redirection"},
		{"<<", "here document"},
		{"||", "logical OR"},
		{"&&", "logical AND"},
		// Then single characters
		{";", "semicolon"},
		{"|", "pipe"},
		{"&", "ampersand"},
		{">", "output redirection"},
		{"<", "input redirection"},
		{`"`, "double quote"},
		{"\n", "newline"},
		{"\r", "carriage return"},
	}

	for _, dc := range dangerousChars {
		if strings.Contains(value, dc.char) {
			return fmt.Errorf("%s contains dangerous character '%s' (%s): %s", fieldName, dc.char, dc.desc, value)
		}
	}

	for _, r := range value {
		if unicode.IsControl(r) && r != '\t' {
			return fmt.Errorf("%s contains control character (code %d)", fieldName, r)
		}
	}

	return nil
}

// Validate checks every field that ends up on a verifier command line
func Validate(entries []ToolchainEntry) error {
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("entries[%d].name is required", i)
		}
		if err := ShellSafeString(e.Name, fmt.Sprintf("entries[%d].name", i)); err != nil {
			return err
		}
		if err := ShellSafeString(e.Source, fmt.Sprintf("entries[%d].source", i)); err != nil {
			return err
		}
		if e.ContentHash == "" {
			return fmt.Errorf("entries[%d].hash is required", i)
		}
		if !sha256Pattern.MatchString(e.ContentHash) {
			return fmt.Errorf("entries[%d].hash must be a lowercase sha256 hex digest: %s", i, e.ContentHash)
		}
		if len(e.InstallPathParts) == 0 {
			return fmt.Errorf("entries[%d].path must not be empty", i)
		}
		for j, part := range e.InstallPathParts {
			if part == "" || part == ".." || strings.ContainsAny(part, `/\`) {
				return fmt.Errorf("entries[%d].path[%d] is not a plain directory name: %q", i, j, part)
			}
			if err := ShellSafeString(part, fmt.Sprintf("entries[%d].path[%d]", i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}
