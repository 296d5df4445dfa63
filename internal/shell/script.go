package shell

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"al.essio.dev/pkg/shellescape"
	"github.com/binary-install/clangenv/pkg/action"
	"github.com/pkg/errors"
)

// pathSeparator joins Augment values; POSIX shells only run on ':' hosts.
const pathSeparator = ":"

// templateData holds the data passed to the template execution
type templateData struct {
	Header    string
	Separator string
	Actions   []action.Document
}

// Render creates a POSIX sh snippet that applies the actions in order.
// Windows shells are rendered by the orchestrator itself.
func Render(header string, actions action.List) ([]byte, error) {
	for _, d := range actions.Documents() {
		if d.Name != "" && !isIdentifier(d.Name) {
			return nil, fmt.Errorf("invalid environment variable name: %q", d.Name)
		}
	}

	tmpl, err := template.New("activate").Funcs(createFuncMap()).Parse(activateTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse activation template")
	}

	data := templateData{
		Header:    strings.ReplaceAll(header, "\n", " "),
		Separator: pathSeparator,
		Actions:   actions.Documents(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "failed to execute activation template")
	}
	return buf.Bytes(), nil
}

// createFuncMap defines the functions available to the template
func createFuncMap() template.FuncMap {
	return template.FuncMap{
		"quote": shellescape.Quote,
		"joinPath": func(values []string) string {
			return strings.Join(values, pathSeparator)
		},
	}
}

// isIdentifier reports whether name is a valid shell variable name
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
