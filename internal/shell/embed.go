package shell

import _ "embed"

// activateTemplate renders an action list as a POSIX sh snippet meant to be
// sourced by the activating shell.
//
//go:embed activate.tmpl.sh
var activateTemplate string
