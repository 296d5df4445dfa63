package registry

import _ "embed"

// defaultTable is the registry data shipped with the binary.
//
//go:embed registry.yml
var defaultTable []byte
