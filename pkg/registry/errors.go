package registry

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnrecognizedPlatformError reports an OS or distribution version the
// registry has never heard of. Support has to be added to the table.
type UnrecognizedPlatformError struct {
	Platform string
	Version  string
}

func (e *UnrecognizedPlatformError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("'%s' is not a recognized %s version", e.Version, e.Platform)
	}
	return fmt.Sprintf("'%s' is not a recognized platform", e.Platform)
}

// UnsupportedPlatformError reports a platform the registry knows about but
// explicitly has no toolchain build for.
type UnsupportedPlatformError struct {
	Platform string
	Version  string
	Reason   string
}

func (e *UnsupportedPlatformError) Error() string {
	target := e.Platform
	if e.Version != "" {
		target = fmt.Sprintf("%s %s", e.Platform, e.Version)
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s is not supported", target)
	}
	return fmt.Sprintf("%s is not supported: %s", target, e.Reason)
}

// IsUnrecognized reports whether err wraps an UnrecognizedPlatformError
func IsUnrecognized(err error) bool {
	var target *UnrecognizedPlatformError
	return errors.As(err, &target)
}

// IsUnsupported reports whether err wraps an UnsupportedPlatformError
func IsUnsupported(err error) bool {
	var target *UnsupportedPlatformError
	return errors.As(err, &target)
}
