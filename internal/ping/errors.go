package ping

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// Sentinel errors for probes that could not run at all. These are never
// reported as a negative probe outcome.
var (
	// ErrBinaryNotFound is returned when the ping binary cannot be located.
	ErrBinaryNotFound = errors.New("ping binary not found")

	// ErrPermissionDenied is returned when the ping binary (or a raw socket)
	// cannot be used by the current user.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupportedMode is returned for modes that are not available.
	ErrUnsupportedMode = errors.New("unsupported mode")
)

// ConfigError reports that a prober could not be run because of the
// environment: a missing binary, a binary that cannot be executed, or a
// missing raw socket privilege.
type ConfigError struct {
	// Binary is the configured ping binary, empty for the native prober.
	Binary string
	// Kind is ErrBinaryNotFound or ErrPermissionDenied.
	Kind error
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Binary == "" {
		if errors.Is(e.Kind, ErrPermissionDenied) {
			return "raw ICMP socket cannot be opened: run as root or grant CAP_NET_RAW"
		}
		return fmt.Sprintf("raw ICMP socket cannot be opened: %v", e.Err)
	}
	if errors.Is(e.Kind, ErrBinaryNotFound) {
		return fmt.Sprintf("ping binary %q could not be found", e.Binary)
	}
	return fmt.Sprintf("ping binary %q cannot be executed", e.Binary)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsConfigError reports whether err means the prober could not run at all.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// classifyStartError maps an error from starting the ping process to a
// ConfigError.
func classifyStartError(binary string, err error) error {
	kind := ErrPermissionDenied
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		kind = ErrBinaryNotFound
	}
	return &ConfigError{Binary: binary, Kind: kind, Err: err}
}
