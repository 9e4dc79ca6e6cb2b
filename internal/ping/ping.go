// Package ping runs single "does this payload size get through" probes
// against a target, either through the system ping utility or with a native
// ICMP socket.
package ping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Mode selects the prober strategy.
type Mode string

const (
	// ModeAuto picks a dialect for the configured binary. It currently
	// always resolves to ModeGNU.
	ModeAuto Mode = "auto"
	// ModeGNU drives a GNU/iputils style ping binary.
	ModeGNU Mode = "gnu"
	// ModeNative sends ICMP echo requests from a raw socket.
	ModeNative Mode = "native"
)

// DefaultBinary is the ping executable looked up in PATH.
const DefaultBinary = "ping"

// Modes lists the accepted modes in help-text order.
func Modes() []Mode {
	return []Mode{ModeAuto, ModeGNU, ModeNative}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	names := make([]string, 0, len(Modes()))
	for _, m := range Modes() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("%w %q: must be one of %s", ErrUnsupportedMode, s, strings.Join(names, ", "))
}

// Request describes a single probe.
type Request struct {
	Address string
	Count   int
	Size    int
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if r.Address == "" {
		return errors.New("address is required")
	}
	if r.Count < 1 {
		return errors.New("count must be positive")
	}
	if r.Size < 1 {
		return errors.New("size must be positive")
	}
	return nil
}

// Outcome is the result of a probe that ran.
type Outcome struct {
	// Accepted is true when at least one reply came back.
	Accepted bool
	// ExitCode is the ping process exit status (gnu dialect only).
	ExitCode int
	// Duration is the wall time the probe took.
	Duration time.Duration
}

// Prober tests whether a payload size traverses the path with the
// Do-Not-Fragment flag set.
//
// A negative outcome is reported as Outcome.Accepted == false with a nil
// error. A non-nil error means the probe could not run: a *ConfigError, or
// the context error when ctx was canceled.
type Prober interface {
	Probe(ctx context.Context, req Request) (Outcome, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, req Request) (Outcome, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}

// New returns the prober for mode. binary is ignored by ModeNative.
func New(mode Mode, binary string, logger zerolog.Logger) (Prober, error) {
	switch mode {
	case ModeAuto, ModeGNU, "":
		return NewGNURunner(binary, logger), nil
	case ModeNative:
		return NewNativeProber(logger)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMode, mode)
	}
}
