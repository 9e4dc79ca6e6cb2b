package ping

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is the pause between echo requests passed to ping.
const DefaultInterval = 200 * time.Millisecond

// GNURunner probes by running a GNU/iputils ping binary:
//
//	ping -i 0.2 -c <count> -M do -s <size> <address>
//
// The process output is discarded; only its exit status is used.
type GNURunner struct {
	Binary   string
	Interval time.Duration

	logger zerolog.Logger
}

// NewGNURunner creates a GNURunner for binary. An empty binary means "ping"
// from PATH.
func NewGNURunner(binary string, logger zerolog.Logger) *GNURunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &GNURunner{
		Binary:   binary,
		Interval: DefaultInterval,
		logger:   logger,
	}
}

// Args returns the ping arguments for req, without the binary.
func (r *GNURunner) Args(req Request) []string {
	return []string{
		"-i", strconv.FormatFloat(r.Interval.Seconds(), 'f', -1, 64),
		"-c", strconv.Itoa(req.Count),
		"-M", "do",
		"-s", strconv.Itoa(req.Size),
		req.Address,
	}
}

// command builds the ping process for req. Stdin, Stdout and Stderr stay nil
// so the child gets the null device.
func (r *GNURunner) command(ctx context.Context, req Request) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.Binary, r.Args(req)...)
	// A terminal interrupt must reach only mtuprobe. The child then ends only
	// when ctx is canceled, so ctx.Err is set once Run returns.
	detach(cmd)
	return cmd
}

// Probe runs ping once and reports whether it exited successfully.
func (r *GNURunner) Probe(ctx context.Context, req Request) (Outcome, error) {
	cmd := r.command(ctx, req)

	start := time.Now()
	err := cmd.Run()
	out := Outcome{Duration: time.Since(start)}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}

	if err == nil {
		out.Accepted = true
		r.logger.Debug().Int("size", req.Size).Int("count", req.Count).
			Dur("duration", out.Duration).Msg("probe accepted")
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		r.logger.Debug().Int("size", req.Size).Int("count", req.Count).
			Int("exit_code", out.ExitCode).Dur("duration", out.Duration).Msg("probe rejected")
		return out, nil
	}

	r.logger.Debug().Err(err).Str("binary", r.Binary).Msg("ping could not be started")
	return out, classifyStartError(r.Binary, err)
}
