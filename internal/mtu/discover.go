package mtu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hervehildenbrand/mtuprobe/internal/bisect"
	"github.com/hervehildenbrand/mtuprobe/internal/ping"
)

// Config holds discovery parameters.
type Config struct {
	Address string
	Count   int
	MaxSize int
	// Mode is recorded in the result only.
	Mode string
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		Count:   DefaultCount,
		MaxSize: DefaultMaxSize,
		Mode:    string(ping.ModeAuto),
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}
	if c.Count <= 0 {
		return errors.New("count must be positive")
	}
	if c.MaxSize <= 0 {
		return errors.New("max size must be positive")
	}
	return nil
}

// ProgressFunc is called with each payload size before it is probed.
type ProgressFunc func(size int)

// ProbeCallback is called after each probe with its record.
type ProbeCallback func(rec ProbeRecord)

// Discoverer drives a bisection over payload sizes 1..MaxSize.
type Discoverer struct {
	cfg        Config
	prober     ping.Prober
	onProgress ProgressFunc
	onProbe    ProbeCallback
	logger     zerolog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithProgress sets the callback invoked before each probe.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Discoverer) { d.onProgress = fn }
}

// WithProbeCallback sets the callback invoked after each probe.
func WithProbeCallback(fn ProbeCallback) Option {
	return func(d *Discoverer) { d.onProbe = fn }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Discoverer) { d.logger = logger }
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(cfg Config, prober ping.Prober, opts ...Option) (*Discoverer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if prober == nil {
		return nil, errors.New("prober is required")
	}

	d := &Discoverer{
		cfg:    cfg,
		prober: prober,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Discover runs the bisection and returns the largest payload size that got
// through along with the derived link MTU.
//
// Size 1 is assumed to pass and MaxSize to fail; neither is verified. A
// prober error (missing binary, cancellation) aborts the run and no result
// is returned.
func (d *Discoverer) Discover(ctx context.Context) (*Result, error) {
	res := &Result{
		Target:    d.cfg.Address,
		Mode:      d.cfg.Mode,
		Count:     d.cfg.Count,
		MaxSize:   d.cfg.MaxSize,
		StartTime: time.Now(),
	}

	mapper := func(index int) int { return index + 1 }

	// true moves the right edge down, so a size that fails is "accepted" and
	// the search converges on the first failing size.
	tester := func(size int) (bool, error) {
		if d.onProgress != nil {
			d.onProgress(size)
		}

		out, err := d.prober.Probe(ctx, ping.Request{
			Address: d.cfg.Address,
			Count:   d.cfg.Count,
			Size:    size,
		})
		if err != nil {
			return false, fmt.Errorf("probe size %d: %w", size, err)
		}

		rec := ProbeRecord{
			Size:     size,
			Accepted: out.Accepted,
			ExitCode: out.ExitCode,
			Duration: out.Duration,
		}
		res.Probes = append(res.Probes, rec)
		if d.onProbe != nil {
			d.onProbe(rec)
		}

		d.logger.Debug().Int("size", size).Bool("accepted", out.Accepted).
			Dur("duration", out.Duration).Msg("probe")
		return !out.Accepted, nil
	}

	firstFailing, err := bisect.SearchFunc(d.cfg.MaxSize, mapper, tester)
	if err != nil {
		return nil, err
	}

	// A one-element domain returns size 1 untested; it is trusted to pass.
	res.PayloadSize = max(firstFailing-1, 1)
	res.MTU = LinkMTU(res.PayloadSize)
	res.EndTime = time.Now()

	d.logger.Debug().Int("payload", res.PayloadSize).Int("mtu", res.MTU).
		Int("probes", len(res.Probes)).Msg("discovery complete")
	return res, nil
}
