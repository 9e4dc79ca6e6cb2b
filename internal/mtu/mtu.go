// Package mtu discovers the largest unfragmented IPv4 payload on a path by
// bisecting over payload sizes with a ping prober.
package mtu

import (
	"fmt"
	"time"

	"golang.org/x/net/ipv4"
)

// MTU constants
const (
	// ICMPHeaderLen is the ICMP echo header size.
	ICMPHeaderLen = 8

	// Overhead is added to the payload size to get the link MTU.
	Overhead = ipv4.HeaderLen + ICMPHeaderLen

	// StandardMTU is the typical Ethernet MTU
	StandardMTU = 1500

	// MinMTU is the minimum MTU for IPv4 (RFC 791)
	MinMTU = 68

	// DefaultMaxSize is the default upper bound of the payload search.
	DefaultMaxSize = 3000

	// DefaultCount is the default number of echo requests per probe.
	DefaultCount = 4
)

// LinkMTU converts a payload size to the link MTU carrying it.
func LinkMTU(payload int) int {
	return payload + Overhead
}

// ProbeRecord is one tested payload size.
type ProbeRecord struct {
	Size     int
	Accepted bool
	ExitCode int
	Duration time.Duration
}

// Result holds the outcome of a discovery run.
type Result struct {
	Target  string
	Mode    string
	Count   int
	MaxSize int

	// PayloadSize is the largest payload that went through.
	PayloadSize int

	// MTU is PayloadSize plus the ICMP and IPv4 headers.
	MTU int

	// Probes lists tested sizes in test order.
	Probes []ProbeRecord

	StartTime time.Time
	EndTime   time.Time
}

// String returns a formatted string for MTU display.
func (r *Result) String() string {
	if r == nil || r.MTU == 0 {
		return ""
	}
	return fmt.Sprintf("MTU:%d", r.MTU)
}

// IsReduced returns true if the MTU is below the standard 1500 bytes.
func (r *Result) IsReduced() bool {
	return r.MTU > 0 && r.MTU < StandardMTU
}

// IsJumbo returns true if the MTU is above the standard 1500 bytes (jumbo frames).
func (r *Result) IsJumbo() bool {
	return r.MTU > StandardMTU
}

// Duration returns the total run time.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
