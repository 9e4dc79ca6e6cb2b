//go:build !windows

package ping

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// capNetRaw is the CAP_NET_RAW bit in the effective capability mask.
const capNetRaw = 1 << 13

var errNoRawPrivileges = errors.New("not root and CAP_NET_RAW is not effective")

// CheckPrivileges reports whether the process may open raw ICMP sockets, as
// the native prober requires. The error is a ConfigError wrapping
// ErrPermissionDenied.
func CheckPrivileges() error {
	if os.Geteuid() == 0 || HasNetRawCapability() {
		return nil
	}
	return &ConfigError{Kind: ErrPermissionDenied, Err: errNoRawPrivileges}
}

// HasNetRawCapability checks if the current process has CAP_NET_RAW. It is
// always false where /proc/self/status does not exist.
func HasNetRawCapability() bool {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return false
	}
	return capEffHasNetRaw(string(data))
}

// capEffHasNetRaw parses the CapEff line of a /proc/<pid>/status file.
func capEffHasNetRaw(status string) bool {
	for _, line := range strings.Split(status, "\n") {
		if !strings.HasPrefix(line, "CapEff:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return false
		}
		mask, err := strconv.ParseUint(fields[1], 16, 64)
		if err != nil {
			return false
		}
		return mask&capNetRaw != 0
	}
	return false
}
