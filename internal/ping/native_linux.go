//go:build linux

package ping

import "golang.org/x/sys/unix"

const nativeSupported = true

// setDontFragment forces path MTU discovery on the socket (IP_PMTUDISC_DO),
// which sets DF on every datagram and fails oversized sends with EMSGSIZE.
func setDontFragment(fd uintptr) error {
	return unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_MTU_DISCOVER, unix.IP_PMTUDISC_DO)
}
