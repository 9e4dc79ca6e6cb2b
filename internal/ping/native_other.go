//go:build !linux

package ping

const nativeSupported = false

func setDontFragment(fd uintptr) error {
	return ErrUnsupportedMode
}
