//go:build linux

package lpkf

import (
	"golang.org/x/sys/unix"
)

// enableFlowControl sets CRTSCTS on the tty; the setting is kept by the
// device for the descriptor opened by the serial package.
func enableFlowControl(name string) error {
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Cflag |= unix.CRTSCTS
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
