//go:build !linux

package lpkf

import "github.com/pkg/errors"

func enableFlowControl(name string) error {
	return errors.New("hardware flow control is only supported on linux")
}
