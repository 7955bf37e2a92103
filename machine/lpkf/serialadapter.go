package lpkf

import (
	"bytes"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/tarm/serial"

	"github.com/mastercactapus/pcbmill/machine"
)

// SerialConfig selects the serial port of the machine.
type SerialConfig struct {
	Name string
	Baud int

	// RTSCTS enables hardware flow control.
	RTSCTS bool
}

// SerialAdapter buffers everything received on a serial port so it can
// be polled for available bytes.
type SerialAdapter struct {
	rw io.ReadWriteCloser

	mx  sync.Mutex
	buf bytes.Buffer
	err error
}

var _ machine.Transport = &SerialAdapter{}

// OpenSerial opens the port described by cfg.
func OpenSerial(cfg SerialConfig) (*SerialAdapter, error) {
	p, err := serial.OpenPort(&serial.Config{Name: cfg.Name, Baud: cfg.Baud})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Name)
	}
	if cfg.RTSCTS {
		err = enableFlowControl(cfg.Name)
		if err != nil {
			p.Close()
			return nil, errors.Wrapf(err, "enable flow control on %s", cfg.Name)
		}
	}
	return NewSerialAdapter(p), nil
}

// NewSerialAdapter starts reading from rw in the background.
func NewSerialAdapter(rw io.ReadWriteCloser) *SerialAdapter {
	adapter := &SerialAdapter{rw: rw}
	go adapter.readLoop()
	return adapter
}

func (adapter *SerialAdapter) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := adapter.rw.Read(buf)
		adapter.mx.Lock()
		adapter.buf.Write(buf[:n])
		if err != nil {
			adapter.err = err
			adapter.mx.Unlock()
			return
		}
		adapter.mx.Unlock()
	}
}

func (adapter *SerialAdapter) Write(p []byte) (int, error) {
	return adapter.rw.Write(p)
}

// Available returns the number of buffered bytes. Once the buffer is
// empty, a failed port reports its read error.
func (adapter *SerialAdapter) Available() (int, error) {
	adapter.mx.Lock()
	defer adapter.mx.Unlock()
	if adapter.buf.Len() > 0 {
		return adapter.buf.Len(), nil
	}
	return 0, adapter.err
}

func (adapter *SerialAdapter) Read(p []byte) (int, error) {
	adapter.mx.Lock()
	defer adapter.mx.Unlock()
	if adapter.buf.Len() == 0 {
		return 0, adapter.err
	}
	return adapter.buf.Read(p)
}

func (adapter *SerialAdapter) Close() error {
	return adapter.rw.Close()
}
