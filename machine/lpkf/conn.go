package lpkf

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
)

// ErrTransport is matched by every TransportError.
var ErrTransport = errors.New("transport failure")

// ErrAckTimeout is returned if the machine does not answer within the
// configured AckTimeout.
var ErrAckTimeout = errors.New("no acknowledgement")

// TransportError reports a failure talking to the machine. The session
// cannot continue after one.
type TransportError struct {
	Op      string
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Command, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DefaultPollInterval is the wait between checks for a response.
const DefaultPollInterval = 10 * time.Millisecond

// Conn implements the request/acknowledge discipline: a single command
// in flight, the next one is not written until the machine answered.
type Conn struct {
	t machine.Transport

	// PollInterval is the backoff while waiting for a response.
	PollInterval time.Duration

	// AckTimeout bounds the wait for a response. Zero waits forever.
	AckTimeout time.Duration
}

// NewConn creates a new Conn over t.
func NewConn(t machine.Transport) *Conn {
	return &Conn{t: t, PollInterval: DefaultPollInterval}
}

func (c *Conn) write(cmd hpgl.Command) error {
	_, err := c.t.Write(cmd.Bytes())
	if err != nil {
		return &TransportError{Op: "write", Command: cmd.Text, Err: err}
	}
	return nil
}

// drain reads whatever has been received so far.
func (c *Conn) drain() ([]byte, error) {
	n, err := c.t.Available()
	if err != nil || n == 0 {
		return nil, err
	}
	buf := make([]byte, n)
	n, err = c.t.Read(buf)
	return buf[:n], err
}

// Discard drops stale input.
func (c *Conn) Discard() error {
	_, err := c.drain()
	if err != nil {
		return &TransportError{Op: "discard", Err: err}
	}
	return nil
}

func (c *Conn) waitForResponse(cmd hpgl.Command) error {
	var deadline time.Time
	if c.AckTimeout > 0 {
		deadline = time.Now().Add(c.AckTimeout)
	}
	for {
		n, err := c.t.Available()
		if err != nil {
			return &TransportError{Op: "wait", Command: cmd.Text, Err: err}
		}
		if n > 0 {
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return &TransportError{Op: "wait", Command: cmd.Text, Err: ErrAckTimeout}
		}
		time.Sleep(c.PollInterval)
	}
}

// Send writes cmd and blocks until the machine responds, returning the
// response.
func (c *Conn) Send(cmd hpgl.Command) ([]byte, error) {
	err := c.write(cmd)
	if err != nil {
		return nil, err
	}
	err = c.waitForResponse(cmd)
	if err != nil {
		return nil, err
	}
	resp, err := c.drain()
	if err != nil {
		return nil, &TransportError{Op: "read", Command: cmd.Text, Err: err}
	}
	return resp, nil
}

// SendRaw writes cmd without waiting for a response.
func (c *Conn) SendRaw(cmd hpgl.Command) error {
	return c.write(cmd)
}
