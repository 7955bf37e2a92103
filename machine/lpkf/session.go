package lpkf

import (
	"bytes"
	"log"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
)

// State is the replay state of a Session.
type State int

const (
	Idle State = iota
	Streaming
	ToolChangeWait
	SpindleConfirm
	Drained
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Streaming:
		return "Streaming"
	case ToolChangeWait:
		return "ToolChangeWait"
	case SpindleConfirm:
		return "SpindleConfirm"
	case Drained:
		return "Drained"
	case Closed:
		return "Closed"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// ErrSpindleUnconfirmed is returned if the spindle ramp response never
// changed within the configured number of polls.
var ErrSpindleUnconfirmed = errors.New("spindle ramp not confirmed")

// ErrSessionClosed is returned when running a session twice.
var ErrSessionClosed = errors.New("session closed")

// DefaultSpindlePolls bounds the spindle confirmation loop.
const DefaultSpindlePolls = 50

// FinalPrompt is shown once every command was sent.
const FinalPrompt = "Wait until plotter finishes and press enter to exit"

// An Observer is notified of replay progress.
type Observer interface {
	StateChanged(State)
	CommandSent(index int, cmd hpgl.Command, resp []byte)
}

// Session replays a stream against the machine.
type Session struct {
	conn  *Conn
	op    machine.Operator
	state State

	// SpindlePolls is the maximum number of repeated ramp commands while
	// waiting for the spindle to settle. Zero disables confirmation.
	SpindlePolls int

	Observer Observer

	// Log receives one line per command and response, if set.
	Log *log.Logger
}

// NewSession returns a session over t. A nil t makes a dry run.
func NewSession(t machine.Transport, op machine.Operator) *Session {
	s := &Session{op: op, SpindlePolls: DefaultSpindlePolls}
	if t != nil {
		s.conn = NewConn(t)
	}
	return s
}

// Conn returns the underlying connection, nil for a dry run.
func (s *Session) Conn() *Conn { return s.conn }

func (s *Session) State() State { return s.state }

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	if s.Observer != nil {
		s.Observer.StateChanged(st)
	}
}

func (s *Session) sent(i int, cmd hpgl.Command, resp []byte) {
	if s.Log != nil {
		s.Log.Printf("%s\t%s", cmd.Text, bytes.TrimSpace(resp))
	}
	if s.Observer != nil {
		s.Observer.CommandSent(i, cmd, resp)
	}
}

// Run freezes stream and sends every command, blocking on the operator for
// prompts and once more at the end. Any error is fatal; the session is
// closed afterwards either way.
func (s *Session) Run(stream *hpgl.Stream) (err error) {
	if s.state != Idle {
		return ErrSessionClosed
	}
	stream.Freeze()
	defer s.setState(Closed)

	if s.conn == nil {
		return nil
	}

	err = s.conn.Discard()
	if err != nil {
		return err
	}

	s.setState(Streaming)
	for i, cmd := range stream.Commands() {
		err = s.step(i, cmd)
		if err != nil {
			return errors.Wrapf(err, "command %d", i+1)
		}
	}

	s.setState(Drained)
	return s.prompt(FinalPrompt)
}

func (s *Session) prompt(message string) error {
	if s.op == nil {
		return errors.New("no operator to acknowledge: " + message)
	}
	return s.op.Prompt(message)
}

func (s *Session) step(i int, cmd hpgl.Command) error {
	switch {
	case cmd.Kind == hpgl.KindPrompt:
		s.setState(ToolChangeWait)
		err := s.prompt(cmd.Text)
		if err != nil {
			return err
		}
	case cmd.Kind == hpgl.KindRaw:
		err := s.conn.SendRaw(cmd)
		if err != nil {
			return err
		}
		s.sent(i, cmd, nil)
	case cmd.IsSpindleRamp() && s.SpindlePolls > 0:
		s.setState(SpindleConfirm)
		err := s.confirmSpindle(i, cmd)
		if err != nil {
			return err
		}
	default:
		resp, err := s.conn.Send(cmd)
		if err != nil {
			return err
		}
		s.sent(i, cmd, resp)
	}

	s.setState(Streaming)
	return nil
}

// confirmSpindle repeats the ramp command while the machine keeps giving
// the same answer; a changed answer means the ramp finished.
func (s *Session) confirmSpindle(i int, cmd hpgl.Command) error {
	prev, err := s.conn.Send(cmd)
	if err != nil {
		return err
	}
	s.sent(i, cmd, prev)

	for n := 0; n < s.SpindlePolls; n++ {
		resp, err := s.conn.Send(cmd)
		if err != nil {
			return err
		}
		s.sent(i, cmd, resp)
		if !bytes.Equal(resp, prev) {
			return nil
		}
		prev = resp
	}

	return &TransportError{Op: "confirm spindle", Command: cmd.Text, Err: ErrSpindleUnconfirmed}
}
