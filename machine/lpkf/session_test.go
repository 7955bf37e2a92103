package lpkf

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort answers every written command with respond(cmd).
type fakePort struct {
	writes  []string
	respond func(cmd string) string
	pending bytes.Buffer

	// failOn makes writing this command fail.
	failOn string

	// hold delays responses for this many Available calls.
	hold int
}

func (p *fakePort) Write(b []byte) (int, error) {
	s := string(b)
	if s == p.failOn {
		return 0, errors.New("port gone")
	}
	p.writes = append(p.writes, s)
	if p.respond != nil {
		p.pending.WriteString(p.respond(s))
	}
	return len(b), nil
}

func (p *fakePort) Available() (int, error) {
	if p.hold > 0 {
		p.hold--
		return 0, nil
	}
	return p.pending.Len(), nil
}

func (p *fakePort) Read(b []byte) (int, error) { return p.pending.Read(b) }

func okPort() *fakePort {
	return &fakePort{respond: func(cmd string) string {
		if cmd == "!OC;" {
			return ""
		}
		return "ok\r"
	}}
}

type recordingOperator struct {
	prompts []string
	err     error
}

func (op *recordingOperator) Prompt(message string) error {
	op.prompts = append(op.prompts, message)
	return op.err
}

type recordingObserver struct {
	states []State
	sent   []string
	resp   []string
}

func (o *recordingObserver) StateChanged(s State) { o.states = append(o.states, s) }
func (o *recordingObserver) CommandSent(i int, cmd hpgl.Command, resp []byte) {
	o.sent = append(o.sent, cmd.Text)
	o.resp = append(o.resp, string(resp))
}

func newTestSession(p *fakePort, op *recordingOperator) (*Session, *recordingObserver) {
	s := NewSession(p, op)
	s.Conn().PollInterval = time.Millisecond
	obs := &recordingObserver{}
	s.Observer = obs
	return s, obs
}

func TestSession_Run(t *testing.T) {
	p := okPort()
	p.pending.WriteString("stale")
	op := &recordingOperator{}
	s, obs := newTestSession(p, op)
	s.SpindlePolls = 0

	stream := hpgl.NewStream(
		hpgl.Raw("!OC"),
		hpgl.PlotAbsolute(1, 2),
		hpgl.Prompt("Insert tool #1: size 0.8mm"),
		hpgl.PenUp(),
	)
	require.NoError(t, s.Run(stream))

	assert.True(t, stream.Frozen())
	assert.Equal(t, []string{"!OC;", "PA1,2;", "PU;"}, p.writes)
	assert.Equal(t, []string{"Insert tool #1: size 0.8mm", FinalPrompt}, op.prompts)
	assert.Equal(t, []State{Streaming, ToolChangeWait, Streaming, Drained, Closed}, obs.states)
	assert.Equal(t, []string{"", "ok\r", "ok\r"}, obs.resp)
	assert.Equal(t, Closed, s.State())

	assert.Equal(t, ErrSessionClosed, s.Run(hpgl.NewStream()))
}

func TestSession_Run_DecodedHPGL(t *testing.T) {
	stream, err := hpgl.Decode(strings.NewReader("IN;!OC;!WR0,8,8;PU;"))
	require.NoError(t, err)

	p := &fakePort{respond: func(cmd string) string {
		if cmd == "!OC;" || cmd == "!WR0,8,8;" {
			return ""
		}
		return "ok\r"
	}}
	op := &recordingOperator{}
	s, _ := newTestSession(p, op)
	s.Conn().AckTimeout = 100 * time.Millisecond

	require.NoError(t, s.Run(stream))
	assert.Equal(t, []string{"IN;", "!OC;", "!WR0,8,8;", "PU;"}, p.writes)
}

func TestSession_DryRun(t *testing.T) {
	op := &recordingOperator{}
	s := NewSession(nil, op)
	obs := &recordingObserver{}
	s.Observer = obs

	stream := hpgl.NewStream(hpgl.Prompt("never"), hpgl.PenUp())
	require.NoError(t, s.Run(stream))
	assert.Empty(t, op.prompts)
	assert.Equal(t, []State{Closed}, obs.states)
	assert.Nil(t, s.Conn())
}

func TestSession_SpindleConfirm(t *testing.T) {
	answers := []string{"A", "A", "A", "B"}
	p := &fakePort{respond: func(cmd string) string {
		if cmd != "!RM32;" {
			return "ok"
		}
		a := answers[0]
		answers = answers[1:]
		return a
	}}
	op := &recordingOperator{}
	s, obs := newTestSession(p, op)

	require.NoError(t, s.Run(hpgl.NewStream(hpgl.SpindleRamp(32), hpgl.Cmd("!CC"))))
	assert.Equal(t, []string{"!RM32;", "!RM32;", "!RM32;", "!RM32;", "!CC;"}, p.writes)
	assert.Contains(t, obs.states, SpindleConfirm)
	assert.Empty(t, answers)
}

func TestSession_SpindleUnconfirmed(t *testing.T) {
	p := &fakePort{respond: func(string) string { return "A" }}
	op := &recordingOperator{}
	s, obs := newTestSession(p, op)
	s.SpindlePolls = 3

	err := s.Run(hpgl.NewStream(hpgl.SpindleRamp(0), hpgl.PenUp()))
	assert.True(t, errors.Is(err, ErrSpindleUnconfirmed))
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Len(t, p.writes, 4)
	assert.Empty(t, op.prompts)
	assert.Equal(t, Closed, obs.states[len(obs.states)-1])
}

func TestSession_TransportFailure(t *testing.T) {
	p := okPort()
	p.failOn = "PD;"
	op := &recordingOperator{}
	s, _ := newTestSession(p, op)

	err := s.Run(hpgl.NewStream(hpgl.PenUp(), hpgl.PenDown(), hpgl.PenUp()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "command 2")
	assert.Contains(t, err.Error(), "PD")

	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, "write", tErr.Op)

	assert.Equal(t, []string{"PU;"}, p.writes)
	assert.Empty(t, op.prompts)
	assert.Equal(t, Closed, s.State())
}

func TestSession_OperatorFailure(t *testing.T) {
	p := okPort()
	op := &recordingOperator{err: errors.New("stdin closed")}
	s, _ := newTestSession(p, op)

	err := s.Run(hpgl.NewStream(hpgl.Prompt("Insert tool"), hpgl.PenUp()))
	assert.Error(t, err)
	assert.Empty(t, p.writes)
}

func TestConn_Send_Polls(t *testing.T) {
	p := okPort()
	p.hold = 5
	c := NewConn(p)
	c.PollInterval = time.Millisecond

	resp, err := c.Send(hpgl.PenUp())
	require.NoError(t, err)
	assert.Equal(t, "ok\r", string(resp))
	assert.Equal(t, 0, p.hold)
}

func TestConn_AckTimeout(t *testing.T) {
	p := &fakePort{}
	c := NewConn(p)
	c.PollInterval = time.Millisecond
	c.AckTimeout = 20 * time.Millisecond

	_, err := c.Send(hpgl.PenUp())
	assert.True(t, errors.Is(err, ErrAckTimeout))
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestConn_SendRaw(t *testing.T) {
	p := &fakePort{}
	c := NewConn(p)
	require.NoError(t, c.SendRaw(hpgl.Raw("!WR0,8,8")))
	assert.Equal(t, []string{"!WR0,8,8;"}, p.writes)
}
