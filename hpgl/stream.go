package hpgl

import (
	"io"
	"sync"
)

// Stream is an ordered, append-only sequence of commands.
//
// Once frozen for replay it can no longer be appended to.
type Stream struct {
	mx     sync.RWMutex
	cmds   []Command
	frozen bool
}

// NewStream returns a stream holding cmds.
func NewStream(cmds ...Command) *Stream {
	s := &Stream{}
	s.Append(cmds...)
	return s
}

// Append adds cmds to the end of the stream. It panics if the stream
// has been frozen.
func (s *Stream) Append(cmds ...Command) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.frozen {
		panic("hpgl: append to frozen stream")
	}
	s.cmds = append(s.cmds, cmds...)
}

// Freeze makes the stream read-only.
func (s *Stream) Freeze() {
	s.mx.Lock()
	s.frozen = true
	s.mx.Unlock()
}

func (s *Stream) Frozen() bool {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.frozen
}

func (s *Stream) Len() int {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return len(s.cmds)
}

// Commands returns a copy of the stream contents.
func (s *Stream) Commands() []Command {
	s.mx.RLock()
	defer s.mx.RUnlock()
	c := make([]Command, len(s.cmds))
	copy(c, s.cmds)
	return c
}

// WriteTo writes the persisted form of the stream to w.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, NewReader(s.Commands()))
}
