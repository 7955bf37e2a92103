package hpgl

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Encoder writes commands in the persisted stream format.
//
// Plain commands are written back-to-back, each directive gets a line
// of its own.
type Encoder struct {
	w   io.Writer
	bol bool
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, bol: true}
}

// Encode writes cmds.
func (e *Encoder) Encode(cmds ...Command) error {
	var buf bytes.Buffer
	for _, c := range cmds {
		if !c.IsDirective() {
			buf.WriteString(c.String())
			e.bol = false
			continue
		}
		if !e.bol {
			buf.WriteByte('\n')
		}
		buf.WriteString(c.String())
		buf.WriteByte('\n')
		e.bol = true
	}
	if buf.Len() == 0 {
		return nil
	}
	_, err := e.w.Write(buf.Bytes())
	return err
}

// Close terminates the last line. It does not close the underlying
// writer.
func (e *Encoder) Close() error {
	if e.bol {
		return nil
	}
	e.bol = true
	_, err := io.WriteString(e.w, "\n")
	return err
}

// Reader renders commands in the persisted stream format.
type Reader struct {
	cmds []Command
	n    int
	buf  bytes.Buffer
	enc  *Encoder
	done bool
}

var _ io.Reader = &Reader{}

func NewReader(cmds []Command) *Reader {
	r := &Reader{cmds: cmds}
	r.enc = NewEncoder(&r.buf)
	return r
}

func (r *Reader) Read(p []byte) (int, error) {
	for r.buf.Len() < len(p) && r.n < len(r.cmds) {
		r.enc.Encode(r.cmds[r.n])
		r.n++
	}
	if r.n == len(r.cmds) && !r.done {
		r.done = true
		r.enc.Close()
	}
	if r.buf.Len() == 0 {
		return 0, io.EOF
	}
	return r.buf.Read(p)
}

// Decode parses a persisted stream. Plain HPGL without directives is
// accepted as well.
func Decode(r io.Reader) (*Stream, error) {
	br := bufio.NewReader(r)
	s := &Stream{}
	var lineNum int
	for {
		line, err := br.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		lineNum++

		cmds, err := decodeLine(strings.TrimSpace(line))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		s.Append(cmds...)
	}
}

func decodeLine(line string) ([]Command, error) {
	if line == "" {
		return nil, nil
	}
	if strings.HasPrefix(line, "CO ") {
		c, err := decodeDirective(strings.TrimSpace(line[3:]))
		if err != nil {
			return nil, err
		}
		return []Command{c}, nil
	}

	var res []Command
	for _, tok := range strings.Split(line, Terminator) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		res = append(res, Token(tok))
	}
	return res, nil
}

func decodeDirective(s string) (Command, error) {
	kind := KindPrompt
	switch {
	case strings.HasPrefix(s, "PROMPT "):
		s = s[len("PROMPT "):]
	case strings.HasPrefix(s, "RAW "):
		kind = KindRaw
		s = s[len("RAW "):]
	}
	text, err := strconv.Unquote(strings.TrimSpace(s))
	if err != nil {
		return Command{}, errors.Wrapf(err, "invalid directive %q", s)
	}
	return Command{Kind: kind, Text: text}, nil
}
