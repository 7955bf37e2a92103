package gcode

import (
	"bufio"
	"io"
	"strings"
)

// Scanner reads trimmed source lines, skipping blank lines and comments.
type Scanner struct {
	br   *bufio.Reader
	line int
	text string
	err  error
}

func NewScanner(r io.Reader) *Scanner {
	if br, ok := r.(*bufio.Reader); ok {
		return &Scanner{br: br}
	}

	return &Scanner{br: bufio.NewReader(r)}
}

// Scan advances to the next line with content.
func (s *Scanner) Scan() bool {
	for s.err == nil {
		str, err := s.br.ReadString('\n')
		if err == io.EOF && str != "" {
			err = nil
		}
		if err != nil {
			s.err = err
			return false
		}
		s.line++

		str = strings.TrimSpace(str)
		if str == "" || strings.HasPrefix(str, "(") {
			continue
		}
		s.text = str
		return true
	}
	return false
}

// Text returns the current line.
func (s *Scanner) Text() string { return s.text }

// Line returns the 1-based number of the current line.
func (s *Scanner) Line() int { return s.line }

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
