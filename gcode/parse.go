package gcode

import (
	"bytes"
)

// Parse lexes every line of data.
func Parse(data string) ([]Instruction, error) {
	s := NewScanner(bytes.NewBufferString(data))
	var res []Instruction
	for s.Scan() {
		in, err := Lex(s.Text())
		if err != nil {
			return nil, err
		}
		res = append(res, in)
	}
	return res, s.Err()
}

func MustParse(data string) []Instruction {
	in, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return in
}
