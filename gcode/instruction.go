package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is matched by every MalformedError.
var ErrMalformed = errors.New("malformed gcode")

// MalformedError reports a recognized command with unusable operands.
type MalformedError struct {
	Line   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed gcode '%s': %s", e.Line, e.Reason)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// Kind identifies the instruction of a line.
type Kind int

const (
	// None is any line without an effect.
	None Kind = iota
	Inches
	Millimeters
	AbsoluteMode
	RelativeMode
	// Pen is a G00/G01 with a Z operand.
	Pen
	// Move is a G00/G01 with X and Y operands.
	Move
	Dwell
	ToolChange
	SpindleStart
	SpindleStop
)

var kindNames = [...]string{
	None:         "None",
	Inches:       "Inches",
	Millimeters:  "Millimeters",
	AbsoluteMode: "AbsoluteMode",
	RelativeMode: "RelativeMode",
	Pen:          "Pen",
	Move:         "Move",
	Dwell:        "Dwell",
	ToolChange:   "ToolChange",
	SpindleStart: "SpindleStart",
	SpindleStop:  "SpindleStop",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Instruction is a lexed line. Only the fields relevant to Kind are set.
type Instruction struct {
	Kind Kind

	X, Y, Z float64

	// Seconds is the G04 dwell time.
	Seconds float64

	Tool        string
	Description string
}

// Lex turns one trimmed, non-comment line into an Instruction.
//
// Unrecognized lines lex to None without looking at their operands.
func Lex(line string) (Instruction, error) {
	b, comment, hasComment := splitLine(line)
	if len(b) == 0 {
		return Instruction{}, nil
	}
	code := b[0]
	if code.W != 'G' && code.W != 'M' {
		return Instruction{}, nil
	}
	n, err := strconv.Atoi(code.Arg)
	if err != nil {
		return Instruction{}, nil
	}

	malformed := func(reason string) (Instruction, error) {
		return Instruction{}, &MalformedError{Line: line, Reason: reason}
	}
	float := func(w byte) (bool, float64, error) {
		word, ok := b.Word(w)
		if !ok {
			return false, 0, nil
		}
		v, err := word.Float()
		if err != nil {
			return true, 0, &MalformedError{Line: line, Reason: "invalid number " + strconv.Quote(word.String())}
		}
		return true, v, nil
	}

	switch {
	case code.W == 'G' && n == 20:
		return Instruction{Kind: Inches}, nil
	case code.W == 'G' && n == 21:
		return Instruction{Kind: Millimeters}, nil
	case code.W == 'G' && n == 90:
		return Instruction{Kind: AbsoluteMode}, nil
	case code.W == 'G' && n == 91:
		return Instruction{Kind: RelativeMode}, nil
	case code.W == 'G' && (n == 0 || n == 1):
		hasZ, z, err := float('Z')
		if err != nil {
			return Instruction{}, err
		}
		if hasZ {
			return Instruction{Kind: Pen, Z: z}, nil
		}
		hasX, x, err := float('X')
		if err != nil {
			return Instruction{}, err
		}
		hasY, y, err := float('Y')
		if err != nil {
			return Instruction{}, err
		}
		switch {
		case hasX && hasY:
			return Instruction{Kind: Move, X: x, Y: y}, nil
		case hasX || hasY:
			return malformed("move needs both X and Y")
		}
		return Instruction{}, nil
	case code.W == 'G' && n == 4:
		ok, p, err := float('P')
		if err != nil {
			return Instruction{}, err
		}
		if !ok {
			return malformed("dwell needs P")
		}
		return Instruction{Kind: Dwell, Seconds: p}, nil
	case code.W == 'M' && n == 3:
		return Instruction{Kind: SpindleStart}, nil
	case code.W == 'M' && n == 5:
		return Instruction{Kind: SpindleStop}, nil
	case code.W == 'M' && n == 6:
		t, ok := b.Word('T')
		if !ok {
			return malformed("tool change needs T")
		}
		if strings.Trim(t.Arg, "0123456789") != "" {
			return malformed("invalid tool " + strconv.Quote(t.Arg))
		}
		if !hasComment {
			return malformed("tool change needs a (description)")
		}
		return Instruction{Kind: ToolChange, Tool: t.Arg, Description: comment}, nil
	}

	return Instruction{}, nil
}
