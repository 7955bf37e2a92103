package gcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	cases := []struct {
		line string
		exp  Instruction
	}{
		{"G20", Instruction{Kind: Inches}},
		{"G21", Instruction{Kind: Millimeters}},
		{"G90", Instruction{Kind: AbsoluteMode}},
		{"G91", Instruction{Kind: RelativeMode}},
		{"G00 X1.0 Y2.0", Instruction{Kind: Move, X: 1, Y: 2}},
		{"G01 X-0.5Y.25 F10", Instruction{Kind: Move, X: -0.5, Y: 0.25}},
		{"G01 Z-0.1", Instruction{Kind: Pen, Z: -0.1}},
		{"G00 X1 Y1 Z0.05", Instruction{Kind: Pen, Z: 0.05}},
		{"G04 P0.7", Instruction{Kind: Dwell, Seconds: 0.7}},
		{"M03", Instruction{Kind: SpindleStart}},
		{"M05", Instruction{Kind: SpindleStop}},
		{"M06 T1 (0.8mm)", Instruction{Kind: ToolChange, Tool: "1", Description: "0.8mm"}},
		{"M06 T98 (routing )", Instruction{Kind: ToolChange, Tool: "98", Description: "routing"}},
		{"M02", Instruction{}},
		{"T1", Instruction{}},
		{"G01 F20", Instruction{}},
		{"G1 X1 Y2", Instruction{Kind: Move, X: 1, Y: 2}},
		{"G4 P1", Instruction{Kind: Dwell, Seconds: 1}},
		{"G200", Instruction{}},
		{"G901", Instruction{}},
		{"G17 Xbogus", Instruction{}},
		{"%", Instruction{}},
	}

	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			in, err := Lex(c.line)
			require.NoError(t, err)
			assert.Equal(t, c.exp, in)
		})
	}
}

func TestLex_Malformed(t *testing.T) {
	lines := []string{
		"G00 X1.0a Y2",
		"G00 X1.0 Y",
		"G01 Z--1",
		"G00 X1.0",
		"G04",
		"G04 Pfast",
		"G00 Xinf Y0",
		"G00 X0 Ynan",
		"G01 Z-inf",
		"G04 P1e999",
		"M06 (0.8mm)",
		"M06 T1",
		"M06 Tx (0.8mm)",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := Lex(line)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
			var mErr *MalformedError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, line, mErr.Line)
		})
	}
}

func TestScanner(t *testing.T) {
	s := NewScanner(strings.NewReader("(header)\n  G20  \n\n( comment G91 )\nG00 X1 Y2\r\nM05"))

	require.True(t, s.Scan())
	assert.Equal(t, "G20", s.Text())
	assert.Equal(t, 2, s.Line())

	require.True(t, s.Scan())
	assert.Equal(t, "G00 X1 Y2", s.Text())
	assert.Equal(t, 5, s.Line())

	require.True(t, s.Scan())
	assert.Equal(t, "M05", s.Text())
	assert.Equal(t, 6, s.Line())

	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

func TestParse(t *testing.T) {
	in := MustParse("G21\nG91\n(skip)\nG01 X1 Y1\n")
	assert.Equal(t, []Instruction{
		{Kind: Millimeters},
		{Kind: RelativeMode},
		{Kind: Move, X: 1, Y: 1},
	}, in)

	_, err := Parse("G00 X1\n")
	assert.Error(t, err)
}
