package gcode

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Word is a letter followed by its unparsed operand, e.g. X1.25.
type Word struct {
	W   byte
	Arg string
}

// Float parses the operand as a finite number.
func (w Word) Float() (float64, error) {
	v, err := strconv.ParseFloat(w.Arg, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.Errorf("%s is not finite", w.Arg)
	}
	return v, nil
}

func (w Word) String() string {
	return string(w.W) + w.Arg
}
