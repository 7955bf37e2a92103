package coord

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
)

// ErrBedLimitExceeded is matched by every BedLimitError.
var ErrBedLimitExceeded = errors.New("bed limit exceeded")

// BedLimitError reports a move the bed cannot reach.
type BedLimitError struct {
	Axis  byte
	Steps int
	Max   int
}

func (e *BedLimitError) Error() string {
	return fmt.Sprintf("%c move bigger than bed! (%d > %d)", e.Axis, e.Steps, e.Max)
}

func (e *BedLimitError) Is(target error) bool { return target == ErrBedLimitExceeded }

// Transformer converts GCODE coordinates to machine steps.
type Transformer struct {
	cfg *machine.Config
}

func NewTransformer(cfg *machine.Config) *Transformer {
	return &Transformer{cfg: cfg}
}

// limit truncates v toward zero and rejects it if it lies past max. The
// comparison is done before converting so huge values cannot wrap.
func limit(axis byte, v float64, max int) (int, error) {
	v = math.Trunc(v)
	if v > float64(max) {
		return 0, &BedLimitError{Axis: axis, Steps: Steps(v), Max: max}
	}
	return Steps(v), nil
}

func (t *Transformer) checkBed(x, y float64) (Point, error) {
	px, err := limit('X', x, t.cfg.BedMaxX)
	if err != nil {
		return Point{}, err
	}
	py, err := limit('Y', y, t.cfg.BedMaxY)
	if err != nil {
		return Point{}, err
	}
	return Point{X: px, Y: py}, nil
}

// Absolute returns the step position of x,y offset by the board origin.
func (t *Transformer) Absolute(x, y float64) (Point, error) {
	return t.checkBed(
		t.cfg.StepsPerUnit*(t.cfg.OriginOffsetX+x),
		t.cfg.StepsPerUnit*(t.cfg.OriginOffsetY+y),
	)
}

// Delta returns the step distance of x,y.
func (t *Transformer) Delta(x, y float64) Point {
	return Point{
		X: Steps(t.cfg.StepsPerUnit * x),
		Y: Steps(t.cfg.StepsPerUnit * y),
	}
}

// Move returns the command moving to x,y in the given mode.
//
// In relative mode pos holds the running total and is only advanced if
// the move is within the bed; the command carries the new total. In
// absolute mode pos is left untouched.
func (t *Transformer) Move(x, y float64, mode machine.Mode, pos *Point) (hpgl.Command, error) {
	if mode != machine.Relative {
		p, err := t.Absolute(x, y)
		if err != nil {
			return hpgl.Command{}, err
		}
		return hpgl.PlotAbsolute(p.X, p.Y), nil
	}

	next, err := t.checkBed(
		float64(pos.X)+math.Trunc(t.cfg.StepsPerUnit*x),
		float64(pos.Y)+math.Trunc(t.cfg.StepsPerUnit*y),
	)
	if err != nil {
		return hpgl.Command{}, err
	}
	*pos = next
	return hpgl.PlotRelative(next.X, next.Y), nil
}
