package coord

import (
	"math"
	"strconv"
)

// Point is a machine position in steps.
type Point struct{ X, Y int }

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	return p
}

func (p Point) String() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

// Steps converts a value scaled to steps into whole steps, truncating
// toward zero. Values outside the range of int saturate.
func Steps(v float64) int {
	switch {
	case v >= float64(math.MaxInt):
		return math.MaxInt
	case v <= float64(math.MinInt):
		return math.MinInt
	}
	return int(v)
}
