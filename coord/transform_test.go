package coord

import (
	"errors"
	"math"
	"testing"

	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformer_Move_Absolute(t *testing.T) {
	cfg := machine.DefaultConfig()
	cfg.OriginOffsetY = 4.035
	tr := NewTransformer(&cfg)

	var pos Point
	c, err := tr.Move(1.0, 2.0, machine.Absolute, &pos)
	require.NoError(t, err)
	assert.Equal(t, hpgl.PlotAbsolute(16000, 19312), c)
	assert.Equal(t, Point{}, pos)

	again, err := tr.Move(1.0, 2.0, machine.Absolute, &pos)
	require.NoError(t, err)
	assert.Equal(t, c, again)
	assert.Equal(t, Point{}, pos)
}

func TestTransformer_Move_DefaultOffset(t *testing.T) {
	cfg := machine.DefaultConfig()
	tr := NewTransformer(&cfg)

	c, err := tr.Move(1.0, 2.0, machine.Absolute, &Point{})
	require.NoError(t, err)
	// 3200 * (102.5/25.4 + 2) = 19313.38
	assert.Equal(t, "PA16000,19313", c.Text)
}

func TestTransformer_Move_Truncates(t *testing.T) {
	cfg := machine.DefaultConfig()
	cfg.OriginOffsetX = 0
	cfg.OriginOffsetY = 0
	tr := NewTransformer(&cfg)

	// 3200 * 0.00099 = 3.168
	c, err := tr.Move(0.00099, -0.00099, machine.Absolute, &Point{})
	require.NoError(t, err)
	assert.Equal(t, "PA3,-3", c.Text)
}

func TestTransformer_BedBoundary(t *testing.T) {
	cfg := machine.DefaultConfig()
	cfg.OriginOffsetX = 0
	cfg.OriginOffsetY = 0
	cfg.StepsPerUnit = 1
	tr := NewTransformer(&cfg)

	_, err := tr.Move(float64(cfg.BedMaxX), float64(cfg.BedMaxY), machine.Absolute, &Point{})
	assert.NoError(t, err)

	_, err = tr.Move(float64(cfg.BedMaxX+1), 0, machine.Absolute, &Point{})
	assert.True(t, errors.Is(err, ErrBedLimitExceeded))
	var bErr *BedLimitError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, byte('X'), bErr.Axis)
	assert.Equal(t, cfg.BedMaxX+1, bErr.Steps)

	_, err = tr.Move(0, float64(cfg.BedMaxY+1), machine.Absolute, &Point{})
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, byte('Y'), bErr.Axis)
}

func TestTransformer_Move_Relative(t *testing.T) {
	cfg := machine.DefaultConfig()
	tr := NewTransformer(&cfg)

	deltas := [][2]float64{{1, 1}, {0.5, -0.25}, {-0.125, 2}, {0.3, 0.3}, {1.1, 0}}

	var pos, sum Point
	for _, d := range deltas {
		c, err := tr.Move(d[0], d[1], machine.Relative, &pos)
		require.NoError(t, err)
		sum = sum.Add(tr.Delta(d[0], d[1]))
		assert.Equal(t, sum, pos)
		assert.Equal(t, hpgl.PlotRelative(sum.X, sum.Y), c)
	}
	assert.Equal(t, Point{X: 3200 + 1600 - 400 + 960 + 3520, Y: 3200 - 800 + 6400 + 960}, pos)
}

func TestTransformer_Move_RelativeLimit(t *testing.T) {
	cfg := machine.DefaultConfig()
	cfg.StepsPerUnit = 1
	tr := NewTransformer(&cfg)

	pos := Point{X: cfg.BedMaxX - 10, Y: 0}
	_, err := tr.Move(10, 0, machine.Relative, &pos)
	require.NoError(t, err)
	assert.Equal(t, cfg.BedMaxX, pos.X)

	_, err = tr.Move(1, 0, machine.Relative, &pos)
	assert.True(t, errors.Is(err, ErrBedLimitExceeded))
	assert.Equal(t, cfg.BedMaxX, pos.X, "position must not advance on failure")
}

func TestTransformer_Move_Overflow(t *testing.T) {
	cfg := machine.DefaultConfig()
	tr := NewTransformer(&cfg)

	_, err := tr.Move(1e20, 0, machine.Absolute, &Point{})
	var bErr *BedLimitError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, byte('X'), bErr.Axis)
	assert.Equal(t, math.MaxInt, bErr.Steps)

	pos := Point{X: 100}
	_, err = tr.Move(0, 1e20, machine.Relative, &pos)
	assert.True(t, errors.Is(err, ErrBedLimitExceeded))
	assert.Equal(t, Point{X: 100}, pos)
}

func TestSteps(t *testing.T) {
	assert.Equal(t, 3520, Steps(1.1*3200))
	assert.Equal(t, -3, Steps(-3.9))
	assert.Equal(t, math.MaxInt, Steps(1e20))
	assert.Equal(t, math.MinInt, Steps(-1e20))
}
