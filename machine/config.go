package machine

import (
	"github.com/pkg/errors"
)

// Unit is the length unit of GCODE operands.
type Unit string

const (
	Inch       Unit = "in"
	Millimeter Unit = "mm"
)

// Mode is the addressing mode of GCODE moves.
type Mode string

const (
	Absolute Mode = "abs"
	Relative Mode = "rel"
)

// MillimetersPerInch is the fixed ratio used when switching units.
const MillimetersPerInch = 25.4

// Config describes the machine and the current interpretation state.
//
// StepsPerUnit, OriginOffsetX and OriginOffsetY are always expressed in
// Unit; use SetUnit to switch so they are rescaled together.
type Config struct {
	Unit Unit `mapstructure:"unit"`
	Mode Mode `mapstructure:"mode"`

	// StepsPerUnit is the calibration factor.
	StepsPerUnit float64 `mapstructure:"steps_per_unit"`

	// OriginOffsetX and OriginOffsetY place the board on the bed.
	OriginOffsetX float64 `mapstructure:"origin_offset_x"`
	OriginOffsetY float64 `mapstructure:"origin_offset_y"`

	// BedMaxX and BedMaxY are hard clip limits in steps.
	BedMaxX int `mapstructure:"bed_max_x"`
	BedMaxY int `mapstructure:"bed_max_y"`

	// MillFeedRate is in um/s.
	MillFeedRate int `mapstructure:"mill_feed_rate"`

	// SpindleSpeed is in krpm [0..32].
	SpindleSpeed int `mapstructure:"spindle_speed"`

	// DrillDwellMS is how long to wait for a drill to complete.
	DrillDwellMS float64 `mapstructure:"drill_dwell_ms"`
}

// DefaultConfig returns the calibration of an LPKF Protomat C30s.
func DefaultConfig() Config {
	return Config{
		Unit:          Inch,
		Mode:          Absolute,
		StepsPerUnit:  3200,
		OriginOffsetX: 4,
		OriginOffsetY: 102.5 / MillimetersPerInch,
		BedMaxX:       43836,
		BedMaxY:       25565,
		MillFeedRate:  12000,
		SpindleSpeed:  32,
		DrillDwellMS:  700,
	}
}

// Validate checks that cfg can drive a translation.
func (cfg Config) Validate() error {
	switch cfg.Unit {
	case Inch, Millimeter:
	default:
		return errors.Errorf("invalid unit '%s'", cfg.Unit)
	}
	switch cfg.Mode {
	case Absolute, Relative:
	default:
		return errors.Errorf("invalid mode '%s'", cfg.Mode)
	}
	if cfg.StepsPerUnit <= 0 {
		return errors.New("steps per unit must be positive")
	}
	if cfg.BedMaxX <= 0 || cfg.BedMaxY <= 0 {
		return errors.New("bed limits must be positive")
	}
	if cfg.SpindleSpeed < 0 || cfg.SpindleSpeed > 32 {
		return errors.Errorf("spindle speed %d out of range [0..32]", cfg.SpindleSpeed)
	}
	if cfg.DrillDwellMS < 0 {
		return errors.New("drill dwell must not be negative")
	}
	return nil
}

// BedSize returns the bed limits in the current unit.
func (cfg Config) BedSize() (x, y float64) {
	return float64(cfg.BedMaxX) / cfg.StepsPerUnit, float64(cfg.BedMaxY) / cfg.StepsPerUnit
}
