package machine

import (
	"github.com/mastercactapus/pcbmill/hpgl"
)

// SetUnit switches the length unit, rescaling the calibration factor and
// board offset. Switching to the current unit does nothing.
func (cfg *Config) SetUnit(u Unit) {
	if cfg.Unit == u {
		return
	}
	switch u {
	case Inch:
		cfg.StepsPerUnit *= MillimetersPerInch
		cfg.OriginOffsetX /= MillimetersPerInch
		cfg.OriginOffsetY /= MillimetersPerInch
	case Millimeter:
		cfg.StepsPerUnit /= MillimetersPerInch
		cfg.OriginOffsetX *= MillimetersPerInch
		cfg.OriginOffsetY *= MillimetersPerInch
	default:
		return
	}
	cfg.Unit = u
}

// PositionPrompt is shown before relative moves are applied.
const PositionPrompt = "Confirm machine position before relative moves"

// SetMode switches the addressing mode and returns the commands needed to
// do so safely.
//
// Entering relative mode requests a status report and blocks on the
// operator, since the true machine position is unknown.
func (cfg *Config) SetMode(m Mode) []hpgl.Command {
	if cfg.Mode == m {
		return nil
	}
	cfg.Mode = m
	if m != Relative {
		return nil
	}
	return []hpgl.Command{
		hpgl.OutputStatus(),
		hpgl.Prompt(PositionPrompt),
	}
}
