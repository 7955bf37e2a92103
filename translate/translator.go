package translate

import (
	"github.com/mastercactapus/pcbmill/coord"
	"github.com/mastercactapus/pcbmill/gcode"
	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
)

// Translator turns GCODE instructions into HPGL commands.
//
// It mutates the config it was created with as unit and mode changes are
// encountered, and owns the running position used by relative moves.
type Translator struct {
	cfg *machine.Config
	xf  *coord.Transformer
	pos coord.Point
}

func NewTranslator(cfg *machine.Config) *Translator {
	return &Translator{
		cfg: cfg,
		xf:  coord.NewTransformer(cfg),
	}
}

// Position returns the running relative-mode position.
func (t *Translator) Position() coord.Point { return t.pos }

// Line lexes and translates a single trimmed, non-comment source line.
func (t *Translator) Line(line string, drill bool) ([]hpgl.Command, error) {
	in, err := gcode.Lex(line)
	if err != nil {
		return nil, err
	}
	return t.Translate(in, drill)
}

// Translate returns the commands for in. Pen-down during a drill pass is
// followed by a dwell so the hole completes.
func (t *Translator) Translate(in gcode.Instruction, drill bool) ([]hpgl.Command, error) {
	switch in.Kind {
	case gcode.Inches:
		t.cfg.SetUnit(machine.Inch)
	case gcode.Millimeters:
		t.cfg.SetUnit(machine.Millimeter)
	case gcode.AbsoluteMode:
		return t.cfg.SetMode(machine.Absolute), nil
	case gcode.RelativeMode:
		return t.cfg.SetMode(machine.Relative), nil
	case gcode.Pen:
		if in.Z > 0 {
			return []hpgl.Command{hpgl.PenUp()}, nil
		}
		if drill {
			return []hpgl.Command{hpgl.PenDown(), hpgl.Dwell(t.cfg.DrillDwellMS)}, nil
		}
		return []hpgl.Command{hpgl.PenDown()}, nil
	case gcode.Move:
		c, err := t.xf.Move(in.X, in.Y, t.cfg.Mode, &t.pos)
		if err != nil {
			return nil, err
		}
		return []hpgl.Command{c}, nil
	case gcode.Dwell:
		return []hpgl.Command{hpgl.Dwell(in.Seconds * 1000)}, nil
	case gcode.ToolChange:
		return t.ToolChange(in.Tool, in.Description), nil
	case gcode.SpindleStart:
		return hpgl.SpindleStart(t.cfg.SpindleSpeed), nil
	case gcode.SpindleStop:
		return hpgl.SpindleStop(), nil
	}

	return nil, nil
}

// ToolChange returns the sequence to swap to tool, spinning back up to
// the configured speed afterwards.
func (t *Translator) ToolChange(tool, description string) []hpgl.Command {
	return hpgl.ToolChange(tool, description, t.cfg.SpindleSpeed)
}
