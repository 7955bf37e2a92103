package translate

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"

	"github.com/mastercactapus/pcbmill/gcode"
	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
)

// Pass is one of the fixed processing phases.
type Pass int

const (
	DrillPass Pass = iota
	NearTracePass
	FarTracePass
	MillPass
)

func (p Pass) String() string {
	switch p {
	case DrillPass:
		return "Drills"
	case NearTracePass:
		return "Near Traces"
	case FarTracePass:
		return "Far Traces"
	case MillPass:
		return "Mill"
	}
	return fmt.Sprintf("Pass(%d)", int(p))
}

// Source is an open GCODE file.
type Source struct {
	Name string
	io.Reader
}

// Sources are the files of a board, one per pass.
type Sources struct {
	Drill      Source
	NearTraces Source
	FarTraces  Source
	Mill       Source
}

func (s Sources) ordered() []Source {
	return []Source{s.Drill, s.NearTraces, s.FarTraces, s.Mill}
}

// LineError locates a generation failure in the source.
type LineError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: '%s': %v", e.File, e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Tool ids used for the tool changes between passes.
const (
	RoutingTool = "98"
	MillingTool = "99"
)

// Generator builds the command stream for a board.
type Generator struct {
	cfg machine.Config
	tr  *Translator

	// PassToolChanges inserts a tool change before the first trace pass
	// and before the mill pass.
	PassToolChanges bool

	// Log receives one line per translated source line, if set.
	Log *log.Logger

	n int
}

// NewGenerator copies cfg; the copy is mutated as the sources are read.
func NewGenerator(cfg machine.Config) *Generator {
	g := &Generator{cfg: cfg, PassToolChanges: true}
	g.tr = NewTranslator(&g.cfg)
	return g
}

// Config returns the config as left by the last processed line.
func (g *Generator) Config() machine.Config { return g.cfg }

// Generate translates all sources in order into a new stream, writing
// it to sink as it goes. On error nothing further is written.
func (g *Generator) Generate(src Sources, sink io.Writer) (*hpgl.Stream, error) {
	err := g.cfg.Validate()
	if err != nil {
		return nil, err
	}
	for i, s := range src.ordered() {
		if s.Reader == nil {
			return nil, errors.Errorf("missing source for %s pass", Pass(i))
		}
	}

	if sink == nil {
		sink = io.Discard
	}
	enc := hpgl.NewEncoder(sink)
	stream := &hpgl.Stream{}
	emit := func(cmds []hpgl.Command) error {
		stream.Append(cmds...)
		return errors.Wrap(enc.Encode(cmds...), "write output")
	}

	err = emit(hpgl.Header(g.cfg.MillFeedRate, g.cfg.SpindleSpeed))
	if err != nil {
		return nil, err
	}

	for i, s := range src.ordered() {
		pass := Pass(i)
		if g.PassToolChanges {
			switch pass {
			case NearTracePass:
				err = emit(g.tr.ToolChange(RoutingTool, "routing"))
			case MillPass:
				err = emit(g.tr.ToolChange(MillingTool, "milling"))
			}
			if err != nil {
				return nil, err
			}
		}

		err = g.pass(pass, s, emit)
		if err != nil {
			return nil, err
		}
	}

	err = emit(hpgl.Trailer())
	if err != nil {
		return nil, err
	}
	err = enc.Close()
	if err != nil {
		return nil, errors.Wrap(err, "write output")
	}

	return stream, nil
}

func (g *Generator) pass(p Pass, src Source, emit func([]hpgl.Command) error) error {
	bar := strings.Repeat("=", 30)
	g.logf("%s %s (%s) %s", bar, p, src.Name, bar)

	s := gcode.NewScanner(src)
	for s.Scan() {
		cmds, err := g.tr.Line(s.Text(), p == DrillPass)
		if err != nil {
			return &LineError{File: src.Name, Line: s.Line(), Text: s.Text(), Err: err}
		}
		g.n++
		g.logf("%d\t%s\t%s", g.n, s.Text(), render(cmds))

		err = emit(cmds)
		if err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return errors.Wrapf(err, "read %s", src.Name)
	}

	g.logf("%s End %s %s", bar, p, bar)
	return nil
}

func (g *Generator) logf(format string, args ...interface{}) {
	if g.Log == nil {
		return
	}
	g.Log.Printf(format, args...)
}

func render(cmds []hpgl.Command) string {
	var b strings.Builder
	for _, c := range cmds {
		b.WriteString(c.String())
	}
	return b.String()
}
