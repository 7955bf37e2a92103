package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/pkg/errors"

	"github.com/mastercactapus/pcbmill/coord"
	"github.com/mastercactapus/pcbmill/gcode"
	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine"
	"github.com/mastercactapus/pcbmill/machine/lpkf"
	"github.com/mastercactapus/pcbmill/monitor"
	"github.com/mastercactapus/pcbmill/spjs"
	"github.com/mastercactapus/pcbmill/translate"
)

// Exit codes.
const (
	exitFailure            = 1
	exitAmbiguousSelection = 10
	exitBedLimit           = 12
	exitMalformed          = 13
	exitTransport          = 14
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, translate.ErrAmbiguousSelection):
		return exitAmbiguousSelection
	case errors.Is(err, coord.ErrBedLimitExceeded):
		return exitBedLimit
	case errors.Is(err, gcode.ErrMalformed):
		return exitMalformed
	case errors.Is(err, lpkf.ErrTransport):
		return exitTransport
	}
	return exitFailure
}

func summary(w io.Writer, opts *options) {
	cfg := opts.Machine
	bedX, bedY := cfg.BedSize()
	if opts.SPJS != "" {
		fmt.Fprintf(w, "Machine is on %s via %s at %dbaud\n", opts.Serial.Name, opts.SPJS, opts.Serial.Baud)
	} else {
		fmt.Fprintf(w, "Machine is on %s at %dbaud\n", opts.Serial.Name, opts.Serial.Baud)
	}
	fmt.Fprintf(w, "Machine will mill at %dum/s and spin up to %drpm.\n", cfg.MillFeedRate, cfg.SpindleSpeed*1000)
	fmt.Fprintf(w, "Board offset is X=%.6f%s, Y=%.6f%s, max bed is X=%.2f%s, Y=%.2f%s\n",
		cfg.OriginOffsetX, cfg.Unit, cfg.OriginOffsetY, cfg.Unit,
		bedX, cfg.Unit, bedY, cfg.Unit,
	)
	fmt.Fprintf(w, "Board will be milled in %s mode and use %s as units\n", cfg.Mode, cfg.Unit)
}

// createOutput opens the file generated HPGL is saved to.
func createOutput(name string) (*os.File, error) {
	if name == "" {
		fd, err := ioutil.TempFile("", "pcbmill-*.hpgl")
		if err != nil {
			return nil, errors.Wrap(err, "create temp file")
		}
		fmt.Println("Producing HPGL output in tempfile", fd.Name())
		return fd, nil
	}

	fd, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrap(err, "create output")
	}
	fmt.Println("Producing HPGL output in", name)
	return fd, nil
}

func generate(opts *options) (*hpgl.Stream, error) {
	bar := strings.Repeat("-", 28)
	fmt.Println(bar, "Start GCODE Processing", bar)

	sel, err := translate.Discover(opts.Dir, opts.Prefix)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Using layer %s as first layer based on drill file.\n", sel.Layer)
	summary(os.Stdout, opts)

	src, closeAll, err := sel.Open()
	if err != nil {
		return nil, err
	}
	defer closeAll()

	out, err := createOutput(opts.Output)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	g := translate.NewGenerator(opts.Machine)
	g.PassToolChanges = opts.PassToolChanges
	if !opts.Quiet {
		g.Log = log.New(os.Stdout, "", 0)
	}

	stream, err := g.Generate(src, out)
	if err != nil {
		return nil, err
	}

	return stream, errors.Wrap(out.Close(), "close output")
}

func load(name string) (*hpgl.Stream, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open replay")
	}
	defer fd.Close()

	s, err := hpgl.Decode(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	fmt.Printf("Loaded %d commands from %s\n", s.Len(), name)
	return s, nil
}

func openTransport(opts *options) (machine.Transport, func() error, error) {
	if opts.SPJS != "" {
		sp := spjs.NewSPJS(opts.SPJS)
		return lpkf.NewSPJSAdapter(sp, opts.Serial.Name, opts.Serial.Baud), sp.Close, nil
	}

	adapter, err := lpkf.OpenSerial(opts.Serial)
	if err != nil {
		return nil, nil, &lpkf.TransportError{Op: "open", Err: err}
	}
	return adapter, adapter.Close, nil
}

func serveMonitor(addr string, stream *hpgl.Stream) *monitor.Monitor {
	mon := monitor.New()
	mon.SetStream(stream)
	go func() {
		log.Println("Monitor listening on", addr)
		err := http.ListenAndServe(addr, mon)
		if err != nil {
			log.Println("ERROR: monitor:", err)
		}
	}()
	return mon
}

func run(opts *options) error {
	var stream *hpgl.Stream
	var err error
	if opts.Replay != "" {
		stream, err = load(opts.Replay)
	} else {
		stream, err = generate(opts)
	}
	if err != nil {
		return err
	}

	op := machine.NewTerminalOperator(os.Stdin, os.Stdout)

	if opts.DryRun {
		color.Cyan.Printf("Dry run: %d commands generated, machine not contacted.\n", stream.Len())
		return lpkf.NewSession(nil, op).Run(stream)
	}

	t, closeTransport, err := openTransport(opts)
	if err != nil {
		return err
	}
	defer closeTransport()

	s := lpkf.NewSession(t, op)
	s.SpindlePolls = opts.SpindlePolls
	s.Conn().PollInterval = opts.PollInterval
	s.Conn().AckTimeout = opts.AckTimeout
	if !opts.Quiet {
		s.Log = log.New(os.Stdout, "", 0)
	}
	if opts.Monitor != "" {
		mon := serveMonitor(opts.Monitor, stream)
		defer mon.Close()
		s.Observer = mon
	}

	color.Bold.Println("Starting machine.")
	return s.Run(stream)
}
