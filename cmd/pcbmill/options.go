package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mastercactapus/pcbmill/machine"
	"github.com/mastercactapus/pcbmill/machine/lpkf"
)

type options struct {
	Dir    string
	Prefix string

	DryRun bool
	Output string
	Replay string
	Quiet  bool

	PassToolChanges bool

	Serial lpkf.SerialConfig
	SPJS   string

	Monitor string

	PollInterval time.Duration
	AckTimeout   time.Duration
	SpindlePolls int

	Machine machine.Config
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pcbmill", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Converts pcb-gcode GCODE into LPKF HPGL, and runs the machine.")
		fmt.Fprintln(os.Stderr, "\nUsage: pcbmill [options] DIR")
		fs.PrintDefaults()
	}

	fs.StringP("file", "f", "", "Which file prefix to use out of the gcode files in DIR.")
	fs.BoolP("dry-run", "d", false, "Only generate HPGL, no machine control.")
	fs.StringP("output", "o", "", "Save the HPGL output in the given location (defaults to a temp file).")
	fs.String("replay", "", "Send a previously saved HPGL file instead of reading DIR.")
	fs.BoolP("quiet", "q", false, "Do not log every line and response.")
	fs.Bool("pass-tool-changes", true, "Change tools before the trace and mill passes.")
	fs.String("config", "", "Config file with machine calibration (yaml, toml or json).")

	fs.StringP("port", "p", "/dev/ttyUSB0", "Serial port (or name if using SPJS).")
	fs.IntP("baud", "b", 9600, "Baudrate.")
	fs.Bool("rtscts", true, "Use hardware flow control.")
	fs.String("spjs", "", "Websocket URL of an SPJS server to reach the port through.")
	fs.String("monitor", "", "Address to serve replay progress and metrics on.")

	fs.Duration("poll-interval", lpkf.DefaultPollInterval, "Wait between checks for a response.")
	fs.Duration("ack-timeout", 0, "Give up waiting for a response after this long (0 waits forever).")
	fs.Int("spindle-polls", lpkf.DefaultSpindlePolls, "Repeats of a spindle ramp before giving up (0 disables confirmation).")

	return fs
}

func setMachineDefaults(v *viper.Viper) {
	cfg := machine.DefaultConfig()
	v.SetDefault("unit", string(cfg.Unit))
	v.SetDefault("mode", string(cfg.Mode))
	v.SetDefault("steps_per_unit", cfg.StepsPerUnit)
	v.SetDefault("origin_offset_x", cfg.OriginOffsetX)
	v.SetDefault("origin_offset_y", cfg.OriginOffsetY)
	v.SetDefault("bed_max_x", cfg.BedMaxX)
	v.SetDefault("bed_max_y", cfg.BedMaxY)
	v.SetDefault("mill_feed_rate", cfg.MillFeedRate)
	v.SetDefault("spindle_speed", cfg.SpindleSpeed)
	v.SetDefault("drill_dwell_ms", cfg.DrillDwellMS)
}

// loadOptions layers the config file, PCBMILL_* environment and flags over
// the defaults.
func loadOptions(fs *pflag.FlagSet, args []string) (*options, error) {
	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setMachineDefaults(v)
	err = v.BindPFlags(fs)
	if err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	v.SetEnvPrefix("pcbmill")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		err = v.ReadInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}

	opts := &options{
		Dir:             ".",
		Prefix:          v.GetString("file"),
		DryRun:          v.GetBool("dry-run"),
		Output:          v.GetString("output"),
		Replay:          v.GetString("replay"),
		Quiet:           v.GetBool("quiet"),
		PassToolChanges: v.GetBool("pass-tool-changes"),
		Serial: lpkf.SerialConfig{
			Name:   v.GetString("port"),
			Baud:   v.GetInt("baud"),
			RTSCTS: v.GetBool("rtscts"),
		},
		SPJS:         v.GetString("spjs"),
		Monitor:      v.GetString("monitor"),
		PollInterval: v.GetDuration("poll-interval"),
		AckTimeout:   v.GetDuration("ack-timeout"),
		SpindlePolls: v.GetInt("spindle-polls"),
		Machine:      machine.DefaultConfig(),
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.Dir = fs.Arg(0)
	default:
		return nil, errors.Errorf("expected a single DIR, got %d arguments", fs.NArg())
	}

	err = v.Unmarshal(&opts.Machine)
	if err != nil {
		return nil, errors.Wrap(err, "decode machine config")
	}
	err = opts.Machine.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "machine config")
	}

	return opts, nil
}
