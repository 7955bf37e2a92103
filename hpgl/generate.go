package hpgl

import (
	"fmt"
	"strconv"
)

func PenUp() Command   { return Cmd("PU") }
func PenDown() Command { return Cmd("PD") }

// OutputStatus asks the machine to report its state.
func OutputStatus() Command { return Cmd("OS") }

// PlotAbsolute moves to x,y (in steps).
func PlotAbsolute(x, y int) Command { return Cmd(fmt.Sprintf("PA%d,%d", x, y)) }

// PlotRelative moves to the running total x,y (in steps).
func PlotRelative(x, y int) Command { return Cmd(fmt.Sprintf("PR%d,%d", x, y)) }

// Home moves to the machine origin.
func Home() Command { return PlotAbsolute(0, 0) }

// Dwell pauses motion for ms milliseconds.
func Dwell(ms float64) Command {
	return Cmd("!TW" + strconv.FormatFloat(ms, 'f', 0, 64))
}

// SpindleRamp sets the spindle speed in krpm.
func SpindleRamp(krpm int) Command { return Cmd("!RM" + strconv.Itoa(krpm)) }

// SpindleStart ramps the spindle up to krpm and enables the motor.
func SpindleStart(krpm int) []Command {
	return []Command{
		Raw("!OC"),
		SpindleRamp(krpm),
		Cmd("!CC"),
		Cmd("!EM1"),
	}
}

// SpindleStop ramps the spindle down and returns home.
func SpindleStop() []Command {
	return []Command{
		Raw("!OC"),
		SpindleRamp(0),
		Cmd("!CC"),
		Cmd("!EM0"),
		Home(),
	}
}

// ToolChange stops the spindle, asks the operator to insert the tool
// and brings the spindle back to krpm.
func ToolChange(tool, description string, krpm int) []Command {
	cmds := SpindleStop()
	cmds = append(cmds, Prompt(fmt.Sprintf("Insert tool #%s: size %s", tool, description)))
	return append(cmds, SpindleStart(krpm)...)
}

// Header initializes the machine, sets the feed rate (um/s) and starts
// the spindle at krpm.
func Header(feed, krpm int) []Command {
	return []Command{
		Cmd("IN"),
		Cmd("!CT1"),
		Cmd("VS" + strconv.Itoa(feed)),
		Raw("!OC"),
		Cmd("!SV140"),
		Cmd("!SM32"),
		Raw("!WR0,8,8"),
		Cmd("!CC"),
		Cmd("!CM1"),
		Cmd("!EM1"),
		Raw("!OC"),
		SpindleRamp(krpm),
		Cmd("!CC"),
	}
}

// Trailer stops the spindle, lifts the pen and returns home.
func Trailer() []Command {
	return []Command{
		Raw("!OC"),
		SpindleRamp(0),
		Cmd("!CC"),
		PenUp(),
		Cmd("!EM0"),
		Home(),
	}
}
