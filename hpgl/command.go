package hpgl

import (
	"strconv"
	"strings"
)

// Terminator ends every command sent to the machine.
const Terminator = ";"

// Kind separates machine commands from directives meant for the replayer.
type Kind byte

const (
	// KindPlain is sent to the machine and acknowledged.
	KindPlain Kind = iota

	// KindPrompt pauses replay until the operator acknowledges Text.
	KindPrompt

	// KindRaw is sent to the machine without waiting for a response.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindPrompt:
		return "prompt"
	case KindRaw:
		return "raw"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Command is a single token of the target language, or a directive.
//
// Text never includes the terminator.
type Command struct {
	Kind Kind
	Text string
}

// Cmd returns a plain command.
func Cmd(text string) Command { return Command{Kind: KindPlain, Text: text} }

// Prompt returns a directive that blocks replay until the operator
// acknowledges message.
func Prompt(message string) Command { return Command{Kind: KindPrompt, Text: message} }

// Raw returns a directive that passes text to the machine without
// waiting for an acknowledgement.
func Raw(text string) Command { return Command{Kind: KindRaw, Text: text} }

// unanswered are the commands the machine does not acknowledge.
var unanswered = map[string]bool{
	"!OC":      true,
	"!WR0,8,8": true,
}

// Token returns the command for a bare token of the target language. A
// token the machine does not acknowledge becomes a raw directive.
func Token(text string) Command {
	if unanswered[text] {
		return Raw(text)
	}
	return Cmd(text)
}

// IsDirective reports whether c needs special handling during replay.
func (c Command) IsDirective() bool { return c.Kind != KindPlain }

// IsSpindleRamp reports whether c changes the spindle speed.
func (c Command) IsSpindleRamp() bool {
	return c.Kind == KindPlain && strings.HasPrefix(c.Text, "!RM")
}

// Bytes returns what goes over the wire for c.
func (c Command) Bytes() []byte { return []byte(c.Text + Terminator) }

// String renders c in the persisted stream format.
func (c Command) String() string {
	switch c.Kind {
	case KindPrompt:
		return "CO PROMPT " + strconv.Quote(c.Text)
	case KindRaw:
		return "CO RAW " + strconv.Quote(c.Text)
	}
	return c.Text + Terminator
}
