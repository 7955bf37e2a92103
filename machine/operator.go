package machine

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/pkg/errors"
)

// TerminalOperator prompts on w and waits for a line on r.
type TerminalOperator struct {
	r *bufio.Reader
	w io.Writer
}

var _ Operator = &TerminalOperator{}

func NewTerminalOperator(r io.Reader, w io.Writer) *TerminalOperator {
	if br, ok := r.(*bufio.Reader); ok {
		return &TerminalOperator{r: br, w: w}
	}
	return &TerminalOperator{r: bufio.NewReader(r), w: w}
}

func (op *TerminalOperator) Prompt(message string) error {
	_, err := fmt.Fprintf(op.w, "%s\n%s", color.Yellow.Sprint(message), color.Bold.Sprint("Press enter when done."))
	if err != nil {
		return err
	}
	_, err = op.r.ReadString('\n')
	if err == io.EOF {
		return errors.New("operator input closed")
	}
	return err
}
