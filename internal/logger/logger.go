// Package logger provides the colored console output used by the CLI.
// Inner packages return errors; only the command layer logs.
package logger

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora/v3"
)

// Logger is the output surface the CLI writes through.
type Logger interface {
	Successf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// Colored writes colored lines to a writer.
type Colored struct {
	out io.Writer
}

var _ Logger = (*Colored)(nil)

// New creates a Colored logger writing to out.
func New(out io.Writer) *Colored {
	return &Colored{out: out}
}

func (c *Colored) Successf(format string, args ...any) {
	fmt.Fprintln(c.out, aurora.Green(fmt.Sprintf(format, args...)).String())
}

func (c *Colored) Infof(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Colored) Errorf(format string, args ...any) {
	fmt.Fprintln(c.out, aurora.Red(fmt.Sprintf(format, args...)).String())
}
