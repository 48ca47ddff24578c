package console

import (
	"fmt"
	"io"
	"os"
)

// Console is the run-scoped output target. Everything that renders to the
// terminal receives one instead of printing through a package global, so the
// verification core stays decoupled from presentation.
type Console struct {
	Out     io.Writer
	Verbose bool
}

func New(verbose bool) *Console {
	return &Console{Out: os.Stdout, Verbose: verbose}
}

func (c *Console) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Console) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// Detailf prints only in verbose mode.
func (c *Console) Detailf(format string, args ...interface{}) {
	if c.Verbose {
		fmt.Fprintf(c.Out, format, args...)
	}
}

// Warnf marks a non-fatal condition.
func (c *Console) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, "  ⚠ "+format, args...)
}
