package console

import (
	"fmt"
	"io"
	"os"

	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/fatih/color"
)

// Printer writes deployment progress to out and failures to errOut.
type Printer struct {
	out     io.Writer
	errOut  io.Writer
	success func(format string, a ...any) string
	failure func(format string, a ...any) string
	warning func(format string, a ...any) string
	faint   func(format string, a ...any) string
}

// NewPrinter returns a printer for stdout and stderr. Colors are disabled when
// stdout is not a terminal or NO_COLOR is set.
func NewPrinter() *Printer {
	return NewPrinterFor(os.Stdout, os.Stderr)
}

// NewPrinterFor colors output only when out is a terminal and NO_COLOR is unset.
func NewPrinterFor(out, errOut io.Writer) *Printer {
	file, ok := out.(*os.File)
	noColor := !ok || !isTerminal(file) || hasNoColorEnv()
	return NewPrinterWithWriters(out, errOut, noColor)
}

func NewPrinterWithWriters(out, errOut io.Writer, noColor bool) *Printer {
	p := &Printer{out: out, errOut: errOut}

	if noColor {
		plain := func(format string, a ...any) string {
			return fmt.Sprintf(format, a...)
		}
		p.success, p.failure, p.warning, p.faint = plain, plain, plain, plain
		return p
	}

	success := color.New(color.FgGreen)
	failure := color.New(color.FgRed)
	warning := color.New(color.FgYellow)
	faint := color.New(color.Faint)
	for _, c := range []*color.Color{success, failure, warning, faint} {
		c.EnableColor()
	}
	p.success = success.SprintfFunc()
	p.failure = failure.SprintfFunc()
	p.warning = warning.SprintfFunc()
	p.faint = faint.SprintfFunc()

	return p
}

func (p *Printer) Deploying(descriptor artifacts.Descriptor, network string) {
	p.println(p.out, fmt.Sprintf("Deploying %s contract to %s...", descriptor.ContractName, network))
}

func (p *Printer) Submitted(pending deployer.PendingDeployment) {
	p.println(p.out, p.faint("Transaction %s sent, waiting for confirmation", pending.TxHash.Hex()))
}

func (p *Printer) Deployed(result deployer.Result) {
	p.println(p.out, p.success("%s contract deployed to: %s", result.Descriptor.ContractName, result.Address.Hex()))
}

// Note prints a secondary line to the progress stream.
func (p *Printer) Note(format string, a ...any) {
	p.println(p.out, p.faint(format, a...))
}

// Warning reports a problem that did not fail the command.
func (p *Printer) Warning(format string, a ...any) {
	p.println(p.errOut, p.warning("Warning: "+format, a...))
}

// Error prints err to the error stream.
func (p *Printer) Error(err error) {
	p.println(p.errOut, p.failure("Error: %v", err))
}

func (p *Printer) println(w io.Writer, line string) {
	fmt.Fprintln(w, line) // nolint:errcheck
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// See https://no-color.org/
func hasNoColorEnv() bool {
	return os.Getenv("NO_COLOR") != ""
}
