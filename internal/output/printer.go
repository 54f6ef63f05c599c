// Package output provides terminal formatting for salesctl
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer handles formatted output to the terminal
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// ResolveColors disables colors for NO_COLOR and dumb terminals
func ResolveColors(configColors bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return configColors
}

// NewPrinter creates a printer on stdout/stderr
func NewPrinter(useColors bool) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, useColors)
}

// NewPrinterWithWriters creates a printer on custom writers
func NewPrinterWithWriters(out, errOut io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, useColors: useColors}
}

// Out returns the standard writer
func (p *Printer) Out() io.Writer {
	return p.out
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...interface{}) {
	p.print(p.out, color.FgCyan, "", format, args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	p.print(p.out, color.FgGreen, "[OK] ", format, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	p.print(p.err, color.FgYellow, "[WARN] ", format, args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	p.print(p.err, color.FgRed, "[ERROR] ", format, args...)
}

// Header prints a bold header line
func (p *Printer) Header(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.Bold).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Bold returns s in bold when colors are on
func (p *Printer) Bold(s string) string {
	if !p.useColors {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}

func (p *Printer) print(w io.Writer, attr color.Attribute, prefix, format string, args ...interface{}) {
	if p.useColors {
		color.New(attr).Fprintf(w, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// Toaster adapts the printer to transient notifications.
type Toaster struct {
	P *Printer
}

func (t Toaster) Success(msg string) { t.P.Success("%s", msg) }

func (t Toaster) Error(msg string) { t.P.Error("%s", msg) }
