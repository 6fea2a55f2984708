package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, green("✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, red("✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, yellow("⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "  %s %s\n", bold(label+":"), val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, cyan("→ "+msg))
}

func printHeading(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\n%s\n", bold(fmt.Sprintf(format, args...)))
}

// progressBar renders pct (clamped to 0..100 for drawing only) as a bar of width cells.
func progressBar(pct, width int) string {
	filled := pct * width / 100
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return green(strings.Repeat("█", filled)) + faint(strings.Repeat("░", width-filled))
}
