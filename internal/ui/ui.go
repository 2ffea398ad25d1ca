// Package ui provides consistent terminal output formatting.
// Centralizes color usage and message prefixes for uniform UX.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/loosehose/sunvoy/internal/types"
)

// =============================================================================
// Color Definitions (package-level for consistency)
// =============================================================================

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	dim    = color.New(color.FgHiBlack)
)

var out io.Writer = color.Output

// SetOutput redirects everything printed by this package and returns the
// previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// =============================================================================
// Status Messages
// =============================================================================

// Info prints an informational message with [*] prefix.
// Use for status updates and progress indicators.
func Info(format string, a ...interface{}) {
	cyan.Fprintf(out, "[*] "+format+"\n", a...)
}

// Success prints a success message with [+] prefix.
// Use for completed operations and positive results.
func Success(format string, a ...interface{}) {
	green.Fprintf(out, "[+] "+format+"\n", a...)
}

// Warning prints a warning message with [!] prefix.
// Use for non-critical issues such as degraded results.
func Warning(format string, a ...interface{}) {
	yellow.Fprintf(out, "[!] "+format+"\n", a...)
}

// =============================================================================
// Headers and Sections
// =============================================================================

// Header prints a section header.
func Header(format string, a ...interface{}) {
	fmt.Fprintln(out)
	cyan.Fprintf(out, "=== "+format+" ===\n", a...)
	fmt.Fprintln(out)
}

// Phase prints a phase indicator for multi-step operations.
func Phase(num int, format string, a ...interface{}) {
	cyan.Fprintf(out, "[Phase %d] "+format+"\n", append([]interface{}{num}, a...)...)
}

// =============================================================================
// Data Output
// =============================================================================

// Stat prints a statistic line for summaries.
func Stat(label string, value interface{}) {
	fmt.Fprintf(out, "  %-20s %v\n", label+":", value)
}

// Detail prints secondary/dim information.
func Detail(format string, a ...interface{}) {
	dim.Fprintf(out, "    "+format+"\n", a...)
}

// Records renders the merged records as a table, marking the current user.
func Records(records []types.Record) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"", "ID", "Name", "Email"})
	for _, r := range records {
		marker := ""
		if r.IsCurrent {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, r.ID, r.Name, r.Email})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(records)})
	t.Render()
}
