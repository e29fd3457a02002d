// Package styled holds the colors and table styles shared by the sqlitekit
// command line tools.
package styled

import (
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DimmedColor returns a dimmed *color.Color to print secondary information.
func DimmedColor() *color.Color {
	return color.RGB(128, 128, 128)
}

// ErrorColor returns the *color.Color used for error messages.
func ErrorColor() *color.Color {
	return color.New(color.FgRed, color.Bold)
}

// AccentColor returns the *color.Color used for prompts and headings.
func AccentColor() *color.Color {
	return color.New(color.FgCyan, color.Bold)
}

// NewTableWriter returns a new table.Writer with the sqlitekit styles.
func NewTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}
	tw.Style().Color.Footer = text.Colors{text.FgCyan, text.Bold}

	return tw
}

// NewPlainTableWriter returns a table.Writer without colors, for output that
// is not a terminal.
func NewPlainTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	return tw
}
