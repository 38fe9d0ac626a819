// Package ux renders command results and the error banner for the terminal.
package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Formatter writes a command result to its output.
type Formatter interface {
	Format(data any) error
}

// Tabular is implemented by results that can render as a table.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// FormatterOptions configures formatters.
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout).
	Writer io.Writer
	// NoColor disables table styling.
	NoColor bool
}

// NewFormatter creates a formatter for format: table, json or yaml.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "yaml":
		return &YAMLFormatter{opts: opts}, nil
	case "table", "":
		return &TableFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: table, json, yaml)", format)
	}
}

// JSONFormatter formats output as indented JSON.
type JSONFormatter struct {
	opts *FormatterOptions
}

func (f *JSONFormatter) Format(data any) error {
	enc := json.NewEncoder(f.opts.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(unwrapView(data))
}

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct {
	opts *FormatterOptions
}

func (f *YAMLFormatter) Format(data any) error {
	enc := yaml.NewEncoder(f.opts.Writer)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(unwrapView(data))
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// TableFormatter renders Tabular results with lipgloss. Plain strings are
// printed as a line.
type TableFormatter struct {
	opts *FormatterOptions
}

func (f *TableFormatter) Format(data any) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case Tabular:
		t := table.New().Headers(v.Header()...).Rows(v.Rows()...)
		if f.opts.NoColor {
			t = t.Border(lipgloss.ASCIIBorder())
		} else {
			t = t.Border(lipgloss.RoundedBorder()).StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		}
		_, err := fmt.Fprintln(f.opts.Writer, t.Render())
		return err
	default:
		return fmt.Errorf("table output needs a tabular result, got %T; use --output json", data)
	}
}

// View pairs a structured value with its table rendering. JSON and YAML
// encode Data; the table formatter uses the rows.
type View struct {
	Data    any
	Columns []string
	Cells   [][]string
}

func (v View) Header() []string { return v.Columns }
func (v View) Rows() [][]string { return v.Cells }

// Record builds a two-column key/value View for a single item.
func Record(data any, pairs ...[2]string) View {
	cells := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		cells = append(cells, []string{p[0], p[1]})
	}
	return View{Data: data, Columns: []string{"FIELD", "VALUE"}, Cells: cells}
}

func unwrapView(data any) any {
	if v, ok := data.(View); ok {
		return v.Data
	}
	return data
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
	_ Formatter = (*TableFormatter)(nil)
	_ Tabular   = View{}
)
