// Package report prints a preview of every table to a terminal.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joacominatel/dbview/internal/config"
	"github.com/joacominatel/dbview/internal/database"
)

// NoRecords is printed for a table without rows.
const NoRecords = "No records found."

const fetchTimeout = 30 * time.Second

// Source provides the tables and rows to print.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	FetchRows(ctx context.Context, table string, limit int) ([]database.Record, error)
}

// Options controls what a Printer writes.
type Options struct {
	Limit  int
	Format string
	Logger *slog.Logger
}

// Printer writes one section per table.
type Printer struct {
	src    Source
	w      io.Writer
	limit  int
	format string
	logger *slog.Logger
}

// New creates a Printer writing to w.
func New(src Source, w io.Writer, opts Options) *Printer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	format := opts.Format
	if format == "" {
		format = config.FormatTable
	}
	return &Printer{src: src, w: w, limit: opts.Limit, format: format, logger: logger}
}

// PrintAll prints every table in listing order. A table that fails to load
// is reported inline and does not stop the others; only a failed listing
// is returned.
func (p *Printer) PrintAll(ctx context.Context) error {
	tables, err := p.src.ListTables(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, name := range tables {
		if err := p.PrintTable(ctx, name); err != nil {
			failed++
		}
	}
	p.logger.Info("printed tables", "tables", len(tables), "failed", failed)
	return nil
}

// PrintTable prints the preview section for one table. A fetch error is
// printed and also returned.
func (p *Printer) PrintTable(ctx context.Context, name string) error {
	if p.limit > 0 {
		_, _ = fmt.Fprintf(p.w, "--- Top %d records from '%s' ---\n", p.limit, name)
	} else {
		_, _ = fmt.Fprintf(p.w, "--- All records from '%s' ---\n", name)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	records, err := p.src.FetchRows(ctx, name, p.limit)
	if err != nil {
		_, _ = fmt.Fprintf(p.w, "Error querying table '%s': %v\n\n\n", name, err)
		return err
	}

	if err := Render(p.w, records, p.format); err != nil {
		return err
	}
	_, _ = fmt.Fprint(p.w, "\n\n")
	return nil
}

// Render writes records as a grid, markdown or CSV table. Headers come from
// the first record.
func Render(w io.Writer, records []database.Record, format string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, NoRecords)
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.Style().Options.SeparateRows = true
	t.Style().Format.Header = text.FormatDefault

	columns := database.Columns(records)
	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, rec := range records {
		cells := rec.Strings()
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	var out string
	switch format {
	case config.FormatMarkdown:
		out = t.RenderMarkdown()
	case config.FormatCSV:
		out = t.RenderCSV()
	case config.FormatTable, "":
		out = t.Render()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	_, err := fmt.Fprintln(w, out)
	return err
}
