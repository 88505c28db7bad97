package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// Output formats accepted by Renderer.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var (
	colorHeader = lipgloss.Color("#7C3AED")
	colorMuted  = lipgloss.Color("#6B7280")
	colorBorder = lipgloss.Color("#4B5563")

	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTotal  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
)

// Renderer writes reports and breakdowns in one format. Styled only affects
// tables.
type Renderer struct {
	Format string
	Styled bool
}

// NewRenderer returns a renderer for format, checking it is supported.
func NewRenderer(format string, styled bool) (*Renderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatTable
	}
	switch format {
	case FormatTable, FormatCSV, FormatJSON:
		return &Renderer{Format: format, Styled: styled}, nil
	default:
		return nil, errors.NewInvalidInputError("format", format, "must be one of table, csv, json")
	}
}

// FormatHours renders hours with two decimals.
func FormatHours(h decimal.Decimal) string {
	return h.StringFixed(2)
}

// ReportTable lays a report out as a header and rows following its shape.
func ReportTable(report *domain.Report) ([]string, [][]string) {
	shape := report.Shape

	header := []string{"Project"}
	switch {
	case shape.PerUserColumns:
		header = append(header, report.Columns...)
	case len(report.Columns) == 1:
		// the selected user
		header = append(header, report.Columns[0])
	default:
		header = append(header, "Hours")
	}
	if shape.ProjectTotalColumn {
		header = append(header, "Total")
	}

	rows := make([][]string, 0, len(report.Rows)+1)
	for _, r := range report.Rows {
		row := []string{r.Project}
		if shape.PerUserColumns {
			for _, name := range report.Columns {
				row = append(row, FormatHours(r.UsersHours[name]))
			}
		} else {
			row = append(row, FormatHours(r.ProjectTotal))
		}
		if shape.ProjectTotalColumn {
			row = append(row, FormatHours(r.ProjectTotal))
		}
		rows = append(rows, row)
	}

	if shape.UserTotalRow {
		row := []string{"Total"}
		if shape.PerUserColumns {
			for _, name := range report.Columns {
				row = append(row, FormatHours(report.UserTotals[name]))
			}
		} else {
			row = append(row, FormatHours(report.GrandTotal))
		}
		if shape.ProjectTotalColumn {
			if shape.GrandTotal {
				row = append(row, FormatHours(report.GrandTotal))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

// BreakdownTable lays a breakdown out one entry per row with a subtotal row
// per employee and a final total.
func BreakdownTable(b *domain.ProjectBreakdown) ([]string, [][]string) {
	header := []string{"Employee", "Date", "Hours", "Note"}
	var rows [][]string
	for _, emp := range b.Employees {
		for _, e := range emp.Entries {
			rows = append(rows, []string{emp.Name, e.Date.String(), FormatHours(e.Hours), e.Note})
		}
		rows = append(rows, []string{emp.Name + " subtotal", "", FormatHours(emp.Subtotal), ""})
	}
	rows = append(rows, []string{"Total", "", FormatHours(b.Total), ""})
	return header, rows
}

// RenderReport writes report to w.
func (r *Renderer) RenderReport(w io.Writer, report *domain.Report) error {
	header, rows := ReportTable(report)
	switch r.Format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeCSV(w, header, rows)
	default:
		title := "Report for " + report.Month.Label()
		hasTotalRow := report.Shape.UserTotalRow
		return r.writeTable(w, title, header, rows, hasTotalRow)
	}
}

// RenderBreakdown writes a project breakdown to w.
func (r *Renderer) RenderBreakdown(w io.Writer, b *domain.ProjectBreakdown) error {
	header, rows := BreakdownTable(b)
	switch r.Format {
	case FormatJSON:
		return writeJSON(w, b)
	case FormatCSV:
		return writeCSV(w, header, rows)
	default:
		title := fmt.Sprintf("%s, %s", b.Project.Name, b.Month.Label())
		return r.writeTable(w, title, header, rows, true)
	}
}

// RenderTable writes any header and rows as a table in r's style. Formats
// other than table fall back to CSV.
func (r *Renderer) RenderTable(w io.Writer, title string, header []string, rows [][]string, totalRow bool) error {
	if r.Format == FormatCSV || r.Format == FormatJSON {
		return writeCSV(w, header, rows)
	}
	return r.writeTable(w, title, header, rows, totalRow)
}

func (r *Renderer) writeTable(w io.Writer, title string, header []string, rows [][]string, totalRow bool) error {
	last := len(rows) - 1
	t := table.New().
		Headers(header...).
		Rows(rows...)

	if r.Styled {
		t = t.Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return styleHeader
				case totalRow && row == last:
					return styleTotal
				case col > 0:
					return styleCell.Align(lipgloss.Right)
				default:
					return styleCell
				}
			})
		title = styleTitle.Render(title)
	} else {
		t = t.Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style { return styleCell })
	}

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		msg := "No data."
		if r.Styled {
			msg = styleMuted.Render(msg)
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderJSON writes any value as indented JSON.
func (r *Renderer) RenderJSON(w io.Writer, v interface{}) error {
	return writeJSON(w, v)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
