package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/songlens/enricher/internal/usecase"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderSummary prints the per-file outcomes followed by the run totals
func renderSummary(report *usecase.RunReport, outputPath string, written bool) string {
	var b strings.Builder

	if len(report.Outcomes) > 0 {
		rows := make([][]string, 0, len(report.Outcomes))
		for _, o := range report.Outcomes {
			rows = append(rows, []string{o.FileName, o.Title, describeOutcome(o), string(o.FeatureOrigin)})
		}
		b.WriteString(renderTable(
			[]string{"File", "Title", "Outcome", "Features"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
		))
		b.WriteString("\n")
	}

	destination := outputPath
	if !written {
		destination = "not written"
	}
	totals := [][]string{
		{"Run", report.RunID},
		{"Files", strconv.Itoa(report.Scanned())},
		{"Records", strconv.Itoa(report.Appended)},
		{"Placeholders", strconv.Itoa(report.Placeholders)},
		{"Duplicates", strconv.Itoa(report.Duplicates)},
		{"Not found", strconv.Itoa(report.NotFound)},
		{"Unresolved", strconv.Itoa(report.Unresolved)},
		{"Elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String()},
		{"Output", destination},
	}
	b.WriteString(renderTable([]string{"Summary", ""}, totals, []columnAlignment{alignLeft, alignRight}))

	return b.String()
}

func describeOutcome(o usecase.FileOutcome) string {
	switch o.State {
	case usecase.StateAppended:
		if o.Placeholder {
			return "placeholder"
		}
		return "added"
	case usecase.StateSkippedDuplicate:
		return fmt.Sprintf("duplicate of %s", o.DuplicateOf)
	case usecase.StateSkippedNotFound:
		if o.Err != nil {
			return "skipped: " + o.Err.Error()
		}
		return "skipped: not found"
	case usecase.StateSkippedUnresolved:
		return "skipped: no title"
	default:
		return string(o.State)
	}
}
