package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/tstromberg/imgtagman/pkg/imgtag"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// outcomeOrder is the row order of a report.
var outcomeOrder = []imgtag.Outcome{
	imgtag.Tagged, imgtag.Skipped, imgtag.Empty, imgtag.Removed,
	imgtag.Untouched, imgtag.Read, imgtag.Exported, imgtag.Failed,
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, styled bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
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

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSummary shows tag counts with up to five example files each.
func renderSummary(rows []imgtag.TagCount, styled bool) string {
	body := make([][]string, 0, len(rows))
	for _, tc := range rows {
		files := append([]string{}, tc.Files...)
		sort.Strings(files)
		body = append(body, []string{tc.Tag, strconv.Itoa(tc.Count), strings.Join(files, "\n")})
	}
	return renderTable([]string{"Tag", "Files", "Examples"}, body, []columnAlignment{alignLeft, alignRight, alignLeft}, styled)
}

// renderFiles shows one row per file with its tags.
func renderFiles(results []imgtag.Result, styled bool) string {
	body := make([][]string, 0, len(results))
	for _, res := range results {
		tags := strings.Join(res.Tags, ", ")
		if res.Err != nil {
			tags = "error: " + res.Err.Error()
		}
		body = append(body, []string{res.File.RelPath, tags})
	}
	return renderTable([]string{"File", "Tags"}, body, nil, styled)
}

// renderReport shows per-outcome counts followed by any failures.
func renderReport(rep *imgtag.Report, styled bool) string {
	counts := rep.Counts()
	body := [][]string{}
	for _, o := range outcomeOrder {
		if n := counts[o]; n > 0 {
			body = append(body, []string{string(o), strconv.Itoa(n)})
		}
	}
	body = append(body, []string{"total", strconv.Itoa(len(rep.Results))})

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s in %s\n", rep.Operation, rep.ID, rep.Duration.Round(time.Millisecond))
	b.WriteString(renderTable([]string{"Outcome", "Files"}, body, []columnAlignment{alignLeft, alignRight}, styled))

	if fs := rep.Failures(); len(fs) > 0 {
		b.WriteString("\n\nFailures:\n")
		b.WriteString(renderFiles(fs, styled))
	}
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
