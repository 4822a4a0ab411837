package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	dto "github.com/prometheus/client_model/go"

	"github.com/kittclouds/rolodex/internal/metrics"
	"github.com/kittclouds/rolodex/internal/store"
	"github.com/kittclouds/rolodex/pkg/mentions"
	"github.com/kittclouds/rolodex/pkg/response"
)

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

// tableRow is one line of "table list".
type tableRow struct {
	meta    *store.TableMetadata
	records int
}

func renderTableList(out io.Writer, rows []tableRow, now time.Time) {
	table := newTable(out, []string{"Name", "Created", "Records"})
	for _, r := range rows {
		records := "?"
		if r.records >= 0 {
			records = humanize.Comma(int64(r.records))
		}
		table.Append([]string{
			r.meta.Name,
			humanize.RelTime(r.meta.CreatedAt, now, "ago", "from now"),
			records,
		})
	}
	table.SetCaption(true, fmt.Sprintf("%d tables", len(rows)))
	table.Render()
}

func renderRecords(out io.Writer, records []*store.ContactRecord) {
	table := newTable(out, append([]string{"ID"}, response.Header(false)...))
	for i, row := range response.FromRecords(records) {
		table.Append(append([]string{strconv.FormatInt(records[i].ID, 10)}, row.Cells(false)...))
	}
	table.SetCaption(true, fmt.Sprintf("%d entries", len(records)))
	table.Render()
}

func renderTagged(out io.Writer, rows []*store.TaggedRecord) {
	table := newTable(out, response.Header(true))
	for _, row := range response.FromTagged(rows) {
		table.Append(row.Cells(true))
	}
	table.SetCaption(true, fmt.Sprintf("%d results", len(rows)))
	table.Render()
}

func renderLinks(out io.Writer, links []mentions.Link) {
	table := newTable(out, []string{"Contact", "Mentions", "In Table", "Matched"})
	for _, l := range links {
		table.Append([]string{
			l.From.Name + " (" + l.From.Table + ")",
			l.To.Name,
			l.To.Table,
			l.Matched,
		})
	}
	table.Render()
}

func labelString(m *dto.Metric) string {
	parts := []string{}
	for _, lp := range m.GetLabel() {
		parts = append(parts, lp.GetName()+"="+lp.GetValue())
	}
	return strings.Join(parts, ",")
}

func renderMetricFamilies(out io.Writer, families []*dto.MetricFamily) {
	table := newTable(out, []string{"Metric", "Labels", "Value"})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value string
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64)
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%s", h.GetSampleCount(),
					strconv.FormatFloat(h.GetSampleSum(), 'f', -1, 64))
			default:
				continue
			}
			table.Append([]string{mf.GetName(), labelString(m), value})
		}
	}
	table.Render()
}

func renderMetrics(out io.Writer) error {
	families, err := metrics.Snapshot()
	if err != nil {
		return err
	}
	renderMetricFamilies(out, families)
	return nil
}
