// Package render formats leaderboard rankings for human consumption.
// It is pure presentation: every view is a two-column projection of the
// ranking and its parallel metric values, and nothing here computes or
// reorders anything.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/podium-ml/podium/internal/domain"
)

// metricValueFormat renders metric values with fixed precision so
// columns align across rows.
const metricValueFormat = "%.6f"

// Table writes the ranking as an ASCII table with artifact_id and
// metric columns, best first.
func Table(w io.Writer, metric string, refs []domain.ArtifactRef, scores []float64) error {
	if len(refs) != len(scores) {
		return fmt.Errorf("render table: %d refs but %d scores", len(refs), len(scores))
	}
	if metric == "" {
		metric = "metric"
	}

	table := tablewriter.NewTable(w)
	table.Header("artifact_id", metric)
	for i, ref := range refs {
		if err := table.Append([]string{string(ref), fmt.Sprintf(metricValueFormat, scores[i])}); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// TSV writes the ranking as tab-separated values with a header row,
// best first.
func TSV(w io.Writer, metric string, refs []domain.ArtifactRef, scores []float64) error {
	if len(refs) != len(scores) {
		return fmt.Errorf("render tsv: %d refs but %d scores", len(refs), len(scores))
	}
	if metric == "" {
		metric = "metric"
	}
	if _, err := fmt.Fprintf(w, "artifact_id\t%s\n", metric); err != nil {
		return err
	}
	for i, ref := range refs {
		if _, err := fmt.Fprintf(w, "%s\t"+metricValueFormat+"\n", ref, scores[i]); err != nil {
			return err
		}
	}
	return nil
}

// Text renders the ranking with caller-chosen separators. With the
// title enabled an empty leaderboard renders as `<empty>`.
func Text(project, metric string, refs []domain.ArtifactRef, scores []float64, fieldSep, lineSep string, includeTitle, includeHeader bool) string {
	var sb strings.Builder
	if includeTitle {
		fmt.Fprintf(&sb, "Leaderboard for project %q: ", project)
		if len(refs) == 0 {
			sb.WriteString("<empty>")
			return sb.String()
		}
		sb.WriteString(lineSep)
	}

	if includeHeader && len(refs) > 0 {
		sb.WriteString("artifact_id")
		sb.WriteString(fieldSep)
		if metric == "" {
			sb.WriteString("metric")
		} else {
			sb.WriteString(metric)
		}
		sb.WriteString(lineSep)
	}

	for i, ref := range refs {
		sb.WriteString(string(ref))
		sb.WriteString(fieldSep)
		value := ""
		if i < len(scores) {
			value = fmt.Sprintf(metricValueFormat, scores[i])
		}
		sb.WriteString(value)
		sb.WriteString(lineSep)
	}
	return sb.String()
}

// Line renders the ranking as a compact single line, the form used in
// log output.
func Line(project, metric string, refs []domain.ArtifactRef, scores []float64) string {
	return Text(project, metric, refs, scores, " ; ", " | ", true, true)
}
