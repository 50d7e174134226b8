// package formatter renders sync reports to various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat validates a user-supplied format name. "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: format '%s' (must be text, json, csv or markdown)", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// Render converts report to the given format.
func Render(report *models.SyncReport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ReportToJSON(report)
	case FormatCSV:
		return ReportToCSV(report)
	case FormatMarkdown:
		return ReportToMarkdown(report)
	case FormatText, "":
		return ReportToText(report)
	default:
		return nil, fmt.Errorf("%w: format '%s'", shared.ErrInvalidArgument, format)
	}
}

// Outcome summarises what the run did in a few words.
func Outcome(report *models.SyncReport) string {
	switch {
	case report.NothingToDo:
		return "already up to date"
	case report.DryRun:
		return "dry run, no changes sent"
	case report.Applied:
		return "list updated"
	default:
		return "not applied"
	}
}

// ReportToText converts a SyncReport to plain text format
func ReportToText(report *models.SyncReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", report.ListID)
	if report.Folder != "" {
		fmt.Fprintf(&buf, "Folder: %s\n", report.Folder)
	}
	fmt.Fprintf(&buf, "Outcome: %s\n", Outcome(report))
	fmt.Fprintf(&buf, "Candidates: %d (resolved %d, cached %d, looked up %d, dropped %d)\n",
		report.Candidates, report.Resolved, report.CacheHits, report.Lookups, len(report.Dropped))
	fmt.Fprintf(&buf, "Remote films: %d\n", report.RemoteCount)
	if !report.DryRun && !report.CacheSaved {
		buf.WriteString("Cache: not saved\n")
	}

	writeFilms := func(title string, films []models.Film) {
		if len(films) == 0 {
			return
		}
		fmt.Fprintf(&buf, "\n%s (%d):\n", title, len(films))
		for i, film := range films {
			fmt.Fprintf(&buf, "  %d. %s [%s]\n", i+1, film.Label(), film.ID)
		}
	}
	writeFilms("To add", report.ToAdd)
	writeFilms("To remove", report.ToRemove)

	if len(report.Dropped) > 0 {
		fmt.Fprintf(&buf, "\nDropped (%d):\n", len(report.Dropped))
		for i, d := range report.Dropped {
			fmt.Fprintf(&buf, "  %d. %s (%s)\n", i+1, d.Name, d.Reason)
		}
	}

	return buf.Bytes(), nil
}

// ReportToJSON converts a SyncReport to indented JSON
func ReportToJSON(report *models.SyncReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// ReportToCSV converts a SyncReport to CSV format with columns: Action, FilmID, Label, Reason
func ReportToCSV(report *models.SyncReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Action", "FilmID", "Label", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	var records [][]string
	for _, film := range report.ToAdd {
		records = append(records, []string{"add", film.ID, film.Label(), ""})
	}
	for _, film := range report.ToRemove {
		records = append(records, []string{"remove", film.ID, film.Label(), ""})
	}
	for _, d := range report.Dropped {
		records = append(records, []string{"dropped", "", d.Name, d.Reason})
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a SyncReport to Markdown format
func ReportToMarkdown(report *models.SyncReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Sync report: %s\n\n", report.ListID)
	if report.Folder != "" {
		fmt.Fprintf(&buf, "**Folder**: `%s`\n\n", report.Folder)
	}
	fmt.Fprintf(&buf, "**Outcome**: %s\n\n", Outcome(report))

	buf.WriteString("| Candidates | Resolved | Cached | Looked up | Dropped | Remote |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&buf, "| %d | %d | %d | %d | %d | %d |\n",
		report.Candidates, report.Resolved, report.CacheHits, report.Lookups, len(report.Dropped), report.RemoteCount)

	writeFilms := func(title string, films []models.Film) {
		if len(films) == 0 {
			return
		}
		fmt.Fprintf(&buf, "\n## %s\n\n", title)
		for _, film := range films {
			fmt.Fprintf(&buf, "- %s (`%s`)\n", film.Label(), film.ID)
		}
	}
	writeFilms("To add", report.ToAdd)
	writeFilms("To remove", report.ToRemove)

	if len(report.Dropped) > 0 {
		buf.WriteString("\n## Dropped\n\n")
		for _, d := range report.Dropped {
			fmt.Fprintf(&buf, "- %s: %s\n", d.Name, d.Reason)
		}
	}

	return buf.Bytes(), nil
}

// WriteReport renders report and writes it to path.
//
// Defaults to {list ID}_report.{ext} as the filename.
func WriteReport(report *models.SyncReport, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_report.%s", report.ListID, format.Ext())
	}

	data, err := Render(report, format)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
