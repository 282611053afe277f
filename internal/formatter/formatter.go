// package formatter renders match snapshots to export formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
)

// Format is an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name or a common alias ("markdown", "text").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", errors.Wrapf(shared.ErrInvalidFlag, "unknown format %q", name)
	}
}

// Export renders s in format f.
func Export(s *models.Snapshot, f Format, pretty bool) ([]byte, error) {
	if s == nil {
		return nil, shared.ErrNoSnapshot
	}
	switch f {
	case FormatJSON:
		return ExportJSON(s, pretty)
	case FormatCSV:
		return ExportCSV(s)
	case FormatMarkdown:
		return ExportMarkdown(s)
	case FormatText:
		return ExportText(s)
	default:
		return nil, errors.Wrapf(shared.ErrInvalidFlag, "unknown format %q", f)
	}
}

// ExportJSON serializes the snapshot as-is.
func ExportJSON(s *models.Snapshot, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}
	return data, nil
}

// ParseJSON reads a snapshot written by [ExportJSON].
func ParseJSON(data []byte) (*models.Snapshot, error) {
	var s models.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse snapshot"), shared.ErrInvalidInput)
	}
	return &s, nil
}

// ExportCSV writes one row per batsman and bowler with columns:
// Innings, Team, Role, Name, Runs, Balls, Fours, Sixes, Overs, Maidens, Wickets, Rate
func ExportCSV(s *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Innings", "Team", "Role", "Name", "Runs", "Balls", "Fours", "Sixes", "Overs", "Maidens", "Wickets", "Rate"}
	if err := writer.Write(headers); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV headers")
	}

	for i, in := range s.Innings {
		n := strconv.Itoa(i + 1)
		for _, b := range in.Batsmen {
			record := []string{n, in.Team, "batting", b.Name,
				strconv.Itoa(b.Runs), strconv.Itoa(b.Balls), strconv.Itoa(b.Fours), strconv.Itoa(b.Sixes),
				"", "", "", rate(b.StrikeRate())}
			if err := writer.Write(record); err != nil {
				return nil, errors.Wrap(err, "failed to write CSV record")
			}
		}
		for _, b := range in.Bowlers {
			record := []string{n, in.Team, "bowling", b.Name,
				strconv.Itoa(b.Runs), strconv.Itoa(b.Overs.Balls()), "", "",
				b.Overs.String(), strconv.Itoa(b.Maidens), strconv.Itoa(b.Wickets), rate(b.Economy())}
			if err := writer.Write(record); err != nil {
				return nil, errors.Wrap(err, "failed to write CSV record")
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "CSV writer error")
	}
	return buf.Bytes(), nil
}

// ExportMarkdown renders a scorecard document with one table per innings.
func ExportMarkdown(s *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	h := s.Header

	fmt.Fprintf(&buf, "# %s\n\n", Title(s))
	if h.SeriesName != "" {
		fmt.Fprintf(&buf, "**Series**: %s\n", h.SeriesName)
	}
	if venue := VenueLine(h.Venue); venue != "" {
		fmt.Fprintf(&buf, "**Venue**: %s\n", venue)
	}
	if h.Date != "" {
		fmt.Fprintf(&buf, "**Date**: %s\n", h.Date)
	}
	if toss := TossLine(h.Toss); toss != "" {
		fmt.Fprintf(&buf, "**Toss**: %s\n", toss)
	}
	if h.Status != "" {
		fmt.Fprintf(&buf, "**Status**: %s\n", h.Status)
	}
	buf.WriteString("\n")

	for _, in := range s.Innings {
		fmt.Fprintf(&buf, "## %s %s\n\n", in.Team, in.Score())

		buf.WriteString("| Batter | R | B | 4s | 6s | SR |\n|---|---:|---:|---:|---:|---:|\n")
		for _, b := range in.Batsmen {
			fmt.Fprintf(&buf, "| %s | %d | %d | %d | %d | %s |\n", b.Name, b.Runs, b.Balls, b.Fours, b.Sixes, rate(b.StrikeRate()))
		}
		buf.WriteString("\n| Bowler | O | M | R | W | Econ |\n|---|---:|---:|---:|---:|---:|\n")
		for _, b := range in.Bowlers {
			fmt.Fprintf(&buf, "| %s | %s | %d | %d | %d | %s |\n", b.Name, b.Overs, b.Maidens, b.Runs, b.Wickets, rate(b.Economy()))
		}
		buf.WriteString("\n")
	}

	if len(s.Progress.Checkpoints) > 0 {
		buf.WriteString("## Progress (interpolated)\n\n| Over | " + teamLabel(s, 0) + " | " + teamLabel(s, 1) + " |\n|---:|---:|---:|\n")
		for _, cp := range s.Progress.Checkpoints {
			fmt.Fprintf(&buf, "| %d | %d | %s |\n", cp.Over, cp.Team1Runs, optional(cp.Team2Runs))
		}
		buf.WriteString("\n")
	}

	if !s.FetchedAt.IsZero() {
		fmt.Fprintf(&buf, "_Fetched %s_\n", s.FetchedAt.UTC().Format(time.RFC3339))
	}
	return buf.Bytes(), nil
}

// ExportText renders a compact plain-text scorecard.
func ExportText(s *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	h := s.Header

	buf.WriteString(Title(s) + "\n")
	for _, line := range []string{h.SeriesName, VenueLine(h.Venue), TossLine(h.Toss), h.Status} {
		if line != "" {
			buf.WriteString(line + "\n")
		}
	}

	for _, in := range s.Innings {
		fmt.Fprintf(&buf, "\n%s %s  RR %s\n", in.Team, in.Score(), rate(in.RunRate()))

		tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, b := range in.Batsmen {
			fmt.Fprintf(tw, "  %s\t%d (%d)\t4s %d\t6s %d\n", b.Name, b.Runs, b.Balls, b.Fours, b.Sixes)
		}
		for _, b := range in.Bowlers {
			fmt.Fprintf(tw, "  %s\t%s-%d-%d-%d\n", b.Name, b.Overs, b.Maidens, b.Runs, b.Wickets)
		}
		if err := tw.Flush(); err != nil {
			return nil, errors.Wrap(err, "failed to render innings")
		}
	}

	return buf.Bytes(), nil
}

// WriteExport writes s to dir as match_{id}.{format} and returns the path.
func WriteExport(dir string, s *models.Snapshot, f Format, pretty bool) (string, error) {
	data, err := Export(s, f, pretty)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}

	path := filepath.Join(dir, fmt.Sprintf("match_%d.%s", s.Header.MatchID, f))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write export")
	}
	return path, nil
}

// WriteHistory renders journal rows as an aligned table.
func WriteHistory(w io.Writer, attempts []models.FetchAttempt) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWHEN\tMATCH\tTRIGGER\tOUTCOME\tFAILURES\tTOOK\tREASON")
	for _, a := range attempts {
		reason := a.Reason
		if a.RateLimited {
			reason = "[rate limited] " + reason
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			a.Sequence, a.CreatedAt.Local().Format("2006-01-02 15:04:05"), a.MatchID, a.Trigger, a.Outcome,
			a.Failures, (time.Duration(a.DurationMS) * time.Millisecond).String(), reason)
	}
	return tw.Flush()
}

// Title is "Description, Format" falling back to the match id.
func Title(s *models.Snapshot) string {
	parts := []string{}
	for _, p := range []string{s.Header.Description, s.Header.Format} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Match %d", s.Header.MatchID)
	}
	return strings.Join(parts, ", ")
}

// VenueLine joins the non-empty venue parts.
func VenueLine(v models.Venue) string {
	parts := []string{}
	for _, p := range []string{v.Name, v.City, v.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// TossLine renders the toss back into a sentence.
func TossLine(t models.Toss) string {
	if t.Winner == "" {
		return ""
	}
	if t.Decision == "" {
		return t.Winner + " won the toss"
	}
	return t.Winner + " elected to " + t.Decision
}

func teamLabel(s *models.Snapshot, i int) string {
	if in, ok := s.InningsAt(i); ok && in.Team != "" {
		return in.Team
	}
	return "Team " + strconv.Itoa(i+1)
}

func optional(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
