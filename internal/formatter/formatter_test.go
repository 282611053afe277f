package formatter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/normalizer"
	"github.com/desertthunder/wicket/internal/shared"
	th "github.com/desertthunder/wicket/internal/testing"
)

var fetchedAt = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func scorecard(t *testing.T) *models.Snapshot {
	t.Helper()
	s := normalizer.Normalize([]byte(th.Scorecard), fetchedAt)
	require.NotNil(t, s)
	return s
}

func TestExporters(t *testing.T) {
	t.Run("JSON round trip", func(t *testing.T) {
		s := scorecard(t)
		for _, pretty := range []bool{false, true} {
			data, err := ExportJSON(s, pretty)
			require.NoError(t, err)

			got, err := ParseJSON(data)
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})

	t.Run("ParseJSON rejects garbage", func(t *testing.T) {
		_, err := ParseJSON([]byte("{not json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("ExportCSV", func(t *testing.T) {
		data, err := ExportCSV(scorecard(t))
		require.NoError(t, err)

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)

		// header + 3 batters + 2 bowlers + 1 batter + 1 bowler
		require.Len(t, records, 8)
		assert.Equal(t, []string{"Innings", "Team", "Role", "Name", "Runs", "Balls", "Fours", "Sixes", "Overs", "Maidens", "Wickets", "Rate"}, records[0])
		assert.Equal(t, []string{"1", "India", "batting", "Rohit Sharma", "47", "31", "4", "3", "", "", "", "151.61"}, records[1])
		assert.Equal(t, "Pat Cummins", records[5][3])
		assert.Equal(t, "9.4", records[5][8])
		assert.Equal(t, "58", records[5][5])
		assert.Equal(t, "2", records[6][0])
	})

	t.Run("ExportMarkdown", func(t *testing.T) {
		data, err := ExportMarkdown(scorecard(t))
		require.NoError(t, err)
		out := string(data)

		assert.Contains(t, out, "# Final, ODI")
		assert.Contains(t, out, "**Venue**: Narendra Modi Stadium, Ahmedabad, India")
		assert.Contains(t, out, "## India 240/10 (50)")
		assert.Contains(t, out, "## Australia 241/4 (43)")
		assert.Contains(t, out, "| Virat Kohli | 54 | 63 | 4 | 0 |")
		assert.Contains(t, out, "## Progress (interpolated)")
		assert.Contains(t, out, "| Over | India | Australia |")
		assert.Contains(t, out, "| 50 | 240 | - |")
		assert.Contains(t, out, "_Fetched 2026-10-15T09:30:00Z_")
	})

	t.Run("ExportText", func(t *testing.T) {
		data, err := ExportText(scorecard(t))
		require.NoError(t, err)
		out := string(data)

		assert.True(t, strings.HasPrefix(out, "Final, ODI\n"))
		assert.Contains(t, out, "Australia won by 6 wkts")
		assert.Contains(t, out, "India 240/10 (50)  RR 4.80")
		assert.Contains(t, out, "Jasprit Bumrah")
		assert.Contains(t, out, "9-2-43-2")
	})

	t.Run("Export without a snapshot", func(t *testing.T) {
		_, err := Export(nil, FormatJSON, false)
		assert.ErrorIs(t, err, shared.ErrNoSnapshot)
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"csv", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"text", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseFormat("xml")
		assert.ErrorIs(t, err, shared.ErrInvalidFlag)
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("writes match file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		path, err := WriteExport(dir, scorecard(t), FormatMarkdown, false)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "match_41881.md"), path)
		th.AssertFileExists(t, path)
		assert.Contains(t, th.MustReadFile(t, path), "# Final, ODI")
	})

	t.Run("json export parses back", func(t *testing.T) {
		s := scorecard(t)
		path, err := WriteExport(t.TempDir(), s, FormatJSON, true)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		got, err := ParseJSON(data)
		require.NoError(t, err)
		assert.Equal(t, s.Header, got.Header)
	})
}

func TestWriteHistory(t *testing.T) {
	attempts := []models.FetchAttempt{
		{Sequence: 2, MatchID: "41881", Trigger: "manual", Outcome: "stale", Failures: 1, Reason: "API rate limit exceeded (429)", RateLimited: true, DurationMS: 120, CreatedAt: fetchedAt},
		{Sequence: 1, MatchID: "41881", Trigger: "auto", Outcome: "fresh", DurationMS: 80, CreatedAt: fetchedAt},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, attempts))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "OUTCOME")
	assert.Contains(t, lines[1], "[rate limited] API rate limit exceeded (429)")
	assert.Contains(t, lines[2], "fresh")
	assert.Contains(t, lines[2], "80ms")

	t.Run("write failure", func(t *testing.T) {
		assert.Error(t, WriteHistory(&th.FWriter{}, attempts))
	})

	t.Run("helpers", func(t *testing.T) {
		assert.Equal(t, "Match 7", Title(&models.Snapshot{Header: models.MatchHeader{MatchID: 7}}))
		assert.Equal(t, "", TossLine(models.Toss{}))
		assert.Equal(t, "England won the toss", TossLine(models.Toss{Winner: "England"}))
		assert.Equal(t, "England elected to bat", TossLine(models.Toss{Winner: "England", Decision: "bat"}))
	})
}
