package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/internal/dash/render"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestPrice(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$480,000", render.Price(480000))
	require.Equal(t, "$1,234.5", render.Price(1234.5))
	require.Equal(t, "$0", render.Price(0))
}

func TestTowns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	render.Towns(&buf, []string{"ANG MO KIO", "BEDOK"})

	out := lines(&buf)
	require.Len(t, out, 4)
	require.Contains(t, out[0], "Town")
	require.Contains(t, out[2], "ANG MO KIO")
	require.Contains(t, out[3], "BEDOK")
}

func TestGraphPivot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	render.Graph(&buf, []resalesdk.GraphPoint{
		{Date: "2024-02", Town: "BEDOK", AvgPrice: 500000},
		{Date: "2024-01", Town: "BEDOK", AvgPrice: 490000},
		{Date: "2024-01", Town: "BISHAN", AvgPrice: 700000},
	})

	out := lines(&buf)
	require.Len(t, out, 4)

	header := out[0]
	require.Less(t, strings.Index(header, "BEDOK"), strings.Index(header, "BISHAN"))

	// Periods are sorted; a missing bucket prints as "-".
	require.Contains(t, out[2], "2024-01")
	require.Contains(t, out[2], "$490,000")
	require.Contains(t, out[2], "$700,000")
	require.Contains(t, out[3], "2024-02")
	require.Contains(t, out[3], "$500,000")
	require.Regexp(t, `\|\s+-\s+\|`, out[3])
}

func TestAnalysisHeader(t *testing.T) {
	t.Parallel()

	points := []resalesdk.AnalysisPoint{{Town: "BEDOK", Year: 2020, ResalePrice: 1500}}

	var trends, vol bytes.Buffer
	render.Analysis(&trends, resalesdk.AnalysisPriceTrends, points)
	render.Analysis(&vol, resalesdk.AnalysisVolatility, points)

	require.Contains(t, trends.String(), "Average price")
	require.Contains(t, vol.String(), "Std deviation")
	require.Contains(t, vol.String(), "BEDOK")
}

func TestRecent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	render.Recent(&buf, []resalesdk.Comparison{
		{Districts: []string{"BEDOK", "BISHAN"}, StartTime: "2020-01", EndTime: "2024-12"},
		{Districts: []string{"TAMPINES"}, EndTime: "2023-06"},
	})

	out := lines(&buf)
	require.Len(t, out, 4)
	require.Contains(t, out[2], "BEDOK, BISHAN")
	require.True(t, strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(out[2], "|")), "1"))
	require.Contains(t, out[3], "TAMPINES")
}

func TestPrediction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	render.Prediction(&buf, &resalesdk.Prediction{
		Town:     "BEDOK",
		FlatType: "4 ROOM",
		Predictions: []resalesdk.PredictedPrice{
			{Year: 2025, PredictedPrice: 610000},
		},
	})

	require.Contains(t, buf.String(), "BEDOK (4 ROOM)")
	require.Contains(t, buf.String(), "$610,000")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, render.JSON(&buf, []string{"BEDOK"}))
	require.JSONEq(t, `["BEDOK"]`, buf.String())
}
