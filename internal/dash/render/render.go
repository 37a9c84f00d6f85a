// Package render prints resale API results as terminal tables.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	return table
}

// Price formats an amount in dollars with thousands separators.
func Price(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

// JSON writes v indented, for scripting.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// KeyValues prints two column rows in the given order.
func KeyValues(w io.Writer, rows [][2]string) {
	table := newTable(w, "Field", "Value")
	for _, r := range rows {
		table.Append([]string{r[0], r[1]})
	}
	table.Render()
}

func Towns(w io.Writer, towns []string) {
	table := newTable(w, "Town")
	for _, t := range towns {
		table.Append([]string{t})
	}
	table.Render()
}

func Years(w io.Writer, years []int) {
	table := newTable(w, "Year")
	for _, y := range years {
		table.Append([]string{strconv.Itoa(y)})
	}
	table.Render()
}

func Profile(w io.Writer, p *resalesdk.Profile) {
	KeyValues(w, [][2]string{
		{"Username", p.Username},
		{"Email", p.Email},
		{"First name", p.FirstName},
		{"Last name", p.LastName},
		{"Joined", p.DateJoined},
	})
}

func Listings(w io.Writer, listings []resalesdk.Listing) {
	table := newTable(w,
		"Month", "Town", "Flat type", "Block", "Street", "Storey",
		"Area (sqm)", "Model", "Lease start", "Remaining lease", "Price",
	)
	for _, l := range listings {
		table.Append([]string{
			l.Month,
			l.Town,
			l.FlatType,
			l.Block,
			l.StreetName,
			l.StoreyRange,
			strconv.FormatFloat(l.FloorAreaSqm, 'f', -1, 64),
			l.FlatModel,
			strconv.Itoa(l.LeaseCommenceDate),
			l.RemainingLease,
			Price(l.ResalePrice),
		})
	}
	table.Render()
}

func Averages(w io.Writer, averages []resalesdk.TownAverage) {
	table := newTable(w, "Town", "Average price")
	for _, a := range averages {
		table.Append([]string{a.Town, Price(a.AvgPrice)})
	}
	table.Render()
}

// Graph pivots graph points into one row per period and one column per
// town. Towns appear in the order they are first seen. Missing buckets
// print as "-".
func Graph(w io.Writer, points []resalesdk.GraphPoint) {
	var (
		towns   []string
		periods []string
		values  = make(map[[2]string]float64)
	)
	for _, p := range points {
		if !slices.Contains(towns, p.Town) {
			towns = append(towns, p.Town)
		}
		if !slices.Contains(periods, p.Date) {
			periods = append(periods, p.Date)
		}
		values[[2]string{p.Date, p.Town}] = p.AvgPrice
	}
	slices.Sort(periods)

	table := newTable(w, append([]string{"Period"}, towns...)...)
	for _, period := range periods {
		row := []string{period}
		for _, town := range towns {
			v, ok := values[[2]string{period, town}]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, Price(v))
		}
		table.Append(row)
	}
	table.Render()
}

func Analysis(w io.Writer, typ resalesdk.AnalysisType, points []resalesdk.AnalysisPoint) {
	value := "Average price"
	if typ == resalesdk.AnalysisVolatility {
		value = "Std deviation"
	}

	table := newTable(w, "Group", "Year", value)
	for _, p := range points {
		group := p.Town
		if group == "" {
			group = p.FlatType
		}
		table.Append([]string{group, strconv.Itoa(p.Year), Price(p.ResalePrice)})
	}
	table.Render()
}

func Trends(w io.Writer, trends []resalesdk.RoomTypeTrend) {
	table := newTable(w, "Year", "Flat type", "Average price")
	for _, t := range trends {
		table.Append([]string{strconv.Itoa(t.Year), t.FlatType, Price(t.AvgPrice)})
	}
	table.Render()
}

func Prediction(w io.Writer, p *resalesdk.Prediction) {
	label := p.Town
	if p.FlatType != "" {
		label += " (" + p.FlatType + ")"
	}
	fmt.Fprintln(w, label)

	table := newTable(w, "Year", "Predicted price")
	for _, pp := range p.Predictions {
		table.Append([]string{strconv.Itoa(pp.Year), Price(pp.PredictedPrice)})
	}
	table.Render()
}

// Recent numbers entries from 1, newest first.
func Recent(w io.Writer, recent []resalesdk.Comparison) {
	table := newTable(w, "#", "Districts", "From", "To")
	for i, c := range recent {
		from := c.StartTime
		if from == "" {
			from = "-"
		}
		table.Append([]string{strconv.Itoa(i + 1), strings.Join(c.Districts, ", "), from, c.EndTime})
	}
	table.Render()
}
