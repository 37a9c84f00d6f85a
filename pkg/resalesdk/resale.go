package resalesdk

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ============================================================================
// Reference data
// ============================================================================

// Towns lists every town present in the dataset.
func (c *SDKClient) Towns(ctx context.Context) ([]string, error) {
	var out struct {
		Towns []string `json:"towns"`
	}
	if err := c.getJSON(ctx, "/resale/towns/", nil, &out); err != nil {
		return nil, err
	}
	return out.Towns, nil
}

// Years lists the transaction years present in the dataset, ascending.
func (c *SDKClient) Years(ctx context.Context) ([]int, error) {
	var out struct {
		Years []int `json:"years"`
	}
	if err := c.getJSON(ctx, "/resale/years/", nil, &out); err != nil {
		return nil, err
	}
	return out.Years, nil
}

// ============================================================================
// Aggregates
// ============================================================================

// Analysis returns yearly price trends or volatility for the given towns.
func (c *SDKClient) Analysis(ctx context.Context, q AnalysisQuery) ([]AnalysisPoint, error) {
	if err := invalid(q.Validate()); err != nil {
		return nil, err
	}

	v := url.Values{}
	for _, t := range q.Towns {
		v.Add("towns", normalizeTown(t))
	}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	setYearRange(v, q.StartYear, q.EndYear)
	if q.RoomType != "" {
		v.Set("room_type", q.RoomType)
	}

	var out []AnalysisPoint
	if err := c.getJSON(ctx, "/resale/resale_analysis/", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RoomTypeTrends returns the average price per flat type per year for one town.
func (c *SDKClient) RoomTypeTrends(ctx context.Context, q TrendsQuery) ([]RoomTypeTrend, error) {
	if err := invalid(q.Validate()); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("town", normalizeTown(q.Town))
	setYearRange(v, q.StartYear, q.EndYear)

	var out []RoomTypeTrend
	if err := c.getJSON(ctx, "/resale/resale_roomtype_trends/", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Comparison returns the average price of each town over the window.
func (c *SDKClient) Comparison(ctx context.Context, q ComparisonQuery) ([]TownAverage, error) {
	if err := invalid(q.Validate()); err != nil {
		return nil, err
	}

	var out []TownAverage
	if err := c.getJSON(ctx, "/resale/resale_comparison/", comparisonValues(q, false), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ComparisonGraph returns the average price of each town per interval.
// Interval defaults to month.
func (c *SDKClient) ComparisonGraph(ctx context.Context, q ComparisonQuery) ([]GraphPoint, error) {
	if err := invalid(q.Validate()); err != nil {
		return nil, err
	}

	var out []GraphPoint
	if err := c.getJSON(ctx, "/resale/comparison_graph/", comparisonValues(q, true), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ComparisonResult bundles the table and graph for one comparison.
type ComparisonResult struct {
	Averages []TownAverage
	Graph    []GraphPoint
}

// CompareDistricts records q in the recent comparisons list and then
// fetches both the table and the graph for it. The recent entry is kept
// even if the fetch fails.
func (c *SDKClient) CompareDistricts(ctx context.Context, q ComparisonQuery) (*ComparisonResult, error) {
	if err := invalid(q.Validate()); err != nil {
		return nil, err
	}

	towns := make([]string, len(q.Towns))
	for i, t := range q.Towns {
		towns[i] = normalizeTown(t)
	}
	if err := c.RecordComparison(ctx, Comparison{Districts: towns, StartTime: q.Start, EndTime: q.End}); err != nil {
		return nil, err
	}

	averages, err := c.Comparison(ctx, q)
	if err != nil {
		return nil, err
	}
	graph, err := c.ComparisonGraph(ctx, q)
	if err != nil {
		return nil, err
	}

	return &ComparisonResult{Averages: averages, Graph: graph}, nil
}

// ============================================================================
// Listings / Prediction
// ============================================================================

// Listings returns the raw transactions of a town, optionally for one flat
// type, in server order. See SortListings.
func (c *SDKClient) Listings(ctx context.Context, q ListingsQuery) ([]Listing, error) {
	if err := invalid(q.Validate()); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("town", normalizeTown(q.Town))
	if q.RoomType != "" {
		v.Set("room_type", q.RoomType)
	}

	var out []Listing
	if err := c.getJSON(ctx, "/resale/raw_data_by_town/", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Predict returns the price forecast for a town. flatType may be empty.
func (c *SDKClient) Predict(ctx context.Context, town, flatType string) (*Prediction, error) {
	if strings.TrimSpace(town) == "" {
		return nil, invalid(map[string]string{"town": "This field is required."})
	}

	v := url.Values{}
	v.Set("town", normalizeTown(town))
	if flatType != "" {
		v.Set("flat_type", flatType)
	}

	var out Prediction
	if err := c.getJSON(ctx, "/resale/ai_predict/", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListingSortFields are the fields SortListings accepts.
var ListingSortFields = []string{
	"month", "town", "flat_type", "block", "street_name", "storey_range",
	"floor_area_sqm", "flat_model", "lease_commence_date", "remaining_lease", "resale_price",
}

// SortListings sorts listings in place by the named JSON field. Equal
// elements keep their order.
func SortListings(listings []Listing, field string, desc bool) error {
	cmpFn, ok := listingComparators[field]
	if !ok {
		return fmt.Errorf("unknown sort field %q", field)
	}

	slices.SortStableFunc(listings, func(a, b Listing) int {
		if desc {
			return cmpFn(b, a)
		}
		return cmpFn(a, b)
	})
	return nil
}

var listingComparators = map[string]func(a, b Listing) int{
	"month":               func(a, b Listing) int { return cmp.Compare(a.Month, b.Month) },
	"town":                func(a, b Listing) int { return cmp.Compare(a.Town, b.Town) },
	"flat_type":           func(a, b Listing) int { return cmp.Compare(a.FlatType, b.FlatType) },
	"block":               func(a, b Listing) int { return cmp.Compare(a.Block, b.Block) },
	"street_name":         func(a, b Listing) int { return cmp.Compare(a.StreetName, b.StreetName) },
	"storey_range":        func(a, b Listing) int { return cmp.Compare(a.StoreyRange, b.StoreyRange) },
	"floor_area_sqm":      func(a, b Listing) int { return cmp.Compare(a.FloorAreaSqm, b.FloorAreaSqm) },
	"flat_model":          func(a, b Listing) int { return cmp.Compare(a.FlatModel, b.FlatModel) },
	"lease_commence_date": func(a, b Listing) int { return cmp.Compare(a.LeaseCommenceDate, b.LeaseCommenceDate) },
	"remaining_lease":     func(a, b Listing) int { return cmp.Compare(a.RemainingLease, b.RemainingLease) },
	"resale_price":        func(a, b Listing) int { return cmp.Compare(a.ResalePrice, b.ResalePrice) },
}

// ============================================================================
// Helpers
// ============================================================================

func (c *SDKClient) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	resp, err := c.Send(ctx, NewGetRequest(path, query))
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// normalizeTown matches the dataset's upper-case town names.
func normalizeTown(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func setYearRange(v url.Values, start, end int) {
	if start == 0 || end == 0 {
		return
	}
	v.Set("start_year", strconv.Itoa(start))
	v.Set("end_year", strconv.Itoa(end))
}

// comparisonValues encodes q. The API names the month bounds start_year and
// end_year even though they carry YYYY-MM.
func comparisonValues(q ComparisonQuery, withInterval bool) url.Values {
	v := url.Values{}
	for _, t := range q.Towns {
		v.Add("towns", normalizeTown(t))
	}
	v.Set("start_year", q.Start)
	v.Set("end_year", q.End)
	if withInterval {
		interval := q.Interval
		if interval == "" {
			interval = IntervalMonth
		}
		v.Set("interval", string(interval))
	}
	return v
}
