package resaletest

import (
	"cmp"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/hdbdash/pkg/httpx"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

// PredictionBaseYear is the first forecast year of the prediction endpoint.
const PredictionBaseYear = 2025

func writeError(w http.ResponseWriter, code int, msg string) {
	httpx.WriteJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) snapshotListings() []resalesdk.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.listings)
}

func listingYear(l resalesdk.Listing) int {
	y, _ := strconv.Atoi(l.Month[:4])
	return y
}

func normalizeFlatType(ft string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ft)), "-", " ")
}

func upperAll(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, t := range in {
		out[strings.ToUpper(t)] = true
	}
	return out
}

// yearFilter returns a predicate for the start_year/end_year pair; the
// range only applies when both are present.
func yearFilter(r *http.Request) (func(int) bool, bool) {
	start, end := r.URL.Query().Get("start_year"), r.URL.Query().Get("end_year")
	if start == "" || end == "" {
		return func(int) bool { return true }, true
	}
	from, err1 := strconv.Atoi(start)
	to, err2 := strconv.Atoi(end)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return func(y int) bool { return y >= from && y <= to }, true
}

// monthWindow parses the YYYY-MM bounds the comparison endpoints receive
// as start_year and end_year.
func monthWindow(r *http.Request) (string, string, bool) {
	start, end := r.URL.Query().Get("start_year"), r.URL.Query().Get("end_year")
	if _, err := time.Parse("2006-01", start); err != nil {
		return "", "", false
	}
	if _, err := time.Parse("2006-01", end); err != nil {
		return "", "", false
	}
	return start, end, true
}

type groupKey struct {
	name string
	year string
}

type accumulator struct {
	values []float64
}

func (a *accumulator) mean() float64 {
	var sum float64
	for _, v := range a.values {
		sum += v
	}
	return sum / float64(len(a.values))
}

// stddev is the sample standard deviation.
func (a *accumulator) stddev() float64 {
	m := a.mean()
	var ss float64
	for _, v := range a.values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(a.values)-1))
}

func group(listings []resalesdk.Listing, key func(resalesdk.Listing) groupKey) ([]groupKey, map[groupKey]*accumulator) {
	accs := make(map[groupKey]*accumulator)
	var keys []groupKey
	for _, l := range listings {
		k := key(l)
		a, ok := accs[k]
		if !ok {
			a = &accumulator{}
			accs[k] = a
			keys = append(keys, k)
		}
		a.values = append(a.values, l.ResalePrice)
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.year, b.year))
	})
	return keys, accs
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleTowns(w http.ResponseWriter, _ *http.Request) {
	seen := map[string]bool{}
	var towns []string
	for _, l := range s.snapshotListings() {
		if !seen[l.Town] {
			seen[l.Town] = true
			towns = append(towns, l.Town)
		}
	}
	slices.Sort(towns)

	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"towns": towns})
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	seen := map[int]bool{}
	var years []int
	for _, l := range s.snapshotListings() {
		if y := listingYear(l); !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	slices.Sort(years)

	httpx.WriteJSON(w, http.StatusOK, map[string][]int{"years": years})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	towns := q["towns"]
	if len(towns) == 0 {
		writeError(w, http.StatusBadRequest, "No towns selected")
		return
	}
	analysisType := cmp.Or(q.Get("type"), string(resalesdk.AnalysisPriceTrends))
	roomType := normalizeFlatType(q.Get("room_type"))
	inYears, ok := yearFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid year.")
		return
	}

	want := upperAll(towns)
	var filtered []resalesdk.Listing
	for _, l := range s.snapshotListings() {
		if want[l.Town] && (roomType == "" || l.FlatType == roomType) && inYears(listingYear(l)) {
			filtered = append(filtered, l)
		}
	}

	byTown := func(l resalesdk.Listing) groupKey { return groupKey{l.Town, l.Month[:4]} }
	byFlatType := func(l resalesdk.Listing) groupKey { return groupKey{l.FlatType, l.Month[:4]} }

	out := []resalesdk.AnalysisPoint{}
	switch resalesdk.AnalysisType(analysisType) {
	case resalesdk.AnalysisPriceTrends:
		key, perTown := byFlatType, false
		if roomType != "" {
			key, perTown = byTown, true
		}
		keys, accs := group(filtered, key)
		for _, k := range keys {
			out = append(out, analysisPoint(k, perTown, accs[k].mean()))
		}
	case resalesdk.AnalysisVolatility:
		keys, accs := group(filtered, byTown)
		for _, k := range keys {
			if len(accs[k].values) < 2 {
				continue
			}
			out = append(out, analysisPoint(k, true, accs[k].stddev()))
		}
	default:
		writeError(w, http.StatusBadRequest, "Invalid analysis type.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func analysisPoint(k groupKey, perTown bool, v float64) resalesdk.AnalysisPoint {
	year, _ := strconv.Atoi(k.year)
	p := resalesdk.AnalysisPoint{Year: year, ResalePrice: v}
	if perTown {
		p.Town = k.name
	} else {
		p.FlatType = k.name
	}
	return p
}

func (s *Server) handleRoomTypeTrends(w http.ResponseWriter, r *http.Request) {
	town := strings.ToUpper(r.URL.Query().Get("town"))
	if town == "" {
		writeError(w, http.StatusBadRequest, "Missing town parameter.")
		return
	}
	inYears, ok := yearFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid year.")
		return
	}

	var filtered []resalesdk.Listing
	for _, l := range s.snapshotListings() {
		if l.Town == town && inYears(listingYear(l)) {
			filtered = append(filtered, l)
		}
	}

	// Ordered by year, then flat type.
	keys, accs := group(filtered, func(l resalesdk.Listing) groupKey { return groupKey{l.Month[:4], l.FlatType} })
	out := []resalesdk.RoomTypeTrend{}
	for _, k := range keys {
		year, _ := strconv.Atoi(k.name)
		out = append(out, resalesdk.RoomTypeTrend{Year: year, FlatType: k.year, AvgPrice: accs[k].mean()})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) comparisonListings(w http.ResponseWriter, r *http.Request) ([]resalesdk.Listing, bool) {
	q := r.URL.Query()
	if len(q["towns"]) == 0 || q.Get("start_year") == "" || q.Get("end_year") == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters.")
		return nil, false
	}
	start, end, ok := monthWindow(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM.")
		return nil, false
	}

	want := upperAll(q["towns"])
	var out []resalesdk.Listing
	for _, l := range s.snapshotListings() {
		if want[l.Town] && l.Month >= start && l.Month <= end {
			out = append(out, l)
		}
	}
	return out, true
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.comparisonListings(w, r)
	if !ok {
		return
	}

	keys, accs := group(filtered, func(l resalesdk.Listing) groupKey { return groupKey{name: l.Town} })
	out := []resalesdk.TownAverage{}
	for _, k := range keys {
		out = append(out, resalesdk.TownAverage{Town: k.name, AvgPrice: accs[k].mean()})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleComparisonGraph(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.comparisonListings(w, r)
	if !ok {
		return
	}

	period := func(l resalesdk.Listing) string { return l.Month }
	if r.URL.Query().Get("interval") == string(resalesdk.IntervalYear) {
		period = func(l resalesdk.Listing) string { return l.Month[:4] }
	}

	// Ordered by period, then town.
	keys, accs := group(filtered, func(l resalesdk.Listing) groupKey { return groupKey{period(l), l.Town} })
	out := []resalesdk.GraphPoint{}
	for _, k := range keys {
		out = append(out, resalesdk.GraphPoint{Date: k.name, Town: k.year, AvgPrice: accs[k].mean()})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleRawData(w http.ResponseWriter, r *http.Request) {
	town := strings.ToUpper(r.URL.Query().Get("town"))
	if town == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter (town).")
		return
	}
	roomType := strings.ToUpper(r.URL.Query().Get("room_type"))

	out := []resalesdk.Listing{}
	for _, l := range s.snapshotListings() {
		if l.Town == town && (roomType == "" || strings.ToUpper(l.FlatType) == roomType) {
			out = append(out, l)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	town := strings.TrimSpace(r.URL.Query().Get("town"))
	if town == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: town")
		return
	}
	flatType := normalizeFlatType(r.URL.Query().Get("flat_type"))

	var filtered []resalesdk.Listing
	for _, l := range s.snapshotListings() {
		if l.Town == strings.ToUpper(town) && (flatType == "" || l.FlatType == flatType) {
			filtered = append(filtered, l)
		}
	}
	if len(filtered) == 0 {
		writeError(w, http.StatusBadRequest, "No data found for "+town)
		return
	}

	keys, accs := group(filtered, func(l resalesdk.Listing) groupKey { return groupKey{year: l.Month[:4]} })
	if len(keys) < 3 {
		writeError(w, http.StatusBadRequest, "Not enough data to make prediction for "+town)
		return
	}

	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		year, _ := strconv.Atoi(k.year)
		xs[i] = float64(year)
		ys[i] = accs[k].mean()
	}
	slope, intercept := linearFit(xs, ys)

	out := resalesdk.Prediction{Town: town}
	for i := range 5 {
		year := PredictionBaseYear + i
		price := intercept + slope*float64(year)
		out.Predictions = append(out.Predictions, resalesdk.PredictedPrice{
			Year:           year,
			PredictedPrice: math.Round(price*100) / 100,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// linearFit is ordinary least squares for y = intercept + slope*x.
func linearFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/n, sy/n

	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	slope = num / den
	return slope, my - slope*mx
}
