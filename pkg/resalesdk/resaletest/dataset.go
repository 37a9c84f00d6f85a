package resaletest

import (
	"fmt"

	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

// Dataset shape: every town has one transaction per flat type in June of
// each year from FirstYear to LastYear. Prices are
//
//	town base + flat type premium + (year-FirstYear) * YearlyIncrease
//
// so tests can compute expected aggregates by hand.
const (
	FirstYear      = 2017
	LastYear       = 2024
	YearlyIncrease = 10000
)

// Towns in the dataset, sorted.
var Towns = []string{"ANG MO KIO", "BEDOK", "BISHAN", "QUEENSTOWN", "TAMPINES"}

// TownBase is the 3 ROOM price of each town in FirstYear.
var TownBase = map[string]float64{
	"ANG MO KIO": 300000,
	"BEDOK":      280000,
	"BISHAN":     400000,
	"QUEENSTOWN": 420000,
	"TAMPINES":   320000,
}

// FlatTypes in the dataset, sorted, with their premium over 3 ROOM.
var FlatTypes = []string{"3 ROOM", "4 ROOM", "5 ROOM"}

var FlatTypePremium = map[string]float64{
	"3 ROOM": 0,
	"4 ROOM": 100000,
	"5 ROOM": 200000,
}

var streets = map[string]string{
	"ANG MO KIO": "ANG MO KIO AVE 3",
	"BEDOK":      "BEDOK NTH RD",
	"BISHAN":     "BISHAN ST 12",
	"QUEENSTOWN": "STIRLING RD",
	"TAMPINES":   "TAMPINES ST 21",
}

var floorArea = map[string]float64{"3 ROOM": 67, "4 ROOM": 92, "5 ROOM": 112}

// Price is the dataset price of one transaction.
func Price(town, flatType string, year int) float64 {
	return TownBase[town] + FlatTypePremium[flatType] + float64(year-FirstYear)*YearlyIncrease
}

func sampleListings() []resalesdk.Listing {
	var out []resalesdk.Listing
	for _, town := range Towns {
		for year := FirstYear; year <= LastYear; year++ {
			for i, ft := range FlatTypes {
				lease := 1980 + i*5
				out = append(out, resalesdk.Listing{
					Month:             fmt.Sprintf("%d-06", year),
					Town:              town,
					FlatType:          ft,
					Block:             fmt.Sprintf("%d", 100+i),
					StreetName:        streets[town],
					StoreyRange:       fmt.Sprintf("%02d TO %02d", 1+3*i, 3+3*i),
					FloorAreaSqm:      floorArea[ft],
					FlatModel:         "New Generation",
					LeaseCommenceDate: lease,
					RemainingLease:    fmt.Sprintf("%d years", 99-(year-lease)),
					ResalePrice:       Price(town, ft, year),
				})
			}
		}
	}
	return out
}
