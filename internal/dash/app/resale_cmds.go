package app

import (
	"fmt"

	"github.com/aussiebroadwan/hdbdash/internal/dash/render"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

type TownsCmd struct{}

func (c *TownsCmd) Run(rc *runContext) error {
	towns, err := rc.app.client.Towns(rc.ctx)
	if err != nil {
		return err
	}
	return rc.show(towns, func() { render.Towns(rc.app.out, towns) })
}

type YearsCmd struct{}

func (c *YearsCmd) Run(rc *runContext) error {
	years, err := rc.app.client.Years(rc.ctx)
	if err != nil {
		return err
	}
	return rc.show(years, func() { render.Years(rc.app.out, years) })
}

type ListingsCmd struct {
	Town     string `arg:"" help:"Town name, e.g. \"ANG MO KIO\"."`
	RoomType string `help:"Only this flat type, e.g. \"4 ROOM\"." name:"room-type"`
	Sort     string `help:"Sort by this field." default:"month" enum:"month,town,flat_type,block,street_name,storey_range,floor_area_sqm,flat_model,lease_commence_date,remaining_lease,resale_price"`
	Desc     bool   `help:"Sort descending."`
	Limit    int    `help:"Show at most this many rows; 0 shows all." default:"0"`
}

func (c *ListingsCmd) Run(rc *runContext) error {
	listings, err := rc.app.client.Listings(rc.ctx, resalesdk.ListingsQuery{
		Town:     c.Town,
		RoomType: c.RoomType,
	})
	if err != nil {
		return err
	}

	if err := resalesdk.SortListings(listings, c.Sort, c.Desc); err != nil {
		return err
	}
	if c.Limit > 0 && len(listings) > c.Limit {
		listings = listings[:c.Limit]
	}

	return rc.show(listings, func() { render.Listings(rc.app.out, listings) })
}

type CompareCmd struct {
	Towns    []string `arg:"" help:"Up to five towns."`
	Start    string   `help:"First month, YYYY-MM." required:""`
	End      string   `help:"Last month, YYYY-MM." required:""`
	Interval string   `help:"Graph bucket: month or year." enum:"month,year" default:"month"`
	Graph    bool     `help:"Also print the price graph."`
}

func (c *CompareCmd) Run(rc *runContext) error {
	return compare(rc, resalesdk.ComparisonQuery{
		Towns:    c.Towns,
		Start:    c.Start,
		End:      c.End,
		Interval: resalesdk.Interval(c.Interval),
	}, c.Graph)
}

func compare(rc *runContext, q resalesdk.ComparisonQuery, graph bool) error {
	result, err := rc.app.client.CompareDistricts(rc.ctx, q)
	if err != nil {
		return err
	}

	return rc.show(result, func() {
		render.Averages(rc.app.out, result.Averages)
		if graph {
			rc.println()
			render.Graph(rc.app.out, result.Graph)
		}
	})
}

type RecentCmd struct {
	Clear  bool `help:"Forget all recent comparisons."`
	Replay int  `help:"Run the numbered comparison again."`
}

func (c *RecentCmd) Run(rc *runContext) error {
	if c.Clear {
		if err := rc.app.client.ClearRecent(rc.ctx); err != nil {
			return err
		}
		rc.println("Recent comparisons cleared.")
		return nil
	}

	recent, err := rc.app.client.Recent(rc.ctx)
	if err != nil {
		return err
	}

	if c.Replay > 0 {
		if c.Replay > len(recent) {
			return fmt.Errorf("no recent comparison #%d (have %d)", c.Replay, len(recent))
		}
		return compare(rc, recent[c.Replay-1].Query(), false)
	}

	if recent == nil {
		recent = []resalesdk.Comparison{}
	}
	return rc.show(recent, func() {
		if len(recent) == 0 {
			rc.println("No recent comparisons.")
			return
		}
		render.Recent(rc.app.out, recent)
	})
}

type TrendsCmd struct {
	Town      string `arg:"" help:"Town name."`
	StartYear int    `help:"First year." name:"start-year"`
	EndYear   int    `help:"Last year." name:"end-year"`
}

func (c *TrendsCmd) Run(rc *runContext) error {
	trends, err := rc.app.client.RoomTypeTrends(rc.ctx, resalesdk.TrendsQuery{
		Town:      c.Town,
		StartYear: c.StartYear,
		EndYear:   c.EndYear,
	})
	if err != nil {
		return err
	}
	return rc.show(trends, func() { render.Trends(rc.app.out, trends) })
}

type AnalysisCmd struct {
	Towns     []string `arg:"" help:"Towns to include."`
	Type      string   `help:"price_trends or volatility." enum:"price_trends,volatility" default:"price_trends"`
	StartYear int      `help:"First year." name:"start-year"`
	EndYear   int      `help:"Last year." name:"end-year"`
	RoomType  string   `help:"Only this flat type; groups by town." name:"room-type"`
}

func (c *AnalysisCmd) Run(rc *runContext) error {
	typ := resalesdk.AnalysisType(c.Type)
	points, err := rc.app.client.Analysis(rc.ctx, resalesdk.AnalysisQuery{
		Towns:     c.Towns,
		Type:      typ,
		StartYear: c.StartYear,
		EndYear:   c.EndYear,
		RoomType:  c.RoomType,
	})
	if err != nil {
		return err
	}
	return rc.show(points, func() { render.Analysis(rc.app.out, typ, points) })
}

type PredictCmd struct {
	Town     string `arg:"" help:"Town name."`
	FlatType string `help:"Only this flat type." name:"flat-type"`
}

func (c *PredictCmd) Run(rc *runContext) error {
	prediction, err := rc.app.client.Predict(rc.ctx, c.Town, c.FlatType)
	if err != nil {
		return err
	}
	return rc.show(prediction, func() { render.Prediction(rc.app.out, prediction) })
}
