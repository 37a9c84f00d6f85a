package resalesdk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/hdbdash/pkg/slogx"
)

// MaxRecentComparisons is the length of the recent comparisons list.
const MaxRecentComparisons = 5

// Comparison is one entry of the recent comparisons list. Times are months
// formatted YYYY-MM.
type Comparison struct {
	Districts []string `json:"districts" validate:"min=1,max=5,dive,required"`
	StartTime string   `json:"startTime" validate:"required,yearmonth"`
	EndTime   string   `json:"endTime"   validate:"required,yearmonth"`
}

// Validate checks the districts and the time window. End may equal Start.
func (c Comparison) Validate() map[string]string {
	errs := validateStruct(c)
	if errs == nil && c.EndTime < c.StartTime {
		errs = map[string]string{"endTime": "End date cannot be before start date."}
	}
	return errs
}

// Query converts the entry back into the parameters that produced it.
func (c Comparison) Query() ComparisonQuery {
	return ComparisonQuery{Towns: c.Districts, Start: c.StartTime, End: c.EndTime}
}

// Recent returns the recent comparisons, newest first. A missing or
// unreadable list is treated as empty.
func (c *SDKClient) Recent(ctx context.Context) ([]Comparison, error) {
	raw, err := lookup(ctx, c.Storage, KeyRecentComparisons)
	if err != nil {
		return nil, err
	}
	return decodeRecent(ctx, raw), nil
}

// RecordComparison puts cmp at the head of the recent list, dropping the
// oldest entries beyond MaxRecentComparisons.
func (c *SDKClient) RecordComparison(ctx context.Context, cmp Comparison) error {
	if err := invalid(cmp.Validate()); err != nil {
		return err
	}

	c.recentMu.Lock()
	defer c.recentMu.Unlock()

	raw, err := lookup(ctx, c.Storage, KeyRecentComparisons)
	if err != nil {
		return err
	}
	existing := decodeRecent(ctx, raw)

	updated := make([]Comparison, 0, MaxRecentComparisons)
	updated = append(updated, cmp)
	for _, e := range existing {
		if len(updated) == MaxRecentComparisons {
			break
		}
		updated = append(updated, e)
	}

	encoded, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("failed to encode recent comparisons: %w", err)
	}
	if err := c.Storage.Set(ctx, KeyRecentComparisons, string(encoded)); err != nil {
		return fmt.Errorf("failed to store recent comparisons: %w", err)
	}
	return nil
}

// ClearRecent forgets every recent comparison.
func (c *SDKClient) ClearRecent(ctx context.Context) error {
	c.recentMu.Lock()
	defer c.recentMu.Unlock()

	return c.Storage.Delete(ctx, KeyRecentComparisons)
}

func decodeRecent(ctx context.Context, raw string) []Comparison {
	if raw == "" {
		return nil
	}

	var out []Comparison
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slogx.FromContext(ctx).Warn("discarding unreadable recent comparisons", "error", err)
		return nil
	}
	if len(out) > MaxRecentComparisons {
		out = out[:MaxRecentComparisons]
	}
	return out
}
