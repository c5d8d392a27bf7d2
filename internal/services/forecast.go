// Package services – forecast aggregator
//
// This file implements the pure aggregation step of the month-close engine.
// It has no side effects: given the active-deal set at call time it
// deterministically produces the grand totals and the per-dimension
// (product, partner) groupings that the snapshot store persists.
package services

import (
	"github.com/tbourn/go-crm-backend/internal/repo"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// BreakdownSlice is one bucket of a single-dimension grouping.
type BreakdownSlice struct {
	Count int
	Value float64
}

// ForecastSummary is the output of the aggregator: grand totals plus two
// independent groupings of the same deal set. Each grouping sums to the
// grand total on its own.
type ForecastSummary struct {
	TotalWeightedForecast float64
	TotalDealCount        int
	ProductBreakdown      map[string]BreakdownSlice
	PartnerBreakdown      map[string]BreakdownSlice
}

// WeightedValue returns a deal's expected-value contribution:
// deal_value × stage probability / 100. A deal with no value or no stage
// contributes 0.
func WeightedValue(d repo.DealWithNames) float64 {
	if d.DealValue == nil || d.StageProbability == nil {
		return 0
	}
	return *d.DealValue * float64(*d.StageProbability) / 100
}

// AggregateForecast rolls up the weighted forecast over the given deals.
// Every deal counts toward TotalDealCount and toward exactly one bucket per
// dimension; deals missing a dimension land in the "Unassigned" bucket.
func AggregateForecast(deals []repo.DealWithNames) ForecastSummary {
	sum := ForecastSummary{
		ProductBreakdown: make(map[string]BreakdownSlice),
		PartnerBreakdown: make(map[string]BreakdownSlice),
	}
	for _, d := range deals {
		wv := WeightedValue(d)
		sum.TotalWeightedForecast += wv
		sum.TotalDealCount++

		accumulate(sum.ProductBreakdown, bucketName(d.ProductName), wv)
		accumulate(sum.PartnerBreakdown, bucketName(d.PartnerName), wv)
	}
	return sum
}

// BreakdownRows flattens a summary into persistable breakdown rows, tagged
// 'product' then 'partner'. Map iteration order is irrelevant downstream:
// rows are re-sorted by the read queries.
func (s ForecastSummary) BreakdownRows() []domain.SnapshotBreakdown {
	rows := make([]domain.SnapshotBreakdown, 0, len(s.ProductBreakdown)+len(s.PartnerBreakdown))
	for name, b := range s.ProductBreakdown {
		rows = append(rows, domain.SnapshotBreakdown{
			BreakdownType: domain.BreakdownProduct,
			BreakdownName: name,
			DealCount:     b.Count,
			ForecastValue: b.Value,
		})
	}
	for name, b := range s.PartnerBreakdown {
		rows = append(rows, domain.SnapshotBreakdown{
			BreakdownType: domain.BreakdownPartner,
			BreakdownName: name,
			DealCount:     b.Count,
			ForecastValue: b.Value,
		})
	}
	return rows
}

func accumulate(m map[string]BreakdownSlice, name string, wv float64) {
	b := m[name]
	b.Count++
	b.Value += wv
	m[name] = b
}

func bucketName(name *string) string {
	if name == nil || *name == "" {
		return domain.UnassignedBucket
	}
	return *name
}
