package engine

import (
	"math"
	"testing"

	"grainboard/internal/model"
)

func aggFixture() []model.Shipment {
	return []model.Shipment{
		{ID: 1, ScheduledDate: day(2025, 6, 20), Grain: "Soybean", AllocatedAmount: 500, FreightPerUnit: 3, TripsRequired: 1, TrucksRequired: 1},
		{ID: 2, ScheduledDate: day(2025, 6, 28), Grain: "Corn", AllocatedAmount: 700, FreightPerUnit: 2.5, TripsRequired: 1, TrucksRequired: 1},
		{ID: 3, ScheduledDate: day(2025, 7, 2), Grain: "Soybean", AllocatedAmount: 1800, FreightPerUnit: 4, TripsRequired: 2, TrucksRequired: 2},
		{ID: 4, ScheduledDate: day(2025, 7, 15), Grain: "Wheat", AllocatedAmount: 900, FreightPerUnit: 5, TripsRequired: 1, TrucksRequired: 1},
	}
}

func TestAggregateByGrainTotalsArePreserved(t *testing.T) {
	in := aggFixture()
	groups := AggregateByGrain(in)

	var amount, count int
	var revenue float64
	for _, g := range groups {
		amount += g.TotalAmount
		revenue += g.TotalRevenue
		count += g.Count
	}

	var wantAmount int
	var wantRevenue float64
	for _, s := range in {
		wantAmount += s.AllocatedAmount
		wantRevenue += Revenue(s)
	}
	if amount != wantAmount {
		t.Fatalf("grouped amount %d != ungrouped %d", amount, wantAmount)
	}
	if math.Abs(revenue-wantRevenue) > 1e-9 {
		t.Fatalf("grouped revenue %f != ungrouped %f", revenue, wantRevenue)
	}
	if count != len(in) {
		t.Fatalf("grouped count %d != %d rows", count, len(in))
	}
}

func TestAggregateByGrainFirstSeenOrder(t *testing.T) {
	groups := AggregateByGrain(aggFixture())
	want := []string{"Soybean", "Corn", "Wheat"}
	if len(groups) != len(want) {
		t.Fatalf("groups: got %d, want %d", len(groups), len(want))
	}
	for i, g := range groups {
		if g.Grain != want[i] {
			t.Fatalf("group %d: got %s, want %s", i, g.Grain, want[i])
		}
	}
	if groups[0].TotalAmount != 2300 || groups[0].Count != 2 {
		t.Fatalf("soybean group: %+v", groups[0])
	}
}

func TestAggregateByMonthMergesDays(t *testing.T) {
	months := AggregateByMonth(aggFixture())
	if len(months) != 2 {
		t.Fatalf("months: got %d, want 2", len(months))
	}
	if months[0].Label != "Jun 25" || months[0].TotalTrips != 2 || months[0].TotalTrucks != 2 {
		t.Fatalf("june: %+v", months[0])
	}
	if months[1].Label != "Jul 25" || months[1].TotalTrips != 3 || months[1].TotalTrucks != 3 {
		t.Fatalf("july: %+v", months[1])
	}
}

func TestAggregateByMonthSeparatesYears(t *testing.T) {
	in := []model.Shipment{
		{ScheduledDate: day(2024, 6, 1), TripsRequired: 1, TrucksRequired: 1},
		{ScheduledDate: day(2025, 6, 1), TripsRequired: 1, TrucksRequired: 1},
	}
	months := AggregateByMonth(in)
	if len(months) != 2 {
		t.Fatalf("same month across years must not merge: %+v", months)
	}
}

func TestSummarize(t *testing.T) {
	in := aggFixture()
	in[2].TrucksSource = model.SourceManual
	sum := Summarize(in)
	if sum.TotalLoads != 4 || sum.TotalSacks != 3900 || sum.TotalTrucks != 5 {
		t.Fatalf("summary: %+v", sum)
	}
	wantFreight := 500*3.0 + 700*2.5 + 1800*4.0 + 900*5.0
	if math.Abs(sum.TotalFreight-wantFreight) > 1e-9 {
		t.Fatalf("freight: got %f, want %f", sum.TotalFreight, wantFreight)
	}
	if math.Abs(sum.TotalRevenue-wantFreight*RevenueMultiplier) > 1e-9 {
		t.Fatalf("revenue: got %f, want %f", sum.TotalRevenue, wantFreight*RevenueMultiplier)
	}
	if sum.ManualAdjustments != 1 {
		t.Fatalf("manual adjustments: got %d, want 1", sum.ManualAdjustments)
	}
}

func TestSummarizeEmptyCollection(t *testing.T) {
	sum := Summarize(nil)
	if sum != (model.BoardSummary{}) {
		t.Fatalf("empty collection: %+v", sum)
	}
}
