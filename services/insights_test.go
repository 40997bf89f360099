package services

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/utils"
)

func price(n int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(n))
}

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{VIN: "A", Year: 2020, Make: "Ford", Model: "F-150", Price: price(30000), Mileage: intPtr(10000), DealerName: "Acme", DealerState: "IL"},
		{VIN: "B", Year: 2020, Make: "Ford", Model: "F-150", Price: price(25000), Mileage: intPtr(20000), DealerName: "Acme", DealerState: "IL"},
		{VIN: "C", Year: 2020, Make: "Ford", Model: "F-150", Price: price(20000), DealerName: "Bolt Auto", DealerState: "TX"},
		{VIN: "D", Year: 2020, Make: "Ford", Model: "F-150", Mileage: intPtr(60000), DealerName: "Bolt Auto", DealerState: "TX"},
		{VIN: "E", Year: 2020, Make: "Ford", Model: "F-150", Price: price(45000)},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5", r.TotalListings)
	}
	if r.PricedListings != 4 {
		t.Errorf("PricedListings: got %d, want 4", r.PricedListings)
	}
	if r.ListingsByState["IL"] != 2 || r.ListingsByState["TX"] != 2 || len(r.ListingsByState) != 2 {
		t.Errorf("ListingsByState: got %v", r.ListingsByState)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleListings())
	if r.AveragePrice != 30000 {
		t.Errorf("AveragePrice: got %.2f, want 30000", r.AveragePrice)
	}
	if r.MinPrice != 20000 {
		t.Errorf("MinPrice: got %.2f, want 20000", r.MinPrice)
	}
	if r.MaxPrice != 45000 {
		t.Errorf("MaxPrice: got %.2f, want 45000", r.MaxPrice)
	}
	if r.AverageMileage != 30000 {
		t.Errorf("AverageMileage: got %.2f, want 30000", r.AverageMileage)
	}
}

func TestInsightExtremes(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleListings())
	if r.Cheapest == nil || r.Cheapest.VIN != "C" {
		t.Errorf("Cheapest: got %+v, want VIN C", r.Cheapest)
	}
	if r.MostExpensive == nil || r.MostExpensive.VIN != "E" {
		t.Errorf("MostExpensive: got %+v, want VIN E", r.MostExpensive)
	}
}

func TestInsightEmpty(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 listings, got %d", r.TotalListings)
	}
	if r.Cheapest != nil || r.MostExpensive != nil {
		t.Error("expected no extremes for an empty sample")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleListings()))

	out := buf.String()
	for _, want := range []string{"Sample listings", "$30000.00", "Cheapest Listing", "2020 Ford F-150 (C)", "IL"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	svc.Print(&buf, svc.Generate(nil))
	if !bytes.Contains(buf.Bytes(), []byte("No price data available")) {
		t.Errorf("expected empty-report message, got:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("a very long title indeed", 10); got != "a very ..." {
		t.Errorf("got %q", got)
	}
}
