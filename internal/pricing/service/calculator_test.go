package service

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCalculateStaySingleSeason(t *testing.T) {
	rates := []Rate{
		{Season: "high", RateCents: 120000, StartDate: date("2026-12-01"), EndDate: date("2027-01-31")},
	}

	quote, err := NewCalculator().CalculateStay(rates, date("2026-12-20"), date("2026-12-23"))
	if err != nil {
		t.Fatalf("CalculateStay returned error: %v", err)
	}
	if len(quote.Nights) != 3 {
		t.Fatalf("expected 3 nights, got %d", len(quote.Nights))
	}
	if quote.TotalCents != 360000 {
		t.Fatalf("expected total 360000 cents, got %d", quote.TotalCents)
	}
	for _, n := range quote.Nights {
		if n.Season != "high" {
			t.Fatalf("expected season high for night %s, got %s", n.Date.Format(time.DateOnly), n.Season)
		}
	}
}

func TestCalculateStayCheckoutNightNotCharged(t *testing.T) {
	rates := []Rate{
		{Season: "standard", RateCents: 100000, StartDate: date("2026-01-01"), EndDate: date("2026-12-31")},
	}

	quote, err := NewCalculator().CalculateStay(rates, date("2026-03-10"), date("2026-03-11"))
	if err != nil {
		t.Fatalf("CalculateStay returned error: %v", err)
	}
	if len(quote.Nights) != 1 {
		t.Fatalf("expected exactly 1 night for a one-night stay, got %d", len(quote.Nights))
	}
	if !quote.Nights[0].Date.Equal(date("2026-03-10")) {
		t.Fatalf("expected the check-in night to be charged, got %s", quote.Nights[0].Date.Format(time.DateOnly))
	}
}

func TestCalculateStayOverlappingSeasonsPicksHighest(t *testing.T) {
	rates := []Rate{
		{Season: "standard", RateCents: 100000, StartDate: date("2026-01-01"), EndDate: date("2026-12-31")},
		{Season: "festive", RateCents: 120000, StartDate: date("2026-12-15"), EndDate: date("2026-12-31")},
	}

	quote, err := NewCalculator().CalculateStay(rates, date("2026-12-20"), date("2026-12-21"))
	if err != nil {
		t.Fatalf("CalculateStay returned error: %v", err)
	}
	if quote.Nights[0].RateCents != 120000 {
		t.Fatalf("expected the higher overlapping rate 120000, got %d", quote.Nights[0].RateCents)
	}
	if quote.Nights[0].Season != "festive" {
		t.Fatalf("expected season festive, got %s", quote.Nights[0].Season)
	}
}

func TestCalculateStayGapFallsBackToLowestRate(t *testing.T) {
	rates := []Rate{
		{Season: "high", RateCents: 150000, StartDate: date("2026-12-01"), EndDate: date("2026-12-31")},
		{Season: "low", RateCents: 80000, StartDate: date("2026-05-01"), EndDate: date("2026-08-31")},
	}

	// Night in October falls outside both windows.
	quote, err := NewCalculator().CalculateStay(rates, date("2026-10-10"), date("2026-10-11"))
	if err != nil {
		t.Fatalf("CalculateStay returned error: %v", err)
	}
	if quote.Nights[0].RateCents != 80000 {
		t.Fatalf("expected fallback to lowest rate 80000, got %d", quote.Nights[0].RateCents)
	}
	if quote.Nights[0].Season != "low" {
		t.Fatalf("expected fallback season low, got %s", quote.Nights[0].Season)
	}
}

func TestCalculateStaySpanningSeasonBoundary(t *testing.T) {
	rates := []Rate{
		{Season: "shoulder", RateCents: 90000, StartDate: date("2026-11-01"), EndDate: date("2026-11-30")},
		{Season: "high", RateCents: 140000, StartDate: date("2026-12-01"), EndDate: date("2027-01-15")},
	}

	quote, err := NewCalculator().CalculateStay(rates, date("2026-11-29"), date("2026-12-02"))
	if err != nil {
		t.Fatalf("CalculateStay returned error: %v", err)
	}
	if len(quote.Nights) != 3 {
		t.Fatalf("expected 3 nights, got %d", len(quote.Nights))
	}
	want := []int64{90000, 90000, 140000}
	var total int64
	for i, n := range quote.Nights {
		if n.RateCents != want[i] {
			t.Fatalf("night %d: expected %d cents, got %d", i, want[i], n.RateCents)
		}
		total += n.RateCents
	}
	if quote.TotalCents != total {
		t.Fatalf("total mismatch: expected %d, got %d", total, quote.TotalCents)
	}
}

func TestCalculateStayEmptyRateTable(t *testing.T) {
	_, err := NewCalculator().CalculateStay(nil, date("2026-03-10"), date("2026-03-12"))
	if err == nil {
		t.Fatal("expected error for empty rate table, got nil")
	}
}

func TestCalculateStayInvalidRange(t *testing.T) {
	rates := []Rate{
		{Season: "standard", RateCents: 100000, StartDate: date("2026-01-01"), EndDate: date("2026-12-31")},
	}

	if _, err := NewCalculator().CalculateStay(rates, date("2026-03-12"), date("2026-03-12")); err == nil {
		t.Fatal("expected error when check_out equals check_in")
	}
	if _, err := NewCalculator().CalculateStay(rates, date("2026-03-12"), date("2026-03-10")); err == nil {
		t.Fatal("expected error when check_out is before check_in")
	}
}
