package wallet

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPopulateRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/coins/stellar/market_chart/range") {
			http.NotFound(w, r)
			return
		}
		// two samples on Jan 1 (the later one wins) and one on Jan 2
		fmt.Fprint(w, `{"prices":[
			[1735726800000, 0.100000],
			[1735732800000, 0.110472],
			[1735819200000, 0.120001]
		]}`)
	}))
	defer server.Close()

	rows := []TxRow{
		mkRow("tx1", day("2025-01-01"), 0, in(XLM, unit)),
		{Hash: "tx2", Time: day("2025-01-02"), Balances: Balances{XLM: unit, USDC: 0, EURC: 0}},
	}
	book := NewPriceBook()
	g := &CoinGecko{BaseURL: server.URL, Client: server.Client()}
	if err := g.PopulateRates(book, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := book.Price(XLM, NewDate(2025, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 110_472 {
		t.Errorf("Jan 1 price = %d, want 110472 (the day's last sample)", got)
	}
	got, err = book.Price(XLM, NewDate(2025, 1, 2))
	if err != nil || got != 120_001 {
		t.Errorf("Jan 2 price = %d (%v), want 120001", got, err)
	}
}

func TestPopulateRatesReportsMissingDays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[]}`)
	}))
	defer server.Close()

	rows := []TxRow{mkRow("tx1", day("2025-01-01"), 0, in(XLM, unit))}
	g := &CoinGecko{BaseURL: server.URL, Client: server.Client()}
	err := g.PopulateRates(NewPriceBook(), rows)
	if err == nil {
		t.Fatal("expected a missing price error")
	}
	if !strings.Contains(err.Error(), "XLM") || !strings.Contains(err.Error(), "2025-01-01") {
		t.Errorf("error %q does not name the missing pair", err)
	}
}

func TestPopulateRatesSkipsKnownDays(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"prices":[]}`)
	}))
	defer server.Close()

	rows := []TxRow{mkRow("tx1", day("2025-01-01"), 0, in(XLM, unit))}
	book := NewPriceBook()
	book.Set(XLM, NewDate(2025, 1, 1), 110_000)
	g := &CoinGecko{BaseURL: server.URL, Client: server.Client()}
	if err := g.PopulateRates(book, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("made %d requests for an already-complete book, want 0", calls)
	}
}
