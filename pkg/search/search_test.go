package search

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exchange-support-be/pkg/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestExtractSymbol(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"비트코인 시세 알려줘", "BTC"},
		{"what is the Bitcoin price", "BTC"},
		{"BTC 현재가", "BTC"},
		{"이더리움 얼마야", "ETH"},
		{"리플 가격", "XRP"},
		{"DOGE price", "DOGE"},
		{"테더 환율", "USDT"},
		{"날씨 알려줘", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractSymbol(tt.query); got != tt.want {
			t.Errorf("ExtractSymbol(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func searxHandler(results []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}
}

func TestWebProviderSearch(t *testing.T) {
	srv := httptest.NewServer(searxHandler([]map[string]any{
		{"title": "Fee guide", "url": "https://a", "content": "withdrawal fees", "score": 2.5},
		{"title": "Empty content", "url": "https://b", "score": 1.0},
	}))
	defer srv.Close()

	p := NewWebProvider(srv.URL, "", 5, testLogger())
	got, err := p.Search(context.Background(), "withdrawal fee")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].Text != "withdrawal fees" || got[0].Source != "web" || got[0].URL != "https://a" {
		t.Errorf("first record = %+v", got[0])
	}
	// Title stands in when the snippet is empty.
	if got[1].Text != "Empty content" {
		t.Errorf("second record text = %q", got[1].Text)
	}
}

func TestWebProviderCapsResults(t *testing.T) {
	var results []map[string]any
	for i := 0; i < 8; i++ {
		results = append(results, map[string]any{"title": "r", "url": "https://r", "content": "c"})
	}
	srv := httptest.NewServer(searxHandler(results))
	defer srv.Close()

	p := NewWebProvider(srv.URL, "", 3, testLogger())
	got, err := p.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("results = %d, want maxResults=3", len(got))
	}
}

func TestWebProviderFailsOverToFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(searxHandler([]map[string]any{
		{"title": "from fallback", "url": "https://f", "content": "fallback result"},
	}))
	defer fallback.Close()

	p := NewWebProvider(primary.URL, fallback.URL, 5, testLogger())
	got, err := p.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "fallback result" {
		t.Errorf("results = %+v, want fallback instance result", got)
	}
}

func TestWebProviderBothInstancesDownIsAnError(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	p := NewWebProvider(down.URL, down.URL, 5, testLogger())
	if _, err := p.Search(context.Background(), "q"); err == nil {
		t.Error("Search() error = nil, want failure when both instances are down")
	}
}

func TestPriceProviderQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTC" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"symbol":             "BTC",
			"trade_price":        140000000.0,
			"signed_change_rate": 0.021,
			"high_price":         141000000.0,
			"low_price":          138000000.0,
		})
	}))
	defer srv.Close()

	p := NewPriceProvider(srv.URL, nil, testLogger())
	got, err := p.Quote(context.Background(), "비트코인 시세 알려줘")
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if got[0].Source != store.SourcePriceAPI {
		t.Errorf("Source = %q, want %q", got[0].Source, store.SourcePriceAPI)
	}
	for _, fragment := range []string{"BTC", "140000000원", "+2.10%"} {
		if !strings.Contains(got[0].Text, fragment) {
			t.Errorf("quote text missing %q: %q", fragment, got[0].Text)
		}
	}
}

func TestPriceProviderUnlistedSymbolIsSystemNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPriceProvider(srv.URL, nil, testLogger())
	got, err := p.Quote(context.Background(), "도지코인 시세")
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if len(got) != 1 || got[0].Source != store.SourceSystemNotice {
		t.Fatalf("records = %+v, want one system notice", got)
	}
	if !strings.Contains(got[0].Text, "상장되어 있지 않습니다") {
		t.Errorf("notice text = %q", got[0].Text)
	}
}

func TestPriceProviderUnknownCoinIsSystemNotice(t *testing.T) {
	p := NewPriceProvider("http://unused.invalid", nil, testLogger())

	got, err := p.Quote(context.Background(), "알 수 없는 코인 시세")
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if len(got) != 1 || got[0].Source != store.SourceSystemNotice {
		t.Fatalf("records = %+v, want one system notice", got)
	}
}

func TestSupportSiteScopesAndRelabels(t *testing.T) {
	var seenQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenQuery = r.URL.Query().Get("q")
		searxHandler([]map[string]any{
			{"title": "guide", "url": "https://support/1", "content": "출금 안내"},
		})(w, r)
	}))
	defer srv.Close()

	s := NewSupportSite(NewWebProvider(srv.URL, "", 5, testLogger()), "support.exchange.example", testLogger())
	got, err := s.Search(context.Background(), "출금 방법", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !strings.HasPrefix(seenQuery, "site:support.exchange.example ") {
		t.Errorf("query = %q, want site-scoped", seenQuery)
	}
	if len(got) != 1 || got[0].Source != "support_page" {
		t.Errorf("results = %+v, want support_page source", got)
	}
}

func TestCombinedPrefersPriceThenWeb(t *testing.T) {
	ticker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"symbol": "BTC", "trade_price": 1.0})
	}))
	defer ticker.Close()

	web := httptest.NewServer(searxHandler([]map[string]any{
		{"title": "news", "url": "https://n", "content": "btc news"},
	}))
	defer web.Close()

	c := NewCombined(
		NewWebProvider(web.URL, "", 5, testLogger()),
		NewPriceProvider(ticker.URL, nil, testLogger()),
		testLogger())

	got, err := c.Search(context.Background(), "비트코인 시세")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want price + web", len(got))
	}
	if got[0].Source != store.SourcePriceAPI || got[1].Source != "web" {
		t.Errorf("sources = [%s %s], want price first", got[0].Source, got[1].Source)
	}
}

func TestCombinedWebFailureKeepsPriceResults(t *testing.T) {
	ticker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"symbol": "BTC", "trade_price": 1.0})
	}))
	defer ticker.Close()

	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer web.Close()

	c := NewCombined(
		NewWebProvider(web.URL, "", 5, testLogger()),
		NewPriceProvider(ticker.URL, nil, testLogger()),
		testLogger())

	got, err := c.Search(context.Background(), "비트코인 가격")
	if err != nil {
		t.Fatalf("Search() error = %v, price results must survive web failure", err)
	}
	if len(got) != 1 || got[0].Source != store.SourcePriceAPI {
		t.Errorf("results = %+v, want price-only", got)
	}
}
