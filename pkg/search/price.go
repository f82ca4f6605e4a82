package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"exchange-support-be/pkg/store"
)

// priceCacheTTL keeps quotes fresh enough for support answers while
// shielding the exchange API from repeated identical lookups.
const priceCacheTTL = 30 * time.Second

// symbolAliases maps common Korean/English coin names to ticker symbols.
var symbolAliases = map[string]string{
	"비트코인":     "BTC",
	"bitcoin":  "BTC",
	"btc":      "BTC",
	"이더리움":     "ETH",
	"ethereum": "ETH",
	"eth":      "ETH",
	"리플":       "XRP",
	"ripple":   "XRP",
	"xrp":      "XRP",
	"솔라나":      "SOL",
	"solana":   "SOL",
	"sol":      "SOL",
	"테더":       "USDT",
	"tether":   "USDT",
	"usdt":     "USDT",
	"도지코인":     "DOGE",
	"dogecoin": "DOGE",
	"doge":     "DOGE",
}

// PriceProvider fetches quotes from the exchange ticker API with a short
// redis cache in front.
type PriceProvider struct {
	baseURL string
	client  *http.Client
	redis   *redis.Client
	logger  *log.Logger
}

func NewPriceProvider(baseURL string, redisClient *redis.Client, logger *log.Logger) *PriceProvider {
	return &PriceProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		redis:   redisClient,
		logger:  logger,
	}
}

type tickerResponse struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"trade_price"`
	Change24h float64 `json:"signed_change_rate"`
	High24h   float64 `json:"high_price"`
	Low24h    float64 `json:"low_price"`
}

// Quote returns a single record tagged with the price-api source, or a
// system notice record when the symbol is not listed. Either way the
// caller gets something to ground the answer on.
func (p *PriceProvider) Quote(ctx context.Context, query string) ([]store.RetrievalRecord, error) {
	symbol := ExtractSymbol(query)
	if symbol == "" {
		return []store.RetrievalRecord{{
			Text:   "요청한 종목을 인식하지 못했습니다. 지원하지 않는 종목이거나 상장되지 않은 코인일 수 있습니다.",
			Source: store.SourceSystemNotice,
			Score:  1.0,
		}}, nil
	}

	if cached := p.fromCache(ctx, symbol); cached != nil {
		return cached, nil
	}

	ticker, err := p.fetchTicker(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ticker == nil {
		return []store.RetrievalRecord{{
			Text:   fmt.Sprintf("%s 종목은 현재 거래소에 상장되어 있지 않습니다.", symbol),
			Source: store.SourceSystemNotice,
			Score:  1.0,
		}}, nil
	}

	records := []store.RetrievalRecord{{
		Text: fmt.Sprintf("%s 현재가: %.0f원, 24시간 변동률: %+.2f%%, 고가: %.0f원, 저가: %.0f원",
			ticker.Symbol, ticker.Price, ticker.Change24h*100, ticker.High24h, ticker.Low24h),
		Source: store.SourcePriceAPI,
		Score:  1.0,
	}}
	p.toCache(ctx, symbol, records)
	return records, nil
}

func (p *PriceProvider) fetchTicker(ctx context.Context, symbol string) (*tickerResponse, error) {
	endpoint := fmt.Sprintf("%s/api/v1/ticker?symbol=%s", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ticker request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ticker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ticker returned status %d: %s", resp.StatusCode, string(body))
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return nil, fmt.Errorf("failed to decode ticker response: %w", err)
	}
	if ticker.Symbol == "" {
		ticker.Symbol = symbol
	}
	return &ticker, nil
}

func (p *PriceProvider) fromCache(ctx context.Context, symbol string) []store.RetrievalRecord {
	if p.redis == nil {
		return nil
	}
	raw, err := p.redis.Get(ctx, priceCacheKey(symbol)).Bytes()
	if err != nil {
		return nil
	}
	var records []store.RetrievalRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil
	}
	return records
}

func (p *PriceProvider) toCache(ctx context.Context, symbol string, records []store.RetrievalRecord) {
	if p.redis == nil {
		return
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := p.redis.Set(ctx, priceCacheKey(symbol), raw, priceCacheTTL).Err(); err != nil {
		p.logger.Printf("[SEARCH] Failed to cache quote for %s: %v", symbol, err)
	}
}

func priceCacheKey(symbol string) string {
	return "price:quote:" + symbol
}

// ExtractSymbol resolves a coin mention in the query to a ticker symbol.
func ExtractSymbol(query string) string {
	lowered := strings.ToLower(query)
	for alias, symbol := range symbolAliases {
		if strings.Contains(lowered, alias) {
			return symbol
		}
	}
	return ""
}
