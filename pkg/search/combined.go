package search

import (
	"context"
	"log"

	"exchange-support-be/pkg/botkit/lexicon"
	"exchange-support-be/pkg/store"
)

// Combined routes a research query to the right external source: price
// questions hit the ticker API first, everything goes through the web.
type Combined struct {
	web    *WebProvider
	price  *PriceProvider
	logger *log.Logger
}

func NewCombined(web *WebProvider, price *PriceProvider, logger *log.Logger) *Combined {
	return &Combined{web: web, price: price, logger: logger}
}

func (c *Combined) Search(ctx context.Context, query string) ([]store.RetrievalRecord, error) {
	var records []store.RetrievalRecord

	if c.price != nil && lexicon.HasPriceIntent(query) {
		quotes, err := c.price.Quote(ctx, query)
		if err != nil {
			c.logger.Printf("[SEARCH] Price lookup failed for %q: %v", query, err)
		} else {
			records = append(records, quotes...)
		}
	}

	webResults, err := c.web.Search(ctx, query)
	if err != nil {
		// A price quote alone can still carry the answer.
		if len(records) > 0 {
			c.logger.Printf("[SEARCH] Web search failed for %q, using price results only: %v", query, err)
			return records, nil
		}
		return nil, err
	}

	return append(records, webResults...), nil
}
