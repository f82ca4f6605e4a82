package search

import (
	"context"
	"fmt"
	"log"

	"exchange-support-be/pkg/store"
)

// SupportSite searches the exchange's public support center by scoping
// web queries to its domain.
type SupportSite struct {
	web    *WebProvider
	domain string
	logger *log.Logger
}

func NewSupportSite(web *WebProvider, domain string, logger *log.Logger) *SupportSite {
	return &SupportSite{web: web, domain: domain, logger: logger}
}

func (s *SupportSite) Search(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error) {
	scoped := fmt.Sprintf("site:%s %s", s.domain, query)
	results, err := s.web.Search(ctx, scoped)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Source = "support_page"
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
