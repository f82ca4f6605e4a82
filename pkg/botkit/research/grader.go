package research

import (
	"context"
	"regexp"

	"exchange-support-be/pkg/botkit/lexicon"
	"exchange-support-be/pkg/store"
)

// Scores forced by the deterministic overrides.
const (
	systemNoticeScore = 0.9
	priceAPIScore     = 0.95
	priceCapScore     = 0.4
)

// priceTokenPattern matches numeric tokens that look like an actual
// price, rate or percentage in either currency convention.
var priceTokenPattern = regexp.MustCompile(`(?i)(?:[$₩€£]\s?\d[\d,]*(?:\.\d+)?|\d[\d,]*(?:\.\d+)?\s?(?:%|usd|krw|usdt|eur|원|달러|won|dollars?))`)

// grade scores the accumulated results against the question. Deterministic
// overrides run before and after the model call; a failed model call
// degrades to an insufficient zero score.
func (c *Controller) grade(ctx context.Context, question string, results []store.RetrievalRecord) *store.GraderResult {
	// Nothing retrieved: grading the void wastes a model call.
	if len(results) == 0 {
		return &store.GraderResult{
			Score:        0,
			IsSufficient: false,
			Feedback:     "no search results were retrieved",
		}
	}

	// A system notice describes a hard service limitation and is always a
	// complete answer by itself.
	for _, r := range results {
		if r.Source == store.SourceSystemNotice {
			c.logger.Printf("[RESEARCH] System notice present, forcing sufficient")
			return &store.GraderResult{
				Score:        systemNoticeScore,
				IsSufficient: true,
				Feedback:     "system notice explains the limitation",
			}
		}
	}

	// Direct price-API data is authoritative for the quote itself.
	for _, r := range results {
		if r.Source == store.SourcePriceAPI {
			c.logger.Printf("[RESEARCH] Price-API result present, forcing sufficient")
			return &store.GraderResult{
				Score:        priceAPIScore,
				IsSufficient: true,
				Feedback:     "direct price data retrieved",
			}
		}
	}

	graded, err := c.caps.Grade(ctx, question, results)
	if err != nil {
		c.logger.Printf("[RESEARCH] Grade call failed: %v", err)
		graded = &store.GraderResult{
			Score:        0,
			IsSufficient: false,
			Feedback:     "grading unavailable",
		}
	}

	// A price question without a single numeric price token anywhere in
	// the results cannot be sufficient, whatever the model thinks.
	if lexicon.HasPriceIntent(question) && !containsPriceToken(results) {
		if graded.Score > priceCapScore {
			graded.Score = priceCapScore
		}
		graded.IsSufficient = false
		if graded.MissingInformation == "" {
			graded.MissingInformation = "no numeric price found in results"
		}
		c.logger.Printf("[RESEARCH] Price question without numeric token, capping score at %.1f", priceCapScore)
	}

	return graded
}

func containsPriceToken(results []store.RetrievalRecord) bool {
	for _, r := range results {
		if priceTokenPattern.MatchString(r.Text) {
			return true
		}
	}
	return false
}
