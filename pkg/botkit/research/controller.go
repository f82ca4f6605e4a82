// Package research runs the bounded Plan -> Search -> Grade -> Write
// cycle used when no specialist can answer from local knowledge alone.
package research

import (
	"context"
	"log"
	"time"

	"exchange-support-be/pkg/botkit/capability"
	"exchange-support-be/pkg/store"
)

// Capabilities is the subset of the language-model capability engine the
// loop controller needs.
type Capabilities interface {
	Plan(ctx context.Context, req capability.PlanRequest) (*store.SearchPlan, error)
	Grade(ctx context.Context, question string, results []store.RetrievalRecord) (*store.GraderResult, error)
	Write(ctx context.Context, req capability.WriteRequest) (string, error)
}

// WebSearcher is the external web/price retrieval collaborator. One call
// per query; the collaborator may fail over between engines internally.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]store.RetrievalRecord, error)
}

type Config struct {
	MaxLoops     int
	MaxQueries   int
	AcceptScore  float64
	QueryTimeout time.Duration

	// DiversityCeiling flags retries whose queries are near-copies of the
	// previous iteration. Observability only, never blocks progress.
	DiversityCeiling float64

	OfficialSiteURL string
}

func DefaultConfig() Config {
	return Config{
		MaxLoops:         3,
		MaxQueries:       7,
		AcceptScore:      0.7,
		QueryTimeout:     10 * time.Second,
		DiversityCeiling: 0.8,
		OfficialSiteURL:  "https://www.exchange.example",
	}
}

type Controller struct {
	caps     Capabilities
	searcher WebSearcher
	cfg      Config
	logger   *log.Logger
}

func NewController(caps Capabilities, searcher WebSearcher, cfg Config, logger *log.Logger) *Controller {
	if cfg.MaxLoops <= 0 {
		cfg.MaxLoops = DefaultConfig().MaxLoops
	}
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = DefaultConfig().MaxQueries
	}
	if cfg.AcceptScore <= 0 {
		cfg.AcceptScore = DefaultConfig().AcceptScore
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultConfig().QueryTimeout
	}
	if cfg.DiversityCeiling <= 0 {
		cfg.DiversityCeiling = DefaultConfig().DiversityCeiling
	}
	return &Controller{caps: caps, searcher: searcher, cfg: cfg, logger: logger}
}

// Run drives one research cycle to completion and returns the state with
// the final assistant answer appended. It never returns an error: every
// failure path converges on a fallback write.
func (c *Controller) Run(ctx context.Context, state store.ConversationState) store.ConversationState {
	question := state.LastUserMessage()

	var (
		prevQueries []string
		feedback    string
		lastGrade   *store.GraderResult
	)

	for {
		plan := c.plan(ctx, question, prevQueries, feedback)

		// An empty plan cannot be graded. Fall through to the writer with
		// whatever results earlier iterations accumulated.
		if len(plan.Queries) == 0 {
			c.logger.Printf("[RESEARCH] Planner produced zero queries, writing fallback")
			return c.write(ctx, state, question, true, feedback)
		}

		if len(prevQueries) > 0 {
			c.checkDiversity(prevQueries, plan.Queries)
		}

		state = c.apply(state, store.StepPlan, store.Patch{SetQueries: plan.Queries})

		results := c.fanOut(ctx, plan.Queries)
		results = dedupeByURL(state.WebResults, results)
		state = c.apply(state, store.StepSearch, store.Patch{AppendWeb: results})

		grade := c.grade(ctx, question, state.WebResults)
		lastGrade = grade
		state = c.apply(state, store.StepGrade, store.Patch{
			GraderScore:  &grade.Score,
			IsSufficient: &grade.IsSufficient,
		})

		c.logger.Printf("[RESEARCH] Iteration %d: %d results, score=%.2f sufficient=%v",
			state.SearchLoopCount+1, len(state.WebResults), grade.Score, grade.IsSufficient)

		// Loop transition, evaluated strictly in this order.
		switch {
		case len(state.WebResults) == 0 && state.SearchLoopCount > 0:
			return c.write(ctx, state, question, true, grade.Feedback)

		case grade.IsSufficient && grade.Score >= c.cfg.AcceptScore:
			return c.write(ctx, state, question, false, "")

		case state.SearchLoopCount < c.cfg.MaxLoops:
			refinement := state.RefinementCount + 1
			state = c.apply(state, store.StepPlan, store.Patch{
				IncrementLoop:   true,
				RefinementCount: &refinement,
			})
			prevQueries = plan.Queries
			feedback = grade.Feedback

		default:
			c.logger.Printf("[RESEARCH] Loop budget exhausted after %d iterations", state.SearchLoopCount+1)
			return c.write(ctx, state, question, true, lastGrade.Feedback)
		}
	}
}

func (c *Controller) plan(ctx context.Context, question string, prevQueries []string, feedback string) *store.SearchPlan {
	plan, err := c.caps.Plan(ctx, capability.PlanRequest{
		Question:        question,
		PreviousQueries: prevQueries,
		GraderFeedback:  feedback,
		MaxQueries:      c.cfg.MaxQueries,
	})
	if err != nil {
		c.logger.Printf("[RESEARCH] Plan call failed: %v", err)
		return &store.SearchPlan{}
	}
	// The capability engine already bounds its own output, but the fan-out
	// budget must hold for any Capabilities implementation.
	if len(plan.Queries) > c.cfg.MaxQueries {
		c.logger.Printf("[RESEARCH] Planner returned %d queries, clamping to %d", len(plan.Queries), c.cfg.MaxQueries)
		plan.Queries = plan.Queries[:c.cfg.MaxQueries]
	}
	return plan
}

func (c *Controller) checkDiversity(prevQueries, newQueries []string) {
	ratio := querySetSimilarity(prevQueries, newQueries)
	if ratio > c.cfg.DiversityCeiling {
		c.logger.Printf("[RESEARCH] Low-diversity retry: new queries %.0f%% similar to previous", ratio*100)
	}
}

func (c *Controller) apply(state store.ConversationState, step store.Step, patch store.Patch) store.ConversationState {
	next, err := store.Apply(state, step, patch)
	if err != nil {
		// A rejected patch is a programming error in this package, not a
		// user-facing failure. Log and keep the previous state.
		c.logger.Printf("[RESEARCH] Patch rejected at step %s: %v", step, err)
		return state
	}
	return next
}
