package specialist

import (
	"context"
	"fmt"
	"log"
	"time"

	"exchange-support-be/pkg/botkit/capability"
	"exchange-support-be/pkg/botkit/lexicon"
	"exchange-support-be/pkg/fusion"
	"exchange-support-be/pkg/store"
)

// Retriever is the local-knowledge retrieval collaborator, both legs of
// the hybrid search.
type Retriever interface {
	VectorSearch(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error)
	KeywordSearch(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error)
}

// SupportPageSearcher is the secondary keyword search over the exchange's
// public support pages.
type SupportPageSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error)
}

// Writer produces the final FAQ answer from retrieved references.
type Writer interface {
	Write(ctx context.Context, req capability.WriteRequest) (string, error)
}

type FAQConfig struct {
	// Threshold a top result must clear to answer locally; the strict
	// variant applies to questions the classifier explicitly tagged FAQ.
	Threshold       float64
	StrictThreshold float64
	Limit           int
}

func DefaultFAQConfig() FAQConfig {
	return FAQConfig{
		Threshold:       0.7,
		StrictThreshold: 0.75,
		Limit:           5,
	}
}

// FAQ answers exchange-procedure questions from local knowledge. When the
// retrieved material is too weak it escalates to the research loop
// instead of answering badly.
type FAQ struct {
	retriever Retriever
	support   SupportPageSearcher
	writer    Writer
	cfg       FAQConfig
	logger    *log.Logger
}

func NewFAQ(retriever Retriever, support SupportPageSearcher, writer Writer, cfg FAQConfig, logger *log.Logger) *FAQ {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultFAQConfig().Threshold
	}
	if cfg.StrictThreshold <= 0 {
		cfg.StrictThreshold = DefaultFAQConfig().StrictThreshold
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultFAQConfig().Limit
	}
	return &FAQ{retriever: retriever, support: support, writer: writer, cfg: cfg, logger: logger}
}

// Handle answers locally or reports that the question must escalate to
// research. When escalate is true no assistant message has been appended.
func (f *FAQ) Handle(ctx context.Context, state store.ConversationState, decision store.RoutingDecision) (out store.ConversationState, escalate bool, err error) {
	question := state.LastUserMessage()

	// Date/time questions are answered directly, no retrieval involved.
	if lexicon.HasDateTimeIntent(question) {
		return f.answerDateTime(state)
	}

	vectorResults, err := f.retriever.VectorSearch(ctx, question, f.cfg.Limit)
	if err != nil {
		f.logger.Printf("[FAQ] Vector search failed: %v", err)
		vectorResults = nil
	}
	keywordResults, err := f.retriever.KeywordSearch(ctx, question, f.cfg.Limit)
	if err != nil {
		f.logger.Printf("[FAQ] Keyword search failed: %v", err)
		keywordResults = nil
	}

	opts := fusion.DefaultOptions()
	opts.TopK = f.cfg.Limit
	opts.UseRRF = false
	fused := fusion.Fuse(vectorResults, keywordResults, opts)

	supportResults, err := f.support.Search(ctx, question, f.cfg.Limit)
	if err != nil {
		f.logger.Printf("[FAQ] Support-page search failed: %v", err)
		supportResults = nil
	}

	threshold := f.cfg.Threshold
	if decision.QuestionType == store.QuestionFAQ {
		threshold = f.cfg.StrictThreshold
	}

	if topScore(fused) < threshold && topScore(supportResults) < threshold {
		f.logger.Printf("[FAQ] Local knowledge below threshold %.2f (fused=%.2f support=%.2f), escalating",
			threshold, topScore(fused), topScore(supportResults))
		return state, true, nil
	}

	references := append(fused, supportResults...)
	state, err = store.Apply(state, store.StepSpecialist, store.Patch{AppendDB: references})
	if err != nil {
		return state, false, err
	}

	answer, err := f.writer.Write(ctx, capability.WriteRequest{
		Question:  question,
		History:   state.Messages,
		DBResults: state.DBResults,
	})
	if err != nil {
		return state, false, err
	}

	used := "faq"
	state, err = store.Apply(state, store.StepSpecialist, store.Patch{
		SpecialistUsed: &used,
		AppendMessage:  &store.ChatTurn{Role: store.RoleAssistant, Text: answer},
	})
	return state, false, err
}

func (f *FAQ) answerDateTime(state store.ConversationState) (store.ConversationState, bool, error) {
	now := time.Now()
	answer := fmt.Sprintf("현재 시각은 %s (KST 기준 %s) 입니다.",
		now.Format("2006-01-02 15:04"),
		now.In(kst()).Format("2006-01-02 15:04"))

	used := "faq"
	state, err := store.Apply(state, store.StepSpecialist, store.Patch{
		SpecialistUsed: &used,
		AppendMessage:  &store.ChatTurn{Role: store.RoleAssistant, Text: answer},
	})
	return state, false, err
}

func kst() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func topScore(results []store.RetrievalRecord) float64 {
	best := 0.0
	for _, r := range results {
		if r.Score > best {
			best = r.Score
		}
	}
	return best
}
