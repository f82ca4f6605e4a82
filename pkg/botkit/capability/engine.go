// Package capability wraps the raw LLM provider with the four typed call
// shapes the bot core needs: classify, plan, grade and write. The first
// three parse structured JSON output; write returns plain text.
package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"exchange-support-be/pkg/llm"
	"exchange-support-be/pkg/store"
)

type Engine struct {
	provider llm.LLMProvider
	logger   *log.Logger

	ClassifyTimeout time.Duration
	PlanTimeout     time.Duration
	GradeTimeout    time.Duration
	WriteTimeout    time.Duration
}

func NewEngine(provider llm.LLMProvider, logger *log.Logger) *Engine {
	return &Engine{
		provider:        provider,
		logger:          logger,
		ClassifyTimeout: 10 * time.Second,
		PlanTimeout:     15 * time.Second,
		GradeTimeout:    15 * time.Second,
		WriteTimeout:    30 * time.Second,
	}
}

// --- Classify ---

type classifyWire struct {
	QuestionType        string  `json:"question_type"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning"`
	NeedsFAQSearch      bool    `json:"needs_faq_search"`
	NeedsWebSearch      bool    `json:"needs_web_search"`
	NeedsTxLookup       bool    `json:"needs_transaction_lookup"`
	SuggestedSpecialist string  `json:"suggested_specialist"`
	NeedsClarification  bool    `json:"needs_clarification"`
}

var questionTypeByWire = map[string]store.QuestionType{
	"simple_chat":          store.QuestionSimpleChat,
	"faq":                  store.QuestionFAQ,
	"transaction":          store.QuestionTransaction,
	"web_search":           store.QuestionWebSearch,
	"hybrid":               store.QuestionHybrid,
	"general":              store.QuestionGeneral,
	"intent_clarification": store.QuestionIntentClarification,
}

func (e *Engine) Classify(ctx context.Context, message string, history []store.ChatTurn) (*store.RoutingDecision, error) {
	ctx, cancel := context.WithTimeout(ctx, e.ClassifyTimeout)
	defer cancel()

	prompt := composeClassifyPrompt(message, history)
	response, err := e.provider.Generate(ctx, prompt,
		llm.WithTemperature(0.1), llm.WithJSONOutput())
	if err != nil {
		return nil, fmt.Errorf("classify call failed: %w", err)
	}

	var wire classifyWire
	if err := json.Unmarshal([]byte(extractJSON(response)), &wire); err != nil {
		return nil, fmt.Errorf("classify output parse failed: %w", err)
	}

	qt, ok := questionTypeByWire[strings.ToLower(strings.TrimSpace(wire.QuestionType))]
	if !ok {
		qt = store.QuestionGeneral
	}

	return &store.RoutingDecision{
		QuestionType:           qt,
		Confidence:             clamp(wire.Confidence, 0, 1),
		Reasoning:              wire.Reasoning,
		NeedsFAQSearch:         wire.NeedsFAQSearch,
		NeedsWebSearch:         wire.NeedsWebSearch,
		NeedsTransactionLookup: wire.NeedsTxLookup,
		SuggestedSpecialist:    wire.SuggestedSpecialist,
		NeedsClarification:     wire.NeedsClarification,
	}, nil
}

// --- Plan ---

// PlanRequest carries the retry context: on the second and later loop
// iterations the planner sees what was already tried and why it fell
// short.
type PlanRequest struct {
	Question        string
	PreviousQueries []string
	GraderFeedback  string
	MaxQueries      int
}

type planWire struct {
	Queries      []string `json:"search_queries"`
	ResearchPlan string   `json:"research_plan"`
	Priority     int      `json:"priority"`
}

func (e *Engine) Plan(ctx context.Context, req PlanRequest) (*store.SearchPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, e.PlanTimeout)
	defer cancel()

	prompt := composePlanPrompt(req)
	response, err := e.provider.Generate(ctx, prompt,
		llm.WithTemperature(0.3), llm.WithJSONOutput())
	if err != nil {
		return nil, fmt.Errorf("plan call failed: %w", err)
	}

	var wire planWire
	if err := json.Unmarshal([]byte(extractJSON(response)), &wire); err != nil {
		return nil, fmt.Errorf("plan output parse failed: %w", err)
	}

	maxQueries := req.MaxQueries
	if maxQueries <= 0 || maxQueries > 7 {
		maxQueries = 7
	}
	queries := make([]string, 0, maxQueries)
	for _, q := range wire.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == maxQueries {
			break
		}
	}

	priority := wire.Priority
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}

	return &store.SearchPlan{
		Queries:      queries,
		ResearchPlan: wire.ResearchPlan,
		Priority:     priority,
	}, nil
}

// --- Grade ---

func (e *Engine) Grade(ctx context.Context, question string, results []store.RetrievalRecord) (*store.GraderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.GradeTimeout)
	defer cancel()

	prompt := composeGradePrompt(question, results)
	response, err := e.provider.Generate(ctx, prompt,
		llm.WithTemperature(0.1), llm.WithJSONOutput())
	if err != nil {
		return nil, fmt.Errorf("grade call failed: %w", err)
	}

	var wire store.GraderResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &wire); err != nil {
		return nil, fmt.Errorf("grade output parse failed: %w", err)
	}

	wire.Score = clamp(wire.Score, 0, 1)
	return &wire, nil
}

// --- Write ---

// WriteRequest is everything the answer writer sees: the question, both
// result sets and, for fallback writes, the grader's last feedback.
type WriteRequest struct {
	Question       string
	History        []store.ChatTurn
	DBResults      []store.RetrievalRecord
	WebResults     []store.RetrievalRecord
	Fallback       bool
	GraderFeedback string
}

func (e *Engine) Write(ctx context.Context, req WriteRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.WriteTimeout)
	defer cancel()

	prompt := composeWritePrompt(req)
	response, err := e.provider.Generate(ctx, prompt, llm.WithTemperature(0.6))
	if err != nil {
		return "", fmt.Errorf("write call failed: %w", err)
	}
	return response, nil
}

// Chat is a passthrough for the simple-chat specialist.
func (e *Engine) Chat(ctx context.Context, history []store.ChatTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.WriteTimeout)
	defer cancel()

	messages := make([]llm.Message, len(history))
	for i, turn := range history {
		messages[i] = llm.Message{Role: turn.Role, Content: turn.Text}
	}
	return e.provider.Chat(ctx, messages)
}

// extractJSON isolates JSON content from a model response that may wrap
// it in prose or code fences.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}
	return response[startIdx : endIdx+1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
