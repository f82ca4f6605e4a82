package orchestrator

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"exchange-support-be/pkg/botkit/capability"
	"exchange-support-be/pkg/botkit/classifier"
	"exchange-support-be/pkg/botkit/research"
	"exchange-support-be/pkg/botkit/specialist"
	"exchange-support-be/pkg/store"
	"exchange-support-be/pkg/txlookup"
)

type stubLLM struct {
	decision *store.RoutingDecision
	err      error
}

func (s *stubLLM) Classify(_ context.Context, _ string, _ []store.ChatTurn) (*store.RoutingDecision, error) {
	return s.decision, s.err
}

type stubChatter struct {
	reply string
	err   error
	panic bool
}

func (s *stubChatter) Chat(_ context.Context, _ []store.ChatTurn) (string, error) {
	if s.panic {
		panic("chat model exploded")
	}
	return s.reply, s.err
}

type stubRetriever struct {
	results []store.RetrievalRecord
}

func (s *stubRetriever) VectorSearch(_ context.Context, _ string, _ int) ([]store.RetrievalRecord, error) {
	return s.results, nil
}

func (s *stubRetriever) KeywordSearch(_ context.Context, _ string, _ int) ([]store.RetrievalRecord, error) {
	return nil, nil
}

type stubSupport struct{}

func (stubSupport) Search(_ context.Context, _ string, _ int) ([]store.RetrievalRecord, error) {
	return nil, nil
}

// stubCaps serves the FAQ writer and the whole research loop.
type stubCaps struct {
	answer string
}

func (s *stubCaps) Plan(_ context.Context, _ capability.PlanRequest) (*store.SearchPlan, error) {
	return &store.SearchPlan{Queries: []string{"stub query"}}, nil
}

func (s *stubCaps) Grade(_ context.Context, _ string, _ []store.RetrievalRecord) (*store.GraderResult, error) {
	return &store.GraderResult{Score: 0.9, IsSufficient: true}, nil
}

func (s *stubCaps) Write(_ context.Context, _ capability.WriteRequest) (string, error) {
	return s.answer, nil
}

type stubSearcher struct {
	records []store.RetrievalRecord
}

func (s *stubSearcher) Search(_ context.Context, _ string) ([]store.RetrievalRecord, error) {
	return s.records, nil
}

type stubLookup struct {
	results []txlookup.ChainResult
}

func (s *stubLookup) Lookup(_ context.Context, _ string) ([]txlookup.ChainResult, error) {
	return s.results, nil
}

type stubHook struct {
	saves []string
	err   error
}

func (s *stubHook) Save(_ context.Context, _ string, role, text string) error {
	s.saves = append(s.saves, role+": "+text)
	return s.err
}

type fixture struct {
	llm      *stubLLM
	chatter  *stubChatter
	caps     *stubCaps
	searcher *stubSearcher
	hook     *stubHook
	bot      *Orchestrator
}

func newFixture() *fixture {
	logger := log.New(io.Discard, "", 0)

	f := &fixture{
		llm:      &stubLLM{decision: &store.RoutingDecision{QuestionType: store.QuestionFAQ, Confidence: 0.9}},
		chatter:  &stubChatter{reply: "안녕하세요! 무엇을 도와드릴까요?"},
		caps:     &stubCaps{answer: "조사 결과를 정리한 답변입니다."},
		searcher: &stubSearcher{records: []store.RetrievalRecord{{Text: "검색 결과", Source: "web", URL: "https://r"}}},
		hook:     &stubHook{},
	}

	cls := classifier.New(f.llm, logger)
	simpleChat := specialist.NewSimpleChat(f.chatter, logger)
	faq := specialist.NewFAQ(
		&stubRetriever{results: []store.RetrievalRecord{{Text: "문서", Source: "knowledge_base", Score: 0.95}}},
		stubSupport{}, f.caps, specialist.DefaultFAQConfig(), logger)
	transaction := specialist.NewTransaction(&stubLookup{}, logger)
	controller := research.NewController(f.caps, f.searcher, research.Config{}, logger)

	f.bot = New(cls, simpleChat, faq, transaction, controller, f.hook, logger)
	return f
}

func turnState(question string) store.ConversationState {
	return store.ConversationState{
		SessionID: "s-1",
		Messages:  []store.ChatTurn{{Role: store.RoleUser, Text: question}},
	}
}

func assistantReplies(state store.ConversationState) []string {
	var out []string
	for _, m := range state.Messages {
		if m.Role == store.RoleAssistant {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestHandleTurnGreeting(t *testing.T) {
	f := newFixture()

	out := f.bot.HandleTurn(context.Background(), turnState("안녕하세요"))

	replies := assistantReplies(out)
	if len(replies) != 1 || replies[0] != f.chatter.reply {
		t.Fatalf("replies = %v, want exactly the chat reply", replies)
	}
	if out.QuestionType != store.QuestionSimpleChat {
		t.Errorf("QuestionType = %s", out.QuestionType)
	}
	if out.SpecialistUsed != "simple_chat" {
		t.Errorf("SpecialistUsed = %q", out.SpecialistUsed)
	}
	if out.SearchLoopCount != 0 {
		t.Errorf("SearchLoopCount = %d, want 0", out.SearchLoopCount)
	}
	if len(f.hook.saves) != 1 || !strings.HasPrefix(f.hook.saves[0], store.RoleAssistant+":") {
		t.Errorf("hook saves = %v, want one assistant entry", f.hook.saves)
	}
}

func TestHandleTurnTransactionHash(t *testing.T) {
	f := newFixture()
	hash := "0x" + strings.Repeat("cd34", 16)

	out := f.bot.HandleTurn(context.Background(), turnState(hash))

	if out.QuestionType != store.QuestionTransaction {
		t.Errorf("QuestionType = %s", out.QuestionType)
	}
	if out.TransactionHash != hash {
		t.Errorf("TransactionHash = %q, want %q", out.TransactionHash, hash)
	}
	if out.SpecialistUsed != "transaction" {
		t.Errorf("SpecialistUsed = %q", out.SpecialistUsed)
	}
	if replies := assistantReplies(out); len(replies) != 1 {
		t.Errorf("replies = %d, want 1", len(replies))
	}
}

func TestHandleTurnPriceQuestionRunsResearch(t *testing.T) {
	f := newFixture()
	f.searcher.records = []store.RetrievalRecord{
		{Text: "비트코인 현재가는 140,000,000원입니다.", Source: store.SourcePriceAPI},
	}

	out := f.bot.HandleTurn(context.Background(), turnState("비트코인 시세 알려줘"))

	if out.QuestionType != store.QuestionWebSearch {
		t.Errorf("QuestionType = %s", out.QuestionType)
	}
	if len(out.SearchQueries) == 0 {
		t.Error("research loop did not record queries")
	}
	replies := assistantReplies(out)
	if len(replies) != 1 || replies[0] != f.caps.answer {
		t.Errorf("replies = %v, want research answer", replies)
	}
}

func TestHandleTurnClarificationShortCircuit(t *testing.T) {
	f := newFixture()
	f.llm.decision = &store.RoutingDecision{
		QuestionType: store.QuestionFAQ,
		Confidence:   0.3,
	}

	out := f.bot.HandleTurn(context.Background(), turnState("코인마켓 정책 변경 예정인가요"))

	if out.QuestionType != store.QuestionIntentClarification {
		t.Errorf("QuestionType = %s", out.QuestionType)
	}
	if !out.NeedsClarification {
		t.Error("NeedsClarification not set")
	}
	replies := assistantReplies(out)
	if len(replies) != 1 || replies[0] != clarificationPrompt {
		t.Errorf("replies = %v, want clarification prompt", replies)
	}
	if len(out.SearchQueries) != 0 {
		t.Error("clarification must not reach the research loop")
	}
}

func TestHandleTurnFAQEscalatesToHybridResearch(t *testing.T) {
	f := newFixture()

	// Rebuild with a retriever too weak to clear any threshold.
	logger := log.New(io.Discard, "", 0)
	cls := classifier.New(f.llm, logger)
	faq := specialist.NewFAQ(
		&stubRetriever{results: []store.RetrievalRecord{{Text: "약한 문서", Source: "knowledge_base", Score: 0.2}}},
		stubSupport{}, f.caps, specialist.DefaultFAQConfig(), logger)
	controller := research.NewController(f.caps, f.searcher, research.Config{}, logger)
	f.bot = New(cls, specialist.NewSimpleChat(f.chatter, logger), faq,
		specialist.NewTransaction(&stubLookup{}, logger), controller, f.hook, logger)

	out := f.bot.HandleTurn(context.Background(), turnState("출금은 어떻게 하나요?"))

	if out.QuestionType != store.QuestionHybrid {
		t.Errorf("QuestionType = %s, want %s after escalation", out.QuestionType, store.QuestionHybrid)
	}
	if !out.NeedsWebSearch {
		t.Error("NeedsWebSearch not set after escalation")
	}
	if len(out.SearchQueries) == 0 {
		t.Error("escalated question did not reach the research loop")
	}
	replies := assistantReplies(out)
	if len(replies) != 1 || replies[0] != f.caps.answer {
		t.Errorf("replies = %v, want research answer", replies)
	}
}

func TestHandleTurnSpecialistErrorApologizes(t *testing.T) {
	f := newFixture()
	f.chatter.err = errors.New("model unavailable")

	out := f.bot.HandleTurn(context.Background(), turnState("안녕하세요"))

	replies := assistantReplies(out)
	if len(replies) != 1 || replies[0] != genericApology {
		t.Errorf("replies = %v, want generic apology", replies)
	}
}

func TestHandleTurnRecoversFromPanic(t *testing.T) {
	f := newFixture()
	f.chatter.panic = true

	out := f.bot.HandleTurn(context.Background(), turnState("안녕하세요"))

	replies := assistantReplies(out)
	if len(replies) != 1 || replies[0] != genericApology {
		t.Errorf("replies = %v, want apology after panic", replies)
	}
	// The apology is a normal turn outcome and must reach persistence.
	if len(f.hook.saves) != 1 || f.hook.saves[0] != store.RoleAssistant+": "+genericApology {
		t.Errorf("hook saves = %v, want the apology saved once", f.hook.saves)
	}
}

func TestHandleTurnHookFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.hook.err = errors.New("cache write failed")

	out := f.bot.HandleTurn(context.Background(), turnState("안녕하세요"))

	if len(assistantReplies(out)) != 1 {
		t.Error("hook failure must not affect the reply")
	}
}
