package classifier

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"exchange-support-be/pkg/store"
)

type fakeLLM struct {
	decision *store.RoutingDecision
	err      error
	calls    int
}

func (f *fakeLLM) Classify(_ context.Context, _ string, _ []store.ChatTurn) (*store.RoutingDecision, error) {
	f.calls++
	return f.decision, f.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func stateWith(messages ...store.ChatTurn) *store.ConversationState {
	return &store.ConversationState{SessionID: "s-1", Messages: messages}
}

func userTurn(text string) store.ChatTurn {
	return store.ChatTurn{Role: store.RoleUser, Text: text}
}

func TestClassifyDeterministicRules(t *testing.T) {
	hexHash := "0x" + strings.Repeat("ab12", 16)

	tests := []struct {
		name           string
		message        string
		wantType       store.QuestionType
		wantSpecialist string
	}{
		{
			name:           "bare hash routes to transaction",
			message:        hexHash,
			wantType:       store.QuestionTransaction,
			wantSpecialist: SpecialistTransaction,
		},
		{
			name:           "hash with withdrawal wording is an FAQ question",
			message:        "출금 " + hexHash + " 처리가 안돼요",
			wantType:       store.QuestionFAQ,
			wantSpecialist: SpecialistFAQ,
		},
		{
			name:           "pure greeting",
			message:        "안녕하세요",
			wantType:       store.QuestionSimpleChat,
			wantSpecialist: SpecialistSimpleChat,
		},
		{
			name:           "price question routes to research",
			message:        "비트코인 시세 알려줘",
			wantType:       store.QuestionWebSearch,
			wantSpecialist: SpecialistResearch,
		},
		{
			name:           "date question routes to FAQ",
			message:        "지금 몇시야?",
			wantType:       store.QuestionFAQ,
			wantSpecialist: SpecialistFAQ,
		},
		{
			name:           "event question routes to research",
			message:        "신규 상장 일정 알려주세요",
			wantType:       store.QuestionWebSearch,
			wantSpecialist: SpecialistResearch,
		},
		{
			name:           "withdrawal procedure routes to FAQ",
			message:        "출금은 어떻게 하나요?",
			wantType:       store.QuestionFAQ,
			wantSpecialist: SpecialistFAQ,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{}
			c := New(llm, testLogger())

			got := c.Classify(context.Background(), stateWith(userTurn(tt.message)), tt.message)
			if got.QuestionType != tt.wantType {
				t.Errorf("QuestionType = %s, want %s", got.QuestionType, tt.wantType)
			}
			if got.SuggestedSpecialist != tt.wantSpecialist {
				t.Errorf("SuggestedSpecialist = %s, want %s", got.SuggestedSpecialist, tt.wantSpecialist)
			}
			if llm.calls != 0 {
				t.Errorf("LLM called %d times for a rule-matched message", llm.calls)
			}
		})
	}
}

func TestClassifyLLMFallback(t *testing.T) {
	// No rule keyword anywhere in this message.
	message := "코인마켓 정책 변경 예정인가요"

	tests := []struct {
		name         string
		llm          *fakeLLM
		wantType     store.QuestionType
		wantClarify  bool
		wantConfZero bool
	}{
		{
			name: "confident verdict passes through",
			llm: &fakeLLM{decision: &store.RoutingDecision{
				QuestionType: store.QuestionWebSearch,
				Confidence:   0.9,
			}},
			wantType: store.QuestionWebSearch,
		},
		{
			name: "low confidence overrides to clarification",
			llm: &fakeLLM{decision: &store.RoutingDecision{
				QuestionType: store.QuestionFAQ,
				Confidence:   0.4,
			}},
			wantType:    store.QuestionIntentClarification,
			wantClarify: true,
		},
		{
			name: "general verdict overrides to clarification",
			llm: &fakeLLM{decision: &store.RoutingDecision{
				QuestionType: store.QuestionGeneral,
				Confidence:   0.9,
			}},
			wantType:    store.QuestionIntentClarification,
			wantClarify: true,
		},
		{
			name: "explicit clarification request is honored",
			llm: &fakeLLM{decision: &store.RoutingDecision{
				QuestionType:       store.QuestionFAQ,
				Confidence:         0.8,
				NeedsClarification: true,
			}},
			wantType:    store.QuestionIntentClarification,
			wantClarify: true,
		},
		{
			name:         "LLM failure defaults to general via FAQ",
			llm:          &fakeLLM{err: errors.New("model unavailable")},
			wantType:     store.QuestionGeneral,
			wantConfZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.llm, testLogger())

			got := c.Classify(context.Background(), stateWith(userTurn(message)), message)
			if got.QuestionType != tt.wantType {
				t.Errorf("QuestionType = %s, want %s", got.QuestionType, tt.wantType)
			}
			if got.NeedsClarification != tt.wantClarify {
				t.Errorf("NeedsClarification = %v, want %v", got.NeedsClarification, tt.wantClarify)
			}
			if tt.wantConfZero && got.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0 on failure", got.Confidence)
			}
			if tt.llm.calls != 1 {
				t.Errorf("LLM called %d times, want 1", tt.llm.calls)
			}
		})
	}
}

func TestClassifyEnglishKeywordInsideWordReachesLLM(t *testing.T) {
	// "which" contains "hi" but is not a greeting; the message has no
	// standalone keyword, so routing belongs to the model.
	llm := &fakeLLM{decision: &store.RoutingDecision{
		QuestionType: store.QuestionWebSearch,
		Confidence:   0.9,
	}}
	c := New(llm, testLogger())

	got := c.Classify(context.Background(), stateWith(userTurn("which coin?")), "which coin?")

	if got.QuestionType != store.QuestionWebSearch {
		t.Errorf("QuestionType = %s, want %s", got.QuestionType, store.QuestionWebSearch)
	}
	if llm.calls != 1 {
		t.Errorf("LLM called %d times, want 1", llm.calls)
	}
}

func TestClassifyFillsMissingSpecialist(t *testing.T) {
	llm := &fakeLLM{decision: &store.RoutingDecision{
		QuestionType: store.QuestionHybrid,
		Confidence:   0.85,
	}}
	c := New(llm, testLogger())

	message := "코인마켓 정책 변경 예정인가요"
	got := c.Classify(context.Background(), stateWith(userTurn(message)), message)
	if got.SuggestedSpecialist != SpecialistResearch {
		t.Errorf("SuggestedSpecialist = %q, want %q", got.SuggestedSpecialist, SpecialistResearch)
	}
}

func TestClassifyAnaphoraBorrowsPreviousTurn(t *testing.T) {
	llm := &fakeLLM{}
	c := New(llm, testLogger())

	state := stateWith(
		userTurn("비트코인 출금 수수료가 궁금해요"),
		store.ChatTurn{Role: store.RoleAssistant, Text: "거래 수수료는 0.1%입니다."},
		userTurn("그건 이더리움도 같나요?"),
	)

	// The dangling follow-up inherits the FAQ topic from the previous
	// user turn, so the keyword rule fires and the LLM stays idle.
	got := c.Classify(context.Background(), state, "그건 이더리움도 같나요?")
	if got.QuestionType != store.QuestionFAQ {
		t.Errorf("QuestionType = %s, want %s", got.QuestionType, store.QuestionFAQ)
	}
	if llm.calls != 0 {
		t.Errorf("LLM called %d times, want 0", llm.calls)
	}
}

func TestClassifyAnaphoraSkipsGreetingRule(t *testing.T) {
	llm := &fakeLLM{decision: &store.RoutingDecision{
		QuestionType: store.QuestionFAQ,
		Confidence:   0.8,
	}}
	c := New(llm, testLogger())

	state := stateWith(
		userTurn("로그인이 안돼요"),
		store.ChatTurn{Role: store.RoleAssistant, Text: "비밀번호 재설정을 시도해 보세요."},
		userTurn("아까 그거 다시"),
	)

	got := c.Classify(context.Background(), state, "아까 그거 다시")
	if got.QuestionType == store.QuestionSimpleChat {
		t.Error("anaphoric follow-up must not classify as simple chat")
	}
}
