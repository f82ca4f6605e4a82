package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"exchange-support-be/pkg/store"
)

var errStub = errors.New("search backend unavailable")

func researchState(question string) store.ConversationState {
	return store.ConversationState{
		SessionID: "s-1",
		Messages:  []store.ChatTurn{{Role: store.RoleUser, Text: question}},
	}
}

func lastMessage(t *testing.T, state store.ConversationState) store.ChatTurn {
	t.Helper()
	if len(state.Messages) == 0 {
		t.Fatal("state has no messages")
	}
	return state.Messages[len(state.Messages)-1]
}

func TestRunAcceptsSufficientFirstIteration(t *testing.T) {
	caps := &fakeCaps{
		plans:    []*store.SearchPlan{{Queries: []string{"binance withdrawal fee"}}},
		gradeRes: &store.GraderResult{Score: 0.8, IsSufficient: true},
		writeOut: "출금 수수료는 네트워크별로 다릅니다.",
	}
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"binance withdrawal fee": {{Text: "fee table", Source: "web", URL: "https://a"}},
	}}
	c := newTestController(caps, searcher, Config{})

	out := c.Run(context.Background(), researchState("출금 수수료 알려줘"))

	last := lastMessage(t, out)
	if last.Role != store.RoleAssistant || last.Text != caps.writeOut {
		t.Errorf("last message = {%s %q}", last.Role, last.Text)
	}
	if caps.planCalls != 1 || caps.gradeCalls != 1 || caps.writeCalls != 1 {
		t.Errorf("calls = plan:%d grade:%d write:%d, want 1 each",
			caps.planCalls, caps.gradeCalls, caps.writeCalls)
	}
	if out.SearchLoopCount != 0 {
		t.Errorf("SearchLoopCount = %d, want 0", out.SearchLoopCount)
	}
	if len(out.WebResults) != 1 {
		t.Errorf("WebResults = %d, want 1", len(out.WebResults))
	}
	if caps.lastWrite.Fallback {
		t.Error("accepted answer wrote with Fallback set")
	}
}

func TestRunClampsOversizedPlanToQueryBudget(t *testing.T) {
	caps := &fakeCaps{
		plans: []*store.SearchPlan{{Queries: []string{
			"q1", "q2", "q3", "q4", "q5",
		}}},
		gradeRes: &store.GraderResult{Score: 0.8, IsSufficient: true},
		writeOut: "답변입니다.",
	}
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"q1": {{Text: "r1", Source: "web", URL: "https://1"}},
		"q2": {{Text: "r2", Source: "web", URL: "https://2"}},
		"q3": {{Text: "r3", Source: "web", URL: "https://3"}},
	}}
	c := newTestController(caps, searcher, Config{MaxQueries: 2})

	out := c.Run(context.Background(), researchState("출금 수수료 알려줘"))

	if searcher.calls != 2 {
		t.Errorf("searcher calls = %d, want the query budget of 2", searcher.calls)
	}
	if len(out.SearchQueries) != 2 {
		t.Errorf("SearchQueries = %v, want the first 2 planned queries", out.SearchQueries)
	}
}

func TestRunRetriesUntilBudgetThenFallsBack(t *testing.T) {
	caps := &fakeCaps{
		plans:    []*store.SearchPlan{{Queries: []string{"q"}}},
		gradeRes: &store.GraderResult{Score: 0.2, IsSufficient: false, Feedback: "need specifics"},
		writeOut: "긴 답변이지만 사과 문구가 없습니다. " + strings.Repeat("내용 ", 10),
	}
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"q": {{Text: "thin result", Source: "web", URL: "https://a"}},
	}}
	cfg := Config{MaxLoops: 2, OfficialSiteURL: "https://www.exchange.example"}
	c := newTestController(caps, searcher, cfg)

	out := c.Run(context.Background(), researchState("규제 현황 알려줘"))

	// Initial pass plus MaxLoops refinements.
	if caps.planCalls != 3 {
		t.Errorf("planCalls = %d, want 3", caps.planCalls)
	}
	if out.SearchLoopCount != 2 {
		t.Errorf("SearchLoopCount = %d, want 2", out.SearchLoopCount)
	}
	if out.RefinementCount != 2 {
		t.Errorf("RefinementCount = %d, want 2", out.RefinementCount)
	}
	if !caps.lastWrite.Fallback {
		t.Error("exhausted loop must write with Fallback set")
	}
	if caps.lastWrite.GraderFeedback != "need specifics" {
		t.Errorf("GraderFeedback = %q", caps.lastWrite.GraderFeedback)
	}

	// The model's fallback output carries no apology marker, so the fixed
	// template takes its place.
	last := lastMessage(t, out)
	if !strings.Contains(last.Text, "죄송합니다") || !strings.Contains(last.Text, cfg.OfficialSiteURL) {
		t.Errorf("fallback text = %q, want fixed template", last.Text)
	}
}

func TestRunValidFallbackAnswerIsKept(t *testing.T) {
	apology := "죄송합니다. 해당 내용은 확인되지 않았습니다."
	caps := &fakeCaps{
		plans:    []*store.SearchPlan{{Queries: []string{"q"}}},
		gradeRes: &store.GraderResult{Score: 0.1, IsSufficient: false},
		writeOut: apology,
	}
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"q": {{Text: "r", Source: "web"}},
	}}
	c := newTestController(caps, searcher, Config{MaxLoops: 1})

	out := c.Run(context.Background(), researchState("알 수 없는 질문"))
	if got := lastMessage(t, out).Text; got != apology {
		t.Errorf("last message = %q, want model's own apology kept", got)
	}
}

func TestRunEmptyPlanWritesFallback(t *testing.T) {
	caps := &fakeCaps{
		plans:    []*store.SearchPlan{{}},
		writeOut: "죄송합니다. 정보를 찾지 못했습니다.",
	}
	searcher := &fakeSearcher{}
	c := newTestController(caps, searcher, Config{})

	out := c.Run(context.Background(), researchState("질문"))

	if searcher.calls != 0 {
		t.Errorf("searcher called %d times on an empty plan", searcher.calls)
	}
	if !caps.lastWrite.Fallback {
		t.Error("empty plan must write with Fallback set")
	}
	if lastMessage(t, out).Role != store.RoleAssistant {
		t.Error("no assistant message appended")
	}
}

func TestRunSystemNoticeShortCircuitsGrading(t *testing.T) {
	caps := &fakeCaps{
		plans:    []*store.SearchPlan{{Queries: []string{"도지코인 시세"}}},
		gradeRes: &store.GraderResult{},
		writeOut: "해당 코인은 거래소에 상장되어 있지 않습니다.",
	}
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"도지코인 시세": {{Text: "미상장 안내", Source: store.SourceSystemNotice}},
	}}
	c := newTestController(caps, searcher, Config{})

	out := c.Run(context.Background(), researchState("도지코인 시세 알려줘"))

	if caps.gradeCalls != 0 {
		t.Errorf("gradeCalls = %d, want 0 with system notice present", caps.gradeCalls)
	}
	if caps.lastWrite.Fallback {
		t.Error("system notice answer wrote with Fallback set")
	}
	if out.SearchLoopCount != 0 {
		t.Errorf("SearchLoopCount = %d, want 0", out.SearchLoopCount)
	}
}

func TestRunDedupesRepeatedURLs(t *testing.T) {
	caps := &fakeCaps{
		plans: []*store.SearchPlan{
			{Queries: []string{"q1"}},
			{Queries: []string{"q2"}},
		},
		gradeRes: &store.GraderResult{Score: 0.2, IsSufficient: false},
		writeOut: "죄송합니다. 찾지 못했습니다.",
	}
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"q1": {{Text: "a", Source: "web", URL: "https://dup"}},
		"q2": {
			{Text: "a again", Source: "web", URL: "https://dup"},
			{Text: "b", Source: "web", URL: "https://new"},
		},
	}}
	c := newTestController(caps, searcher, Config{MaxLoops: 1})

	out := c.Run(context.Background(), researchState("질문"))

	if len(out.WebResults) != 2 {
		t.Fatalf("WebResults = %d, want 2 after URL dedupe", len(out.WebResults))
	}
	urls := map[string]bool{}
	for _, r := range out.WebResults {
		urls[r.URL] = true
	}
	if !urls["https://dup"] || !urls["https://new"] {
		t.Errorf("unexpected result URLs: %v", urls)
	}
}

func TestFanOutMergesInQueryOrder(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]store.RetrievalRecord{
		"first":  {{Text: "f1", Source: "web"}},
		"second": {{Text: "s1", Source: "web"}, {Text: "s2", Source: "web"}},
		"third":  {{Text: "t1", Source: "web"}},
	}}
	c := newTestController(&fakeCaps{}, searcher, Config{})

	got := c.fanOut(context.Background(), []string{"first", "second", "third"})

	want := []string{"f1", "s1", "s2", "t1"}
	if len(got) != len(want) {
		t.Fatalf("result count = %d, want %d", len(got), len(want))
	}
	for i, text := range want {
		if got[i].Text != text {
			t.Errorf("result[%d] = %q, want %q", i, got[i].Text, text)
		}
	}
}

func TestFanOutToleratesTaskFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errStub}
	c := newTestController(&fakeCaps{}, searcher, Config{})

	if got := c.fanOut(context.Background(), []string{"a", "b"}); len(got) != 0 {
		t.Errorf("results = %d, want 0 when every task fails", len(got))
	}
}

func TestQuerySetSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		min  float64
		max  float64
	}{
		{"identical sets", []string{"a", "b"}, []string{"a", "b"}, 1, 1},
		{"case-insensitive identical", []string{"BTC Fee"}, []string{"btc fee"}, 1, 1},
		{"one side empty", nil, []string{"a"}, 0, 0},
		{"near copies", []string{"binance fee"}, []string{"binance fees"}, 0.8, 0.999},
		{"unrelated", []string{"xrp listing"}, []string{"올해 규제 동향"}, 0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := querySetSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("querySetSimilarity() = %v, want within [%v, %v]", got, tt.min, tt.max)
			}
		})
	}
}
