package store

import (
	"strings"
	"testing"
)

func TestApplyStepFieldValidation(t *testing.T) {
	qt := QuestionFAQ
	used := "faq"
	score := 0.8
	sufficient := true
	turn := &ChatTurn{Role: RoleAssistant, Text: "답변입니다."}

	tests := []struct {
		name    string
		step    Step
		patch   Patch
		wantErr string
	}{
		{
			name:  "routing sets question type and specialist",
			step:  StepRouting,
			patch: Patch{QuestionType: &qt, SpecialistUsed: &used},
		},
		{
			name:    "routing may not append messages",
			step:    StepRouting,
			patch:   Patch{AppendMessage: turn},
			wantErr: "may not set appendMessage",
		},
		{
			name:  "plan sets queries and loop counter",
			step:  StepPlan,
			patch: Patch{SetQueries: []string{"q1", "q2"}, IncrementLoop: true},
		},
		{
			name:    "plan may not touch grading",
			step:    StepPlan,
			patch:   Patch{GraderScore: &score},
			wantErr: "may not set graderScore",
		},
		{
			name:  "search appends web results",
			step:  StepSearch,
			patch: Patch{AppendWeb: []RetrievalRecord{{Text: "r", Source: "web"}}},
		},
		{
			name:    "search may not rewrite queries",
			step:    StepSearch,
			patch:   Patch{SetQueries: []string{"q"}},
			wantErr: "may not set setQueries",
		},
		{
			name:  "grade sets score and sufficiency",
			step:  StepGrade,
			patch: Patch{GraderScore: &score, IsSufficient: &sufficient},
		},
		{
			name:    "write may only append a message",
			step:    StepWrite,
			patch:   Patch{AppendMessage: turn, QuestionType: &qt},
			wantErr: "may not set questionType",
		},
		{
			name:  "specialist appends references and a reply",
			step:  StepSpecialist,
			patch: Patch{AppendDB: []RetrievalRecord{{Text: "r"}}, AppendMessage: turn},
		},
		{
			name:    "unknown step is rejected",
			step:    Step("verify"),
			patch:   Patch{},
			wantErr: "unknown step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(ConversationState{}, tt.step, tt.patch)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Apply() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Apply() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	original := ConversationState{
		Messages:      []ChatTurn{{Role: RoleUser, Text: "질문"}},
		SearchQueries: []string{"old"},
	}

	next, err := Apply(original, StepWrite, Patch{
		AppendMessage: &ChatTurn{Role: RoleAssistant, Text: "답변"},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(original.Messages) != 1 {
		t.Errorf("original messages grew to %d", len(original.Messages))
	}
	if len(next.Messages) != 2 {
		t.Errorf("next messages = %d, want 2", len(next.Messages))
	}

	// Appending to the copy's slices must not reach the original backing
	// arrays either.
	next.SearchQueries[0] = "changed"
	if original.SearchQueries[0] != "old" {
		t.Error("copy shares backing array with original")
	}
}

func TestApplyLoopCounterMovesForwardOnly(t *testing.T) {
	state := ConversationState{SearchLoopCount: 1, RefinementCount: 2}

	next, err := Apply(state, StepPlan, Patch{IncrementLoop: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if next.SearchLoopCount != 2 {
		t.Errorf("SearchLoopCount = %d, want 2", next.SearchLoopCount)
	}

	lower := 1
	if _, err := Apply(state, StepPlan, Patch{RefinementCount: &lower}); err == nil {
		t.Error("decreasing refinement count must be rejected")
	}

	same := 2
	if _, err := Apply(state, StepPlan, Patch{RefinementCount: &same}); err != nil {
		t.Errorf("equal refinement count rejected: %v", err)
	}
}

func TestApplySetQueriesReplaces(t *testing.T) {
	state := ConversationState{SearchQueries: []string{"a", "b"}}

	next, err := Apply(state, StepPlan, Patch{SetQueries: []string{"c"}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(next.SearchQueries) != 1 || next.SearchQueries[0] != "c" {
		t.Errorf("SearchQueries = %v, want [c]", next.SearchQueries)
	}
}
