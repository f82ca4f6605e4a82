package store

import "fmt"

// Step identifies which pipeline stage is applying a patch. Each step is
// only allowed to touch the fields it owns, so a misbehaving stage cannot
// silently clobber another stage's output.
type Step string

const (
	StepRouting    Step = "routing"
	StepSpecialist Step = "specialist"
	StepPlan       Step = "plan"
	StepSearch     Step = "search"
	StepGrade      Step = "grade"
	StepWrite      Step = "write"
)

// Patch is a partial update to ConversationState. Nil pointers and nil
// slices mean "leave the field alone".
type Patch struct {
	QuestionType       *QuestionType
	SpecialistUsed     *string
	NeedsClarification *bool
	NeedsWebSearch     *bool
	TransactionHash    *string

	SetQueries    []string
	AppendWeb     []RetrievalRecord
	AppendDB      []RetrievalRecord
	AppendMessage *ChatTurn

	IncrementLoop   bool
	GraderScore     *float64
	IsSufficient    *bool
	RefinementCount *int
}

var allowedFields = map[Step]map[string]bool{
	StepRouting: {
		"questionType": true, "specialistUsed": true,
		"needsClarification": true, "needsWebSearch": true, "transactionHash": true,
	},
	StepSpecialist: {
		"questionType": true, "specialistUsed": true, "appendDB": true,
		"appendMessage": true, "needsClarification": true, "needsWebSearch": true,
		"transactionHash": true,
	},
	StepPlan: {
		"setQueries": true, "incrementLoop": true, "refinementCount": true,
	},
	StepSearch: {
		"appendWeb": true,
	},
	StepGrade: {
		"graderScore": true, "isSufficient": true,
	},
	StepWrite: {
		"appendMessage": true,
	},
}

// Apply copies the state, validates the patch against the step's allowed
// field set and returns the updated copy. The loop counter may only move
// forward and messages are never rewritten, only appended.
func Apply(s ConversationState, step Step, p Patch) (ConversationState, error) {
	allowed, ok := allowedFields[step]
	if !ok {
		return s, fmt.Errorf("unknown step %q", step)
	}

	check := func(field string, set bool) error {
		if set && !allowed[field] {
			return fmt.Errorf("step %q may not set %s", step, field)
		}
		return nil
	}

	for field, set := range map[string]bool{
		"questionType":       p.QuestionType != nil,
		"specialistUsed":     p.SpecialistUsed != nil,
		"needsClarification": p.NeedsClarification != nil,
		"needsWebSearch":     p.NeedsWebSearch != nil,
		"transactionHash":    p.TransactionHash != nil,
		"setQueries":         p.SetQueries != nil,
		"appendWeb":          p.AppendWeb != nil,
		"appendDB":           p.AppendDB != nil,
		"appendMessage":      p.AppendMessage != nil,
		"incrementLoop":      p.IncrementLoop,
		"graderScore":        p.GraderScore != nil,
		"isSufficient":       p.IsSufficient != nil,
		"refinementCount":    p.RefinementCount != nil,
	} {
		if err := check(field, set); err != nil {
			return s, err
		}
	}

	out := s
	out.Messages = append([]ChatTurn{}, s.Messages...)
	out.SearchQueries = append([]string{}, s.SearchQueries...)
	out.WebResults = append([]RetrievalRecord{}, s.WebResults...)
	out.DBResults = append([]RetrievalRecord{}, s.DBResults...)

	if p.QuestionType != nil {
		out.QuestionType = *p.QuestionType
	}
	if p.SpecialistUsed != nil {
		out.SpecialistUsed = *p.SpecialistUsed
	}
	if p.NeedsClarification != nil {
		out.NeedsClarification = *p.NeedsClarification
	}
	if p.NeedsWebSearch != nil {
		out.NeedsWebSearch = *p.NeedsWebSearch
	}
	if p.TransactionHash != nil {
		out.TransactionHash = *p.TransactionHash
	}
	if p.SetQueries != nil {
		out.SearchQueries = append([]string{}, p.SetQueries...)
	}
	if p.AppendWeb != nil {
		out.WebResults = append(out.WebResults, p.AppendWeb...)
	}
	if p.AppendDB != nil {
		out.DBResults = append(out.DBResults, p.AppendDB...)
	}
	if p.AppendMessage != nil {
		out.Messages = append(out.Messages, *p.AppendMessage)
	}
	if p.IncrementLoop {
		out.SearchLoopCount = s.SearchLoopCount + 1
	}
	if p.GraderScore != nil {
		out.GraderScore = p.GraderScore
	}
	if p.IsSufficient != nil {
		out.IsSufficient = p.IsSufficient
	}
	if p.RefinementCount != nil {
		if *p.RefinementCount < s.RefinementCount {
			return s, fmt.Errorf("refinement count may not decrease")
		}
		out.RefinementCount = *p.RefinementCount
	}

	return out, nil
}
