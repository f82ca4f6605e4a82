package store

// QuestionType is the closed routing taxonomy for a user turn.
type QuestionType string

const (
	QuestionSimpleChat          QuestionType = "SIMPLE_CHAT"
	QuestionFAQ                 QuestionType = "FAQ"
	QuestionTransaction         QuestionType = "TRANSACTION"
	QuestionWebSearch           QuestionType = "WEB_SEARCH"
	QuestionHybrid              QuestionType = "HYBRID"
	QuestionGeneral             QuestionType = "GENERAL"
	QuestionIntentClarification QuestionType = "INTENT_CLARIFICATION"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Retrieval record sources with special grading semantics.
const (
	SourceSystemNotice = "system_notice"
	SourcePriceAPI     = "price_api"
)

// ChatTurn is one message in a conversation, append-only within a turn.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// RetrievalRecord is a single retrieved snippet from any search collaborator.
type RetrievalRecord struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	URL    string  `json:"url,omitempty"`
}

// RoutingDecision is produced once per turn by the classifier and is
// immutable afterwards.
type RoutingDecision struct {
	QuestionType           QuestionType `json:"question_type"`
	Confidence             float64      `json:"confidence"`
	Reasoning              string       `json:"reasoning"`
	NeedsFAQSearch         bool         `json:"needs_faq_search"`
	NeedsWebSearch         bool         `json:"needs_web_search"`
	NeedsTransactionLookup bool         `json:"needs_transaction_lookup"`
	SuggestedSpecialist    string       `json:"suggested_specialist"`
	NeedsClarification     bool         `json:"needs_clarification"`
}

// SearchPlan is produced by the research planner each iteration and
// supersedes the previous one on retry.
type SearchPlan struct {
	Queries      []string `json:"search_queries"`
	ResearchPlan string   `json:"research_plan"`
	Priority     int      `json:"priority"`
}

// GraderResult scores how well the merged search results answer the
// original question. The last one produced decides loop continuation.
type GraderResult struct {
	Score              float64 `json:"score"`
	IsSufficient       bool    `json:"is_sufficient"`
	Feedback           string  `json:"feedback"`
	MissingInformation string  `json:"missing_information,omitempty"`
}

// ConversationState is the single value threaded through every step of a
// turn. It is created fresh per turn and discarded after persistence;
// cross-turn history arrives reconstructed in Messages.
type ConversationState struct {
	SessionID          string            `json:"session_id"`
	Messages           []ChatTurn        `json:"messages"`
	QuestionType       QuestionType      `json:"question_type"`
	SpecialistUsed     string            `json:"specialist_used"`
	NeedsClarification bool              `json:"needs_clarification"`
	NeedsWebSearch     bool              `json:"needs_web_search"`
	TransactionHash    string            `json:"transaction_hash,omitempty"`
	SearchQueries      []string          `json:"search_queries"`
	WebResults         []RetrievalRecord `json:"web_results"`
	DBResults          []RetrievalRecord `json:"db_results"`
	SearchLoopCount    int               `json:"search_loop_count"`
	GraderScore        *float64          `json:"grader_score,omitempty"`
	IsSufficient       *bool             `json:"is_sufficient,omitempty"`
	RefinementCount    int               `json:"refinement_count"`
}

// LastUserMessage returns the text of the most recent user turn.
func (s *ConversationState) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Text
		}
	}
	return ""
}

// PreviousUserMessage returns the user turn before the most recent one.
// Used for anaphora resolution.
func (s *ConversationState) PreviousUserMessage() string {
	seen := 0
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			seen++
			if seen == 2 {
				return s.Messages[i].Text
			}
		}
	}
	return ""
}

// HasPriorTurns reports whether the conversation has history beyond the
// current user message.
func (s *ConversationState) HasPriorTurns() bool {
	count := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			count++
		}
	}
	return count > 1
}
