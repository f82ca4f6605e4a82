package classifier

import (
	"context"
	"log"

	"exchange-support-be/pkg/botkit/lexicon"
	"exchange-support-be/pkg/store"
)

// Specialist tags referenced by the orchestrator dispatch table.
const (
	SpecialistSimpleChat  = "simple_chat"
	SpecialistFAQ         = "faq"
	SpecialistTransaction = "transaction"
	SpecialistResearch    = "research"
	SpecialistClarify     = "clarify"
)

// Confidence below which an LLM classification is overridden to
// intent clarification.
const minConfidence = 0.6

// LLMClassifier is the structured-classification capability of the
// language model. Implementations must return a typed decision.
type LLMClassifier interface {
	Classify(ctx context.Context, message string, history []store.ChatTurn) (*store.RoutingDecision, error)
}

// Classifier runs an ordered chain of deterministic rules and falls back
// to the language model when none fires.
type Classifier struct {
	llm    LLMClassifier
	logger *log.Logger
}

func New(llm LLMClassifier, logger *log.Logger) *Classifier {
	return &Classifier{llm: llm, logger: logger}
}

// Classify produces the routing decision for one user turn. It never
// returns an error: LLM failures degrade to a documented default.
func (c *Classifier) Classify(ctx context.Context, state *store.ConversationState, message string) store.RoutingDecision {
	// Context resolution: a dangling anaphoric question borrows the
	// previous user turn for classification. The original message stays
	// untouched for display and persistence.
	input := message
	if lexicon.HasAnaphora(message) && !lexicon.HasIndependentTopic(message) {
		if prev := state.PreviousUserMessage(); prev != "" {
			input = prev + " " + message
			c.logger.Printf("[CLASSIFIER] Context-dependent message, classifying with previous turn prepended")
		}
	}

	for _, rule := range []func(*store.ConversationState, string) *store.RoutingDecision{
		c.ruleTransactionHash,
		c.ruleSimpleChat,
		c.rulePrice,
		c.ruleDateTime,
		c.ruleEvent,
		c.ruleFAQ,
	} {
		if decision := rule(state, input); decision != nil {
			c.logger.Printf("[CLASSIFIER] Rule hit: %s (specialist=%s)", decision.QuestionType, decision.SuggestedSpecialist)
			return *decision
		}
	}

	return c.classifyWithLLM(ctx, input, state.Messages)
}

// ruleTransactionHash fires on hash-looking tokens, unless the message
// also carries FAQ intent: "my withdrawal 0xabc... is stuck" is a
// procedural question, not a lookup request.
func (c *Classifier) ruleTransactionHash(_ *store.ConversationState, input string) *store.RoutingDecision {
	hash := DetectTransactionHash(input)
	if hash == "" {
		return nil
	}
	if lexicon.HasFAQIntent(input) {
		c.logger.Printf("[CLASSIFIER] Hash candidate discarded, FAQ intent present")
		return nil
	}
	return &store.RoutingDecision{
		QuestionType:           store.QuestionTransaction,
		Confidence:             0.95,
		Reasoning:              "message contains a transaction hash",
		NeedsTransactionLookup: true,
		SuggestedSpecialist:    SpecialistTransaction,
	}
}

func (c *Classifier) ruleSimpleChat(state *store.ConversationState, input string) *store.RoutingDecision {
	if lexicon.HasAnaphora(input) && state.HasPriorTurns() {
		return nil
	}
	if !lexicon.IsPureGreeting(input) {
		return nil
	}
	return &store.RoutingDecision{
		QuestionType:        store.QuestionSimpleChat,
		Confidence:          0.9,
		Reasoning:           "greeting or pleasantry",
		SuggestedSpecialist: SpecialistSimpleChat,
	}
}

func (c *Classifier) rulePrice(_ *store.ConversationState, input string) *store.RoutingDecision {
	if !lexicon.HasPriceIntent(input) {
		return nil
	}
	return &store.RoutingDecision{
		QuestionType:        store.QuestionWebSearch,
		Confidence:          0.85,
		Reasoning:           "price or quote request needs current data",
		NeedsWebSearch:      true,
		SuggestedSpecialist: SpecialistResearch,
	}
}

// ruleDateTime routes to the FAQ specialist, which answers date/time
// directly without retrieval.
func (c *Classifier) ruleDateTime(_ *store.ConversationState, input string) *store.RoutingDecision {
	if !lexicon.HasDateTimeIntent(input) {
		return nil
	}
	return &store.RoutingDecision{
		QuestionType:        store.QuestionFAQ,
		Confidence:          0.85,
		Reasoning:           "date/time question",
		SuggestedSpecialist: SpecialistFAQ,
	}
}

func (c *Classifier) ruleEvent(_ *store.ConversationState, input string) *store.RoutingDecision {
	if !lexicon.HasEventIntent(input) {
		return nil
	}
	return &store.RoutingDecision{
		QuestionType:        store.QuestionWebSearch,
		Confidence:          0.8,
		Reasoning:           "event or announcement question needs current data",
		NeedsWebSearch:      true,
		SuggestedSpecialist: SpecialistResearch,
	}
}

// ruleFAQ only fires when the message carries an independent topic
// keyword, so dangling context-dependent questions fall through to the
// LLM instead of keyword-matching on fragments.
func (c *Classifier) ruleFAQ(_ *store.ConversationState, input string) *store.RoutingDecision {
	if !lexicon.HasFAQKeyword(input) || !lexicon.HasIndependentTopic(input) {
		return nil
	}
	return &store.RoutingDecision{
		QuestionType:        store.QuestionFAQ,
		Confidence:          0.8,
		Reasoning:           "exchange FAQ topic keyword",
		NeedsFAQSearch:      true,
		SuggestedSpecialist: SpecialistFAQ,
	}
}

func (c *Classifier) classifyWithLLM(ctx context.Context, input string, history []store.ChatTurn) store.RoutingDecision {
	decision, err := c.llm.Classify(ctx, input, history)
	if err != nil {
		c.logger.Printf("[CLASSIFIER] LLM classification failed: %v, defaulting to General/faq", err)
		return store.RoutingDecision{
			QuestionType:        store.QuestionGeneral,
			Confidence:          0,
			Reasoning:           "classification unavailable",
			SuggestedSpecialist: SpecialistFAQ,
		}
	}

	// Ambiguity policy: low confidence, an explicit clarification request
	// or a General verdict all route to clarification.
	if decision.Confidence < minConfidence || decision.NeedsClarification ||
		decision.QuestionType == store.QuestionGeneral {
		c.logger.Printf("[CLASSIFIER] Ambiguous result (type=%s confidence=%.2f), overriding to clarification",
			decision.QuestionType, decision.Confidence)
		return store.RoutingDecision{
			QuestionType:        store.QuestionIntentClarification,
			Confidence:          decision.Confidence,
			Reasoning:           decision.Reasoning,
			NeedsClarification:  true,
			SuggestedSpecialist: SpecialistClarify,
		}
	}

	if decision.SuggestedSpecialist == "" {
		decision.SuggestedSpecialist = specialistFor(decision.QuestionType)
	}
	return *decision
}

func specialistFor(qt store.QuestionType) string {
	switch qt {
	case store.QuestionSimpleChat:
		return SpecialistSimpleChat
	case store.QuestionTransaction:
		return SpecialistTransaction
	case store.QuestionWebSearch, store.QuestionHybrid:
		return SpecialistResearch
	case store.QuestionIntentClarification:
		return SpecialistClarify
	default:
		return SpecialistFAQ
	}
}
