// Package orchestrator owns one conversation turn end to end: classify
// the user message, dispatch it to the right specialist or the research
// loop and make sure exactly one assistant reply comes out.
package orchestrator

import (
	"context"
	"log"

	"exchange-support-be/pkg/botkit/classifier"
	"exchange-support-be/pkg/botkit/research"
	"exchange-support-be/pkg/botkit/specialist"
	"exchange-support-be/pkg/store"
)

// PersistenceHook receives each persisted message exactly once per side.
// Failures are logged and swallowed; persistence never breaks a turn.
type PersistenceHook interface {
	Save(ctx context.Context, sessionID, role, text string) error
}

type Orchestrator struct {
	classifier  *classifier.Classifier
	simpleChat  *specialist.SimpleChat
	faq         *specialist.FAQ
	transaction *specialist.Transaction
	research    *research.Controller
	hook        PersistenceHook
	logger      *log.Logger
}

func New(
	cls *classifier.Classifier,
	simpleChat *specialist.SimpleChat,
	faq *specialist.FAQ,
	transaction *specialist.Transaction,
	research *research.Controller,
	hook PersistenceHook,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier:  cls,
		simpleChat:  simpleChat,
		faq:         faq,
		transaction: transaction,
		research:    research,
		hook:        hook,
		logger:      logger,
	}
}

const genericApology = "죄송합니다. 요청을 처리하는 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."

const clarificationPrompt = "어떤 내용이 궁금하신지 조금 더 구체적으로 말씀해 주시겠어요? 예를 들어 입출금, 거래, 수수료 중 어느 쪽인지 알려주시면 정확히 안내해 드릴 수 있습니다."

// HandleTurn runs the full pipeline for the latest user message in state
// and returns the state with exactly one assistant message appended. It
// never returns an error to the caller: every failure path degrades to a
// generic apology.
func (o *Orchestrator) HandleTurn(ctx context.Context, state store.ConversationState) (out store.ConversationState) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("[ORCHESTRATOR] Recovered from panic: %v", r)
			out = o.apologize(state)
			o.persist(ctx, out)
		}
	}()

	message := state.LastUserMessage()
	decision := o.classifier.Classify(ctx, &state, message)

	state = o.applyRouting(state, decision)

	o.logger.Printf("[ORCHESTRATOR] Routed %q as %s (specialist=%s confidence=%.2f)",
		truncate(message, 60), decision.QuestionType, decision.SuggestedSpecialist, decision.Confidence)

	// Clarification short-circuits everything else.
	if decision.QuestionType == store.QuestionIntentClarification {
		out = o.clarify(state)
		o.persist(ctx, out)
		return out
	}

	out = o.dispatch(ctx, state, decision)
	out = o.ensureReply(out)
	o.persist(ctx, out)
	return out
}

func (o *Orchestrator) dispatch(ctx context.Context, state store.ConversationState, decision store.RoutingDecision) store.ConversationState {
	switch decision.QuestionType {
	case store.QuestionSimpleChat:
		next, err := o.simpleChat.Handle(ctx, state)
		if err != nil {
			o.logger.Printf("[ORCHESTRATOR] SimpleChat failed: %v", err)
			return o.apologize(state)
		}
		return next

	case store.QuestionTransaction:
		next, err := o.transaction.Handle(ctx, state)
		if err != nil {
			o.logger.Printf("[ORCHESTRATOR] Transaction failed: %v", err)
			return o.apologize(state)
		}
		return next

	case store.QuestionFAQ, store.QuestionGeneral:
		next, escalate, err := o.faq.Handle(ctx, state, decision)
		if err != nil {
			o.logger.Printf("[ORCHESTRATOR] FAQ failed: %v", err)
			return o.apologize(state)
		}
		if !escalate {
			return next
		}
		// Below-threshold local knowledge: widen to hybrid research.
		hybrid := store.QuestionHybrid
		webSearch := true
		next = o.mustApply(next, store.StepSpecialist, store.Patch{
			QuestionType:   &hybrid,
			NeedsWebSearch: &webSearch,
		})
		return o.research.Run(ctx, next)

	case store.QuestionWebSearch, store.QuestionHybrid:
		return o.research.Run(ctx, state)

	default:
		o.logger.Printf("[ORCHESTRATOR] No handler for %s, falling back to research", decision.QuestionType)
		return o.research.Run(ctx, state)
	}
}

func (o *Orchestrator) applyRouting(state store.ConversationState, decision store.RoutingDecision) store.ConversationState {
	qt := decision.QuestionType
	patch := store.Patch{
		QuestionType:       &qt,
		SpecialistUsed:     &decision.SuggestedSpecialist,
		NeedsClarification: &decision.NeedsClarification,
		NeedsWebSearch:     &decision.NeedsWebSearch,
	}
	if decision.QuestionType == store.QuestionTransaction {
		if hash := classifier.DetectTransactionHash(state.LastUserMessage()); hash != "" {
			patch.TransactionHash = &hash
		}
	}
	return o.mustApply(state, store.StepRouting, patch)
}

func (o *Orchestrator) clarify(state store.ConversationState) store.ConversationState {
	used := classifier.SpecialistClarify
	return o.mustApply(state, store.StepSpecialist, store.Patch{
		SpecialistUsed: &used,
		AppendMessage:  &store.ChatTurn{Role: store.RoleAssistant, Text: clarificationPrompt},
	})
}

func (o *Orchestrator) apologize(state store.ConversationState) store.ConversationState {
	return o.mustApply(state, store.StepSpecialist, store.Patch{
		AppendMessage: &store.ChatTurn{Role: store.RoleAssistant, Text: genericApology},
	})
}

// ensureReply guarantees the one-assistant-message-per-turn contract even
// when a handler returns without appending anything.
func (o *Orchestrator) ensureReply(state store.ConversationState) store.ConversationState {
	if len(state.Messages) > 0 && state.Messages[len(state.Messages)-1].Role == store.RoleAssistant {
		return state
	}
	o.logger.Printf("[ORCHESTRATOR] Handler produced no reply, appending apology")
	return o.apologize(state)
}

func (o *Orchestrator) persist(ctx context.Context, state store.ConversationState) {
	if o.hook == nil {
		return
	}
	last := state.Messages[len(state.Messages)-1]
	if err := o.hook.Save(ctx, state.SessionID, last.Role, last.Text); err != nil {
		o.logger.Printf("[ORCHESTRATOR] Persistence hook failed: %v", err)
	}
}

func (o *Orchestrator) mustApply(state store.ConversationState, step store.Step, patch store.Patch) store.ConversationState {
	next, err := store.Apply(state, step, patch)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] Patch rejected at step %s: %v", step, err)
		return state
	}
	return next
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
