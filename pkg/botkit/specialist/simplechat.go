// Package specialist holds the leaf strategies that answer a classified
// question directly: simple chat, FAQ and transaction lookup.
package specialist

import (
	"context"
	"log"

	"exchange-support-be/pkg/store"
)

// Chatter is the plain conversational capability of the language model.
type Chatter interface {
	Chat(ctx context.Context, history []store.ChatTurn) (string, error)
}

// SimpleChat answers greetings and small talk with a single model call.
// Always terminal, no retrieval.
type SimpleChat struct {
	chatter Chatter
	logger  *log.Logger
}

func NewSimpleChat(chatter Chatter, logger *log.Logger) *SimpleChat {
	return &SimpleChat{chatter: chatter, logger: logger}
}

func (s *SimpleChat) Handle(ctx context.Context, state store.ConversationState) (store.ConversationState, error) {
	reply, err := s.chatter.Chat(ctx, state.Messages)
	if err != nil {
		return state, err
	}

	used := "simple_chat"
	return store.Apply(state, store.StepSpecialist, store.Patch{
		SpecialistUsed: &used,
		AppendMessage:  &store.ChatTurn{Role: store.RoleAssistant, Text: reply},
	})
}
