package service

import (
	"context"

	"exchange-support-be/internal/repository/memory"
	"exchange-support-be/pkg/store"
)

// HistoryHook feeds the bot's reply back into the hot-session cache so
// the next turn sees it without a DB read.
type HistoryHook struct {
	history *memory.HistoryRepository
}

func NewHistoryHook(history *memory.HistoryRepository) *HistoryHook {
	return &HistoryHook{history: history}
}

func (h *HistoryHook) Save(ctx context.Context, sessionID, role, text string) error {
	h.history.Append(sessionID, store.ChatTurn{Role: role, Text: text})
	return nil
}
