package memory

import (
	"time"

	"exchange-support-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// HistoryRepository keeps the recent turns of active sessions in memory
// so a turn does not need a DB round trip to rebuild its history.
type HistoryRepository struct {
	cache *cache.Cache
}

func NewHistoryRepository() *HistoryRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &HistoryRepository{
		cache: c,
	}
}

func (r *HistoryRepository) Get(sessionID string) ([]store.ChatTurn, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.([]store.ChatTurn), true
	}
	return nil, false
}

func (r *HistoryRepository) Set(sessionID string, turns []store.ChatTurn) {
	r.cache.Set(sessionID, turns, cache.DefaultExpiration)
}

func (r *HistoryRepository) Append(sessionID string, turn store.ChatTurn) {
	turns, _ := r.Get(sessionID)
	r.Set(sessionID, append(turns, turn))
}

func (r *HistoryRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
