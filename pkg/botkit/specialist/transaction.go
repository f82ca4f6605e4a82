package specialist

import (
	"context"
	"fmt"
	"log"
	"strings"

	"exchange-support-be/pkg/botkit/classifier"
	"exchange-support-be/pkg/store"
	"exchange-support-be/pkg/txlookup"
)

// Transaction looks up a transaction hash across the supported chains and
// reports its status. Always terminal, even when nothing is found.
type Transaction struct {
	lookup txlookup.Service
	logger *log.Logger
}

func NewTransaction(lookup txlookup.Service, logger *log.Logger) *Transaction {
	return &Transaction{lookup: lookup, logger: logger}
}

func (t *Transaction) Handle(ctx context.Context, state store.ConversationState) (store.ConversationState, error) {
	hash := state.TransactionHash
	if hash == "" {
		hash = classifier.DetectTransactionHash(state.LastUserMessage())
	}

	var answer string
	if hash == "" {
		answer = "조회할 트랜잭션 해시를 찾지 못했습니다. 해시를 다시 확인해서 보내주세요."
	} else {
		results, err := t.lookup.Lookup(ctx, hash)
		if err != nil {
			t.logger.Printf("[Transaction] Lookup failed for %s: %v", hash, err)
			answer = "트랜잭션 조회 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
		} else {
			answer = formatLookup(hash, results)
		}
	}

	used := "transaction"
	patch := store.Patch{
		SpecialistUsed: &used,
		AppendMessage:  &store.ChatTurn{Role: store.RoleAssistant, Text: answer},
	}
	if hash != "" {
		patch.TransactionHash = &hash
	}
	return store.Apply(state, store.StepSpecialist, patch)
}

func formatLookup(hash string, results []txlookup.ChainResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("해시 %s 에 해당하는 트랜잭션을 지원 체인에서 찾지 못했습니다. 해시가 정확한지, 입출금이 완료된 거래인지 확인해 주세요.", hash)
	}
	if len(results) == 1 {
		return formatChain(results[0])
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("해시 %s 가 %d개 체인에서 확인되었습니다.\n", hash, len(results)))
	for i, r := range results {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, formatChain(r)))
	}
	return b.String()
}

func formatChain(r txlookup.ChainResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] 상태: %s", r.Chain, statusLabel(r.Status)))
	if r.Amount > 0 {
		b.WriteString(fmt.Sprintf(", 수량: %g %s", r.Amount, r.Symbol))
	}
	if r.Confirmations > 0 {
		b.WriteString(fmt.Sprintf(", 컨펌: %d회", r.Confirmations))
	}
	if r.ExplorerURL != "" {
		b.WriteString(fmt.Sprintf("\n익스플로러에서 확인: %s", r.ExplorerURL))
	}
	return b.String()
}

func statusLabel(status string) string {
	switch strings.ToLower(status) {
	case "confirmed", "success":
		return "완료"
	case "pending":
		return "처리 중"
	case "failed":
		return "실패"
	default:
		return status
	}
}
