// Offline console simulation of the support bot: runs the full routing
// pipeline against canned collaborators, no database or model required.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"exchange-support-be/pkg/botkit/capability"
	"exchange-support-be/pkg/botkit/classifier"
	"exchange-support-be/pkg/botkit/orchestrator"
	"exchange-support-be/pkg/botkit/research"
	"exchange-support-be/pkg/botkit/specialist"
	"exchange-support-be/pkg/store"
	"exchange-support-be/pkg/txlookup"

	"github.com/fatih/color"
)

type stubLLM struct{}

func (stubLLM) Classify(ctx context.Context, message string, history []store.ChatTurn) (*store.RoutingDecision, error) {
	return &store.RoutingDecision{
		QuestionType:        store.QuestionFAQ,
		Confidence:          0.8,
		SuggestedSpecialist: "faq",
	}, nil
}

type stubChatter struct{}

func (stubChatter) Chat(ctx context.Context, history []store.ChatTurn) (string, error) {
	return "안녕하세요! 무엇을 도와드릴까요?", nil
}

type stubCaps struct{}

func (stubCaps) Plan(ctx context.Context, req capability.PlanRequest) (*store.SearchPlan, error) {
	return &store.SearchPlan{Queries: []string{req.Question}, Priority: 3}, nil
}

func (stubCaps) Grade(ctx context.Context, question string, results []store.RetrievalRecord) (*store.GraderResult, error) {
	return &store.GraderResult{Score: 0.9, IsSufficient: true}, nil
}

func (stubCaps) Write(ctx context.Context, req capability.WriteRequest) (string, error) {
	if len(req.WebResults) > 0 {
		return "검색 결과를 바탕으로 안내드립니다: " + req.WebResults[0].Text, nil
	}
	return "죄송합니다. 관련 정보를 찾지 못했습니다.", nil
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) ([]store.RetrievalRecord, error) {
	if strings.Contains(query, "시세") || strings.Contains(query, "비트코인") {
		return []store.RetrievalRecord{{
			Text:   "BTC 현재가: 95,000,000원, 24시간 변동률: +1.20%",
			Source: store.SourcePriceAPI,
			Score:  1.0,
		}}, nil
	}
	return []store.RetrievalRecord{{
		Text:   "관련 웹 문서 요약",
		Source: "web",
		Score:  0.5,
		URL:    "https://example.com/doc",
	}}, nil
}

type stubRetriever struct{}

func (stubRetriever) VectorSearch(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error) {
	return []store.RetrievalRecord{{
		Text:   "출금은 [지갑] 메뉴에서 신청할 수 있으며, 보안 인증 후 처리됩니다.",
		Source: "knowledge_base",
		Score:  0.85,
	}}, nil
}

func (stubRetriever) KeywordSearch(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error) {
	return nil, nil
}

type stubSupport struct{}

func (stubSupport) Search(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error) {
	return nil, nil
}

type stubTxLookup struct{}

func (stubTxLookup) Lookup(ctx context.Context, hash string) ([]txlookup.ChainResult, error) {
	return []txlookup.ChainResult{{
		Chain:         "Ethereum",
		Status:        "confirmed",
		Amount:        1.5,
		Symbol:        "ETH",
		Confirmations: 120,
		ExplorerURL:   "https://etherscan.io/tx/" + hash,
	}}, nil
}

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	bot := orchestrator.New(
		classifier.New(stubLLM{}, logger),
		specialist.NewSimpleChat(stubChatter{}, logger),
		specialist.NewFAQ(stubRetriever{}, stubSupport{}, stubCaps{}, specialist.DefaultFAQConfig(), logger),
		specialist.NewTransaction(stubTxLookup{}, logger),
		research.NewController(stubCaps{}, stubSearcher{}, research.DefaultConfig(), logger),
		nil,
		logger,
	)

	turns := []string{
		"안녕",
		"비트코인 시세 알려줘",
		"출금은 어떻게 하나요?",
		"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
	}

	userColor := color.New(color.FgCyan, color.Bold)
	botColor := color.New(color.FgGreen)
	metaColor := color.New(color.FgYellow)

	var history []store.ChatTurn
	for _, text := range turns {
		userColor.Printf("\nUSER > %s\n", text)

		state := store.ConversationState{
			SessionID: "simulation",
			Messages:  append(append([]store.ChatTurn{}, history...), store.ChatTurn{Role: store.RoleUser, Text: text}),
		}

		out := bot.HandleTurn(context.Background(), state)
		reply := out.Messages[len(out.Messages)-1]

		botColor.Printf("BOT  > %s\n", reply.Text)
		metaColor.Printf("       [type=%s specialist=%s loops=%d]\n",
			out.QuestionType, out.SpecialistUsed, out.SearchLoopCount)

		history = append(history,
			store.ChatTurn{Role: store.RoleUser, Text: text},
			reply,
		)
	}

	fmt.Println()
}
