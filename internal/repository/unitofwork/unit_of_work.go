package unitofwork

import (
	"context"

	"exchange-support-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	InquiryRepository() contract.InquiryRepository
	KnowledgeArticleRepository() contract.KnowledgeArticleRepository
	KnowledgeEmbeddingRepository() contract.KnowledgeEmbeddingRepository
}
