package contract

import (
	"context"

	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/repository/specification"

	"github.com/google/uuid"
)

// RankedArticle wraps a KnowledgeArticle with its full-text search rank.
type RankedArticle struct {
	Article *entity.KnowledgeArticle
	Rank    float64
}

type KnowledgeArticleRepository interface {
	Create(ctx context.Context, article *entity.KnowledgeArticle) error
	Update(ctx context.Context, article *entity.KnowledgeArticle) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeArticle, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeArticle, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchKeyword runs a postgres full-text search over title and content,
	// returning articles with their ts_rank scores.
	SearchKeyword(ctx context.Context, query string, limit int) ([]*RankedArticle, error)
}
