package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeArticle is one help-center document ingested into the local
// knowledge base.
type KnowledgeArticle struct {
	Id        uuid.UUID
	Title     string
	Content   string
	Category  string
	SourceURL string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type KnowledgeEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	ArticleId      uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
