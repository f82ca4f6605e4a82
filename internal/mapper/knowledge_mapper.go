package mapper

import (
	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ArticleToEntity(a *model.KnowledgeArticle) *entity.KnowledgeArticle {
	if a == nil {
		return nil
	}

	return &entity.KnowledgeArticle{
		Id:        a.Id,
		Title:     a.Title,
		Content:   a.Content,
		Category:  a.Category,
		SourceURL: a.SourceURL,
		CreatedAt: a.CreatedAt,
		UpdatedAt: updatedAtPtr(a.UpdatedAt),
		DeletedAt: deletedAtPtr(a.DeletedAt),
		IsDeleted: a.DeletedAt.Valid,
	}
}

func (m *KnowledgeMapper) ArticleToModel(a *entity.KnowledgeArticle) *model.KnowledgeArticle {
	if a == nil {
		return nil
	}

	out := &model.KnowledgeArticle{
		Id:        a.Id,
		Title:     a.Title,
		Content:   a.Content,
		Category:  a.Category,
		SourceURL: a.SourceURL,
		CreatedAt: a.CreatedAt,
	}
	if a.UpdatedAt != nil {
		out.UpdatedAt = *a.UpdatedAt
	}
	if a.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	}
	return out
}

func (m *KnowledgeMapper) EmbeddingToEntity(e *model.KnowledgeEmbedding) *entity.KnowledgeEmbedding {
	if e == nil {
		return nil
	}

	return &entity.KnowledgeEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ArticleId:      e.ArticleId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAtPtr(e.UpdatedAt),
		DeletedAt:      deletedAtPtr(e.DeletedAt),
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *KnowledgeMapper) EmbeddingToModel(e *entity.KnowledgeEmbedding) *model.KnowledgeEmbedding {
	if e == nil {
		return nil
	}

	out := &model.KnowledgeEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ArticleId:      e.ArticleId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
	if e.UpdatedAt != nil {
		out.UpdatedAt = *e.UpdatedAt
	}
	if e.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}
	return out
}
