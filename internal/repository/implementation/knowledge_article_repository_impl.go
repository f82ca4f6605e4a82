package implementation

import (
	"context"
	"errors"

	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/mapper"
	"exchange-support-be/internal/model"
	"exchange-support-be/internal/repository/contract"
	"exchange-support-be/internal/repository/scope"
	"exchange-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeArticleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeArticleRepository(db *gorm.DB) contract.KnowledgeArticleRepository {
	return &KnowledgeArticleRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeArticleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeArticleRepositoryImpl) Create(ctx context.Context, article *entity.KnowledgeArticle) error {
	m := r.mapper.ArticleToModel(article)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*article = *r.mapper.ArticleToEntity(m)
	return nil
}

func (r *KnowledgeArticleRepositoryImpl) Update(ctx context.Context, article *entity.KnowledgeArticle) error {
	m := r.mapper.ArticleToModel(article)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*article = *r.mapper.ArticleToEntity(m)
	return nil
}

func (r *KnowledgeArticleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeArticle{}, id).Error
}

func (r *KnowledgeArticleRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeArticle, error) {
	var m model.KnowledgeArticle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ArticleToEntity(&m), nil
}

func (r *KnowledgeArticleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeArticle, error) {
	var models []*model.KnowledgeArticle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeArticle, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ArticleToEntity(m)
	}
	return entities, nil
}

func (r *KnowledgeArticleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.KnowledgeArticle{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchKeyword runs a postgres full-text search with ts_rank scoring.
// plainto_tsquery handles user text safely and the simple config keeps
// Korean tokens intact instead of stemming them away.
func (r *KnowledgeArticleRepositoryImpl) SearchKeyword(ctx context.Context, query string, limit int) ([]*contract.RankedArticle, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KnowledgeArticle
		Rank float64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Table("knowledge_articles").
		Select("knowledge_articles.*, ts_rank(to_tsvector('simple', title || ' ' || content), plainto_tsquery('simple', ?)) as rank", query).
		Where("to_tsvector('simple', title || ' ' || content) @@ plainto_tsquery('simple', ?)", query).
		Scopes(scope.ExcludeSoftDelete).
		Order("rank DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	ranked := make([]*contract.RankedArticle, len(results))
	for i, res := range results {
		ranked[i] = &contract.RankedArticle{
			Article: r.mapper.ArticleToEntity(&res.KnowledgeArticle),
			Rank:    res.Rank,
		}
	}
	return ranked, nil
}
