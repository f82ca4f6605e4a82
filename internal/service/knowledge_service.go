package service

import (
	"context"
	"encoding/json"
	"time"

	"exchange-support-be/internal/dto"
	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/repository/specification"
	"exchange-support-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeService interface {
	Create(ctx context.Context, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ArticleDetailResponse, error)
	List(ctx context.Context, category string) ([]*dto.ArticleResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateArticleRequest) (*dto.ArticleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type knowledgeService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (s *knowledgeService) Create(ctx context.Context, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	article := &entity.KnowledgeArticle{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		SourceURL: req.SourceURL,
		CreatedAt: time.Now(),
	}
	if err := uow.KnowledgeArticleRepository().Create(ctx, article); err != nil {
		return nil, err
	}

	if err := s.requestEmbedding(ctx, article.Id); err != nil {
		return nil, err
	}

	return articleResponse(article), nil
}

func (s *knowledgeService) Show(ctx context.Context, id uuid.UUID) (*dto.ArticleDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	article, err := uow.KnowledgeArticleRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "article not found")
	}

	return &dto.ArticleDetailResponse{
		ArticleResponse: *articleResponse(article),
		Content:         article.Content,
	}, nil
}

func (s *knowledgeService) List(ctx context.Context, category string) ([]*dto.ArticleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if category != "" {
		specs = append(specs, specification.ByArticleCategory{Category: category})
	}

	articles, err := uow.KnowledgeArticleRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ArticleResponse, len(articles))
	for i, article := range articles {
		res[i] = articleResponse(article)
	}
	return res, nil
}

func (s *knowledgeService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateArticleRequest) (*dto.ArticleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	article, err := uow.KnowledgeArticleRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "article not found")
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Category = req.Category
	article.SourceURL = req.SourceURL
	if err := uow.KnowledgeArticleRepository().Update(ctx, article); err != nil {
		return nil, err
	}

	// Content changed, re-embed from scratch.
	if err := uow.KnowledgeEmbeddingRepository().DeleteByArticleId(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requestEmbedding(ctx, id); err != nil {
		return nil, err
	}

	return articleResponse(article), nil
}

func (s *knowledgeService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.KnowledgeEmbeddingRepository().DeleteByArticleId(ctx, id); err != nil {
		return err
	}
	return uow.KnowledgeArticleRepository().Delete(ctx, id)
}

func (s *knowledgeService) requestEmbedding(ctx context.Context, articleId uuid.UUID) error {
	payload := dto.PublishEmbedArticleMessage{ArticleId: articleId}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, raw)
}

func articleResponse(a *entity.KnowledgeArticle) *dto.ArticleResponse {
	return &dto.ArticleResponse{
		Id:        a.Id,
		Title:     a.Title,
		Category:  a.Category,
		SourceURL: a.SourceURL,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
