package service

import (
	"context"

	"exchange-support-be/internal/repository/unitofwork"
	"exchange-support-be/pkg/embedding"
	"exchange-support-be/pkg/store"
)

// RetrievalService is the local-knowledge search collaborator used by
// the FAQ path: a vector leg over article embeddings and a keyword leg
// over article full text.
type RetrievalService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewRetrievalService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) *RetrievalService {
	return &RetrievalService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *RetrievalService) VectorSearch(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error) {
	res, err := s.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, limit, 0)
	if err != nil {
		return nil, err
	}

	records := make([]store.RetrievalRecord, len(scored))
	for i, sc := range scored {
		records[i] = store.RetrievalRecord{
			Text:   sc.Embedding.Document,
			Source: "knowledge_base",
			Score:  sc.Similarity,
		}
	}
	return records, nil
}

func (s *RetrievalService) KeywordSearch(ctx context.Context, query string, limit int) ([]store.RetrievalRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ranked, err := uow.KnowledgeArticleRepository().SearchKeyword(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	records := make([]store.RetrievalRecord, len(ranked))
	for i, r := range ranked {
		records[i] = store.RetrievalRecord{
			Text:   r.Article.Title + "\n" + r.Article.Content,
			Source: "knowledge_base",
			Score:  r.Rank,
			URL:    r.Article.SourceURL,
		}
	}
	return records, nil
}
