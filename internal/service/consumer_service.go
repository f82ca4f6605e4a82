package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"exchange-support-be/internal/dto"
	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/repository/specification"
	"exchange-support-be/internal/repository/unitofwork"
	"exchange-support-be/pkg/embedding"
	"exchange-support-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	chunkSize    = 1000
	chunkOverlap = 100
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedArticleMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embeddings for article %s", payload.ArticleId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	article, err := uow.KnowledgeArticleRepository().FindOne(ctx, specification.ByID{ID: payload.ArticleId})
	if err != nil {
		log.Printf("[ERROR] Failed to get article %s: %v", payload.ArticleId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if article == nil {
		log.Printf("[ERROR] Article not found: %s", payload.ArticleId)
		msg.Ack() // Article deleted meanwhile? Ack.
		return
	}

	document := article.Title + "\n\n" + article.Content
	chunks := utils.SplitText(document, chunkSize, chunkOverlap)

	embeddings := make([]*entity.KnowledgeEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of article %s: %v", i, payload.ArticleId, err)
			msg.Nack()
			return
		}
		embeddings = append(embeddings, &entity.KnowledgeEmbedding{
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			ArticleId:      article.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.KnowledgeEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		log.Printf("[ERROR] Failed to store embeddings for article %s: %v", payload.ArticleId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Stored %d embedding chunks for article %s", len(embeddings), payload.ArticleId)
	msg.Ack()
}
