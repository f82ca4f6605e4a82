package dto

import "github.com/google/uuid"

// PublishEmbedArticleMessage is the async embedding-pipeline payload.
type PublishEmbedArticleMessage struct {
	ArticleId uuid.UUID `json:"article_id"`
}
