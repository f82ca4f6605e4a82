package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateArticleRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
	Category  string `json:"category" validate:"max=100"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
}

type UpdateArticleRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
	Category  string `json:"category" validate:"max=100"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
}

type ArticleResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	SourceURL string     `json:"source_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ArticleDetailResponse struct {
	ArticleResponse
	Content string `json:"content"`
}
