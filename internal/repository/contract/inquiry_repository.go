package contract

import (
	"context"

	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *entity.Inquiry) error
	Update(ctx context.Context, inquiry *entity.Inquiry) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Inquiry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Inquiry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
