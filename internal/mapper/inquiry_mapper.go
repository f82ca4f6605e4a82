package mapper

import (
	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/model"

	"gorm.io/gorm"
)

type InquiryMapper struct{}

func NewInquiryMapper() *InquiryMapper {
	return &InquiryMapper{}
}

func (m *InquiryMapper) ToEntity(i *model.Inquiry) *entity.Inquiry {
	if i == nil {
		return nil
	}

	return &entity.Inquiry{
		Id:            i.Id,
		ChatSessionId: i.ChatSessionId,
		Question:      i.Question,
		Status:        i.Status,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     updatedAtPtr(i.UpdatedAt),
		DeletedAt:     deletedAtPtr(i.DeletedAt),
		IsDeleted:     i.DeletedAt.Valid,
	}
}

func (m *InquiryMapper) ToModel(i *entity.Inquiry) *model.Inquiry {
	if i == nil {
		return nil
	}

	out := &model.Inquiry{
		Id:            i.Id,
		ChatSessionId: i.ChatSessionId,
		Question:      i.Question,
		Status:        i.Status,
		CreatedAt:     i.CreatedAt,
	}
	if i.UpdatedAt != nil {
		out.UpdatedAt = *i.UpdatedAt
	}
	if i.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *i.DeletedAt, Valid: true}
	}
	return out
}
