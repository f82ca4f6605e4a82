package mapper

import (
	"encoding/json"
	"time"

	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAtPtr(s.UpdatedAt),
		DeletedAt: deletedAtPtr(s.DeletedAt),
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	out := &model.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	if s.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
	return out
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var routing *entity.RoutingMetadata
	if len(msg.Routing) > 0 {
		var r entity.RoutingMetadata
		if err := json.Unmarshal(msg.Routing, &r); err == nil {
			routing = &r
		}
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		Routing:       routing,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAtPtr(msg.UpdatedAt),
		DeletedAt:     deletedAtPtr(msg.DeletedAt),
		IsDeleted:     msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	out := &model.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		CreatedAt:     msg.CreatedAt,
	}
	if msg.Routing != nil {
		if raw, err := json.Marshal(msg.Routing); err == nil {
			out.Routing = datatypes.JSON(raw)
		}
	}
	if msg.UpdatedAt != nil {
		out.UpdatedAt = *msg.UpdatedAt
	}
	if msg.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	}
	return out
}

func updatedAtPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	out := t
	return &out
}

func deletedAtPtr(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
