package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Inquiry struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Question      string         `gorm:"type:text;not null"`
	Status        string         `gorm:"type:varchar(50);not null;default:'open'"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Inquiry) TableName() string {
	return "inquiries"
}
