package models

import (
	"github.com/google/uuid"
	"time"
)

type Message struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID uuid.UUID `gorm:"not null;index"`
	UserID  uuid.UUID `gorm:"not null"`
	Content string    `gorm:"not null"`
	SentAt  time.Time `gorm:"not null;index"`

	User  User  `gorm:"foreignKey:UserID"`
	Event Event `gorm:"foreignKey:EventID"`
}
