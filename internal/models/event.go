package models

import (
	"github.com/google/uuid"
	"time"
)

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Date        time.Time `gorm:"not null"`
	CreatedBy   uuid.UUID
	CreatedAt   time.Time

	Registrations []Registration `gorm:"foreignKey:EventID"`
	Messages      []Message      `gorm:"foreignKey:EventID"`
}
