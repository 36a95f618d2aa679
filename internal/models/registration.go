package models

import (
	"github.com/google/uuid"
	"time"
)

// Registration is the (user, event) membership pair. Its existence is the
// sole authorization predicate for chat access.
type Registration struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	RegisteredAt time.Time

	User  User  `gorm:"foreignKey:UserID"`
	Event Event `gorm:"foreignKey:EventID"`
}
