package database

import (
	"time"

	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (d *Database) RegisterUser(userID, eventID uuid.UUID) error {
	reg := models.Registration{
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: time.Now(),
	}
	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reg).Error
}

func (d *Database) UnregisterUser(userID, eventID uuid.UUID) error {
	return d.db.Delete(&models.Registration{}, "user_id = ? AND event_id = ?", userID, eventID).Error
}

func (d *Database) IsRegistered(userID, eventID uuid.UUID) (bool, error) {
	var count int64
	err := withReadRetry(func() error {
		return d.db.Model(&models.Registration{}).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Count(&count).Error
	})
	return count > 0, err
}
