package database

import (
	"errors"

	"github.com/eventmgmt/chat/internal/chat"
	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (d *Database) CreateMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := withReadRetry(func() error {
		return d.db.Preload("User").First(&message, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, chat.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// DeleteMessage hard-deletes a message and reports whether it existed.
func (d *Database) DeleteMessage(id uuid.UUID) (bool, error) {
	res := d.db.Delete(&models.Message{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PageMessages returns one offset page of a room's history in chronological
// order. The query walks newest-first so page 1 is always the most recent
// complete page, then the slice is reversed so old messages come first.
func (d *Database) PageMessages(eventID uuid.UUID, page, pageSize int) ([]models.Message, error) {
	var messages []models.Message

	err := withReadRetry(func() error {
		return d.db.Where("event_id = ?", eventID).
			Order("sent_at DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Preload("User").
			Find(&messages).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
