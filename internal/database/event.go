package database

import (
	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
)

func (d *Database) CreateEvent(event *models.Event) error {
	return d.db.Create(event).Error
}

func (d *Database) GetEvent(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := withReadRetry(func() error {
		return d.db.First(&event, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *Database) ListEvents() ([]models.Event, error) {
	var events []models.Event
	err := d.db.Order("date ASC").Find(&events).Error
	return events, err
}

func (d *Database) EventExists(id uuid.UUID) (bool, error) {
	var count int64
	err := withReadRetry(func() error {
		return d.db.Model(&models.Event{}).Where("id = ?", id).Count(&count).Error
	})
	return count > 0, err
}
