package database

import (
	"errors"

	"github.com/eventmgmt/chat/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{}, &models.Message{})
	if err != nil {
		return err
	}

	d.db = db

	return nil
}
