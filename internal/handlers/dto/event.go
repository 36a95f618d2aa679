package dto

import "time"

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=150"`
	Description string    `json:"description" binding:"max=1000"`
	Date        time.Time `json:"date" binding:"required"`
}
