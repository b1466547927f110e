package model

import "time"

type Subject struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"` // необязательное
	CreatedAt   time.Time `json:"created_at"`
}
