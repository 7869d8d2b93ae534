package models

import "time"

// Event represents a board entry submitted by a visitor. MediaFiles holds the
// relative paths of the entry's attachments, serialized to a JSON array in a
// text column.
type Event struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Link       string    `gorm:"size:1024" json:"link"`
	MediaFiles []string  `gorm:"serializer:json;type:text" json:"mediaFiles"`
	CreatedAt  time.Time `json:"timestamp"`
	UpdatedAt  time.Time `json:"-"`
}
