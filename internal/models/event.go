package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a scheduled happening users can register for. DateTime and
// OpenAt are stored as "YYYY-MM-DD HH:MM" strings whose lexical order
// equals chronological order.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	DateTime    string    `bun:"date_time,notnull" json:"date_time"`
	Place       string    `bun:"place" json:"place,omitempty"`
	OpenAt      string    `bun:"open_at" json:"open_at,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
