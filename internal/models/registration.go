package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Registration is one user's reservation of seats for an event. The
// contact column keeps its legacy name "phone" although it may hold a
// Telegram handle as well.
type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	EventID   int64     `bun:"event_id,notnull" json:"event_id"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	Name      string    `bun:"name" json:"name"`
	Contact   string    `bun:"phone" json:"contact"`
	Seats     int       `bun:"seats,default:1" json:"seats"`
	CreatedAt time.Time `bun:"ts,notnull,default:current_timestamp" json:"created_at"`
}

// UserRegistration pairs a registration with the event it belongs to,
// for "my registrations" listings.
type UserRegistration struct {
	EventID   int64  `bun:"event_id" json:"event_id"`
	EventName string `bun:"event_name" json:"event_name"`
	DateTime  string `bun:"date_time" json:"date_time"`
	Place     string `bun:"place" json:"place,omitempty"`
	Seats     int    `bun:"seats" json:"seats"`
}
