// Package ticket renders confirmation passes for committed
// registrations.
package ticket

import (
	"encoding/json"

	"eventbot/internal/models"

	"github.com/skip2/go-qrcode"
)

type passPayload struct {
	RegistrationID int64  `json:"registration_id"`
	EventID        int64  `json:"event_id"`
	EventName      string `json:"event_name"`
	Name           string `json:"name"`
	Seats          int    `json:"seats"`
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Pass encodes the registration as a QR PNG the user can show at the
// door.
func (g *Generator) Pass(reg models.Registration, eventName string) ([]byte, error) {
	data, err := json.Marshal(passPayload{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		EventName:      eventName,
		Name:           reg.Name,
		Seats:          reg.Seats,
	})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
