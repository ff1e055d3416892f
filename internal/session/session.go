// Package session holds per-user conversational flow state. A user
// has at most one active flow at a time; starting a new flow or
// cancelling discards whatever was there before.
package session

// RegistrationStep is the current position inside the signup flow.
type RegistrationStep int

const (
	StepSelectEvent RegistrationStep = iota
	StepEnterName
	StepEnterSeats
	StepEnterContact
)

// RegistrationState accumulates the fields collected while a user
// signs up for an event.
type RegistrationState struct {
	Step      RegistrationStep `json:"step"`
	EventID   int64            `json:"event_id,omitempty"`
	EventName string           `json:"event_name,omitempty"`
	Name      string           `json:"name,omitempty"`
	Seats     int              `json:"seats,omitempty"`
}

type CreateEventStep int

const (
	StepTitle CreateEventStep = iota
	StepDateTime
	StepPlace
	StepDescription
)

// CreateEventState accumulates the fields of the admin "create event"
// flow. Back navigation only moves Step; entered fields are kept.
type CreateEventState struct {
	Step     CreateEventStep `json:"step"`
	Title    string          `json:"title,omitempty"`
	DateTime string          `json:"date_time,omitempty"`
	Place    string          `json:"place,omitempty"`
}

type DeleteEventStep int

const (
	StepAwaitID DeleteEventStep = iota
	StepConfirm
)

type DeleteEventState struct {
	Step      DeleteEventStep `json:"step"`
	EventID   int64           `json:"event_id,omitempty"`
	EventName string          `json:"event_name,omitempty"`
}

// Session is the per-user flow state. At most one of the three flow
// pointers is non-nil at a time.
type Session struct {
	Registration *RegistrationState `json:"registration,omitempty"`
	CreateEvent  *CreateEventState  `json:"create_event,omitempty"`
	DeleteEvent  *DeleteEventState  `json:"delete_event,omitempty"`
}

// Active reports whether any flow is in progress.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	return s.Registration != nil || s.CreateEvent != nil || s.DeleteEvent != nil
}

// Store keeps sessions keyed by user identity. Get returns nil (and
// no error) when the user has no session.
type Store interface {
	Get(userID int64) (*Session, error)
	Put(userID int64, s *Session) error
	Delete(userID int64) error
}
