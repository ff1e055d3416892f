package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventbot/internal/models"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a lookup by id resolves to nothing.
var ErrNotFound = errors.New("not found")

type DB struct {
	Bun *bun.DB
}

// ---------------- EVENTS ----------------

// CreateEvent inserts a new event and fills in its assigned id. An
// empty OpenAt defaults to the event's own date-time, meaning
// registration is open immediately.
func (d *DB) CreateEvent(ev *models.Event) error {
	if ev.OpenAt == "" {
		ev.OpenAt = ev.DateTime
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().
		Model(ev).
		Exec(context.Background())
	return err
}

// Events returns every event ordered by date-time ascending. This is
// the unfiltered, administrator-facing listing.
func (d *DB) Events() ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// VisibleEvents returns the events presentable to end users at the
// given reference time: not in the past, registration window open.
// An open_at equal to the event's own date_time is the "no explicit
// window" default and counts as open immediately. The reference time
// must be in the canonical "YYYY-MM-DD HH:MM" format so string
// comparison equals chronological comparison.
func (d *DB) VisibleEvents(now string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("date_time >= ?", now).
		Where("(open_at IS NULL OR open_at = '' OR open_at = date_time OR open_at <= ?)", now).
		Order("date_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) EventByID(id int64) (*models.Event, error) {
	var ev models.Event
	err := d.Bun.NewSelect().
		Model(&ev).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvent removes an event and cascades deletion of all its
// registrations.
func (d *DB) DeleteEvent(id int64) error {
	if err := d.DeleteRegistrationsForEvent(id); err != nil {
		return err
	}
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- REGISTRATIONS ----------------

func (d *DB) CreateRegistration(reg *models.Registration) error {
	if reg.Seats == 0 {
		reg.Seats = 1
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().
		Model(reg).
		Exec(context.Background())
	return err
}

func (d *DB) RegistrationsByEvent(eventID int64) ([]models.Registration, error) {
	var regs []models.Registration
	err := d.Bun.NewSelect().
		Model(&regs).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// Registration looks up a single user's registration for an event.
// This backs the duplicate-registration guard.
func (d *DB) Registration(eventID, userID int64) (*models.Registration, error) {
	var reg models.Registration
	err := d.Bun.NewSelect().
		Model(&reg).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// RegistrationsByUser returns the user's registrations joined with
// their events, ordered by event date-time.
func (d *DB) RegistrationsByUser(userID int64) ([]models.UserRegistration, error) {
	var regs []models.UserRegistration
	err := d.Bun.NewSelect().
		ColumnExpr("e.id AS event_id").
		ColumnExpr("e.name AS event_name").
		ColumnExpr("e.date_time AS date_time").
		ColumnExpr("e.place AS place").
		ColumnExpr("r.seats AS seats").
		TableExpr("registrations AS r").
		Join("JOIN events AS e ON e.id = r.event_id").
		Where("r.user_id = ?", userID).
		OrderExpr("e.date_time ASC").
		Scan(context.Background(), &regs)
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (d *DB) DeleteRegistration(eventID, userID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteRegistrationsForEvent(eventID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", eventID).
		Exec(context.Background())
	return err
}
