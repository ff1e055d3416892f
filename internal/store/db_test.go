package store_test

import (
	"database/sql"
	"testing"
	"time"

	"eventbot/internal/models"
	"eventbot/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *store.DB {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	db := &store.DB{Bun: bunDB}

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { bunDB.Close() })
	return db
}

func TestCreateEventDefaultsOpenAt(t *testing.T) {
	db := setupTestDB(t)

	ev := models.Event{
		Name:     "Jazz Night",
		DateTime: "2025-03-01 18:00",
		Place:    "Main Hall",
	}
	err := db.CreateEvent(&ev)
	assert.NoError(t, err)
	assert.NotZero(t, ev.ID)

	got, err := db.EventByID(ev.ID)
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-01 18:00", got.DateTime)
	assert.Equal(t, "2025-03-01 18:00", got.OpenAt)
}

func TestCreateEventKeepsExplicitOpenAt(t *testing.T) {
	db := setupTestDB(t)

	ev := models.Event{
		Name:     "Preview",
		DateTime: "2025-03-01 18:00",
		OpenAt:   "2025-02-01 10:00",
	}
	assert.NoError(t, db.CreateEvent(&ev))

	got, err := db.EventByID(ev.ID)
	assert.NoError(t, err)
	assert.Equal(t, "2025-02-01 10:00", got.OpenAt)
}

func TestEventByIDNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.EventByID(999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEventsOrderedByDateTime(t *testing.T) {
	db := setupTestDB(t)

	later := models.Event{Name: "Later", DateTime: "2025-06-01 20:00"}
	earlier := models.Event{Name: "Earlier", DateTime: "2025-02-01 19:00"}
	assert.NoError(t, db.CreateEvent(&later))
	assert.NoError(t, db.CreateEvent(&earlier))

	events, err := db.Events()
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "Earlier", events[0].Name)
	assert.Equal(t, "Later", events[1].Name)
}

func TestVisibleEvents(t *testing.T) {
	db := setupTestDB(t)

	past := models.Event{Name: "Past", DateTime: "2024-12-01 19:00"}
	open := models.Event{Name: "Open", DateTime: "2025-06-01 20:00"}
	notYetOpen := models.Event{
		Name:     "NotYetOpen",
		DateTime: "2025-06-15 20:00",
		OpenAt:   "2025-05-01 00:00",
	}
	assert.NoError(t, db.CreateEvent(&past))
	assert.NoError(t, db.CreateEvent(&open))
	assert.NoError(t, db.CreateEvent(&notYetOpen))

	// Before the registration window of NotYetOpen opens.
	visible, err := db.VisibleEvents("2025-01-01 12:00")
	assert.NoError(t, err)
	assert.Len(t, visible, 1)
	assert.Equal(t, "Open", visible[0].Name)

	// At the window boundary the event becomes visible.
	visible, err = db.VisibleEvents("2025-05-01 00:00")
	assert.NoError(t, err)
	assert.Len(t, visible, 2)
	assert.Equal(t, "Open", visible[0].Name)
	assert.Equal(t, "NotYetOpen", visible[1].Name)
}

func TestRegistrationLifecycle(t *testing.T) {
	db := setupTestDB(t)

	ev := models.Event{Name: "Jazz Night", DateTime: "2025-06-01 20:00", Place: "Main Hall"}
	assert.NoError(t, db.CreateEvent(&ev))

	reg := models.Registration{
		EventID: ev.ID,
		UserID:  42,
		Name:    "Ana",
		Contact: "@ana",
		Seats:   2,
	}
	assert.NoError(t, db.CreateRegistration(&reg))
	assert.NotZero(t, reg.ID)

	got, err := db.Registration(ev.ID, 42)
	assert.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "@ana", got.Contact)
	assert.Equal(t, 2, got.Seats)

	regs, err := db.RegistrationsByEvent(ev.ID)
	assert.NoError(t, err)
	assert.Len(t, regs, 1)

	mine, err := db.RegistrationsByUser(42)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "Jazz Night", mine[0].EventName)
	assert.Equal(t, 2, mine[0].Seats)

	assert.NoError(t, db.DeleteRegistration(ev.ID, 42))

	_, err = db.Registration(ev.ID, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)

	mine, err = db.RegistrationsByUser(42)
	assert.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreateRegistrationDefaultsSeats(t *testing.T) {
	db := setupTestDB(t)

	ev := models.Event{Name: "Show", DateTime: "2025-06-01 20:00"}
	assert.NoError(t, db.CreateEvent(&ev))

	reg := models.Registration{EventID: ev.ID, UserID: 7, Name: "Lee", Contact: "+100"}
	assert.NoError(t, db.CreateRegistration(&reg))

	got, err := db.Registration(ev.ID, 7)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.Seats)
}

func TestDeleteEventCascadesRegistrations(t *testing.T) {
	db := setupTestDB(t)

	ev := models.Event{Name: "Gone", DateTime: "2025-06-01 20:00"}
	other := models.Event{Name: "Stays", DateTime: "2025-07-01 20:00"}
	assert.NoError(t, db.CreateEvent(&ev))
	assert.NoError(t, db.CreateEvent(&other))

	for userID := int64(1); userID <= 3; userID++ {
		reg := models.Registration{EventID: ev.ID, UserID: userID, Name: "X", Contact: "+1", Seats: 1}
		assert.NoError(t, db.CreateRegistration(&reg))
	}
	keep := models.Registration{EventID: other.ID, UserID: 5, Name: "Y", Contact: "+2", Seats: 2}
	assert.NoError(t, db.CreateRegistration(&keep))

	assert.NoError(t, db.DeleteEvent(ev.ID))

	_, err := db.EventByID(ev.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	regs, err := db.RegistrationsByEvent(ev.ID)
	assert.NoError(t, err)
	assert.Empty(t, regs)

	regs, err = db.RegistrationsByEvent(other.ID)
	assert.NoError(t, err)
	assert.Len(t, regs, 1)

	// The created_at column still carries a value after the cascade.
	assert.WithinDuration(t, time.Now(), regs[0].CreatedAt, time.Minute)
}
