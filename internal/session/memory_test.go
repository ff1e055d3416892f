package session_test

import (
	"testing"

	"eventbot/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := session.NewMemoryStore()

	got, err := store.Get(42)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, got.Active())

	s := &session.Session{Registration: &session.RegistrationState{
		Step:    session.StepEnterName,
		EventID: 7,
	}}
	assert.NoError(t, store.Put(42, s))

	got, err = store.Get(42)
	assert.NoError(t, err)
	assert.True(t, got.Active())
	assert.Equal(t, session.StepEnterName, got.Registration.Step)
	assert.EqualValues(t, 7, got.Registration.EventID)

	assert.NoError(t, store.Delete(42))
	got, err = store.Get(42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreOverwriteReplacesFlow(t *testing.T) {
	store := session.NewMemoryStore()

	assert.NoError(t, store.Put(1, &session.Session{
		Registration: &session.RegistrationState{Step: session.StepEnterSeats, Name: "Ana"},
	}))

	// Starting a new flow discards the prior one unconditionally.
	assert.NoError(t, store.Put(1, &session.Session{
		CreateEvent: &session.CreateEventState{Step: session.StepTitle},
	}))

	got, err := store.Get(1)
	assert.NoError(t, err)
	assert.Nil(t, got.Registration)
	assert.NotNil(t, got.CreateEvent)
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := session.NewMemoryStore()

	assert.NoError(t, store.Put(1, &session.Session{
		DeleteEvent: &session.DeleteEventState{Step: session.StepConfirm, EventID: 3},
	}))

	got, err := store.Get(2)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
