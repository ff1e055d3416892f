package flow_test

import (
	"fmt"
	"testing"

	"eventbot/internal/flow"
	"eventbot/internal/models"
	"eventbot/internal/session"
	"eventbot/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestAdminButtonsIgnoredForRegularUsers(t *testing.T) {
	svc, db, _ := newTestService(t)
	createEvent(t, db, "Night", "2025-06-01 20:00", "")

	for _, btn := range []string{flow.BtnAddEvent, flow.BtnDeleteEvent, flow.BtnParticipants} {
		replies, err := svc.HandleMessage(msg(userAna, btn))
		assert.NoError(t, err)
		assert.Contains(t, replies[0].Text, "Выберите действие", "button %q must fall through to the menu hint", btn)

		sess, err := svc.Sessions.Get(userAna)
		assert.NoError(t, err)
		assert.False(t, sess.Active(), "button %q must not start an admin flow", btn)
	}
}

func TestAdminCommandGating(t *testing.T) {
	svc, _, _ := newTestService(t)

	replies, err := svc.HandleMessage(msg(userAna, "/admin"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "только администраторам")

	replies, err = svc.HandleMessage(msg(adminOne, "/admin"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Режим администрирования")
	assert.Equal(t, flow.KeyboardAdminMenu, replies[0].Keyboard)
}

func TestCreateEventFlow(t *testing.T) {
	svc, db, _ := newTestService(t)

	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnAddEvent))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Введите название")

	replies, err = svc.HandleMessage(msg(adminOne, "Wine Tasting"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "YYYY-MM-DD HH:MM")

	replies, err = svc.HandleMessage(msg(adminOne, "2025-07-10 19:30"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "место проведения")

	replies, err = svc.HandleMessage(msg(adminOne, "Back Room"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "описание")

	replies, err = svc.HandleMessage(msg(adminOne, "-"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "✅ Событие \"Wine Tasting\" создано")
	assert.Equal(t, flow.KeyboardAdminMenu, replies[0].Keyboard)

	events, err := db.Events()
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "Wine Tasting", events[0].Name)
	assert.Equal(t, "2025-07-10 19:30", events[0].DateTime)
	assert.Equal(t, "Back Room", events[0].Place)
	assert.Empty(t, events[0].Description, "a '-' description must be stored empty")
	assert.Equal(t, events[0].DateTime, events[0].OpenAt)

	sess, err := svc.Sessions.Get(adminOne)
	assert.NoError(t, err)
	assert.False(t, sess.Active())
}

func TestCreateEventBadDateTimeReprompts(t *testing.T) {
	svc, db, _ := newTestService(t)

	_, err := svc.HandleMessage(msg(adminOne, flow.BtnAddEvent))
	assert.NoError(t, err)
	_, err = svc.HandleMessage(msg(adminOne, "Wine Tasting"))
	assert.NoError(t, err)

	for _, bad := range []string{"tomorrow", "2025-07-10", "10.07.2025 19:30"} {
		replies, err := svc.HandleMessage(msg(adminOne, bad))
		assert.NoError(t, err)
		assert.Contains(t, replies[0].Text, "Неверный формат", "input %q must re-prompt", bad)

		sess, err := svc.Sessions.Get(adminOne)
		assert.NoError(t, err)
		assert.Equal(t, session.StepDateTime, sess.CreateEvent.Step, "input %q must not advance", bad)
	}

	events, err := db.Events()
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestCreateEventBackPreservesFields(t *testing.T) {
	svc, db, _ := newTestService(t)

	_, err := svc.HandleMessage(msg(adminOne, flow.BtnAddEvent))
	assert.NoError(t, err)
	_, err = svc.HandleMessage(msg(adminOne, "Wine Tasting"))
	assert.NoError(t, err)
	_, err = svc.HandleMessage(msg(adminOne, "2025-07-10 19:30"))
	assert.NoError(t, err)

	// Step back to the datetime prompt, then forward again.
	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnBack))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "дату и время")

	sess, err := svc.Sessions.Get(adminOne)
	assert.NoError(t, err)
	assert.Equal(t, "Wine Tasting", sess.CreateEvent.Title)
	assert.Equal(t, "2025-07-10 19:30", sess.CreateEvent.DateTime)

	_, err = svc.HandleMessage(msg(adminOne, "2025-07-11 18:00"))
	assert.NoError(t, err)
	_, err = svc.HandleMessage(msg(adminOne, "Terrace"))
	assert.NoError(t, err)
	_, err = svc.HandleMessage(msg(adminOne, "Open air"))
	assert.NoError(t, err)

	events, err := db.Events()
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "2025-07-11 18:00", events[0].DateTime)
	assert.Equal(t, "Open air", events[0].Description)
}

func TestCreateEventBackFromTitleReturnsToAdminMenu(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.HandleMessage(msg(adminOne, flow.BtnAddEvent))
	assert.NoError(t, err)

	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnBack))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Режим администрирования")

	sess, err := svc.Sessions.Get(adminOne)
	assert.NoError(t, err)
	assert.False(t, sess.Active())
}

func TestDeleteEventFlow(t *testing.T) {
	svc, db, _ := newTestService(t)
	ev := createEvent(t, db, "Jazz Night", "2025-06-01 20:00", "Main Hall")

	reg := models.Registration{EventID: ev.ID, UserID: userAna, Name: "Ana", Contact: "@ana", Seats: 2}
	assert.NoError(t, db.CreateRegistration(&reg))

	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnDeleteEvent))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Введите ID мероприятия")
	assert.Contains(t, replies[0].Text, fmt.Sprintf("%d. Jazz Night", ev.ID))

	replies, err = svc.HandleMessage(msg(adminOne, fmt.Sprintf("%d", ev.ID)))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Удалить \"Jazz Night\"?")

	replies, err = svc.HandleMessage(msg(adminOne, "ДА"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "🗑 Готово")

	_, err = db.EventByID(ev.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	regs, err := db.RegistrationsByEvent(ev.ID)
	assert.NoError(t, err)
	assert.Empty(t, regs)
}

func TestDeleteEventAbortKeepsEvent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ev := createEvent(t, db, "Jazz Night", "2025-06-01 20:00", "")

	_, err := svc.HandleMessage(msg(adminOne, flow.BtnDeleteEvent))
	assert.NoError(t, err)
	_, err = svc.HandleMessage(msg(adminOne, fmt.Sprintf("%d", ev.ID)))
	assert.NoError(t, err)

	replies, err := svc.HandleMessage(msg(adminOne, "нет"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Удаление отменено")

	_, err = db.EventByID(ev.ID)
	assert.NoError(t, err)

	sess, err := svc.Sessions.Get(adminOne)
	assert.NoError(t, err)
	assert.False(t, sess.Active())
}

func TestDeleteEventInvalidIDReprompts(t *testing.T) {
	svc, db, _ := newTestService(t)
	createEvent(t, db, "Jazz Night", "2025-06-01 20:00", "")

	_, err := svc.HandleMessage(msg(adminOne, flow.BtnDeleteEvent))
	assert.NoError(t, err)

	replies, err := svc.HandleMessage(msg(adminOne, "abc"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "числовой ID")

	replies, err = svc.HandleMessage(msg(adminOne, "999"))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "не найдено")

	sess, err := svc.Sessions.Get(adminOne)
	assert.NoError(t, err)
	assert.Equal(t, session.StepAwaitID, sess.DeleteEvent.Step)
}

func TestDeleteEventWhenNoneExist(t *testing.T) {
	svc, _, _ := newTestService(t)

	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnDeleteEvent))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Нет мероприятий для удаления")

	sess, err := svc.Sessions.Get(adminOne)
	assert.NoError(t, err)
	assert.False(t, sess.Active())
}

func TestParticipantsListing(t *testing.T) {
	svc, db, _ := newTestService(t)
	jazz := createEvent(t, db, "Jazz & Blues", "2025-06-01 20:00", "Main Hall")
	createEvent(t, db, "Empty Night", "2025-06-02 20:00", "")

	regs := []models.Registration{
		{EventID: jazz.ID, UserID: 1, Name: "Ana", Contact: "@ana_k", Seats: 2},
		{EventID: jazz.ID, UserID: 2, Name: "Boris <admin>", Contact: "+7999", Seats: 3},
	}
	for i := range regs {
		assert.NoError(t, db.CreateRegistration(&regs[i]))
	}

	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnParticipants))
	assert.NoError(t, err)
	assert.Len(t, replies, 1)
	assert.True(t, replies[0].HTML)

	body := replies[0].Text
	assert.Contains(t, body, "Jazz &amp; Blues")
	assert.Contains(t, body, "<code>@ana_k</code>")
	assert.Contains(t, body, "Boris &lt;admin&gt;")
	assert.Contains(t, body, "Итого мест: 5")
	assert.Contains(t, body, "(нет записей)")
	assert.Contains(t, body, "Итого мест: 0")
}

func TestParticipantsNoEvents(t *testing.T) {
	svc, _, _ := newTestService(t)

	replies, err := svc.HandleMessage(msg(adminOne, flow.BtnParticipants))
	assert.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Событий пока нет")
}
