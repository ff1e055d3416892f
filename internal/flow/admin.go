package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eventbot/internal/models"
	"eventbot/internal/session"
	"eventbot/internal/store"
	"eventbot/internal/text"
)

// participants renders every event with its registrations and seat
// totals. Administrators see all events, including invisible ones.
func (s *Service) participants() ([]Reply, error) {
	events, err := s.DB.Events()
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []Reply{reply("📭 Событий пока нет.", KeyboardAdminMenu)}, nil
	}

	lines := []string{"<b>📋 Список участников на каждое мероприятие:</b>"}
	for _, ev := range events {
		place := "место не указано"
		if ev.Place != "" {
			place = text.Escape(ev.Place)
		}
		lines = append(lines, fmt.Sprintf("<b>%s</b> (%s, %s)",
			text.Escape(ev.Name), text.Display(ev.DateTime), place))

		regs, err := s.DB.RegistrationsByEvent(ev.ID)
		if err != nil {
			return nil, err
		}
		total := 0
		if len(regs) == 0 {
			lines = append(lines, "• (нет записей)")
		}
		for _, r := range regs {
			total += r.Seats
			// Contact goes in <code> so underscores keep their shape.
			lines = append(lines, fmt.Sprintf("• %s — <code>%s</code> (мест: %d)",
				text.Escape(r.Name), text.Escape(r.Contact), r.Seats))
		}
		lines = append(lines, fmt.Sprintf("Итого мест: %d", total), "")
	}

	return []Reply{{
		Text:     strings.Join(lines, "\n"),
		HTML:     true,
		Keyboard: KeyboardAdminMenu,
	}}, nil
}

// ---------------- CREATE EVENT ----------------

func (s *Service) startCreateEvent(userID int64) ([]Reply, error) {
	sess := &session.Session{CreateEvent: &session.CreateEventState{Step: session.StepTitle}}
	if err := s.Sessions.Put(userID, sess); err != nil {
		return nil, err
	}
	return []Reply{reply("🆕 Введите название мероприятия:", KeyboardBackCancel)}, nil
}

// createEventStep advances the admin "create event" flow. Back moves
// only the step pointer; fields already entered are preserved.
func (s *Service) createEventStep(msg Message, st *session.CreateEventState) ([]Reply, error) {
	if msg.Text == BtnCancel {
		return s.cancelAll(msg.UserID)
	}

	switch st.Step {
	case session.StepTitle:
		if msg.Text == BtnBack {
			if err := s.Sessions.Delete(msg.UserID); err != nil {
				return nil, err
			}
			return s.adminMenu(), nil
		}
		st.Title = strings.TrimSpace(msg.Text)
		st.Step = session.StepDateTime
		if err := s.Sessions.Put(msg.UserID, &session.Session{CreateEvent: st}); err != nil {
			return nil, err
		}
		return []Reply{reply("Введите дату и время в формате YYYY-MM-DD HH:MM:", KeyboardBackCancel)}, nil

	case session.StepDateTime:
		if msg.Text == BtnBack {
			st.Step = session.StepTitle
			if err := s.Sessions.Put(msg.UserID, &session.Session{CreateEvent: st}); err != nil {
				return nil, err
			}
			return []Reply{reply("Введите название мероприятия:", KeyboardBackCancel)}, nil
		}
		canonical, err := text.ParseTimestamp(strings.TrimSpace(msg.Text))
		if err != nil {
			return []Reply{reply("❗ Неверный формат. Введите YYYY-MM-DD HH:MM:", KeyboardBackCancel)}, nil
		}
		st.DateTime = canonical
		st.Step = session.StepPlace
		if err := s.Sessions.Put(msg.UserID, &session.Session{CreateEvent: st}); err != nil {
			return nil, err
		}
		return []Reply{reply("Введите место проведения:", KeyboardBackCancel)}, nil

	case session.StepPlace:
		if msg.Text == BtnBack {
			st.Step = session.StepDateTime
			if err := s.Sessions.Put(msg.UserID, &session.Session{CreateEvent: st}); err != nil {
				return nil, err
			}
			return []Reply{reply("Введите дату и время YYYY-MM-DD HH:MM:", KeyboardBackCancel)}, nil
		}
		st.Place = strings.TrimSpace(msg.Text)
		st.Step = session.StepDescription
		if err := s.Sessions.Put(msg.UserID, &session.Session{CreateEvent: st}); err != nil {
			return nil, err
		}
		return []Reply{reply("Введите описание (или '-' если без описания):", KeyboardBackCancel)}, nil

	case session.StepDescription:
		if msg.Text == BtnBack {
			st.Step = session.StepPlace
			if err := s.Sessions.Put(msg.UserID, &session.Session{CreateEvent: st}); err != nil {
				return nil, err
			}
			return []Reply{reply("Введите место проведения:", KeyboardBackCancel)}, nil
		}
		desc := strings.TrimSpace(msg.Text)
		if desc == "-" {
			desc = ""
		}
		ev := models.Event{
			Name:        st.Title,
			Description: desc,
			DateTime:    st.DateTime,
			Place:       st.Place,
		}
		if err := s.DB.CreateEvent(&ev); err != nil {
			return nil, err
		}
		s.logInfo("FLOW", fmt.Sprintf("admin %d created event %d %q", msg.UserID, ev.ID, ev.Name))
		s.publish("event created", func() error {
			return s.Stream.EventCreated(ev)
		})
		if err := s.Sessions.Delete(msg.UserID); err != nil {
			return nil, err
		}
		return []Reply{reply(fmt.Sprintf(
			"✅ Событие \"%s\" создано:\n • Дата/время: %s\n • Место: %s\n • Описание: %s",
			st.Title, text.Display(st.DateTime), orUnset(st.Place), orUnset(desc)),
			KeyboardAdminMenu)}, nil
	}

	return s.cancelAll(msg.UserID)
}

func orUnset(s string) string {
	if s == "" {
		return "(не указано)"
	}
	return s
}

// ---------------- DELETE EVENT ----------------

func (s *Service) startDeleteEvent(userID int64) ([]Reply, error) {
	events, err := s.DB.Events()
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []Reply{reply("Нет мероприятий для удаления.", KeyboardAdminMenu)}, nil
	}

	sess := &session.Session{DeleteEvent: &session.DeleteEventState{Step: session.StepAwaitID}}
	if err := s.Sessions.Put(userID, sess); err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(events)+1)
	lines = append(lines, "Введите ID мероприятия, которое нужно удалить:")
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", ev.ID, ev.Name, text.Display(ev.DateTime)))
	}
	return []Reply{reply(strings.Join(lines, "\n"), KeyboardBackCancel)}, nil
}

// deleteEventStep advances the admin "delete event" flow: pick an id,
// then confirm with an affirmative token.
func (s *Service) deleteEventStep(msg Message, st *session.DeleteEventState) ([]Reply, error) {
	if msg.Text == BtnCancel {
		return s.cancelAll(msg.UserID)
	}

	switch st.Step {
	case session.StepAwaitID:
		if msg.Text == BtnBack {
			if err := s.Sessions.Delete(msg.UserID); err != nil {
				return nil, err
			}
			return s.adminMenu(), nil
		}
		id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil {
			return []Reply{reply("Пожалуйста, введите числовой ID мероприятия.", KeyboardBackCancel)}, nil
		}
		ev, err := s.DB.EventByID(id)
		if errors.Is(err, store.ErrNotFound) {
			return []Reply{reply("Событие с таким ID не найдено. Попробуйте другой ID.", KeyboardBackCancel)}, nil
		}
		if err != nil {
			return nil, err
		}
		st.Step = session.StepConfirm
		st.EventID = ev.ID
		st.EventName = ev.Name
		if err := s.Sessions.Put(msg.UserID, &session.Session{DeleteEvent: st}); err != nil {
			return nil, err
		}
		return []Reply{reply(fmt.Sprintf(
			"⚠️ Удалить \"%s\"?\nВведите ДА для подтверждения или любой другой текст для отмены.", ev.Name),
			KeyboardBackCancel)}, nil

	case session.StepConfirm:
		if msg.Text == BtnBack {
			return s.startDeleteEvent(msg.UserID)
		}
		token := strings.ToLower(strings.TrimSpace(msg.Text))
		if token != "да" && token != "yes" {
			if err := s.Sessions.Delete(msg.UserID); err != nil {
				return nil, err
			}
			return []Reply{reply("Удаление отменено.", KeyboardAdminMenu)}, nil
		}
		// Registrations go first, then the event itself.
		if err := s.DB.DeleteEvent(st.EventID); err != nil {
			return nil, err
		}
		s.logInfo("FLOW", fmt.Sprintf("admin %d deleted event %d %q", msg.UserID, st.EventID, st.EventName))
		s.publish("event deleted", func() error {
			return s.Stream.EventDeleted(st.EventID, st.EventName)
		})
		if err := s.Sessions.Delete(msg.UserID); err != nil {
			return nil, err
		}
		return []Reply{reply("🗑 Готово. Мероприятие и все связанные записи удалены.", KeyboardAdminMenu)}, nil
	}

	return s.cancelAll(msg.UserID)
}
