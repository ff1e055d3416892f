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

// showEvents presents the visible event set and puts the user at the
// start of the registration flow.
func (s *Service) showEvents(userID int64) ([]Reply, error) {
	events, err := s.DB.VisibleEvents(text.Timestamp(s.now()))
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []Reply{reply("📭 В настоящее время нет доступных мероприятий.", KeyboardMainMenu)}, nil
	}

	sess := &session.Session{Registration: &session.RegistrationState{Step: session.StepSelectEvent}}
	if err := s.Sessions.Put(userID, sess); err != nil {
		return nil, err
	}

	buttons := make([]Button, 0, len(events))
	for _, ev := range events {
		buttons = append(buttons, Button{
			Label: fmt.Sprintf("%s • %s", ev.Name, text.Display(ev.DateTime)),
			Token: fmt.Sprintf("%s:%d", CBEvent, ev.ID),
		})
	}

	return []Reply{
		reply("Выберите мероприятие из списка:", KeyboardBackCancel),
		{Text: "События:", Buttons: buttons},
	}, nil
}

// eventCard renders one event's details with signup and back buttons.
func (s *Service) eventCard(eventID int64) (CallbackResult, error) {
	ev, err := s.DB.EventByID(eventID)
	if errors.Is(err, store.ErrNotFound) {
		return CallbackResult{Ack: "Событие не найдено.", Alert: true}, nil
	}
	if err != nil {
		return CallbackResult{}, err
	}
	return CallbackResult{Replies: []Reply{eventCardReply(ev)}}, nil
}

func eventCardReply(ev *models.Event) Reply {
	lines := []string{
		fmt.Sprintf("🗓 %s", ev.Name),
		fmt.Sprintf("• Дата/время: %s", text.Display(ev.DateTime)),
		fmt.Sprintf("• Место: %s", placeOrUnset(ev.Place)),
	}
	if ev.Description != "" {
		lines = append(lines, fmt.Sprintf("• Описание: %s", ev.Description))
	}
	return Reply{
		Text: strings.Join(lines, "\n"),
		Buttons: []Button{
			{Label: "✅ Записаться", Token: fmt.Sprintf("%s:%d", CBSignup, ev.ID)},
			{Label: "⬅️ К списку", Token: CBEventList},
		},
	}
}

func placeOrUnset(place string) string {
	if place == "" {
		return "(не указано)"
	}
	return place
}

// signup starts the registration flow for an event, short-circuiting
// when the user is already registered.
func (s *Service) signup(userID, eventID int64) (CallbackResult, error) {
	ev, err := s.DB.EventByID(eventID)
	if errors.Is(err, store.ErrNotFound) {
		return CallbackResult{Ack: "Событие не найдено.", Alert: true}, nil
	}
	if err != nil {
		return CallbackResult{}, err
	}

	_, err = s.DB.Registration(eventID, userID)
	if err == nil {
		return CallbackResult{Ack: "Вы уже записаны на это мероприятие.", Alert: true}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return CallbackResult{}, err
	}

	sess := &session.Session{Registration: &session.RegistrationState{
		Step:      session.StepEnterName,
		EventID:   ev.ID,
		EventName: ev.Name,
	}}
	if err := s.Sessions.Put(userID, sess); err != nil {
		return CallbackResult{}, err
	}

	return CallbackResult{Replies: []Reply{reply(
		fmt.Sprintf("Отлично! Вы выбрали: \"%s\"\nКак вас зовут?", ev.Name),
		KeyboardBackCancel)}}, nil
}

// registrationStep advances the signup flow by one inbound input.
func (s *Service) registrationStep(msg Message, st *session.RegistrationState) ([]Reply, error) {
	switch st.Step {
	case session.StepSelectEvent:
		return s.stepSelectEvent(msg)
	case session.StepEnterName:
		return s.stepEnterName(msg, st)
	case session.StepEnterSeats:
		return s.stepEnterSeats(msg, st)
	case session.StepEnterContact:
		return s.stepEnterContact(msg, st)
	}
	return s.cancelAll(msg.UserID)
}

// stepSelectEvent handles free-text selection as a fallback for users
// typing instead of tapping: match by exact name or leading id.
func (s *Service) stepSelectEvent(msg Message) ([]Reply, error) {
	switch msg.Text {
	case BtnBack:
		return s.showEvents(msg.UserID)
	case BtnCancel:
		return s.cancelAll(msg.UserID)
	}

	events, err := s.DB.VisibleEvents(text.Timestamp(s.now()))
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(msg.Text)
	for i := range events {
		ev := &events[i]
		if strings.EqualFold(input, ev.Name) || strings.HasPrefix(input, strconv.FormatInt(ev.ID, 10)) {
			return []Reply{eventCardReply(ev)}, nil
		}
	}
	return []Reply{reply("Пожалуйста, выберите мероприятие из списка кнопок.", KeyboardBackCancel)}, nil
}

func (s *Service) stepEnterName(msg Message, st *session.RegistrationState) ([]Reply, error) {
	switch msg.Text {
	case BtnBack:
		return s.showEvents(msg.UserID)
	case BtnCancel:
		return s.cancelAll(msg.UserID)
	}

	st.Name = strings.TrimSpace(msg.Text)
	st.Step = session.StepEnterSeats
	if err := s.Sessions.Put(msg.UserID, &session.Session{Registration: st}); err != nil {
		return nil, err
	}
	return []Reply{reply("Сколько мест бронируете?\nВыберите 1–4:", KeyboardSeats)}, nil
}

func (s *Service) stepEnterSeats(msg Message, st *session.RegistrationState) ([]Reply, error) {
	switch msg.Text {
	case BtnBack:
		st.Step = session.StepEnterName
		if err := s.Sessions.Put(msg.UserID, &session.Session{Registration: st}); err != nil {
			return nil, err
		}
		return []Reply{reply("Как вас зовут?", KeyboardBackCancel)}, nil
	case BtnCancel:
		return s.cancelAll(msg.UserID)
	}

	seats, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil {
		return []Reply{reply("Пожалуйста, выберите число от 1 до 4 кнопкой ниже.", KeyboardSeats)}, nil
	}
	if seats < 1 || seats > 4 {
		return []Reply{reply("Можно выбрать от 1 до 4 мест.", KeyboardSeats)}, nil
	}

	st.Seats = seats
	st.Step = session.StepEnterContact
	if err := s.Sessions.Put(msg.UserID, &session.Session{Registration: st}); err != nil {
		return nil, err
	}
	return []Reply{reply("Укажите ваш номер телефона или @username:", KeyboardContact)}, nil
}

func (s *Service) stepEnterContact(msg Message, st *session.RegistrationState) ([]Reply, error) {
	var contact string

	switch {
	case msg.ContactPhone != "":
		// A structured contact payload is authoritative.
		contact = msg.ContactPhone
	case msg.Text == BtnBack:
		// Back lands on the latest not-yet-finalized field: seats if
		// a count was already set, the name prompt otherwise.
		if st.Seats > 0 {
			st.Step = session.StepEnterSeats
			if err := s.Sessions.Put(msg.UserID, &session.Session{Registration: st}); err != nil {
				return nil, err
			}
			return []Reply{reply("Сколько мест бронируете?\nВыберите 1–4:", KeyboardSeats)}, nil
		}
		st.Step = session.StepEnterName
		if err := s.Sessions.Put(msg.UserID, &session.Session{Registration: st}); err != nil {
			return nil, err
		}
		return []Reply{reply("Как вас зовут?", KeyboardBackCancel)}, nil
	case msg.Text == BtnCancel:
		return s.cancelAll(msg.UserID)
	case msg.Text == BtnSendUsername:
		if msg.Username == "" {
			return []Reply{reply(
				"У вас не установлен @username в Telegram. Укажите его в настройках или введите номер/ник вручную:",
				KeyboardContact)}, nil
		}
		contact = "@" + msg.Username
	default:
		contact = strings.TrimSpace(msg.Text)
	}

	return s.commitRegistration(msg.UserID, st, contact)
}

// commitRegistration re-checks for a duplicate immediately before the
// insert (best-effort guard against a concurrent flow for the same
// user and event), persists the registration, and fans out the
// notifications.
func (s *Service) commitRegistration(userID int64, st *session.RegistrationState, contact string) ([]Reply, error) {
	_, err := s.DB.Registration(st.EventID, userID)
	if err == nil {
		if err := s.Sessions.Delete(userID); err != nil {
			return nil, err
		}
		return []Reply{reply("Вы уже записаны на это мероприятие.", KeyboardMainMenu)}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	seats := st.Seats
	if seats == 0 {
		seats = 1
	}
	reg := models.Registration{
		EventID: st.EventID,
		UserID:  userID,
		Name:    st.Name,
		Contact: contact,
		Seats:   seats,
	}
	if err := s.DB.CreateRegistration(&reg); err != nil {
		return nil, err
	}
	s.logInfo("FLOW", fmt.Sprintf("user %d registered for event %d (%d seats)", userID, st.EventID, seats))

	s.notifyAdmins(fmt.Sprintf(
		"💥 Новая запись на мероприятие:\n• Мероприятие: %s\n• Имя: %s\n• Контакт: %s\n• Мест: %d",
		st.EventName, st.Name, contact, seats))
	s.publish("registration created", func() error {
		return s.Stream.RegistrationCreated(reg, st.EventName)
	})

	var pass []byte
	if s.Passes != nil {
		pass, err = s.Passes.Pass(reg, st.EventName)
		if err != nil {
			s.logWarn("FLOW", fmt.Sprintf("failed to generate pass for registration %d: %v", reg.ID, err))
			pass = nil
		}
	}

	if err := s.Sessions.Delete(userID); err != nil {
		return nil, err
	}

	return []Reply{{
		Text: fmt.Sprintf(
			"Спасибо, %s! Вы зарегистрированы на \"%s\" (мест: %d).\n"+
				"Администратор свяжется с вами в ближайшее время для подтверждения бронирования.",
			st.Name, st.EventName, seats),
		Keyboard: KeyboardMainMenu,
		QR:       pass,
	}}, nil
}

// myRegistrations lists the user's registrations with per-row cancel
// buttons.
func (s *Service) myRegistrations(userID int64) ([]Reply, error) {
	regs, err := s.DB.RegistrationsByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return []Reply{reply("📭 У вас пока нет записей.", KeyboardMainMenu)}, nil
	}

	lines := []string{"Ваши записи:"}
	buttons := make([]Button, 0, len(regs))
	for i, r := range regs {
		place := r.Place
		if place == "" {
			place = "(место не указано)"
		}
		lines = append(lines, fmt.Sprintf("%d. %s – %s @ %s — мест: %d",
			i+1, r.EventName, text.Display(r.DateTime), place, r.Seats))
		buttons = append(buttons, Button{
			Label: fmt.Sprintf("❌ Отмена %d", i+1),
			Token: fmt.Sprintf("%s:%d", CBCancelReg, r.EventID),
		})
	}

	return []Reply{
		{Text: strings.Join(lines, "\n"), Keyboard: KeyboardBackOnly},
		{Text: "Для отмены записи нажмите кнопку под соответствующим пунктом:", Buttons: buttons},
	}, nil
}

// cancelRegistration removes the user's registration for an event and
// notifies the administrators.
func (s *Service) cancelRegistration(userID, eventID int64) (CallbackResult, error) {
	ev, err := s.DB.EventByID(eventID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return CallbackResult{}, err
	}
	reg, err := s.DB.Registration(eventID, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return CallbackResult{}, err
	}

	if err := s.DB.DeleteRegistration(eventID, userID); err != nil {
		return CallbackResult{}, err
	}

	if ev != nil && reg != nil {
		s.notifyAdmins(fmt.Sprintf(
			"❎ Отмена записи:\n• Мероприятие: %s (%s, %s)\n• Имя: %s\n• Контакт: %s\n• Мест: %d",
			ev.Name, text.Display(ev.DateTime), placeOrUnset(ev.Place), reg.Name, reg.Contact, reg.Seats))
		s.publish("registration cancelled", func() error {
			return s.Stream.RegistrationCancelled(*reg, ev.Name)
		})
	}

	replies, err := s.myRegistrations(userID)
	if err != nil {
		return CallbackResult{}, err
	}
	return CallbackResult{Replies: replies, Ack: "Запись отменена."}, nil
}
