package flow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventbot/internal/logger"
	"eventbot/internal/models"
	"eventbot/internal/session"
)

// DBLayer is the store surface the flows depend on.
type DBLayer interface {
	CreateEvent(ev *models.Event) error
	Events() ([]models.Event, error)
	VisibleEvents(now string) ([]models.Event, error)
	EventByID(id int64) (*models.Event, error)
	DeleteEvent(id int64) error
	CreateRegistration(reg *models.Registration) error
	RegistrationsByEvent(eventID int64) ([]models.Registration, error)
	Registration(eventID, userID int64) (*models.Registration, error)
	DeleteRegistration(eventID, userID int64) error
	RegistrationsByUser(userID int64) ([]models.UserRegistration, error)
}

// Notifier delivers a message to a single administrator.
type Notifier interface {
	NotifyAdmin(adminID int64, text string) error
}

// Publisher streams activity records. All publishing is best-effort.
type Publisher interface {
	RegistrationCreated(reg models.Registration, eventName string) error
	RegistrationCancelled(reg models.Registration, eventName string) error
	EventCreated(ev models.Event) error
	EventDeleted(eventID int64, name string) error
}

// PassGenerator renders a confirmation pass image for a registration.
type PassGenerator interface {
	Pass(reg models.Registration, eventName string) ([]byte, error)
}

// Service routes inbound user input through the per-user flow state
// machines and the event store.
type Service struct {
	DB       DBLayer
	Sessions session.Store
	Notifier Notifier
	Stream   Publisher
	Passes   PassGenerator
	Logger   *logger.Logger
	Admins   []int64

	Now func() time.Time
}

func New(db DBLayer, sessions session.Store, notifier Notifier, log *logger.Logger, admins []int64) *Service {
	return &Service{
		DB:       db,
		Sessions: sessions,
		Notifier: notifier,
		Logger:   log,
		Admins:   admins,
		Now:      time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) isAdmin(userID int64) bool {
	for _, id := range s.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Service) logInfo(category, message string) {
	if s.Logger != nil {
		s.Logger.Info(category, message)
	}
}

func (s *Service) logWarn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

// HandleMessage processes one inbound text or contact payload and
// returns the messages to render. Store I/O failures propagate to the
// transport, which turns them into a generic failure response without
// touching other users' state.
func (s *Service) HandleMessage(msg Message) ([]Reply, error) {
	switch msg.Text {
	case "/start", "/help":
		if err := s.Sessions.Delete(msg.UserID); err != nil {
			return nil, err
		}
		return []Reply{reply(
			"Привет! Я бот для записи на мероприятия NORD Coffee Base 💚\n"+
				"Я помогу выбрать мероприятие, дату, время, узнать стоимость и записаться 📝\n"+
				"Важно ☝️ Места бронируются только после предоплаты — с вами дополнительно свяжутся.\n"+
				"Выберите действие в меню ниже:", KeyboardMainMenu)}, nil
	case "/whoami":
		return []Reply{reply(fmt.Sprintf("Ваш Telegram ID: %d", msg.UserID), KeyboardNone)}, nil
	case "/admin":
		if !s.isAdmin(msg.UserID) {
			return []Reply{reply("Эта команда доступна только администраторам.", KeyboardNone)}, nil
		}
		if err := s.Sessions.Delete(msg.UserID); err != nil {
			return nil, err
		}
		return s.adminMenu(), nil
	case BtnEvents:
		return s.showEvents(msg.UserID)
	case BtnMyRegs:
		return s.myRegistrations(msg.UserID)
	case BtnParticipants:
		if !s.isAdmin(msg.UserID) {
			break
		}
		return s.participants()
	case BtnAddEvent:
		if !s.isAdmin(msg.UserID) {
			break
		}
		return s.startCreateEvent(msg.UserID)
	case BtnDeleteEvent:
		if !s.isAdmin(msg.UserID) {
			break
		}
		return s.startDeleteEvent(msg.UserID)
	}

	sess, err := s.Sessions.Get(msg.UserID)
	if err != nil {
		return nil, err
	}

	switch {
	case sess != nil && sess.CreateEvent != nil:
		return s.createEventStep(msg, sess.CreateEvent)
	case sess != nil && sess.DeleteEvent != nil:
		return s.deleteEventStep(msg, sess.DeleteEvent)
	case sess != nil && sess.Registration != nil:
		return s.registrationStep(msg, sess.Registration)
	}

	switch msg.Text {
	case BtnBack:
		return []Reply{reply("Возвращаемся в главное меню.", KeyboardMainMenu)}, nil
	case BtnCancel:
		return s.cancelAll(msg.UserID)
	}

	return []Reply{reply("Выберите действие в меню ниже:", KeyboardMainMenu)}, nil
}

// HandleCallback processes an inline-button press, routed by token
// prefix.
func (s *Service) HandleCallback(cb Callback) (CallbackResult, error) {
	token := cb.Token
	arg := ""
	if i := strings.Index(token, ":"); i >= 0 {
		token, arg = cb.Token[:i], cb.Token[i+1:]
	}

	switch token {
	case CBEventList:
		replies, err := s.showEvents(cb.UserID)
		return CallbackResult{Replies: replies}, err
	case CBEvent:
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return CallbackResult{Ack: "Неверный идентификатор события.", Alert: true}, nil
		}
		return s.eventCard(id)
	case CBSignup:
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return CallbackResult{Ack: "Неверный идентификатор события.", Alert: true}, nil
		}
		return s.signup(cb.UserID, id)
	case CBCancelReg:
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return CallbackResult{Ack: "Произошла ошибка при отмене записи.", Alert: true}, nil
		}
		return s.cancelRegistration(cb.UserID, id)
	}

	return CallbackResult{}, nil
}

// cancelAll discards any in-flight flow and returns the user to a
// known menu state.
func (s *Service) cancelAll(userID int64) ([]Reply, error) {
	if err := s.Sessions.Delete(userID); err != nil {
		return nil, err
	}
	if s.isAdmin(userID) {
		return []Reply{reply("Действие отменено. Вы в админ-меню.", KeyboardAdminMenu)}, nil
	}
	return []Reply{reply("Действие отменено. Что дальше?", KeyboardMainMenu)}, nil
}

func (s *Service) adminMenu() []Reply {
	return []Reply{reply("Режим администрирования:\nВыберите действие.", KeyboardAdminMenu)}
}

// notifyAdmins fans a message out to every administrator. Delivery is
// independent per recipient; failures are logged and swallowed.
func (s *Service) notifyAdmins(text string) {
	if s.Notifier == nil {
		return
	}
	for _, adminID := range s.Admins {
		if err := s.Notifier.NotifyAdmin(adminID, text); err != nil {
			s.logWarn("FLOW", fmt.Sprintf("failed to notify admin %d: %v", adminID, err))
		}
	}
}

func (s *Service) publish(what string, fn func() error) {
	if s.Stream == nil {
		return
	}
	if err := fn(); err != nil {
		s.logWarn("KAFKA", fmt.Sprintf("failed to publish %s: %v", what, err))
	}
}
