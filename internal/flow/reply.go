package flow

// Button labels of the reply keyboards. The transport renders them;
// the flows match inbound text against them.
const (
	BtnEvents       = "📅 Список мероприятий"
	BtnMyRegs       = "📝 Мои записи"
	BtnBack         = "⬅️ Назад"
	BtnCancel       = "❌ Отмена"
	BtnSendPhone    = "📱 Отправить номер"
	BtnSendUsername = "👤 Отправить юзернейм"

	BtnParticipants = "📋 Список участников"
	BtnAddEvent     = "➕ Добавить мероприятие"
	BtnDeleteEvent  = "❌ Удалить мероприятие"
)

// Callback token prefixes for inline buttons.
const (
	CBEvent     = "ev"     // ev:<event_id> — show the event card
	CBEventList = "evlist" // back to the event list
	CBSignup    = "su"     // su:<event_id> — start the signup flow
	CBCancelReg = "cancel" // cancel:<event_id> — cancel own registration
)

// Keyboard names the reply-keyboard affordance that accompanies a
// prompt. The transport decides how to render each one.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMainMenu
	KeyboardAdminMenu
	KeyboardBackCancel
	KeyboardSeats
	KeyboardContact
	KeyboardBackOnly
)

// Button is one inline choice rendered under a message.
type Button struct {
	Label string
	Token string
}

// Reply is one outbound message the transport should render.
type Reply struct {
	Text     string
	HTML     bool
	Keyboard Keyboard
	Buttons  []Button // one inline button per row
	QR       []byte   // optional confirmation pass PNG
}

// Message is an inbound text or contact payload from a user.
type Message struct {
	UserID       int64
	Username     string
	Text         string
	ContactPhone string // set when a structured contact was attached
}

// Callback is an inline-button press.
type Callback struct {
	UserID   int64
	Username string
	Token    string
}

// CallbackResult carries the messages to send plus the callback
// acknowledgement. Alert asks for a popup instead of a toast.
type CallbackResult struct {
	Replies []Reply
	Ack     string
	Alert   bool
}

func reply(text string, kb Keyboard) Reply {
	return Reply{Text: text, Keyboard: kb}
}
