package domain

// Recipient sentinel for broadcast messages: every participant sees them.
const RecipientEveryone = "Todos"

// Message types.
const (
	TypeStatus  = "status"
	TypeMessage = "message"
	TypePrivate = "private_message"
)

// Status message texts recorded on join and eviction.
const (
	StatusEntered = "entered"
	StatusLeft    = "left"
)

// TimeLayout is the display format of Message.Time.
const TimeLayout = "15:04:05"

// Message is a single chat event. ID and Time are assigned by the store
// on append and never change afterwards.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// PostMessageRequest is the payload for posting a chat message. The author
// comes from the User header, not the body.
type PostMessageRequest struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"required,oneof=message private_message"`
}
