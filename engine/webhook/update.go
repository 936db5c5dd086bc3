package webhook

import (
	"time"

	"github.com/rexcellence/jarvis/engine/orchestrator"
)

// Update is the subset of a Telegram update this service reads.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      *Chat  `json:"chat,omitempty"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Inbound converts the update into a pipeline message. The second return
// value names why the update was skipped when ok is false. A message without
// text is still processed as empty text.
func (u *Update) Inbound(now time.Time) (msg orchestrator.InboundMessage, reason string, ok bool) {
	if u.Message == nil {
		return msg, reasonNoMessage, false
	}
	if u.Message.Chat == nil {
		return msg, reasonNoChat, false
	}
	msg = orchestrator.InboundMessage{
		UpdateID:   u.UpdateID,
		ChatID:     u.Message.Chat.ID,
		RawText:    u.Message.Text,
		ReceivedAt: now.UTC(),
	}
	if u.Message.From != nil {
		msg.SenderName = u.Message.From.FirstName
		msg.Username = u.Message.From.Username
	}
	return msg, "", true
}
