// Package bot routes chat updates to the storefront services. It knows
// nothing about the chat transport; see Messenger.
package bot

import (
	"context"

	"techstore/internal/domain"
)

// Update is one inbound event: a message, a command or a button press.
type Update struct {
	// ID correlates log lines of one update.
	ID        string
	UserID    int64
	ChatID    int64
	MessageID int
	Username  string
	FirstName string
	LastName  string
	// Command is set for "/name" messages, without the slash.
	Command string
	Text    string
	// CallbackID and Data are set for button presses.
	CallbackID string
	Data       string
	Media      *Media
}

// Media is an attachment of an inbound message.
type Media struct {
	Kind   domain.MediaKind
	FileID string
}

func (u Update) IsCallback() bool { return u.CallbackID != "" }

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard, row by row.
type Keyboard [][]Button

// Menu is a persistent reply keyboard.
type Menu [][]string

// Message is an outgoing text message.
type Message struct {
	Text   string
	HTML   bool
	Inline Keyboard
	Menu   Menu
}

// Messenger is the chat transport.
type Messenger interface {
	Send(ctx context.Context, chatID int64, m Message) (int, error)
	SendMedia(ctx context.Context, chatID int64, kind domain.MediaKind, fileID, caption string, kb Keyboard) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, m Message) error
	EditPhoto(ctx context.Context, chatID int64, messageID int, photo, caption string, kb Keyboard) error
	EditKeyboard(ctx context.Context, chatID int64, messageID int, kb Keyboard) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}
