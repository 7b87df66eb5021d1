package dialog

import "frontdesk-bot/internal/menu"

type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventPhoto
	EventDocument
	EventCallback
)

type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSuperGroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// IsShared reports whether the chat can serve as a notification channel.
func (c ChatType) IsShared() bool {
	return c == ChatGroup || c == ChatSuperGroup || c == ChatChannel
}

// Event is one inbound update, already stripped of transport details.
type Event struct {
	Kind     EventKind
	UserID   int64
	Username string
	ChatID   int64
	ChatType ChatType

	// Text is the message text, the photo/document caption or the callback data.
	Text string
	// Command is set for EventCommand, without the leading slash.
	Command string
	// FileID references the photo (largest size) or the document.
	FileID string

	CallbackID string
	// MessageID is the message a callback button belongs to.
	MessageID int
}

type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyPhoto
	ReplyDocument
	ReplyEdit
	ReplyCallback
)

// MediaSource tells the transport how to interpret Reply.Media.
type MediaSource int

const (
	MediaUploaded MediaSource = iota
	MediaLocalPath
)

type InlineButton struct {
	Text string
	Data string
}

// Reply is one outbound action for the transport.
type Reply struct {
	Kind   ReplyKind
	ChatID int64
	// MessageID is the message to edit for ReplyEdit.
	MessageID int

	// Text is the body, the caption for media, or the callback toast.
	Text   string
	Media  string
	Source MediaSource

	Keyboard       menu.Layout
	RemoveKeyboard bool
	Inline         [][]InlineButton

	CallbackID string
	Alert      bool
}

func textReply(chatID int64, text string) Reply {
	return Reply{Kind: ReplyText, ChatID: chatID, Text: text}
}

func inlineReply(chatID int64, text string, rows [][]InlineButton) Reply {
	return Reply{Kind: ReplyText, ChatID: chatID, Text: text, Inline: rows}
}

func editReply(ev Event, text string, rows [][]InlineButton) Reply {
	return Reply{Kind: ReplyEdit, ChatID: ev.ChatID, MessageID: ev.MessageID, Text: text, Inline: rows}
}

func ackReply(ev Event, text string, alert bool) Reply {
	return Reply{Kind: ReplyCallback, CallbackID: ev.CallbackID, Text: text, Alert: alert}
}
