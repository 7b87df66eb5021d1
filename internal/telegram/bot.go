// Package telegram adapts Bot API updates to dialog events and renders the
// engine's replies back into Bot API calls.
package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"frontdesk-bot/internal/dialog"
)

// Handler turns one event into the replies to send.
type Handler interface {
	Handle(ctx context.Context, ev dialog.Event) []dialog.Reply
}

type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	handler Handler
}

func New(botToken string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	log.Printf("Authorized on account @%s", api.Self.UserName)
	return &Bot{api: api, s: botAPISender{api: api}}, nil
}

// Notifier returns a dialog.Notifier that posts through this bot.
func (b *Bot) Notifier() *Notifier {
	return &Notifier{s: b.s}
}

// Start feeds updates to handler until ctx is cancelled. Updates are handled
// one at a time, in the order Telegram delivers them.
func (b *Bot) Start(ctx context.Context, handler Handler) {
	b.handler = handler
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var (
		ev dialog.Event
		ok bool
	)
	switch {
	case update.Message != nil:
		ev, ok = eventFromMessage(update.Message)
	case update.CallbackQuery != nil:
		ev, ok = eventFromCallback(update.CallbackQuery)
	}
	if !ok {
		return
	}

	for _, r := range b.handler.Handle(ctx, ev) {
		if err := b.deliver(r); err != nil {
			log.Printf("failed to deliver reply to chat %d: %v", r.ChatID, err)
		}
	}
}

// eventFromMessage reports false for updates the engine has no use for, such
// as channel posts or service messages.
func eventFromMessage(msg *tgbotapi.Message) (dialog.Event, bool) {
	if msg.From == nil || msg.Chat == nil {
		return dialog.Event{}, false
	}
	ev := dialog.Event{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		ChatID:   msg.Chat.ID,
		ChatType: dialog.ChatType(msg.Chat.Type),
	}
	switch {
	case msg.IsCommand():
		ev.Kind = dialog.EventCommand
		ev.Text = msg.Text
		ev.Command = msg.Command()
	case len(msg.Photo) > 0:
		ev.Kind = dialog.EventPhoto
		ev.Text = msg.Caption
		// sizes are ordered smallest first
		ev.FileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Document != nil:
		ev.Kind = dialog.EventDocument
		ev.Text = msg.Caption
		ev.FileID = msg.Document.FileID
	case msg.Text != "":
		ev.Kind = dialog.EventText
		ev.Text = msg.Text
	default:
		return dialog.Event{}, false
	}
	return ev, true
}

func eventFromCallback(cb *tgbotapi.CallbackQuery) (dialog.Event, bool) {
	if cb.From == nil {
		return dialog.Event{}, false
	}
	ev := dialog.Event{
		Kind:       dialog.EventCallback,
		UserID:     cb.From.ID,
		Username:   cb.From.UserName,
		ChatID:     cb.From.ID,
		ChatType:   dialog.ChatPrivate,
		Text:       cb.Data,
		CallbackID: cb.ID,
	}
	if cb.Message != nil && cb.Message.Chat != nil {
		ev.ChatID = cb.Message.Chat.ID
		ev.ChatType = dialog.ChatType(cb.Message.Chat.Type)
		ev.MessageID = cb.Message.MessageID
	}
	return ev, true
}
