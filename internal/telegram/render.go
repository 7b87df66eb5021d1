package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"frontdesk-bot/internal/dialog"
	"frontdesk-bot/internal/menu"
)

func (b *Bot) deliver(r dialog.Reply) error {
	c, err := chattableFor(r)
	if err != nil {
		return err
	}
	// callback answers return true instead of a Message
	if r.Kind == dialog.ReplyCallback {
		_, err = b.s.Request(c)
		return err
	}
	_, err = b.s.Send(c)
	return err
}

// chattableFor maps a reply onto the matching Bot API request.
func chattableFor(r dialog.Reply) (tgbotapi.Chattable, error) {
	switch r.Kind {
	case dialog.ReplyText:
		msg := tgbotapi.NewMessage(r.ChatID, r.Text)
		msg.ReplyMarkup = markupFor(r)
		return msg, nil
	case dialog.ReplyPhoto:
		photo := tgbotapi.NewPhoto(r.ChatID, fileFor(r))
		photo.Caption = r.Text
		photo.ReplyMarkup = markupFor(r)
		return photo, nil
	case dialog.ReplyDocument:
		doc := tgbotapi.NewDocument(r.ChatID, fileFor(r))
		doc.Caption = r.Text
		doc.ReplyMarkup = markupFor(r)
		return doc, nil
	case dialog.ReplyEdit:
		if len(r.Inline) == 0 {
			return tgbotapi.NewEditMessageText(r.ChatID, r.MessageID, r.Text), nil
		}
		return tgbotapi.NewEditMessageTextAndMarkup(r.ChatID, r.MessageID, r.Text, inlineMarkup(r.Inline)), nil
	case dialog.ReplyCallback:
		if r.Alert {
			return tgbotapi.NewCallbackWithAlert(r.CallbackID, r.Text), nil
		}
		return tgbotapi.NewCallback(r.CallbackID, r.Text), nil
	default:
		return nil, fmt.Errorf("unknown reply kind %d", r.Kind)
	}
}

func fileFor(r dialog.Reply) tgbotapi.RequestFileData {
	switch r.Source {
	case dialog.MediaLocalPath:
		return tgbotapi.FilePath(r.Media)
	default:
		return tgbotapi.FileID(r.Media)
	}
}

// markupFor returns nil when the reply leaves the current keyboard alone.
func markupFor(r dialog.Reply) interface{} {
	switch {
	case len(r.Inline) > 0:
		return inlineMarkup(r.Inline)
	case !r.Keyboard.Empty():
		return replyKeyboard(r.Keyboard)
	case r.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(false)
	default:
		return nil
	}
}

func replyKeyboard(layout menu.Layout) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(layout))
	for _, labels := range layout {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, l := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(l))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func inlineMarkup(rows [][]dialog.InlineButton) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, btn := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		out = append(out, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

// Notifier posts plain messages to a chat on behalf of the engine.
type Notifier struct {
	s sender
}

func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
