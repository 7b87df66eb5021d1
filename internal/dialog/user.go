package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"frontdesk-bot/internal/menu"
	"frontdesk-bot/internal/state"
	"frontdesk-bot/internal/store"
)

// handleIdle treats plain text as a menu click.
func (e *Engine) handleIdle(ctx context.Context, ev Event) []Reply {
	if ev.Kind != EventText {
		return []Reply{textReply(ev.ChatID, msgUseMenu)}
	}

	var buttons []store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		buttons, err = tx.ActiveButtons()
		return err
	})
	if err != nil {
		log.Printf("❌ menu lookup for user %d: %v", ev.UserID, err)
		return []Reply{textReply(ev.ChatID, msgTryLater)}
	}

	btn, ok := menu.Resolve(ev.Text, buttons)
	if !ok {
		return []Reply{textReply(ev.ChatID, msgUseMenu)}
	}
	return e.respond(ctx, ev, btn)
}

// respond emits the payload of btn.
func (e *Engine) respond(ctx context.Context, ev Event, btn store.MenuButton) []Reply {
	switch btn.ResponseKind {
	case store.KindText:
		if btn.ResponseContent == "" {
			return []Reply{textReply(ev.ChatID, msgInfoSoon)}
		}
		return []Reply{textReply(ev.ChatID, btn.ResponseContent)}
	case store.KindFile:
		return []Reply{e.fileReply(ev.ChatID, btn)}
	case store.KindLink:
		if btn.ResponseContent == "" {
			return []Reply{textReply(ev.ChatID, msgInfoSoon)}
		}
		return []Reply{textReply(ev.ChatID, linkPrefix+btn.ResponseContent)}
	case store.KindForm:
		questions := []string(btn.FormQuestions)
		if len(questions) == 0 {
			questions = []string{DefaultQuestion}
		}
		if !e.setState(ctx, ev.UserID, state.Form(btn.ID, questions)) {
			return []Reply{textReply(ev.ChatID, msgTryLater)}
		}
		return []Reply{textReply(ev.ChatID, questions[0])}
	default:
		log.Printf("⚠️ button %d has unknown response kind %q", btn.ID, btn.ResponseKind)
		return []Reply{textReply(ev.ChatID, msgInfoSoon)}
	}
}

func (e *Engine) fileReply(chatID int64, btn store.MenuButton) Reply {
	if id, ok := btn.UploadedFileID(); ok && id != "" {
		return Reply{Kind: ReplyDocument, ChatID: chatID, Media: id, Source: MediaUploaded}
	}
	path := strings.TrimSpace(btn.ResponseContent)
	if path == "" {
		return textReply(chatID, msgFileNotFound)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.filesDir, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Printf("⚠️ file for button %d not available at %s: %v", btn.ID, path, err)
		return textReply(chatID, msgFileNotFound)
	}
	return Reply{Kind: ReplyDocument, ChatID: chatID, Media: path, Source: MediaLocalPath}
}

// handleFormInput records the next answer. Every text, including menu
// labels, is an answer; /start is the only way out.
func (e *Engine) handleFormInput(ctx context.Context, ev Event, st state.State) []Reply {
	if ev.Kind != EventText && ev.Kind != EventCommand {
		return []Reply{textReply(ev.ChatID, st.Questions[len(st.Answers)])}
	}

	answers := append(append([]string{}, st.Answers...), ev.Text)
	if len(answers) < len(st.Questions) {
		st.Answers = answers
		if !e.setState(ctx, ev.UserID, st) {
			e.clearState(ctx, ev.UserID)
			return []Reply{textReply(ev.ChatID, msgTryLater)}
		}
		return []Reply{textReply(ev.ChatID, st.Questions[len(answers)])}
	}

	at := e.now()
	sub := store.FormSubmission{
		UserID:    ev.UserID,
		Username:  ev.Username,
		ButtonID:  st.ButtonID,
		Answers:   answers,
		CreatedAt: at.UTC(),
	}
	var (
		target    int64
		hasTarget bool
		label     string
	)
	err := e.store.Do(ctx, func(tx store.Tx) error {
		if err := tx.CreateSubmission(&sub); err != nil {
			return err
		}
		ns, err := tx.NotificationSettings()
		if err != nil {
			return err
		}
		target, hasTarget = ns.Target()
		b, err := tx.Button(st.ButtonID)
		switch {
		case err == nil:
			label = b.Label
		case errors.Is(err, store.ErrNotFound):
			label = fmt.Sprintf("#%d", st.ButtonID)
		default:
			return err
		}
		return nil
	})
	e.clearState(ctx, ev.UserID)
	if err != nil {
		log.Printf("❌ failed to save submission for user %d: %v", ev.UserID, err)
		return []Reply{textReply(ev.ChatID, msgFormSaveFailed)}
	}
	log.Printf("✅ submission %d saved: user=%d button=%d", sub.ID, ev.UserID, st.ButtonID)

	if hasTarget {
		e.notifyAsync(ctx, target, formatSubmission(label, st.Questions, answers, ev.Username, ev.UserID, at))
	} else {
		log.Printf("⚠️ no notification chat bound, submission %d not forwarded", sub.ID)
	}
	return []Reply{textReply(ev.ChatID, msgFormDone)}
}
