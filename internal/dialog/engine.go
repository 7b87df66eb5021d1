// Package dialog maps a user's conversational state and an inbound event to
// store mutations, outbound replies and the next state.
package dialog

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"frontdesk-bot/internal/auth"
	"frontdesk-bot/internal/menu"
	"frontdesk-bot/internal/state"
	"frontdesk-bot/internal/store"
)

const (
	cmdStart    = "start"
	cmdPanel    = "panel"
	cmdSetGroup = "setgroup"

	notifyTimeout = 30 * time.Second
)

// Notifier delivers a submission to the staff channel.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

type Engine struct {
	store    store.UnitOfWork
	states   state.Store
	admins   *auth.Service
	notifier Notifier
	filesDir string
	now      func() time.Time

	wg sync.WaitGroup
}

type Option func(*Engine)

// WithFilesDir sets the base directory for relative File-button paths.
func WithFilesDir(dir string) Option {
	return func(e *Engine) { e.filesDir = dir }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(uow store.UnitOfWork, states state.Store, admins *auth.Service, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:    uow,
		states:   states,
		admins:   admins,
		notifier: notifier,
		filesDir: ".",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one event. Errors never escape: the worst outcome is an
// apology and a reset to a known state.
func (e *Engine) Handle(ctx context.Context, ev Event) []Reply {
	switch ev.Kind {
	case EventCommand:
		switch ev.Command {
		case cmdStart:
			e.clearState(ctx, ev.UserID)
			return e.greet(ctx, ev.ChatID)
		case cmdPanel:
			return e.handlePanel(ctx, ev)
		case cmdSetGroup:
			return e.handleSetGroup(ctx, ev)
		}
	case EventCallback:
		if strings.HasPrefix(ev.Text, cbPrefix) {
			return e.handleAdminCallback(ctx, ev)
		}
		return []Reply{ackReply(ev, "", false)}
	}

	// Dialogue state belongs to the private chat; group chatter never
	// answers a form or an admin prompt.
	if ev.ChatType.IsShared() {
		log.Printf("ignoring message from user %d in shared chat %d", ev.UserID, ev.ChatID)
		return nil
	}

	st := e.loadState(ctx, ev.UserID)
	if st.IsAdmin() {
		if e.admins.IsAdmin(ev.UserID) {
			return e.handleAdminInput(ctx, ev, st)
		}
		// admin rights were revoked mid-edit
		e.clearState(ctx, ev.UserID)
		st = state.State{}
	}

	switch st.Kind {
	case state.CollectingForm:
		return e.handleFormInput(ctx, ev, st)
	default:
		return e.handleIdle(ctx, ev)
	}
}

// Wait blocks until in-flight notifications finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// greet sends the greeting with the current menu keyboard.
func (e *Engine) greet(ctx context.Context, chatID int64) []Reply {
	var (
		g       store.GreetingSettings
		buttons []store.MenuButton
	)
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		if g, err = tx.Greeting(); err != nil {
			return err
		}
		buttons, err = tx.ActiveButtons()
		return err
	})
	if err != nil {
		log.Printf("❌ greeting for chat %d: %v", chatID, err)
		return []Reply{textReply(chatID, msgTryLater)}
	}

	text := g.Text
	if text == "" {
		text = store.DefaultGreeting
	}
	kb := menu.BuildKeyboard(buttons)
	r := Reply{Kind: ReplyText, ChatID: chatID, Text: text, Keyboard: kb, RemoveKeyboard: kb.Empty()}
	if g.HasPhoto() {
		r.Kind = ReplyPhoto
		r.Media = *g.PhotoFileID
		r.Source = MediaUploaded
	}
	return []Reply{r}
}

func (e *Engine) loadState(ctx context.Context, userID int64) state.State {
	st, err := e.states.Get(ctx, userID)
	if err != nil {
		log.Printf("⚠️ failed to load state for user %d, treating as idle: %v", userID, err)
		return state.State{}
	}
	if err := st.Validate(); err != nil {
		log.Printf("⚠️ dropping invalid state for user %d: %v", userID, err)
		e.clearState(ctx, userID)
		return state.State{}
	}
	return st
}

func (e *Engine) setState(ctx context.Context, userID int64, st state.State) bool {
	if err := e.states.Set(ctx, userID, st); err != nil {
		log.Printf("❌ failed to store state %q for user %d: %v", st.Kind, userID, err)
		return false
	}
	return true
}

func (e *Engine) clearState(ctx context.Context, userID int64) {
	if err := e.states.Clear(ctx, userID); err != nil {
		log.Printf("⚠️ failed to clear state for user %d: %v", userID, err)
	}
}

// notifyAsync delivers text without making the caller wait. Failures are
// logged only: the submission is already stored.
func (e *Engine) notifyAsync(ctx context.Context, chatID int64, text string) {
	if e.notifier == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ notification to chat %d panicked: %v", chatID, r)
			}
		}()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := e.notifier.Notify(nctx, chatID, text); err != nil {
			log.Printf("❌ failed to notify chat %d: %v", chatID, err)
			return
		}
		log.Printf("📨 submission forwarded to chat %d", chatID)
	}()
}
