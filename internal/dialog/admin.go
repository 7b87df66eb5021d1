package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"frontdesk-bot/internal/analytics"
	"frontdesk-bot/internal/state"
	"frontdesk-bot/internal/store"
)

// errRejected aborts a unit of work whose input turned out to be invalid.
var errRejected = errors.New("input rejected")

// handlePanel opens the admin menu and drops any half-finished step.
func (e *Engine) handlePanel(ctx context.Context, ev Event) []Reply {
	if !e.admins.IsAdmin(ev.UserID) {
		log.Printf("Unauthorized /panel attempt by user ID: %d, username: @%s", ev.UserID, ev.Username)
		return []Reply{textReply(ev.ChatID, msgAdminOnly)}
	}
	e.clearState(ctx, ev.UserID)
	return []Reply{inlineReply(ev.ChatID, msgAdminMenu, mainMenuRows())}
}

// handleSetGroup binds the current group as the notification target.
func (e *Engine) handleSetGroup(ctx context.Context, ev Event) []Reply {
	if !e.admins.IsAdmin(ev.UserID) {
		log.Printf("Unauthorized /setgroup attempt by user ID: %d in chat %d", ev.UserID, ev.ChatID)
		return []Reply{textReply(ev.ChatID, msgAdminOnly)}
	}
	if !ev.ChatType.IsShared() {
		return []Reply{textReply(ev.ChatID, msgSetGroupHere)}
	}
	chatID := ev.ChatID
	err := e.store.Do(ctx, func(tx store.Tx) error {
		ns, err := tx.NotificationSettings()
		if err != nil {
			return err
		}
		ns.TargetChatID = &chatID
		return tx.SaveNotificationSettings(&ns)
	})
	if err != nil {
		log.Printf("❌ failed to bind notification chat %d: %v", chatID, err)
		return []Reply{textReply(ev.ChatID, msgTryLater)}
	}
	log.Printf("✅ notification chat set to %d by admin %d", chatID, ev.UserID)
	return []Reply{textReply(ev.ChatID, msgGroupBound)}
}

func (e *Engine) handleAdminCallback(ctx context.Context, ev Event) []Reply {
	if !e.admins.IsAdmin(ev.UserID) {
		log.Printf("Unauthorized admin callback %q by user ID: %d", ev.Text, ev.UserID)
		return []Reply{ackReply(ev, msgAdminOnly, true)}
	}

	data := ev.Text
	switch data {
	case cbMain:
		e.clearState(ctx, ev.UserID)
		return []Reply{editReply(ev, msgAdminMenu, mainMenuRows()), ackReply(ev, "", false)}
	case cbCancel:
		e.clearState(ctx, ev.UserID)
		return []Reply{ackReply(ev, msgCancelled, false), inlineReply(ev.ChatID, msgAdminMenu, mainMenuRows())}
	case cbGreeting:
		return e.showGreeting(ctx, ev)
	case cbGreetingEdit:
		return e.startStep(ctx, ev, state.Admin(state.EditingGreetingText, 0), msgEnterGreeting)
	case cbGreetingPhoto:
		return e.startStep(ctx, ev, state.Admin(state.EditingGreetingPhoto, 0), msgSendPhoto)
	case cbGreetingPhotoDel:
		return e.deleteGreetingPhoto(ctx, ev)
	case cbButtons:
		return e.showButtons(ctx, ev)
	case cbButtonAdd:
		return e.startStep(ctx, ev, state.Admin(state.EnteringNewButtonLabel, 0), msgEnterLabel)
	case cbRequests:
		return e.showRequests(ctx, ev)
	case cbRequestsSet:
		return []Reply{ackReply(ev, "", false), textReply(ev.ChatID, msgAddBotToGroup)}
	case cbStats:
		return e.showStats(ctx, ev)
	case cbPreview:
		return append(e.greet(ctx, ev.ChatID), ackReply(ev, msgPreviewSent, true))
	}

	switch {
	case strings.HasPrefix(data, cbButtonView):
		if id, ok := parseButtonID(data, cbButtonView); ok {
			return e.showButton(ctx, ev, id)
		}
	case strings.HasPrefix(data, cbButtonToggle):
		if id, ok := parseButtonID(data, cbButtonToggle); ok {
			return e.toggleButton(ctx, ev, id)
		}
	case strings.HasPrefix(data, cbButtonKinds):
		if id, ok := parseButtonID(data, cbButtonKinds); ok {
			return e.chooseKind(ctx, ev, id)
		}
	case strings.HasPrefix(data, cbButtonKind):
		return e.setButtonKind(ctx, ev, strings.TrimPrefix(data, cbButtonKind))
	case strings.HasPrefix(data, cbButtonContent):
		if id, ok := parseButtonID(data, cbButtonContent); ok {
			return e.editButtonContent(ctx, ev, id)
		}
	}
	log.Printf("⚠️ unknown admin callback %q", data)
	return []Reply{ackReply(ev, "", false)}
}

// startStep enters an input state and asks for the value.
func (e *Engine) startStep(ctx context.Context, ev Event, st state.State, prompt string) []Reply {
	if !e.setState(ctx, ev.UserID, st) {
		return []Reply{ackReply(ev, msgTryLater, true)}
	}
	return []Reply{ackReply(ev, "", false), inlineReply(ev.ChatID, prompt, cancelRows())}
}

// backToMenu ends an admin step and shows the main menu.
func (e *Engine) backToMenu(ctx context.Context, ev Event, msg string) []Reply {
	e.clearState(ctx, ev.UserID)
	replies := make([]Reply, 0, 2)
	if msg != "" {
		replies = append(replies, textReply(ev.ChatID, msg))
	}
	return append(replies, inlineReply(ev.ChatID, msgAdminMenu, mainMenuRows()))
}

// adminFailure reports err and returns the admin to the main menu.
func (e *Engine) adminFailure(ctx context.Context, ev Event, err error) []Reply {
	if errors.Is(err, store.ErrNotFound) {
		return e.backToMenu(ctx, ev, msgButtonNotFound)
	}
	log.Printf("❌ admin %d step failed: %v", ev.UserID, err)
	return e.backToMenu(ctx, ev, msgTryLater)
}

// callbackFailure is adminFailure for callbacks that still need an answer.
func (e *Engine) callbackFailure(ctx context.Context, ev Event, err error) []Reply {
	text := msgTryLater
	if errors.Is(err, store.ErrNotFound) {
		text = msgButtonNotFound
	} else {
		log.Printf("❌ admin %d callback %q failed: %v", ev.UserID, ev.Text, err)
	}
	e.clearState(ctx, ev.UserID)
	return []Reply{ackReply(ev, text, true), inlineReply(ev.ChatID, msgAdminMenu, mainMenuRows())}
}

func (e *Engine) showGreeting(ctx context.Context, ev Event) []Reply {
	var g store.GreetingSettings
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		g, err = tx.Greeting()
		return err
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	text, rows := greetingView(g)
	return []Reply{editReply(ev, text, rows), ackReply(ev, "", false)}
}

func (e *Engine) deleteGreetingPhoto(ctx context.Context, ev Event) []Reply {
	var g store.GreetingSettings
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		if g, err = tx.Greeting(); err != nil {
			return err
		}
		g.PhotoFileID = nil
		return tx.SaveGreeting(&g)
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	text, rows := greetingView(g)
	return []Reply{ackReply(ev, msgPhotoDeleted, true), editReply(ev, text, rows)}
}

func (e *Engine) showButtons(ctx context.Context, ev Event) []Reply {
	var buttons []store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		buttons, err = tx.Buttons()
		return err
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	text, rows := buttonsView(buttons)
	return []Reply{editReply(ev, text, rows), ackReply(ev, "", false)}
}

func (e *Engine) showButton(ctx context.Context, ev Event, id uint) []Reply {
	var b store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		b, err = tx.Button(id)
		return err
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	text, rows := buttonView(b)
	return []Reply{editReply(ev, text, rows), ackReply(ev, "", false)}
}

// toggleButton flips Active; deactivation is how buttons are removed.
func (e *Engine) toggleButton(ctx context.Context, ev Event, id uint) []Reply {
	var b store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		if b, err = tx.Button(id); err != nil {
			return err
		}
		b.Active = !b.Active
		return tx.SaveButton(&b)
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	text, rows := buttonView(b)
	return []Reply{editReply(ev, text, rows), ackReply(ev, activeIcon(b.Active), false)}
}

func (e *Engine) chooseKind(ctx context.Context, ev Event, id uint) []Reply {
	var b store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		b, err = tx.Button(id)
		return err
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	if !e.setState(ctx, ev.UserID, state.Admin(state.ChoosingButtonResponseKind, b.ID)) {
		return []Reply{ackReply(ev, msgTryLater, true)}
	}
	return []Reply{editReply(ev, fmt.Sprintf("Кнопка: %s\n%s", b.Label, msgChooseKind), kindRows(b.ID)), ackReply(ev, "", false)}
}

// setButtonKind handles "<id>:<kind>" and moves on to the matching input step.
func (e *Engine) setButtonKind(ctx context.Context, ev Event, payload string) []Reply {
	idPart, kindPart, found := strings.Cut(payload, ":")
	id, okID := parseButtonID(idPart, "")
	kind, kindErr := store.ParseResponseKind(kindPart)
	if !found || !okID || kindErr != nil {
		return []Reply{ackReply(ev, msgUnknownKind, true)}
	}

	var b store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		if b, err = tx.Button(id); err != nil {
			return err
		}
		b.ResponseKind = kind
		return tx.SaveButton(&b)
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	return e.promptContent(ctx, ev, b)
}

// editButtonContent re-enters the content or questions step for a button.
func (e *Engine) editButtonContent(ctx context.Context, ev Event, id uint) []Reply {
	var b store.MenuButton
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		b, err = tx.Button(id)
		return err
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	return e.promptContent(ctx, ev, b)
}

func (e *Engine) promptContent(ctx context.Context, ev Event, b store.MenuButton) []Reply {
	switch b.ResponseKind {
	case store.KindForm:
		return e.startStep(ctx, ev, state.Admin(state.EnteringButtonFormQuestions, b.ID), questionsPrompt(b.FormQuestions))
	case store.KindText, store.KindFile, store.KindLink:
		return e.startStep(ctx, ev, state.Admin(state.EnteringButtonResponseContent, b.ID), contentPrompt(b.ResponseKind))
	default:
		return e.callbackFailure(ctx, ev, fmt.Errorf("button %d has unknown response kind %q", b.ID, b.ResponseKind))
	}
}

func (e *Engine) showRequests(ctx context.Context, ev Event) []Reply {
	var ns store.NotificationSettings
	err := e.store.Do(ctx, func(tx store.Tx) error {
		var err error
		ns, err = tx.NotificationSettings()
		return err
	})
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	text, rows := requestsView(ns)
	return []Reply{editReply(ev, text, rows), ackReply(ev, "", false)}
}

func (e *Engine) showStats(ctx context.Context, ev Event) []Reply {
	stats, err := analytics.Collect(ctx, e.store, e.now())
	if err != nil {
		return e.callbackFailure(ctx, ev, err)
	}
	return []Reply{editReply(ev, stats.Summary(), [][]InlineButton{backTo(cbMain)}), ackReply(ev, "", false)}
}

// handleAdminInput consumes a message sent while an admin step is open.
func (e *Engine) handleAdminInput(ctx context.Context, ev Event, st state.State) []Reply {
	switch st.Kind {
	case state.EditingGreetingText:
		return e.saveGreetingText(ctx, ev)
	case state.EditingGreetingPhoto:
		return e.saveGreetingPhoto(ctx, ev)
	case state.EnteringNewButtonLabel:
		return e.createButton(ctx, ev)
	case state.ChoosingButtonResponseKind:
		return []Reply{inlineReply(ev.ChatID, msgChooseKind, kindRows(st.ButtonID))}
	case state.EnteringButtonResponseContent:
		return e.saveButtonContent(ctx, ev, st)
	case state.EnteringButtonFormQuestions:
		return e.saveButtonQuestions(ctx, ev, st)
	default:
		return e.backToMenu(ctx, ev, "")
	}
}

func (e *Engine) saveGreetingText(ctx context.Context, ev Event) []Reply {
	if ev.Kind != EventText || strings.TrimSpace(ev.Text) == "" {
		return []Reply{inlineReply(ev.ChatID, msgGreetingEmpty, cancelRows())}
	}
	err := e.store.Do(ctx, func(tx store.Tx) error {
		g, err := tx.Greeting()
		if err != nil {
			return err
		}
		g.Text = ev.Text
		return tx.SaveGreeting(&g)
	})
	if err != nil {
		return e.adminFailure(ctx, ev, err)
	}
	return e.backToMenu(ctx, ev, msgGreetingSaved)
}

func (e *Engine) saveGreetingPhoto(ctx context.Context, ev Event) []Reply {
	if ev.Kind != EventPhoto || ev.FileID == "" {
		return []Reply{inlineReply(ev.ChatID, msgSendPhoto, cancelRows())}
	}
	fileID := ev.FileID
	err := e.store.Do(ctx, func(tx store.Tx) error {
		g, err := tx.Greeting()
		if err != nil {
			return err
		}
		g.PhotoFileID = &fileID
		return tx.SaveGreeting(&g)
	})
	if err != nil {
		return e.adminFailure(ctx, ev, err)
	}
	return e.backToMenu(ctx, ev, msgPhotoSaved)
}

// createButton adds a button after the current last one and asks for its kind.
func (e *Engine) createButton(ctx context.Context, ev Event) []Reply {
	label, ok := validLabel(ev.Text)
	if ev.Kind != EventText || !ok {
		return []Reply{inlineReply(ev.ChatID, msgLabelInvalid, cancelRows())}
	}
	b := store.MenuButton{Label: label, Active: true, ResponseKind: store.KindText, FormQuestions: []string{}}
	err := e.store.Do(ctx, func(tx store.Tx) error {
		top, found, err := tx.MaxButtonOrder()
		if err != nil {
			return err
		}
		b.Order = 1
		if found {
			b.Order = top + 1
		}
		return tx.CreateButton(&b)
	})
	if err != nil {
		return e.adminFailure(ctx, ev, err)
	}
	log.Printf("✅ button %d %q created by admin %d", b.ID, b.Label, ev.UserID)
	if !e.setState(ctx, ev.UserID, state.Admin(state.ChoosingButtonResponseKind, b.ID)) {
		return e.backToMenu(ctx, ev, msgTryLater)
	}
	return []Reply{inlineReply(ev.ChatID, fmt.Sprintf(msgButtonCreated, label), kindRows(b.ID))}
}

func (e *Engine) saveButtonContent(ctx context.Context, ev Event, st state.State) []Reply {
	var (
		redirect *store.MenuButton
		kind     store.ResponseKind
	)
	err := e.store.Do(ctx, func(tx store.Tx) error {
		b, err := tx.Button(st.ButtonID)
		if err != nil {
			return err
		}
		kind = b.ResponseKind
		switch b.ResponseKind {
		case store.KindFile:
			if ev.Kind == EventDocument && ev.FileID != "" {
				b.ResponseContent = store.UploadedFilePrefix + ev.FileID
				return tx.SaveButton(&b)
			}
		case store.KindText, store.KindLink:
		case store.KindForm:
			// the kind changed since the step started
			redirect = &b
			return errRejected
		default:
			return fmt.Errorf("button %d has unknown response kind %q", b.ID, b.ResponseKind)
		}
		if ev.Kind != EventText || strings.TrimSpace(ev.Text) == "" {
			return errRejected
		}
		b.ResponseContent = strings.TrimSpace(ev.Text)
		return tx.SaveButton(&b)
	})
	switch {
	case redirect != nil:
		if !e.setState(ctx, ev.UserID, state.Admin(state.EnteringButtonFormQuestions, redirect.ID)) {
			return e.backToMenu(ctx, ev, msgTryLater)
		}
		return []Reply{inlineReply(ev.ChatID, questionsPrompt(redirect.FormQuestions), cancelRows())}
	case errors.Is(err, errRejected):
		return []Reply{inlineReply(ev.ChatID, msgContentEmpty+" "+contentPrompt(kind), cancelRows())}
	case err != nil:
		return e.adminFailure(ctx, ev, err)
	}
	return e.backToMenu(ctx, ev, msgContentSaved)
}

// saveButtonQuestions stays in the step until the input parses.
func (e *Engine) saveButtonQuestions(ctx context.Context, ev Event, st state.State) []Reply {
	if ev.Kind != EventText {
		return []Reply{inlineReply(ev.ChatID, msgQuestionsFormat, cancelRows())}
	}
	questions, err := ParseQuestions(ev.Text)
	if err != nil {
		log.Printf("admin %d sent malformed questions: %v", ev.UserID, err)
		return []Reply{inlineReply(ev.ChatID, msgQuestionsFormat, cancelRows())}
	}
	err = e.store.Do(ctx, func(tx store.Tx) error {
		b, err := tx.Button(st.ButtonID)
		if err != nil {
			return err
		}
		b.FormQuestions = questions
		return tx.SaveButton(&b)
	})
	if err != nil {
		return e.adminFailure(ctx, ev, err)
	}
	return e.backToMenu(ctx, ev, msgQuestionsSaved)
}
