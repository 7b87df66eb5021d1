// Package state holds the per-user conversational position: idle, in the
// middle of a form, or in the middle of an admin edit.
package state

import (
	"context"
	"fmt"
)

type Kind string

const (
	Idle           Kind = ""
	CollectingForm Kind = "collecting_form"

	EditingGreetingText           Kind = "editing_greeting_text"
	EditingGreetingPhoto          Kind = "editing_greeting_photo"
	EnteringNewButtonLabel        Kind = "entering_new_button_label"
	ChoosingButtonResponseKind    Kind = "choosing_button_response_kind"
	EnteringButtonResponseContent Kind = "entering_button_response_content"
	EnteringButtonFormQuestions   Kind = "entering_button_form_questions"
)

// State is the token stored per user. Payload fields are only meaningful for
// the kinds that use them.
type State struct {
	Kind      Kind     `json:"kind"`
	ButtonID  uint     `json:"button_id,omitempty"`
	Questions []string `json:"questions,omitempty"`
	Answers   []string `json:"answers,omitempty"`
}

func (s State) IsIdle() bool { return s.Kind == Idle }

// IsAdmin reports whether the state belongs to the admin workflow.
func (s State) IsAdmin() bool {
	switch s.Kind {
	case EditingGreetingText, EditingGreetingPhoto, EnteringNewButtonLabel,
		ChoosingButtonResponseKind, EnteringButtonResponseContent, EnteringButtonFormQuestions:
		return true
	default:
		return false
	}
}

// Form starts collecting answers for the given questions.
func Form(buttonID uint, questions []string) State {
	return State{Kind: CollectingForm, ButtonID: buttonID, Questions: questions, Answers: []string{}}
}

// Admin returns an admin edit step, optionally bound to a button.
func Admin(kind Kind, buttonID uint) State {
	return State{Kind: kind, ButtonID: buttonID}
}

// Validate catches tokens that cannot be resumed, e.g. after a bad decode.
func (s State) Validate() error {
	switch s.Kind {
	case Idle, EditingGreetingText, EditingGreetingPhoto, EnteringNewButtonLabel:
		return nil
	case CollectingForm:
		if len(s.Questions) == 0 {
			return fmt.Errorf("form state without questions")
		}
		if len(s.Answers) >= len(s.Questions) {
			return fmt.Errorf("form state already complete")
		}
		return nil
	case ChoosingButtonResponseKind, EnteringButtonResponseContent, EnteringButtonFormQuestions:
		if s.ButtonID == 0 {
			return fmt.Errorf("%s without button id", s.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown state kind %q", s.Kind)
	}
}

// Store maps user ids to their current state. Setting an idle state is the
// same as Clear.
type Store interface {
	Get(ctx context.Context, userID int64) (State, error)
	Set(ctx context.Context, userID int64, s State) error
	Clear(ctx context.Context, userID int64) error
}
