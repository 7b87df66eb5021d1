package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ResponseKind is the closed set of payloads a menu button can answer with.
type ResponseKind string

const (
	KindText ResponseKind = "text"
	KindFile ResponseKind = "file"
	KindLink ResponseKind = "link"
	KindForm ResponseKind = "form"
)

// ResponseKinds lists every kind in the order the admin panel offers them.
var ResponseKinds = []ResponseKind{KindText, KindFile, KindLink, KindForm}

// ParseResponseKind rejects anything outside the closed set.
func ParseResponseKind(s string) (ResponseKind, error) {
	k := ResponseKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindText, KindFile, KindLink, KindForm:
		return k, nil
	default:
		return "", fmt.Errorf("unknown response kind %q", s)
	}
}

// MaxLabelLength mirrors the column size of MenuButton.Label (in runes).
const MaxLabelLength = 64

// UploadedFilePrefix marks ResponseContent values that reference a document
// uploaded through the admin panel instead of a local path.
const UploadedFilePrefix = "tg-file:"

// GreetingSettings is a singleton row (ID 1).
type GreetingSettings struct {
	ID          uint    `gorm:"primaryKey"`
	Text        string  `gorm:"type:text;not null"`
	PhotoFileID *string `gorm:"size:255"`
	UpdatedAt   time.Time
}

func (GreetingSettings) TableName() string { return "greeting_settings" }

// HasPhoto reports whether the greeting is sent as a captioned photo.
func (g GreetingSettings) HasPhoto() bool {
	return g.PhotoFileID != nil && *g.PhotoFileID != ""
}

type MenuButton struct {
	ID              uint                        `gorm:"primaryKey"`
	Label           string                      `gorm:"size:64;not null;index"`
	Order           int                         `gorm:"column:sort_order;not null;default:0;index"`
	Active          bool                        `gorm:"not null"`
	ResponseKind    ResponseKind                `gorm:"size:20;not null;default:text"`
	ResponseContent string                      `gorm:"type:text"`
	FormQuestions   datatypes.JSONSlice[string] `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (MenuButton) TableName() string { return "menu_buttons" }

// UploadedFileID returns the telegram file id when the content references an
// uploaded document.
func (b MenuButton) UploadedFileID() (string, bool) {
	if !strings.HasPrefix(b.ResponseContent, UploadedFilePrefix) {
		return "", false
	}
	return strings.TrimPrefix(b.ResponseContent, UploadedFilePrefix), true
}

// FormSubmission is append-only. ButtonID is a plain reference without a
// foreign key so history survives button edits.
type FormSubmission struct {
	ID        uint                        `gorm:"primaryKey"`
	UserID    int64                       `gorm:"not null;index"`
	Username  string                      `gorm:"size:64"`
	ButtonID  uint                        `gorm:"not null;index"`
	Answers   datatypes.JSONSlice[string] `gorm:"not null"`
	CreatedAt time.Time                   `gorm:"index"`
}

func (FormSubmission) TableName() string { return "form_submissions" }

// NotificationSettings is a singleton row (ID 1).
type NotificationSettings struct {
	ID           uint `gorm:"primaryKey"`
	TargetChatID *int64
	UpdatedAt    time.Time
}

func (NotificationSettings) TableName() string { return "notification_settings" }

// Target returns the bound chat id, if any.
func (n NotificationSettings) Target() (int64, bool) {
	if n.TargetChatID == nil || *n.TargetChatID == 0 {
		return 0, false
	}
	return *n.TargetChatID, true
}
