package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DefaultGreeting is used when no greeting text is configured.
const DefaultGreeting = "👋 Добро пожаловать! Выберите, что вас интересует:"

type SeedOptions struct {
	GreetingText   string
	RequestsChatID int64
}

// DefaultButtons is the menu a fresh database starts with.
func DefaultButtons() []MenuButton {
	return []MenuButton{
		{
			Label:           "Узнать цены",
			Order:           1,
			Active:          true,
			ResponseKind:    KindText,
			FormQuestions:   []string{},
			ResponseContent: "Цены от 5000 руб. Подробнее на сайте: https://example.com/prices",
		},
		{
			Label:        "Заказать",
			Order:        2,
			Active:       true,
			ResponseKind: KindForm,
			FormQuestions: []string{
				"Как вас зовут?",
				"Что нужно сделать?",
				"Оставьте контакт (телефон или email)",
			},
		},
		{
			Label:           "Контакты",
			Order:           3,
			Active:          true,
			ResponseKind:    KindText,
			FormQuestions:   []string{},
			ResponseContent: "📞 +7 (999) 123-45-67\n📧 info@example.com\n🌐 https://example.com",
		},
		{
			Label:           "FAQ",
			Order:           4,
			Active:          true,
			ResponseKind:    KindText,
			FormQuestions:   []string{},
			ResponseContent: "❓ Частые вопросы:\n— Сроки: от 3 дней\n— Предоплата: 50%\n— Гарантия: 30 дней",
		},
	}
}

// Seed creates the singleton rows and the default menu when they are missing.
// Existing data is never touched.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) error {
	text := opts.GreetingText
	if text == "" {
		text = DefaultGreeting
	}
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var n int64
		if err := db.Model(&GreetingSettings{}).Count(&n).Error; err != nil {
			return fmt.Errorf("count greeting: %w", err)
		}
		if n == 0 {
			if err := db.Create(&GreetingSettings{ID: greetingID, Text: text}).Error; err != nil {
				return fmt.Errorf("seed greeting: %w", err)
			}
		}

		if err := db.Model(&NotificationSettings{}).Count(&n).Error; err != nil {
			return fmt.Errorf("count notification settings: %w", err)
		}
		if n == 0 {
			ns := NotificationSettings{ID: notificationID}
			if opts.RequestsChatID != 0 {
				id := opts.RequestsChatID
				ns.TargetChatID = &id
			}
			if err := db.Create(&ns).Error; err != nil {
				return fmt.Errorf("seed notification settings: %w", err)
			}
		}

		if err := db.Model(&MenuButton{}).Count(&n).Error; err != nil {
			return fmt.Errorf("count buttons: %w", err)
		}
		if n == 0 {
			for _, b := range DefaultButtons() {
				if err := db.Create(&b).Error; err != nil {
					return fmt.Errorf("seed button %q: %w", b.Label, err)
				}
			}
		}
		return nil
	})
}
