package dialog

import (
	"fmt"
	"strings"
	"time"
)

// formatSubmission renders a completed form for the staff channel.
func formatSubmission(label string, questions, answers []string, username string, userID int64, at time.Time) string {
	var b strings.Builder
	b.WriteString("📋 НОВАЯ ЗАЯВКА\n")
	fmt.Fprintf(&b, "Кнопка: %s\n", label)
	for i, a := range answers {
		q := fmt.Sprintf("Ответ %d", i+1)
		if i < len(questions) {
			q = strings.TrimRight(strings.TrimSpace(questions[i]), "?:")
		}
		fmt.Fprintf(&b, "%s: %s\n", q, a)
	}
	fmt.Fprintf(&b, "Время: %s\n", at.Format("02.01.2006 15:04"))
	if username == "" {
		username = "—"
	}
	fmt.Fprintf(&b, "Пользователь: @%s (ID: %d)", username, userID)
	return b.String()
}
