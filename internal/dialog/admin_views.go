package dialog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"frontdesk-bot/internal/store"
)

// Callback data understood by the admin panel.
const (
	cbPrefix           = "admin:"
	cbMain             = "admin:main"
	cbCancel           = "admin:cancel"
	cbGreeting         = "admin:greeting"
	cbGreetingEdit     = "admin:greeting_edit"
	cbGreetingPhoto    = "admin:greeting_photo"
	cbGreetingPhotoDel = "admin:greeting_photo_del"
	cbButtons          = "admin:buttons"
	cbButtonAdd        = "admin:btn_add"
	cbButtonView       = "admin:btn:"
	cbButtonToggle     = "admin:btn_toggle:"
	cbButtonKinds      = "admin:btn_kinds:"
	cbButtonKind       = "admin:btn_kind:"
	cbButtonContent    = "admin:btn_content:"
	cbRequests         = "admin:requests"
	cbRequestsSet      = "admin:req_set"
	cbStats            = "admin:stats"
	cbPreview          = "admin:preview"
)

const greetingPreviewLen = 100

var kindTitles = map[store.ResponseKind]string{
	store.KindText: "📝 Текст",
	store.KindFile: "📎 Файл",
	store.KindLink: "🌐 Ссылка",
	store.KindForm: "❓ Опрос",
}

func row(buttons ...InlineButton) []InlineButton { return buttons }

func backTo(data string) []InlineButton {
	return row(InlineButton{Text: "⬅️ Назад", Data: data})
}

func cancelRows() [][]InlineButton {
	return [][]InlineButton{row(InlineButton{Text: "✖️ Отмена", Data: cbCancel})}
}

func mainMenuRows() [][]InlineButton {
	return [][]InlineButton{
		row(InlineButton{Text: "👋 Приветствие", Data: cbGreeting}),
		row(InlineButton{Text: "🔘 Кнопки", Data: cbButtons}),
		row(InlineButton{Text: "📮 Группа заявок", Data: cbRequests}),
		row(InlineButton{Text: "📊 Статистика", Data: cbStats}),
		row(InlineButton{Text: "👁️ Предпросмотр", Data: cbPreview}),
	}
}

func greetingView(g store.GreetingSettings) (string, [][]InlineButton) {
	preview := g.Text
	if utf8.RuneCountInString(preview) > greetingPreviewLen {
		preview = string([]rune(preview)[:greetingPreviewLen]) + "..."
	}
	photo := "нет"
	if g.HasPhoto() {
		photo = "есть"
	}
	text := fmt.Sprintf("Текущий текст:\n%s\n\n📸 Фото: %s", preview, photo)
	return text, [][]InlineButton{
		row(InlineButton{Text: "✏️ Изменить текст", Data: cbGreetingEdit}),
		row(InlineButton{Text: "🖼️ Установить фото", Data: cbGreetingPhoto}),
		row(InlineButton{Text: "🗑️ Удалить фото", Data: cbGreetingPhotoDel}),
		backTo(cbMain),
	}
}

func buttonsView(buttons []store.MenuButton) (string, [][]InlineButton) {
	rows := make([][]InlineButton, 0, len(buttons)+2)
	for _, b := range buttons {
		rows = append(rows, row(InlineButton{
			Text: fmt.Sprintf("%s %s", activeIcon(b.Active), b.Label),
			Data: cbButtonView + strconv.FormatUint(uint64(b.ID), 10),
		}))
	}
	rows = append(rows, row(InlineButton{Text: "➕ Добавить", Data: cbButtonAdd}), backTo(cbMain))
	return "Управление кнопками:", rows
}

func buttonView(b store.MenuButton) (string, [][]InlineButton) {
	id := strconv.FormatUint(uint64(b.ID), 10)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Кнопка: %s\n", b.Label)
	fmt.Fprintf(&sb, "Статус: %s\n", map[bool]string{true: "✅ активна", false: "❌ скрыта"}[b.Active])
	fmt.Fprintf(&sb, "Порядок: %d\n", b.Order)
	fmt.Fprintf(&sb, "Тип ответа: %s\n", kindTitles[b.ResponseKind])

	editLabel := "✏️ Изменить ответ"
	switch b.ResponseKind {
	case store.KindForm:
		editLabel = "✏️ Изменить вопросы"
		sb.WriteString("Вопросы:\n")
		for i, q := range b.FormQuestions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
		}
	case store.KindFile:
		if _, ok := b.UploadedFileID(); ok {
			sb.WriteString("Ответ: загруженный файл")
		} else {
			fmt.Fprintf(&sb, "Ответ: %s", orDash(b.ResponseContent))
		}
	case store.KindText, store.KindLink:
		fmt.Fprintf(&sb, "Ответ: %s", orDash(b.ResponseContent))
	}

	toggle := "🙈 Скрыть"
	if !b.Active {
		toggle = "👁️ Показать"
	}
	return strings.TrimRight(sb.String(), "\n"), [][]InlineButton{
		row(InlineButton{Text: toggle, Data: cbButtonToggle + id}),
		row(InlineButton{Text: "🔀 Тип ответа", Data: cbButtonKinds + id}),
		row(InlineButton{Text: editLabel, Data: cbButtonContent + id}),
		backTo(cbButtons),
	}
}

func kindRows(buttonID uint) [][]InlineButton {
	id := strconv.FormatUint(uint64(buttonID), 10)
	rows := make([][]InlineButton, 0, len(store.ResponseKinds)+1)
	for _, k := range store.ResponseKinds {
		rows = append(rows, row(InlineButton{Text: kindTitles[k], Data: cbButtonKind + id + ":" + string(k)}))
	}
	return append(rows, cancelRows()...)
}

func requestsView(ns store.NotificationSettings) (string, [][]InlineButton) {
	info := "не задана"
	if id, ok := ns.Target(); ok {
		info = fmt.Sprintf("ID: %d", id)
	}
	return "Группа заявок: " + info, [][]InlineButton{
		row(InlineButton{Text: "📨 Установить группу", Data: cbRequestsSet}),
		backTo(cbMain),
	}
}

// contentPrompt asks for the payload matching kind.
func contentPrompt(kind store.ResponseKind) string {
	switch kind {
	case store.KindText:
		return promptText
	case store.KindLink:
		return promptLink
	case store.KindFile:
		return promptFile
	case store.KindForm:
		return promptQuestions
	default:
		return promptText
	}
}

func questionsPrompt(current []string) string {
	if len(current) == 0 {
		return promptQuestions
	}
	return fmt.Sprintf("%s\n\nСейчас: %s", promptQuestions, quoteList(current))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func activeIcon(active bool) string {
	if active {
		return "✅"
	}
	return "❌"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// validLabel trims and checks a new button label.
func validLabel(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	return s, n > 0 && n <= store.MaxLabelLength
}

// parseButtonID reads the id following prefix in callback data.
func parseButtonID(data, prefix string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
