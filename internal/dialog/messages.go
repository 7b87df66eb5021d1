package dialog

// DefaultQuestion replaces an empty question list on a form button.
const DefaultQuestion = "Ваше имя?"

const (
	msgUseMenu        = "Пожалуйста, используйте кнопки из меню 👇"
	msgInfoSoon       = "Информация скоро появится"
	msgFileNotFound   = "Файл не найден."
	msgTryLater       = "Что-то пошло не так. Попробуйте позже."
	msgFormSaveFailed = "Ошибка при отправке заявки. Попробуйте позже."
	msgFormDone       = "✅ Спасибо! Заявка передана, свяжемся в течение 2 часов."
	linkPrefix        = "🔗 "

	msgAdminOnly       = "🚫 Эта команда доступна только администраторам."
	msgAdminMenu       = "🛠 Панель управления:"
	msgSetGroupHere    = "Отправьте /setgroup в нужной группе"
	msgGroupBound      = "✅ Эта группа установлена для заявок!"
	msgAddBotToGroup   = "Добавьте бота в группу и отправьте там /setgroup"
	msgButtonNotFound  = "Кнопка не найдена"
	msgUnknownKind     = "Неизвестный тип ответа"
	msgPreviewSent     = "👁️ Предпросмотр отправлен"
	msgPhotoDeleted    = "✅ Фото удалено"
	msgCancelled       = "Отменено"
	msgEnterGreeting   = "Введите новый текст приветствия:"
	msgGreetingEmpty   = "Текст не может быть пустым. Введите новый текст приветствия:"
	msgGreetingSaved   = "✅ Текст обновлён!"
	msgSendPhoto       = "Отправьте фото:"
	msgPhotoSaved      = "✅ Фото установлено!"
	msgEnterLabel      = "Введите текст новой кнопки:"
	msgLabelInvalid    = "Текст кнопки должен быть от 1 до 64 символов. Введите текст новой кнопки:"
	msgButtonCreated   = "✅ Кнопка '%s' создана. Выберите тип ответа:"
	msgChooseKind      = "Выберите тип ответа кнопками ниже:"
	msgContentEmpty    = "Ответ не может быть пустым."
	msgContentSaved    = "✅ Ответ сохранён!"
	msgQuestionsSaved  = "✅ Вопросы сохранены!"
	msgQuestionsFormat = "Неверный формат. Используйте список строк, например: [\"Имя\", \"Задача\", \"Контакт\"]"

	promptText      = "Введите текст ответа:"
	promptLink      = "Введите URL:"
	promptFile      = "Отправьте PDF или укажите путь (static/prices.pdf):"
	promptQuestions = "Введите вопросы в формате JSON:\nПример: [\"Имя\", \"Задача\", \"Контакт\"]"
)
