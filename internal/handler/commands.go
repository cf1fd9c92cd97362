package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const archivesPageSize = 10

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		h.start(message)
	case "help":
		h.sendHelpMessage(message)
	case "archives":
		h.showArchives(message, message.CommandArguments())
	case "operators":
		h.showOperators(message)
	case "purge":
		h.purgeArchives(message)
	default:
		h.reply(message.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
	}
}

// start регистрирует оператора, чтобы он получал уведомления
func (h *Handler) start(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	username, firstName, lastName := "", "", ""
	if message.From != nil {
		username = message.From.UserName
		firstName = message.From.FirstName
		lastName = message.From.LastName
	}
	if firstName == "" {
		firstName = "Оператор"
	}

	operator, err := h.operators.Register(chatID, username, firstName, lastName)
	if err != nil {
		h.reply(chatID, "❌ Ошибка регистрации: "+err.Error())
		return
	}

	text := fmt.Sprintf("👋 Здравствуйте, %s!\n\nВы зарегистрированы как оператор.", operator.FirstName)
	if operator.IsAdmin() {
		text += "\n👑 Вы администратор: уведомления о готовых бюллетенях приходят вам."
	}
	text += "\n\nИспользуйте /help для списка команд."
	h.reply(chatID, text)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Доступные команды:

/start - Зарегистрироваться
/help - Список команд
/archives [N] - Последние архивы бюллетеней

👑 Администраторам:
/operators - Список операторов
/purge - Удалить истекшие архивы`

	h.reply(message.Chat.ID, text)
}

func (h *Handler) showArchives(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	limit := archivesPageSize
	if args = strings.TrimSpace(args); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			h.reply(chatID, "❌ Неверный формат. Используйте: /archives [количество]")
			return
		}
		limit = n
	}

	archives, err := h.archives.List(limit)
	if err != nil {
		h.reply(chatID, "❌ Ошибка получения архивов: "+err.Error())
		return
	}

	if len(archives) == 0 {
		h.reply(chatID, "📭 Архивов пока нет.")
		return
	}

	lines := []string{"🗂 Последние архивы:", ""}
	now := time.Now()
	for i, a := range archives {
		status := "✅"
		if a.IsExpired(now) {
			status = "⌛"
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s (%s)", i+1, status, a.GroupName, a.Period))
		lines = append(lines, fmt.Sprintf("   👥 %d бюллетеней, ошибок: %d", a.StudentCount, a.FailureCount))
		lines = append(lines, "   🔗 "+h.publicURL+a.DownloadPath())
		lines = append(lines, fmt.Sprintf("   🕒 до %s", a.ExpiresAt.Format("02.01.2006 15:04")))
	}

	h.reply(chatID, strings.Join(lines, "\n"))
}

func (h *Handler) showOperators(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	text, err := h.operators.FormatOperators()
	if err != nil {
		h.reply(chatID, "❌ Ошибка получения списка операторов: "+err.Error())
		return
	}

	h.reply(chatID, text)
}

func (h *Handler) purgeArchives(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	purged, err := h.archives.PurgeExpired(time.Now())
	if err != nil {
		h.reply(chatID, "❌ Ошибка очистки: "+err.Error())
		return
	}

	h.reply(chatID, fmt.Sprintf("🧹 Удалено истекших архивов: %d", purged))
}
