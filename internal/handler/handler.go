package handler

import (
	"context"

	"bulletins/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender - часть Telegram клиента, которая нужна обработчику
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	sender    Sender
	operators *service.OperatorService
	archives  *service.ArchiveService
	publicURL string
	logger    *logrus.Logger
}

func NewHandler(
	sender Sender,
	operators *service.OperatorService,
	archives *service.ArchiveService,
	publicURL string,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		sender:    sender,
		operators: operators,
		archives:  archives,
		publicURL: publicURL,
		logger:    logger,
	}
}

// HandleUpdates читает обновления, пока не закроется канал или не отменится ctx
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(update.Message)
		}
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.From != nil {
		h.logger.Infof("[%s] %s", message.From.UserName, message.Text)
	}

	if message.IsCommand() {
		h.handleCommand(message)
		return
	}

	h.reply(message.Chat.ID, "ℹ️ Я понимаю только команды. Используйте /help для списка команд.")
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := h.sender.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}

// requireAdmin отвечает отказом и возвращает false, если оператор не админ
func (h *Handler) requireAdmin(chatID int64) bool {
	isAdmin, err := h.operators.IsAdmin(chatID)
	if err != nil {
		h.reply(chatID, "❌ Ошибка проверки прав доступа: "+err.Error())
		return false
	}
	if !isAdmin {
		h.reply(chatID, "❌ Доступ запрещен. Эта команда только для администраторов.")
		return false
	}
	return true
}
