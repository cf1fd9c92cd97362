package handler

import (
	"context"
	"errors"
	"fmt"

	"bulletins/internal/models"
	"bulletins/internal/service"
)

// Messenger отправляет текст в чат
type Messenger interface {
	Notify(chatID int64, text string) error
}

// ArchiveNotifier рассылает администраторам сообщение о готовом архиве
type ArchiveNotifier struct {
	messenger Messenger
	operators *service.OperatorService
	publicURL string
}

func NewArchiveNotifier(messenger Messenger, operators *service.OperatorService, publicURL string) *ArchiveNotifier {
	return &ArchiveNotifier{
		messenger: messenger,
		operators: operators,
		publicURL: publicURL,
	}
}

func (n *ArchiveNotifier) ArchiveReady(ctx context.Context, archive *models.Archive) error {
	admins, err := n.operators.Admins()
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	text := FormatArchiveReady(archive, n.publicURL)

	var errs []error
	for _, admin := range admins {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.messenger.Notify(admin.ChatID, text); err != nil {
			errs = append(errs, fmt.Errorf("notify %d: %w", admin.ChatID, err))
		}
	}

	return errors.Join(errs...)
}

// FormatArchiveReady - текст уведомления о готовом архиве
func FormatArchiveReady(archive *models.Archive, publicURL string) string {
	text := fmt.Sprintf("📦 Бюллетени готовы\n\n👥 Группа: %s\n📅 Период: %s\n✅ Бюллетеней: %d",
		archive.GroupName, archive.Period, archive.StudentCount)
	if archive.FailureCount > 0 {
		text += fmt.Sprintf("\n⚠️ Ошибок: %d", archive.FailureCount)
	}
	text += "\n🔗 " + publicURL + archive.DownloadPath()
	return text
}
