package service

import (
	"fmt"
	"strings"

	"bulletins/internal/models"
	"bulletins/internal/repository"
)

type OperatorService struct {
	repo repository.OperatorRepository
}

func NewOperatorService(repo repository.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

// Register создает оператора с ролью client или обновляет имя уже известного
func (s *OperatorService) Register(chatID int64, username, firstName, lastName string) (*models.Operator, error) {
	if firstName == "" {
		return nil, fmt.Errorf("имя не может быть пустым")
	}

	operator, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оператора: %w", err)
	}

	if operator != nil {
		operator.Username = username
		operator.FirstName = firstName
		operator.LastName = lastName
		if err := s.repo.Update(operator); err != nil {
			return nil, fmt.Errorf("ошибка обновления оператора: %w", err)
		}
		return operator, nil
	}

	operator = &models.Operator{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleClient,
	}

	if err := s.repo.Create(operator); err != nil {
		return nil, fmt.Errorf("ошибка создания оператора: %w", err)
	}

	return operator, nil
}

// IsAdmin проверяет, является ли оператор администратором
func (s *OperatorService) IsAdmin(chatID int64) (bool, error) {
	operator, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}

	return operator != nil && operator.IsAdmin(), nil
}

func (s *OperatorService) Admins() ([]*models.Operator, error) {
	return s.repo.GetAdmins()
}

func (s *OperatorService) All() ([]*models.Operator, error) {
	return s.repo.GetAll()
}

// InitializeAdmin назначает администратора из конфига
func (s *OperatorService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil // Админ не задан в конфиге
	}

	existing, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}

	if existing != nil {
		return s.repo.UpdateRole(adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(&models.Operator{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Администратор",
		Role:      models.RoleAdmin,
	})
}

// FormatOperators форматирует список операторов для вывода в чат
func (s *OperatorService) FormatOperators() (string, error) {
	operators, err := s.All()
	if err != nil {
		return "", err
	}

	if len(operators) == 0 {
		return "📭 Список операторов пуст.", nil
	}

	lines := []string{"📋 Операторы:", ""}
	for i, op := range operators {
		roleEmoji := "👤"
		if op.IsAdmin() {
			roleEmoji = "👑"
		}

		info := fmt.Sprintf("%d. %s %s", i+1, roleEmoji, op.FirstName)
		if op.LastName != "" {
			info += " " + op.LastName
		}
		if op.Username != "" {
			info += fmt.Sprintf(" (@%s)", op.Username)
		}
		info += fmt.Sprintf(" - ID: %d", op.ChatID)
		lines = append(lines, info)
	}

	return strings.Join(lines, "\n"), nil
}
