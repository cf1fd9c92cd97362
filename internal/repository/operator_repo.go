package repository

import (
	"errors"

	"bulletins/internal/models"

	"gorm.io/gorm"
)

var ErrOperatorNotFound = errors.New("оператор не найден")

type OperatorRepository interface {
	Create(operator *models.Operator) error
	GetByChatID(chatID int64) (*models.Operator, error)
	Update(operator *models.Operator) error
	UpdateRole(chatID int64, role models.Role) error
	Exists(chatID int64) (bool, error)
	GetAll() ([]*models.Operator, error)
	GetAdmins() ([]*models.Operator, error)
}

type GormOperatorRepository struct {
	db *gorm.DB
}

func NewGormOperatorRepository(db *gorm.DB) (*GormOperatorRepository, error) {
	// Автомиграция - создает таблицы если их нет
	if err := db.AutoMigrate(&models.Operator{}); err != nil {
		return nil, err
	}

	return &GormOperatorRepository{db: db}, nil
}

func (r *GormOperatorRepository) Create(operator *models.Operator) error {
	exists, err := r.Exists(operator.ChatID)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("оператор уже существует")
	}

	return r.db.Create(operator).Error
}

// GetByChatID возвращает nil, nil если оператора нет
func (r *GormOperatorRepository) GetByChatID(chatID int64) (*models.Operator, error) {
	var operator models.Operator
	result := r.db.Where("chat_id = ?", chatID).First(&operator)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &operator, nil
}

func (r *GormOperatorRepository) Update(operator *models.Operator) error {
	exists, err := r.Exists(operator.ChatID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrOperatorNotFound
	}

	return r.db.Save(operator).Error
}

func (r *GormOperatorRepository) UpdateRole(chatID int64, role models.Role) error {
	result := r.db.Model(&models.Operator{}).
		Where("chat_id = ?", chatID).
		Update("role", string(role))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOperatorNotFound
	}

	return nil
}

func (r *GormOperatorRepository) Exists(chatID int64) (bool, error) {
	var count int64
	result := r.db.Model(&models.Operator{}).Where("chat_id = ?", chatID).Count(&count)

	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (r *GormOperatorRepository) GetAll() ([]*models.Operator, error) {
	var operators []*models.Operator
	if err := r.db.Order("id").Find(&operators).Error; err != nil {
		return nil, err
	}
	return operators, nil
}

func (r *GormOperatorRepository) GetAdmins() ([]*models.Operator, error) {
	var admins []*models.Operator
	if err := r.db.Where("role = ?", string(models.RoleAdmin)).Order("id").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
