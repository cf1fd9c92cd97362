package repository

import (
	"errors"
	"time"

	"bulletins/internal/models"

	"gorm.io/gorm"
)

var ErrArchiveNotFound = errors.New("archive not found")

type ArchiveRepository interface {
	Create(archive *models.Archive) error
	GetByID(id string) (*models.Archive, error)
	GetRecent(limit int) ([]models.Archive, error)
	GetExpired(now time.Time) ([]models.Archive, error)
	Exists(id string) (bool, error)
	Delete(id string) error
}

type GormArchiveRepository struct {
	db *gorm.DB
}

func NewGormArchiveRepository(db *gorm.DB) (ArchiveRepository, error) {
	if err := db.AutoMigrate(&models.Archive{}); err != nil {
		return nil, err
	}
	return &GormArchiveRepository{db: db}, nil
}

func (r *GormArchiveRepository) Create(archive *models.Archive) error {
	return r.db.Create(archive).Error
}

func (r *GormArchiveRepository) GetByID(id string) (*models.Archive, error) {
	var archive models.Archive
	err := r.db.Where("id = ?", id).First(&archive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArchiveNotFound
	}
	if err != nil {
		return nil, err
	}
	return &archive, nil
}

func (r *GormArchiveRepository) GetRecent(limit int) ([]models.Archive, error) {
	var archives []models.Archive
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&archives).Error
	return archives, err
}

func (r *GormArchiveRepository) GetExpired(now time.Time) ([]models.Archive, error) {
	var archives []models.Archive
	err := r.db.Where("expires_at <= ?", now).
		Order("expires_at").
		Find(&archives).Error
	return archives, err
}

func (r *GormArchiveRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Archive{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *GormArchiveRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Archive{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArchiveNotFound
	}
	return nil
}
