package repository

import (
	"errors"

	"bulletins/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotRepository interface {
	Create(snapshot *models.Snapshot) error
	GetByID(id string) (*models.Snapshot, error)
	GetLatestByGroup(group string) (*models.Snapshot, error)
	DeleteByGroup(group string) error
}

type GormSnapshotRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSnapshotRepository(db *gorm.DB) (*GormSnapshotRepository, error) {
	logger := newLogger()

	// Автомиграция
	if err := db.AutoMigrate(&models.Snapshot{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate snapshots table")
		return nil, err
	}

	logger.Info("Snapshot repository initialized")

	return &GormSnapshotRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormSnapshotRepository) Create(snapshot *models.Snapshot) error {
	if !snapshot.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"id":     snapshot.ID,
			"group":  snapshot.GroupCode,
			"campus": snapshot.Campus,
		}).Warn("Invalid snapshot data")
		return errors.New("некорректные данные снимка")
	}

	if err := r.db.Create(snapshot).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create snapshot")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      snapshot.ID,
		"group":   snapshot.GroupCode,
		"queries": snapshot.QueryCount,
		"failed":  snapshot.FailedCount,
	}).Debug("Snapshot created successfully")

	return nil
}

func (r *GormSnapshotRepository) GetByID(id string) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	result := r.db.Where("id = ?", id).First(&snapshot)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Snapshot not found")
		return nil, ErrSnapshotNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &snapshot, nil
}

func (r *GormSnapshotRepository) GetLatestByGroup(group string) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	result := r.db.Where("group_code = ?", group).
		Order("created_at DESC").
		First(&snapshot)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &snapshot, nil
}

func (r *GormSnapshotRepository) DeleteByGroup(group string) error {
	return r.db.Where("group_code = ?", group).Delete(&models.Snapshot{}).Error
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}
