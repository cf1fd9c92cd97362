package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"bulletins/internal/models"
	"bulletins/internal/repository"

	"github.com/sirupsen/logrus"
)

var ErrInvalidArchiveID = errors.New("invalid archive id")

var archiveIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-][a-zA-Z0-9_.-]*$`)

// ArchiveMeta - сведения об архиве, которые знает вызывающий
type ArchiveMeta struct {
	GroupName    string
	Period       string
	StudentCount int
	FailureCount int
	SnapshotID   *string
}

// ArchiveService хранит ZIP-файлы на диске, метаданные - в базе
type ArchiveService struct {
	repo   repository.ArchiveRepository
	dir    string
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

func NewArchiveService(repo repository.ArchiveRepository, dir string, ttl time.Duration, logger *logrus.Logger) (*ArchiveService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &ArchiveService{
		repo:   repo,
		dir:    dir,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

// ValidateArchiveID - id используется как имя файла, разделители путей запрещены
func ValidateArchiveID(id string) error {
	if !archiveIDPattern.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidArchiveID, id)
	}
	return nil
}

// Store записывает архив в ARCHIVE_DIR и сохраняет метаданные
func (s *ArchiveService) Store(id string, data []byte, meta ArchiveMeta) (*models.Archive, error) {
	if err := ValidateArchiveID(id); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("move archive: %w", err)
	}

	now := s.now()
	archive := &models.Archive{
		ID:           id,
		GroupName:    meta.GroupName,
		Period:       meta.Period,
		Path:         path,
		ContentType:  models.ContentTypeZip,
		Size:         int64(len(data)),
		StudentCount: meta.StudentCount,
		FailureCount: meta.FailureCount,
		SnapshotID:   meta.SnapshotID,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.repo.Create(archive); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("save archive metadata: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":       id,
		"size":     archive.Size,
		"students": archive.StudentCount,
	}).Info("Archive stored")

	return archive, nil
}

// Open возвращает метаданные и открытый файл; файл закрывает вызывающий
func (s *ArchiveService) Open(id string) (*models.Archive, *os.File, error) {
	if err := ValidateArchiveID(id); err != nil {
		return nil, nil, err
	}

	archive, err := s.repo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if archive.IsExpired(s.now()) {
		return nil, nil, repository.ErrArchiveNotFound
	}

	f, err := os.Open(archive.Path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("id", id).Warn("Archive file is missing on disk")
		return nil, nil, repository.ErrArchiveNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}

	return archive, f, nil
}

// Has проверяет, что архив есть и еще не истек
func (s *ArchiveService) Has(id string) (bool, error) {
	if err := ValidateArchiveID(id); err != nil {
		return false, nil
	}

	archive, err := s.repo.GetByID(id)
	if errors.Is(err, repository.ErrArchiveNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !archive.IsExpired(s.now()), nil
}

func (s *ArchiveService) List(limit int) ([]models.Archive, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.GetRecent(limit)
}

// PurgeExpired удаляет истекшие архивы с диска и из базы
func (s *ArchiveService) PurgeExpired(now time.Time) (int, error) {
	expired, err := s.repo.GetExpired(now)
	if err != nil {
		return 0, fmt.Errorf("list expired archives: %w", err)
	}

	purged := 0
	for _, archive := range expired {
		if err := os.Remove(archive.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.WithError(err).WithField("id", archive.ID).Warn("Failed to remove archive file")
			continue
		}
		if err := s.repo.Delete(archive.ID); err != nil && !errors.Is(err, repository.ErrArchiveNotFound) {
			s.logger.WithError(err).WithField("id", archive.ID).Warn("Failed to delete archive record")
			continue
		}
		purged++
	}

	if purged > 0 {
		s.logger.WithField("count", purged).Info("Expired archives purged")
	}

	return purged, nil
}
