package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"bulletins/internal/models"
	"bulletins/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newArchiveService(t *testing.T) *ArchiveService {
	t.Helper()
	repo, err := repository.NewGormArchiveRepository(openTestDB(t))
	require.NoError(t, err)
	svc, err := NewArchiveService(repo, t.TempDir(), 0, quietLogger())
	require.NoError(t, err)
	return svc
}

// fakeRunner отвечает по подстроке в SQL
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	rows  map[string][]json.RawMessage
	fail  map[string]error
}

func (f *fakeRunner) Query(ctx context.Context, sql string) ([]json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sql)
	f.mu.Unlock()

	for marker, err := range f.fail {
		if strings.Contains(sql, marker) {
			return nil, err
		}
	}
	for marker, rows := range f.rows {
		if strings.Contains(sql, marker) {
			return rows, nil
		}
	}
	return []json.RawMessage{}, nil
}

var errBoom = errors.New("boom")

func mustRows(t *testing.T, rows ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		require.True(t, json.Valid([]byte(r)), r)
		out[i] = json.RawMessage(r)
	}
	return out
}

func testDataset() *models.Dataset {
	return &models.Dataset{
		Groups:   []models.GroupInfo{{Code: "1205", Name: "BTS PI 1"}},
		Campuses: []models.CampusInfo{{Code: "3", Name: "Paris"}},
		Students: []models.Student{
			{StudentID: "7", LastName: "DUPONT", FirstName: "Marie"},
			{StudentID: "8", LastName: "MARTIN", FirstName: "Paul"},
		},
		SubjectAverages: []models.SubjectAverage{
			{StudentID: "7", SubjectCode: "L1", SubjectName: "Droit", Average: "14"},
		},
		Credits: []models.CurriculumItem{
			{StudentID: "7", SubjectCode: "U1", ItemTypeCode: models.ItemTypeUnit, OrderIndex: "1"},
			{StudentID: "7", SubjectCode: "L1", ItemTypeCode: models.ItemTypeSubject, OrderIndex: "2", RawCredit: "3"},
		},
		Absences: []models.AttendanceRecord{
			{StudentID: "7", StartOffset: "480", EndOffset: "570", IsJustified: "1", IsLate: "0"},
		},
	}
}
