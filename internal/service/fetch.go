package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"bulletins/internal/models"
	"bulletins/internal/repository"
	"bulletins/pkg/periods"
	"bulletins/pkg/schoolapi"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidRequest = errors.New("invalid request")

// QueryRunner выполняет SQL через шлюз школы
type QueryRunner interface {
	Query(ctx context.Context, sql string) ([]json.RawMessage, error)
}

type FetchRequest struct {
	Campus     string
	Group      string
	PeriodCode string
	PeriodName string
}

type FetchService struct {
	runner      QueryRunner
	snapshots   repository.SnapshotRepository
	concurrency int
	yearStart   time.Time
	yearEnd     time.Time
	logger      *logrus.Logger
}

func NewFetchService(
	runner QueryRunner,
	snapshots repository.SnapshotRepository,
	concurrency int,
	yearStart, yearEnd time.Time,
	logger *logrus.Logger,
) *FetchService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &FetchService{
		runner:      runner,
		snapshots:   snapshots,
		concurrency: concurrency,
		yearStart:   yearStart,
		yearEnd:     yearEnd,
		logger:      logger,
	}
}

// Fetch выполняет все запросы группы и сохраняет снимок.
// Ошибка отдельного запроса записывается в снимок и не прерывает остальные.
func (s *FetchService) Fetch(ctx context.Context, req FetchRequest) (*models.Snapshot, error) {
	queries, err := schoolapi.GroupQueries(req.Campus, req.Group, req.PeriodCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]models.QueryResult, len(names))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, name := range names {
		i, name := i, name
		sql := queries[name]
		g.Go(func() error {
			start := time.Now()
			rows, err := s.runner.Query(ctx, sql)

			entry := s.logger.WithFields(logrus.Fields{
				"query":    name,
				"group":    req.Group,
				"duration": time.Since(start).Round(time.Millisecond),
			})

			if err != nil {
				entry.WithError(err).Warn("Query failed")
				results[i] = models.QueryResult{Query: sql, Results: []json.RawMessage{}, Error: err.Error()}
				return nil
			}

			entry.WithField("rows", len(rows)).Debug("Query completed")
			results[i] = models.QueryResult{Query: sql, Results: rows}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byName := make(map[string]models.QueryResult, len(names))
	for i, name := range names {
		byName[name] = results[i]
	}

	snapshot := &models.Snapshot{
		ID:         uuid.NewString(),
		Campus:     req.Campus,
		GroupCode:  req.Group,
		PeriodCode: req.PeriodCode,
		PeriodName: req.PeriodName,
	}
	if err := snapshot.SetQueries(byName); err != nil {
		return nil, err
	}

	if err := s.snapshots.Create(snapshot); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"snapshot": snapshot.ID,
		"group":    req.Group,
		"queries":  snapshot.QueryCount,
		"failed":   snapshot.FailedCount,
	}).Info("Group data fetched")

	return snapshot, nil
}

// Periods возвращает периоды оценивания текущего учебного года
func (s *FetchService) Periods(ctx context.Context) ([]periods.Period, error) {
	rows, err := s.runner.Query(ctx, schoolapi.PeriodsQuery())
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode periods: %w", err)
	}

	all, err := periods.Parse(data)
	if err != nil {
		return nil, err
	}

	return periods.FilterWindow(all, s.yearStart, s.yearEnd), nil
}
