package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bulletins/internal/aggregation"
	"bulletins/internal/models"
	"bulletins/internal/render"
	"bulletins/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoData      = errors.New("no data provided")
	ErrNoBulletins = errors.New("no bulletin could be generated")
)

const (
	defaultPeriod    = "Période non spécifiée"
	defaultGroupName = "Groupe non spécifié"
)

var (
	whitespace     = regexp.MustCompile(`\s+`)
	unsafeFileRune = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// BulletinRenderer строит PDF одного студента
type BulletinRenderer interface {
	Render(b render.Bulletin) ([]byte, error)
}

// Notifier сообщает операторам о готовом архиве
type Notifier interface {
	ArchiveReady(ctx context.Context, archive *models.Archive) error
}

type GenerateRequest struct {
	Data       *models.Dataset
	Period     string
	GroupName  string
	SnapshotID *string
}

type ReportService struct {
	renderer    BulletinRenderer
	archives    *ArchiveService
	snapshots   repository.SnapshotRepository
	notifier    Notifier
	concurrency int
	now         func() time.Time
	logger      *logrus.Logger
}

func NewReportService(
	renderer BulletinRenderer,
	archives *ArchiveService,
	snapshots repository.SnapshotRepository,
	concurrency int,
	logger *logrus.Logger,
) *ReportService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &ReportService{
		renderer:    renderer,
		archives:    archives,
		snapshots:   snapshots,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger,
	}
}

// SetNotifier подключает уведомления; без него архивы просто сохраняются
func (s *ReportService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ArchiveID строит имя архива bulletins_<группа>_<unix ms>.zip
func ArchiveID(groupName string, at time.Time) string {
	sanitized := whitespace.ReplaceAllString(groupName, "_")
	sanitized = unsafeFileRune.ReplaceAllString(sanitized, "")
	return fmt.Sprintf("bulletins_%s_%d.zip", sanitized, at.UnixMilli())
}

// EntryName - имя PDF внутри архива: NOM_PRENOM_CODE.pdf
func EntryName(st models.Student) string {
	name := fmt.Sprintf("%s_%s_%s.pdf", st.LastName, st.FirstName, st.StudentID)
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}

// GenerateFromSnapshot строит бюллетени по сохраненному снимку
func (s *ReportService) GenerateFromSnapshot(ctx context.Context, snapshotID, period, groupName string) (*models.Archive, error) {
	snapshot, err := s.snapshots.GetByID(snapshotID)
	if err != nil {
		return nil, err
	}

	ds, err := snapshot.Dataset()
	if err != nil {
		return nil, err
	}

	if period == "" {
		period = snapshot.PeriodName
	}

	return s.Generate(ctx, GenerateRequest{
		Data:       &ds,
		Period:     period,
		GroupName:  groupName,
		SnapshotID: &snapshot.ID,
	})
}

// Generate строит по PDF на студента и упаковывает их в ZIP
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (*models.Archive, error) {
	if req.Data.IsEmpty() {
		return nil, ErrNoData
	}
	if req.Period == "" {
		req.Period = defaultPeriod
	}
	if req.GroupName == "" {
		req.GroupName = defaultGroupName
	}

	ds := req.Data
	logDiag := s.diagnosticLogger(req.GroupName)

	curriculum := aggregation.GroupByStudent(aggregation.Rollup(ds.Credits, logDiag))
	attendance := make(map[string]*models.AttendanceSummary)
	summaries := aggregation.Aggregate(ds.Absences, logDiag)
	for i := range summaries {
		attendance[summaries[i].StudentID] = &summaries[i]
	}

	averages := make(map[string][]models.SubjectAverage)
	for _, avg := range ds.SubjectAverages {
		id := string(avg.StudentID)
		averages[id] = append(averages[id], avg)
	}
	general := make(map[string]*models.GeneralAverage)
	for i := range ds.GeneralAverages {
		id := string(ds.GeneralAverages[i].StudentID)
		if _, ok := general[id]; !ok {
			general[id] = &ds.GeneralAverages[i]
		}
	}
	observations := make(map[string]*models.Observation)
	for i := range ds.Observations {
		id := string(ds.Observations[i].StudentID)
		if _, ok := observations[id]; !ok {
			observations[id] = &ds.Observations[i]
		}
	}

	pdfs := make([][]byte, len(ds.Students))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, st := range ds.Students {
		i := i
		id := string(st.StudentID)
		b := render.Bulletin{
			Period:         req.Period,
			Student:        st,
			Group:          ds.Group(),
			Campus:         ds.Campus(),
			Curriculum:     curriculum[id],
			Averages:       averages[id],
			GeneralAverage: general[id],
			Attendance:     attendance[id],
			Observation:    observations[id],
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := s.renderer.Render(b)
			if err != nil {
				s.logger.WithError(err).WithField("student", id).Error("Failed to render bulletin")
				return nil
			}
			pdfs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	success, failures := 0, 0
	for i, st := range ds.Students {
		if pdfs[i] == nil {
			failures++
			continue
		}

		w, err := zw.Create(EntryName(st))
		if err != nil {
			return nil, fmt.Errorf("add zip entry: %w", err)
		}
		if _, err := w.Write(pdfs[i]); err != nil {
			return nil, fmt.Errorf("write zip entry: %w", err)
		}
		success++
	}

	if success == 0 {
		return nil, fmt.Errorf("%w: %d bulletins failed", ErrNoBulletins, failures)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}

	archive, err := s.archives.Store(ArchiveID(req.GroupName, s.now()), buf.Bytes(), ArchiveMeta{
		GroupName:    req.GroupName,
		Period:       req.Period,
		StudentCount: success,
		FailureCount: failures,
		SnapshotID:   req.SnapshotID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"archive":  archive.ID,
		"group":    req.GroupName,
		"students": success,
		"failed":   failures,
	}).Info("Bulletins generated")

	if s.notifier != nil {
		if err := s.notifier.ArchiveReady(ctx, archive); err != nil {
			s.logger.WithError(err).Warn("Failed to notify operators")
		}
	}

	return archive, nil
}

// diagnosticLogger пишет замечания агрегации в лог на уровне debug
func (s *ReportService) diagnosticLogger(group string) aggregation.Reporter {
	return func(d aggregation.Diagnostic) {
		s.logger.WithFields(logrus.Fields{
			"group":   group,
			"kind":    d.Kind,
			"student": d.StudentID,
			"field":   d.Field,
			"value":   d.Value,
		}).Debug("Data anomaly")
	}
}
