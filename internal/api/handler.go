// Package api - HTTP API генератора бюллетеней.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"bulletins/internal/models"
	"bulletins/internal/repository"
	"bulletins/internal/service"
	"bulletins/pkg/periods"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 32 << 20

type Fetcher interface {
	Fetch(ctx context.Context, req service.FetchRequest) (*models.Snapshot, error)
	Periods(ctx context.Context) ([]periods.Period, error)
}

type Generator interface {
	Generate(ctx context.Context, req service.GenerateRequest) (*models.Archive, error)
	GenerateFromSnapshot(ctx context.Context, snapshotID, period, groupName string) (*models.Archive, error)
}

type ArchiveOpener interface {
	Open(id string) (*models.Archive, *os.File, error)
}

type Handler struct {
	fetcher   Fetcher
	generator Generator
	archives  ArchiveOpener
	validate  *validator.Validate
	logger    *logrus.Logger
}

func NewHandler(fetcher Fetcher, generator Generator, archives ArchiveOpener, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		fetcher:   fetcher,
		generator: generator,
		archives:  archives,
		validate:  newValidator(),
		logger:    logger,
	}
}

// NewRouter регистрирует маршруты API
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(recoveryMiddleware(h.logger), loggingMiddleware(h.logger))

	router.HandleFunc("/api/sql", h.FetchGroup).Methods("POST")
	router.HandleFunc("/api/pdf", h.GenerateBulletins).Methods("POST")
	router.HandleFunc("/api/download", h.Download).Methods("GET")
	router.HandleFunc("/api/periods", h.Periods).Methods("GET")
	router.HandleFunc("/api/health", h.Health).Methods("GET")

	return router
}

type fetchRequest struct {
	Campus     models.FlexString `json:"campus" validate:"required,numeric"`
	Group      models.FlexString `json:"group" validate:"required,numeric"`
	PeriodCode models.FlexString `json:"periodeEvaluationCode" validate:"required,numeric"`
	PeriodName string            `json:"periodeEvaluation" validate:"max=200"`
	Semester   string            `json:"semester" validate:"max=50"`
}

type fetchResponse struct {
	Success    bool                         `json:"success"`
	SnapshotID string                       `json:"snapshotId"`
	Data       map[string][]json.RawMessage `json:"data"`
	Errors     map[string]string            `json:"errors,omitempty"`
	Timestamp  time.Time                    `json:"timestamp"`
}

// FetchGroup - POST /api/sql: выгрузка данных группы из API школы
func (h *Handler) FetchGroup(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Corps de requête invalide", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationError(w, err)
		return
	}

	snapshot, err := h.fetcher.Fetch(r.Context(), service.FetchRequest{
		Campus:     string(req.Campus),
		Group:      string(req.Group),
		PeriodCode: string(req.PeriodCode),
		PeriodName: req.PeriodName,
	})
	if errors.Is(err, service.ErrInvalidRequest) {
		RespondWithError(w, http.StatusBadRequest, "Paramètres invalides", err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch group data")
		RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des données", err.Error())
		return
	}

	queries, err := snapshot.Queries()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des données", err.Error())
		return
	}

	resp := fetchResponse{
		Success:    true,
		SnapshotID: snapshot.ID,
		Data:       make(map[string][]json.RawMessage, len(queries)),
		Timestamp:  snapshot.CreatedAt,
	}
	for name, q := range queries {
		if q.Error != "" {
			if resp.Errors == nil {
				resp.Errors = map[string]string{}
			}
			resp.Errors[name] = q.Error
			continue
		}
		resp.Data[name] = q.Results
	}

	ResponseJSON(w, http.StatusOK, resp)
}

type generateRequest struct {
	Data       *models.Dataset `json:"data"`
	SnapshotID string          `json:"snapshotId" validate:"omitempty,uuid"`
	Period     string          `json:"periodeEvaluation" validate:"max=200"`
	GroupName  string          `json:"groupName" validate:"max=200"`
}

type generateResponse struct {
	Success      bool   `json:"success"`
	ID           string `json:"id"`
	Path         string `json:"path"`
	StudentCount int    `json:"studentCount"`
	FailureCount int    `json:"failureCount"`
}

// GenerateBulletins - POST /api/pdf: PDF на каждого студента в одном ZIP
func (h *Handler) GenerateBulletins(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Corps de requête invalide", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationError(w, err)
		return
	}

	var (
		archive *models.Archive
		err     error
	)
	if req.SnapshotID != "" {
		archive, err = h.generator.GenerateFromSnapshot(r.Context(), req.SnapshotID, req.Period, req.GroupName)
	} else {
		archive, err = h.generator.Generate(r.Context(), service.GenerateRequest{
			Data:      req.Data,
			Period:    req.Period,
			GroupName: req.GroupName,
		})
	}

	switch {
	case errors.Is(err, service.ErrNoData):
		RespondWithError(w, http.StatusBadRequest, "Aucune donnée fournie", "")
		return
	case errors.Is(err, repository.ErrSnapshotNotFound):
		RespondWithError(w, http.StatusNotFound, "Données introuvables", req.SnapshotID)
		return
	case errors.Is(err, service.ErrNoBulletins):
		RespondWithError(w, http.StatusInternalServerError, "Aucun PDF n'a pu être généré", err.Error())
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to generate bulletins")
		RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la génération des PDFs", err.Error())
		return
	}

	ResponseJSON(w, http.StatusOK, generateResponse{
		Success:      true,
		ID:           archive.ID,
		Path:         archive.DownloadPath(),
		StudentCount: archive.StudentCount,
		FailureCount: archive.FailureCount,
	})
}

// Download - GET /api/download?id=: отдает ZIP
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		RespondWithError(w, http.StatusBadRequest, "Identifiant manquant", "")
		return
	}

	archive, f, err := h.archives.Open(id)
	switch {
	case errors.Is(err, service.ErrInvalidArchiveID):
		RespondWithError(w, http.StatusBadRequest, "Identifiant invalide", "")
		return
	case errors.Is(err, repository.ErrArchiveNotFound):
		RespondWithError(w, http.StatusNotFound, "Fichier introuvable", id)
		return
	case err != nil:
		h.logger.WithError(err).WithField("id", id).Error("Failed to open archive")
		RespondWithError(w, http.StatusInternalServerError, "Erreur de lecture du fichier", "")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.ID))
	http.ServeContent(w, r, archive.ID, archive.CreatedAt, f)
}

// Periods - GET /api/periods: периоды оценивания текущего учебного года
func (h *Handler) Periods(w http.ResponseWriter, r *http.Request) {
	list, err := h.fetcher.Periods(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load periods")
		RespondWithError(w, http.StatusBadGateway, "Impossible de charger les périodes", err.Error())
		return
	}

	ResponseJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"periods": list,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ResponseJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// newValidator называет поля в ошибках по json-тегам
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
