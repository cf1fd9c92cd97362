package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func ResponseJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

func RespondWithError(w http.ResponseWriter, status int, message, details string) {
	ResponseJSON(w, status, ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// ValidationError отдает 400 с перечнем полей, не прошедших проверку
func ValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		RespondWithError(w, http.StatusBadRequest, "Paramètres invalides", err.Error())
		return
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}

	ResponseJSON(w, http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   "Paramètres manquants ou invalides",
		Fields:  fields,
	})
}
