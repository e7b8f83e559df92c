package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
)

type handler struct {
	reporter Reporter
	logger   *logrus.Logger
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

func (h *handler) getCompData(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), h.logger)

	var req models.CompanyRequest
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&req)
	if err == nil {
		if _, tailErr := dec.Token(); tailErr != io.EOF {
			err = errors.New("unexpected data after the JSON object")
		}
	}
	if err != nil {
		logger.WithError(err).Warn("malformed request body")
		writeDetail(w, http.StatusUnprocessableEntity, "request body must be a JSON object with a string company_name")
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "company_name is required")
		return
	}

	report, err := h.reporter.Report(r.Context(), req.CompanyName)
	if err != nil {
		status, detail := StatusFor(err)
		logger.WithError(err).WithFields(logrus.Fields{
			"company": req.CompanyName,
			"status":  status,
		}).Error("report failed")
		writeDetail(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// StatusFor maps a report error to its HTTP status and client message.
func StatusFor(err error) (int, string) {
	for _, m := range []struct {
		target error
		status int
	}{
		{models.ErrSourceNotFound, http.StatusNotFound},
		{models.ErrEmptyContent, http.StatusNotFound},
		{models.ErrExtractionParse, http.StatusBadRequest},
		{models.ErrSentimentAuth, http.StatusBadRequest},
		{models.ErrSentimentProvider, http.StatusBadRequest},
		{models.ErrExtractionFailed, http.StatusBadGateway},
		{models.ErrSourceUnavailable, http.StatusBadGateway},
	} {
		if errors.Is(err, m.target) {
			return m.status, m.target.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
