package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/middleware"
	"github.com/Dan9191/ledger-service/internal/report"
	"github.com/Dan9191/ledger-service/internal/repository"
	"github.com/Dan9191/ledger-service/internal/service"
	"github.com/sirupsen/logrus"
)

// Handler serves the ledger API
type Handler struct {
	svc *service.Service
	log *logrus.Logger
	now func() time.Time
}

// NewHandler creates a handler reading the current time from the clock
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log, now: time.Now}
}

// Balance returns the current balance of every ledger
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeValidation(w, &service.ValidationError{Fields: map[string]string{"as_of": err.Error()}})
			return
		}
		asOf = t
		if len(v) == len(time.DateOnly) {
			asOf = forecast.EndOfDay(t)
		}
	}
	rep, err := h.svc.Balances(r.Context(), asOf)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "Failed to load balances.", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Forecast projects ledger balances as JSON or XML
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	req, err := parseForecastQuery(r.URL.Query(), h.now())
	if err != nil {
		writeValidation(w, err)
		return
	}
	rep, err := h.svc.Forecast(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrValidation):
		writeValidation(w, err)
		return
	case errors.Is(err, repository.ErrNotFound):
		h.fail(w, r, http.StatusNotFound, "Ledger not found.", err)
		return
	case err != nil:
		h.fail(w, r, http.StatusInternalServerError, "Failed to build forecast.", err)
		return
	}

	if wantsXML(r) {
		w.Header().Set("Content-Type", report.ContentTypeXML)
		w.WriteHeader(http.StatusOK)
		if err := report.WriteForecastXML(w, rep); err != nil {
			h.log.Errorf("Failed to write forecast: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Transactions lists posted transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionQuery(r.URL.Query())
	if err != nil {
		writeValidation(w, err)
		return
	}
	transactions, err := h.svc.Transactions(r.Context(), filter)
	switch {
	case errors.Is(err, service.ErrValidation):
		writeValidation(w, err)
	case err != nil:
		h.fail(w, r, http.StatusInternalServerError, "Failed to load transactions.", err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"data": transactions})
	}
}

// Expense records a debit, optionally recurring
func (h *Handler) Expense(w http.ResponseWriter, r *http.Request) {
	in, err := decodeEntry(w, r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	entry, err := h.svc.RecordExpense(r.Context(), in, h.now())
	switch {
	case errors.Is(err, service.ErrValidation):
		writeValidation(w, err)
	case err != nil:
		h.fail(w, r, http.StatusBadRequest, "Failed to record expense.", err)
	default:
		h.requestLog(r).WithField("transaction_id", entry.Transaction.ID).Info("Expense recorded")
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":     "Expense recorded.",
			"transaction": entry.Transaction,
			"recurring":   entry.Recurring,
		})
	}
}

// Income records a credit, optionally transferred from another ledger
func (h *Handler) Income(w http.ResponseWriter, r *http.Request) {
	in, err := decodeEntry(w, r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	entry, err := h.svc.RecordIncome(r.Context(), in, h.now())
	switch {
	case errors.Is(err, service.ErrValidation):
		writeValidation(w, err)
	case err != nil:
		h.fail(w, r, http.StatusBadRequest, "Failed to record income.", err)
	default:
		h.requestLog(r).WithField("transaction_id", entry.Transaction.ID).Info("Income recorded")
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Income recorded.",
			"data":    entry,
		})
	}
}

// Health reports whether the storage is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.log.Warnf("Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLog tags entries with the request id and the authenticated subject
func (h *Handler) requestLog(r *http.Request) *logrus.Entry {
	fields := logrus.Fields{"request_id": middleware.RequestID(r.Context())}
	if sub := middleware.Subject(r.Context()); sub != "" {
		fields["subject"] = sub
	}
	return h.log.WithFields(fields)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	h.requestLog(r).WithFields(logrus.Fields{"path": r.URL.Path, "status": code}).Errorf("%s %v", message, err)
	writeJSON(w, code, map[string]string{"message": message, "error": err.Error()})
}

func writeValidation(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		verr = &service.ValidationError{Fields: map[string]string{"request": err.Error()}}
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "The given data was invalid.",
		"errors":  verr.Fields,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func wantsXML(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "xml":
		return true
	case "json":
		return false
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mt, _, err := mime.ParseMediaType(strings.TrimSpace(part)); err == nil && (mt == "application/xml" || mt == "text/xml") {
			return true
		}
	}
	return false
}
