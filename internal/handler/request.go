package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/Dan9191/ledger-service/internal/service"
)

const (
	maxLookbackMonths       = 120
	defaultTransactionLimit = 100
	maxTransactionLimit     = 1000
	maxBodyBytes            = 1 << 20
)

// entryRequest is the body of POST /expense and POST /income
type entryRequest struct {
	LedgerID     *int64   `json:"ledger_id"`
	Amount       *float64 `json:"amount"`
	Date         string   `json:"date"`
	Description  string   `json:"description"`
	Frequency    string   `json:"frequency"`
	EndDate      string   `json:"end_date"`
	FromLedgerID *int64   `json:"from_ledger_id"`
}

// parseDate accepts YYYY-MM-DD or RFC3339
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date (YYYY-MM-DD or RFC3339)")
	}
	return t, nil
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (service.EntryInput, error) {
	var body entryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return service.EntryInput{}, &service.ValidationError{Fields: map[string]string{"body": "must be a JSON object"}}
	}

	fields := map[string]string{}
	in := service.EntryInput{
		Description:  strings.TrimSpace(body.Description),
		Frequency:    strings.TrimSpace(body.Frequency),
		FromLedgerID: body.FromLedgerID,
	}
	if body.LedgerID == nil {
		fields["ledger_id"] = "is required"
	} else {
		in.LedgerID = *body.LedgerID
	}
	if body.Amount == nil {
		fields["amount"] = "is required"
	} else {
		in.Amount = *body.Amount
	}
	if body.Date != "" {
		t, err := parseDate(body.Date)
		if err != nil {
			fields["date"] = err.Error()
		} else {
			in.Date = &t
		}
	}
	if body.EndDate != "" {
		t, err := parseDate(body.EndDate)
		if err != nil {
			fields["end_date"] = err.Error()
		} else {
			in.EndDate = &t
		}
	}
	if len(fields) > 0 {
		return service.EntryInput{}, &service.ValidationError{Fields: fields}
	}
	return in, nil
}

func parseForecastQuery(q url.Values, now time.Time) (service.ForecastRequest, error) {
	fields := map[string]string{}
	req := service.ForecastRequest{AsAt: now, IncludeMonthly: true}

	if v := q.Get("as_at"); v != "" {
		if t, err := parseDate(v); err != nil {
			fields["as_at"] = err.Error()
		} else {
			req.AsAt = t
		}
	}
	if v := q.Get("until"); v != "" {
		if t, err := parseDate(v); err != nil {
			fields["until"] = err.Error()
		} else {
			req.Until = &t
		}
	}
	if v := q.Get("lookahead_months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > forecast.MaxLookaheadMonths {
			fields["lookahead_months"] = fmt.Sprintf("must be an integer between 1 and %d", forecast.MaxLookaheadMonths)
		} else {
			req.LookaheadMonths = n
		}
	}
	if v := q.Get("lookback_months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLookbackMonths {
			fields["lookback_months"] = fmt.Sprintf("must be an integer between 1 and %d", maxLookbackMonths)
		} else {
			req.LookbackMonths = n
		}
	}
	if v := q.Get("include_monthly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["include_monthly"] = "must be a boolean"
		} else {
			req.IncludeMonthly = b
		}
	}
	if v := q.Get("ledger_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			fields["ledger_id"] = "must be a positive integer"
		} else {
			req.LedgerID = &id
		}
	}
	if v := strings.ToLower(q.Get("format")); v != "" && v != "json" && v != "xml" {
		fields["format"] = "must be json or xml"
	}
	if len(fields) > 0 {
		return service.ForecastRequest{}, &service.ValidationError{Fields: fields}
	}
	return req, nil
}

func parseTransactionQuery(q url.Values) (models.TransactionFilter, error) {
	fields := map[string]string{}
	f := models.TransactionFilter{Limit: defaultTransactionLimit}

	if v := q.Get("ledger_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			fields["ledger_id"] = "must be a positive integer"
		} else {
			f.LedgerID = &id
		}
	}
	if v := q.Get("from"); v != "" {
		if t, err := parseDate(v); err != nil {
			fields["from"] = err.Error()
		} else {
			f.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := parseDate(v); err != nil {
			fields["to"] = err.Error()
		} else {
			end := forecast.EndOfDay(t)
			if len(v) > len(time.DateOnly) {
				end = t
			}
			f.To = &end
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["limit"] = "must be a positive integer"
		} else {
			f.Limit = min(n, maxTransactionLimit)
		}
	}
	if len(fields) > 0 {
		return models.TransactionFilter{}, &service.ValidationError{Fields: fields}
	}
	return f, nil
}
