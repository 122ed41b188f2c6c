package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/gcs"
)

// ImportsHandler serves POST /api/imports/csv. The import is a validation
// hook only: it parses the file, checks every row, and reports what a real
// import would do. Nothing is persisted yet.
//
// Expected columns: date, description, amount, type, account_id, card_id,
// category_id. Header row required.
type ImportsHandler struct {
	storage gcs.StorageService
	log     zerolog.Logger
}

func NewImportsHandler(storage gcs.StorageService, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{storage: storage, log: log}
}

type importCSVRequest struct {
	// GCSURI points at an uploaded CSV (gs://bucket/object). When empty the
	// CSV is expected inline in Data.
	GCSURI string `json:"gcs_uri"`
	Data   string `json:"data"`
}

type importRowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResult struct {
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
	Errors  []importRowError `json:"errors,omitempty"`
}

// ImportCSV handles POST /api/imports/csv.
func (h *ImportsHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req importCSVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var raw []byte
	switch {
	case req.GCSURI != "":
		data, err := h.storage.FetchFromGCS(r.Context(), req.GCSURI)
		if err != nil {
			h.log.Error().Err(err).Str("uri", req.GCSURI).Msg("fetch import file failed")
			middleware.WriteError(w, http.StatusBadGateway, "failed to fetch import file")
			return
		}
		raw = data
	case req.Data != "":
		raw = []byte(req.Data)
	default:
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri or data is required")
		return
	}

	result, err := validateRows(userID, raw)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info().
		Str("user_id", userID).
		Int("valid", result.Valid).
		Int("invalid", result.Invalid).
		Msg("csv import validated")
	middleware.WriteJSON(w, http.StatusOK, result)
}

func validateRows(userID string, raw []byte) (*importResult, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("empty or unreadable CSV")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "description", "amount", "type"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &importResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, importRowError{Line: line, Error: "malformed row"})
			continue
		}
		if _, err := rowToTransaction(userID, record, field); err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, importRowError{Line: line, Error: err.Error()})
			continue
		}
		result.Valid++
	}
	return result, nil
}

func rowToTransaction(userID string, record []string, field func([]string, string) string) (*domain.Transaction, error) {
	date, err := time.Parse(dateLayout, field(record, "date"))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", field(record, "date"))
	}
	amount, err := decimal.NewFromString(field(record, "amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", field(record, "amount"))
	}
	txType := domain.TransactionType(field(record, "type"))
	switch txType {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
	default:
		return nil, fmt.Errorf("invalid type %q", field(record, "type"))
	}
	// Sign convention: expenses post negative regardless of how the file
	// spells the amount.
	if txType == domain.TransactionTypeExpense && amount.IsPositive() {
		amount = amount.Neg()
	}
	if txType == domain.TransactionTypeIncome && amount.IsNegative() {
		return nil, fmt.Errorf("income amount cannot be negative")
	}
	if field(record, "account_id") == "" && field(record, "card_id") == "" {
		return nil, fmt.Errorf("row references neither an account nor a card")
	}

	return &domain.Transaction{
		UserID:      userID,
		Description: field(record, "description"),
		Amount:      amount,
		Type:        txType,
		Date:        date,
		AccountID:   field(record, "account_id"),
		CardID:      field(record, "card_id"),
		CategoryID:  field(record, "category_id"),
		Notes:       "imported from csv",
	}, nil
}
