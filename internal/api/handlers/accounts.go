package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/ledger"
	"github.com/GabrielSantos777/planix/internal/store"
)

// AccountsHandler serves /api/accounts.
type AccountsHandler struct {
	accounts store.AccountRepository
	svc      *ledger.Service
	log      zerolog.Logger
}

func NewAccountsHandler(accounts store.AccountRepository, svc *ledger.Service, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, svc: svc, log: log}
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	accounts, err := h.accounts.ListAccountsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list accounts failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	out := make([]accountPayload, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountToPayload(a))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type createAccountRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// Create handles POST /api/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	accType := domain.AccountType(req.Type)
	switch accType {
	case domain.AccountTypeBank, domain.AccountTypeSavings, domain.AccountTypeInvestment:
	case "":
		accType = domain.AccountTypeBank
	default:
		middleware.WriteError(w, http.StatusBadRequest, "unknown account type")
		return
	}

	now := time.Now().UTC()
	acc := &domain.Account{
		AccountID:      uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		Type:           accType,
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
		Currency:       req.Currency,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.accounts.InsertAccount(r.Context(), acc); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("create account failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, accountToPayload(acc))
}

// Get handles GET /api/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request, accountID string) {
	acc, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("get account failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acc.UserID != middleware.UserID(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "account not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, accountToPayload(acc))
}

type updateAccountRequest struct {
	Name     *string `json:"name"`
	Currency *string `json:"currency"`
	IsActive *bool   `json:"is_active"`
}

// Update handles PUT /api/accounts/{id}. Balances are ledger-owned and
// cannot be set here.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request, accountID string) {
	acc, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("get account failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acc.UserID != middleware.UserID(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		acc.Name = *req.Name
	}
	if req.Currency != nil {
		acc.Currency = *req.Currency
	}
	if req.IsActive != nil {
		acc.IsActive = *req.IsActive
	}
	acc.UpdatedAt = time.Now().UTC()

	if err := h.accounts.UpdateAccount(r.Context(), acc); err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("update account failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to update account")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, accountToPayload(acc))
}

// Balance handles GET /api/accounts/{id}/balance. It returns the stored
// denormalized balance alongside the real balance recomputed from history,
// so drift is visible to clients.
func (h *AccountsHandler) Balance(w http.ResponseWriter, r *http.Request, accountID string) {
	acc, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("get account failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acc.UserID != middleware.UserID(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	real, err := h.svc.RealBalance(r.Context(), accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("real balance failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id":      acc.AccountID,
		"current_balance": acc.CurrentBalance,
		"real_balance":    real,
		"in_sync":         acc.CurrentBalance.Equal(real),
	})
}
