package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/ledger"
	"github.com/GabrielSantos777/planix/internal/store"
)

// TransfersHandler serves POST /api/transfers: plain account-to-account
// moves and investment contributions/redemptions.
type TransfersHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

func NewTransfersHandler(svc *ledger.Service, log zerolog.Logger) *TransfersHandler {
	return &TransfersHandler{svc: svc, log: log}
}

type transferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Action        string          `json:"action"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var action domain.InvestmentAction
	switch req.Action {
	case "":
	case string(domain.InvestmentActionContribution):
		action = domain.InvestmentActionContribution
	case string(domain.InvestmentActionRedemption):
		action = domain.InvestmentActionRedemption
	default:
		middleware.WriteError(w, http.StatusBadRequest, "action must be contribution or redemption")
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = d
	}

	result, err := h.svc.Transfer(r.Context(), ledger.TransferRequest{
		UserID:        userID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Date:          date,
		Description:   req.Description,
		Action:        action,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			middleware.WriteError(w, http.StatusUnprocessableEntity, "insufficient funds")
		case errors.Is(err, store.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "account not found")
		default:
			h.log.Error().Err(err).Str("user_id", userID).Msg("transfer failed")
			middleware.WriteError(w, http.StatusBadRequest, "transfer failed")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"debit":  mutationToPayload(result.Debit),
		"credit": mutationToPayload(result.Credit),
	})
}
