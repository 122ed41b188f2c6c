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

// TransactionsHandler serves /api/transactions. All writes go through the
// ledger service so balances stay reconciled; the handler never touches the
// transaction repository for mutations.
type TransactionsHandler struct {
	svc *ledger.Service
	txs store.TransactionRepository
	log zerolog.Logger
}

func NewTransactionsHandler(svc *ledger.Service, txs store.TransactionRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, txs: txs, log: log}
}

func mutationToPayload(mut *ledger.Mutation) mutationPayload {
	out := mutationPayload{
		Accounts: make([]accountPayload, 0, len(mut.Accounts)),
		Cards:    make([]cardPayload, 0, len(mut.Cards)),
	}
	if mut.Transaction != nil {
		p := transactionToPayload(mut.Transaction)
		out.Transaction = &p
	}
	for _, a := range mut.Accounts {
		out.Accounts = append(out.Accounts, accountToPayload(a))
	}
	for _, c := range mut.Cards {
		out.Cards = append(out.Cards, cardToPayload(c))
	}
	return out
}

// List handles GET /api/transactions. Without query params it returns the
// user's visible transactions (investment legs hidden); with start and end
// it returns the raw date-range listing used by reports.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	q := r.URL.Query()

	var (
		txs []*domain.Transaction
		err error
	)
	if q.Get("start") != "" || q.Get("end") != "" {
		start, perr := time.Parse(dateLayout, q.Get("start"))
		if perr != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
			return
		}
		end, perr := time.Parse(dateLayout, q.Get("end"))
		if perr != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
			return
		}
		if end.Before(start) {
			middleware.WriteError(w, http.StatusBadRequest, "end must not be before start")
			return
		}
		txs, err = h.txs.ListTransactionsByDateRange(r.Context(), userID, start, end)
	} else {
		txs, err = h.svc.ListVisibleTransactions(r.Context(), userID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list transactions failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, transactionsToPayload(txs))
}

type transactionRequest struct {
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	Date             string          `json:"date"`
	AccountID        string          `json:"account_id"`
	CardID           string          `json:"card_id"`
	CategoryID       string          `json:"category_id"`
	ContactID        string          `json:"contact_id"`
	IsInstallment    bool            `json:"is_installment"`
	InstallmentCount int             `json:"installment_count"`
	InstallmentNo    int             `json:"installment_no"`
	Notes            string          `json:"notes"`
}

func (req *transactionRequest) toDomain(userID string) (*domain.Transaction, error) {
	txType := domain.TransactionType(req.Type)
	switch txType {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense, domain.TransactionTypeTransfer:
	default:
		return nil, errors.New("unknown transaction type")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return &domain.Transaction{
		UserID:           userID,
		Description:      req.Description,
		Amount:           req.Amount,
		Type:             txType,
		Date:             date,
		AccountID:        req.AccountID,
		CardID:           req.CardID,
		CategoryID:       req.CategoryID,
		ContactID:        req.ContactID,
		IsInstallment:    req.IsInstallment,
		InstallmentCount: req.InstallmentCount,
		InstallmentNo:    req.InstallmentNo,
		Notes:            req.Notes,
	}, nil
}

func writeLedgerError(w http.ResponseWriter, log zerolog.Logger, err error, op string) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, ledger.ErrCreditLimitExceeded):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "credit limit exceeded")
	case errors.Is(err, ledger.ErrNoOwner), errors.Is(err, ledger.ErrAmbiguousOwner):
		middleware.WriteError(w, http.StatusBadRequest, "transaction must reference exactly one of account_id or card_id")
	case errors.Is(err, ledger.ErrTransactionNotFound), errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "transaction not found")
	default:
		log.Error().Err(err).Str("op", op).Msg("transaction mutation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "transaction mutation failed")
	}
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := req.toDomain(userID)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mut, err := h.svc.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeLedgerError(w, h.log, err, "create")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, mutationToPayload(mut))
}

// Update handles PUT /api/transactions/{id}. The ledger reverses the old
// effect and applies the new one, so owner and amount changes are safe.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := middleware.UserID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := req.toDomain(userID)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx.TransactionID = transactionID

	mut, err := h.svc.UpdateTransaction(r.Context(), tx)
	if err != nil {
		writeLedgerError(w, h.log, err, "update")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, mutationToPayload(mut))
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := middleware.UserID(r.Context())

	mut, err := h.svc.DeleteTransaction(r.Context(), userID, transactionID)
	if err != nil {
		writeLedgerError(w, h.log, err, "delete")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, mutationToPayload(mut))
}
