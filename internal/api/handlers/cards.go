package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/billing"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/ledger"
	"github.com/GabrielSantos777/planix/internal/store"
)

// CardsHandler serves /api/cards, including the invoice sub-resource.
type CardsHandler struct {
	cards store.CardRepository
	svc   *ledger.Service
	log   zerolog.Logger
}

func NewCardsHandler(cards store.CardRepository, svc *ledger.Service, log zerolog.Logger) *CardsHandler {
	return &CardsHandler{cards: cards, svc: svc, log: log}
}

// List handles GET /api/cards.
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	cards, err := h.cards.ListCardsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list cards failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}

	out := make([]cardPayload, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToPayload(c))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type createCardRequest struct {
	Name            string          `json:"name"`
	CardType        string          `json:"card_type"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	DueDay          int             `json:"due_day"`
	ClosingDay      int             `json:"closing_day"`
	BestPurchaseDay *int            `json:"best_purchase_day"`
}

// Create handles POST /api/cards.
func (h *CardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.DueDay < 1 || req.DueDay > 31 || req.ClosingDay < 1 || req.ClosingDay > 31 {
		middleware.WriteError(w, http.StatusBadRequest, "due_day and closing_day must be in 1..31")
		return
	}
	if req.CreditLimit.IsNegative() {
		middleware.WriteError(w, http.StatusBadRequest, "credit_limit cannot be negative")
		return
	}

	now := time.Now().UTC()
	card := &domain.CreditCard{
		CardID:          uuid.NewString(),
		UserID:          userID,
		Name:            req.Name,
		CardType:        req.CardType,
		CreditLimit:     req.CreditLimit,
		CurrentBalance:  decimal.Zero,
		DueDay:          req.DueDay,
		ClosingDay:      req.ClosingDay,
		BestPurchaseDay: req.BestPurchaseDay,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.cards.InsertCard(r.Context(), card); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("create card failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create card")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, cardToPayload(card))
}

func (h *CardsHandler) ownedCard(w http.ResponseWriter, r *http.Request, cardID string) *domain.CreditCard {
	card, err := h.cards.GetCard(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "card not found")
			return nil
		}
		h.log.Error().Err(err).Str("card_id", cardID).Msg("get card failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to get card")
		return nil
	}
	if card.UserID != middleware.UserID(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "card not found")
		return nil
	}
	return card
}

// Get handles GET /api/cards/{id}.
func (h *CardsHandler) Get(w http.ResponseWriter, r *http.Request, cardID string) {
	card := h.ownedCard(w, r, cardID)
	if card == nil {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, cardToPayload(card))
}

type updateCardRequest struct {
	Name            *string          `json:"name"`
	CardType        *string          `json:"card_type"`
	CreditLimit     *decimal.Decimal `json:"credit_limit"`
	DueDay          *int             `json:"due_day"`
	ClosingDay      *int             `json:"closing_day"`
	BestPurchaseDay *int             `json:"best_purchase_day"`
}

// Update handles PUT /api/cards/{id}.
func (h *CardsHandler) Update(w http.ResponseWriter, r *http.Request, cardID string) {
	card := h.ownedCard(w, r, cardID)
	if card == nil {
		return
	}

	var req updateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		card.Name = *req.Name
	}
	if req.CardType != nil {
		card.CardType = *req.CardType
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			middleware.WriteError(w, http.StatusBadRequest, "credit_limit cannot be negative")
			return
		}
		card.CreditLimit = *req.CreditLimit
	}
	if req.DueDay != nil {
		if *req.DueDay < 1 || *req.DueDay > 31 {
			middleware.WriteError(w, http.StatusBadRequest, "due_day must be in 1..31")
			return
		}
		card.DueDay = *req.DueDay
	}
	if req.ClosingDay != nil {
		if *req.ClosingDay < 1 || *req.ClosingDay > 31 {
			middleware.WriteError(w, http.StatusBadRequest, "closing_day must be in 1..31")
			return
		}
		card.ClosingDay = *req.ClosingDay
	}
	if req.BestPurchaseDay != nil {
		card.BestPurchaseDay = req.BestPurchaseDay
	}
	card.UpdatedAt = time.Now().UTC()

	if err := h.cards.UpdateCard(r.Context(), card); err != nil {
		h.log.Error().Err(err).Str("card_id", cardID).Msg("update card failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to update card")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, cardToPayload(card))
}

// Invoices handles GET /api/cards/{id}/invoices. Query params year, month
// and contact narrow the cycles; contact=self keeps only unattributed
// charges.
func (h *CardsHandler) Invoices(w http.ResponseWriter, r *http.Request, cardID string) {
	card := h.ownedCard(w, r, cardID)
	if card == nil {
		return
	}

	var f billing.Filter
	q := r.URL.Query()
	if y := q.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		f.Year = year
	}
	if m := q.Get("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid month")
			return
		}
		f.Month = time.Month(month)
	}
	f.Contact = q.Get("contact")

	invoices, err := h.svc.CardInvoices(r.Context(), cardID, f)
	if err != nil {
		h.log.Error().Err(err).Str("card_id", cardID).Msg("card invoices failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to build invoices")
		return
	}

	out := make([]invoicePayload, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceToPayload(inv))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type payInvoiceRequest struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Notes       string          `json:"notes"`
}

// PayInvoice handles POST /api/cards/{id}/invoices/pay.
func (h *CardsHandler) PayInvoice(w http.ResponseWriter, r *http.Request, cardID string) {
	card := h.ownedCard(w, r, cardID)
	if card == nil {
		return
	}

	var req payInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "month and year are required")
		return
	}
	if !req.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		d, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid payment_date, expected YYYY-MM-DD")
			return
		}
		paymentDate = d
	}

	userID := middleware.UserID(r.Context())
	inv, err := h.svc.PayInvoice(r.Context(), userID, cardID, time.Month(req.Month), req.Year, req.Amount, paymentDate, req.Notes)
	if err != nil {
		h.log.Error().Err(err).Str("card_id", cardID).Msg("pay invoice failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to pay invoice")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"invoice_id":   inv.InvoiceID,
		"card_id":      inv.CardID,
		"month":        int(inv.Month),
		"year":         inv.Year,
		"total_amount": inv.TotalAmount,
		"paid_amount":  inv.PaidAmount,
		"status":       string(inv.Status),
	})
}
