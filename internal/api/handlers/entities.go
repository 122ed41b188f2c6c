package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/api/middleware"
	"github.com/GabrielSantos777/planix/internal/domain"
	"github.com/GabrielSantos777/planix/internal/store"
)

// EntitiesHandler serves the flat supporting collections: categories,
// contacts, goals and investments. They are simple list/create resources
// with no balance coupling, so they bypass the ledger service.
type EntitiesHandler struct {
	categories  store.CategoryRepository
	contacts    store.ContactRepository
	goals       store.GoalRepository
	investments store.InvestmentRepository
	log         zerolog.Logger
}

func NewEntitiesHandler(categories store.CategoryRepository, contacts store.ContactRepository, goals store.GoalRepository, investments store.InvestmentRepository, log zerolog.Logger) *EntitiesHandler {
	return &EntitiesHandler{
		categories:  categories,
		contacts:    contacts,
		goals:       goals,
		investments: investments,
		log:         log,
	}
}

// ListCategories handles GET /api/categories.
func (h *EntitiesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	cats, err := h.categories.ListCategoriesByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list categories failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	out := make([]map[string]interface{}, 0, len(cats))
	for _, c := range cats {
		out = append(out, map[string]interface{}{
			"category_id": c.CategoryID,
			"name":        c.Name,
			"kind":        string(c.Kind),
			"is_active":   c.IsActive,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// CreateCategory handles POST /api/categories.
func (h *EntitiesHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	kind := domain.TransactionType(req.Kind)
	switch kind {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
	case "":
		kind = domain.TransactionTypeExpense
	default:
		middleware.WriteError(w, http.StatusBadRequest, "kind must be income or expense")
		return
	}

	cat := &domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     userID,
		Name:       req.Name,
		Kind:       kind,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.categories.InsertCategory(r.Context(), cat); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("create category failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"category_id": cat.CategoryID,
		"name":        cat.Name,
		"kind":        string(cat.Kind),
		"is_active":   cat.IsActive,
	})
}

// ListContacts handles GET /api/contacts.
func (h *EntitiesHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	contacts, err := h.contacts.ListContactsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list contacts failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	out := make([]map[string]interface{}, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, map[string]interface{}{
			"contact_id": c.ContactID,
			"name":       c.Name,
			"phone":      c.Phone,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type createContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreateContact handles POST /api/contacts.
func (h *EntitiesHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := &domain.Contact{
		ContactID: uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.contacts.InsertContact(r.Context(), c); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("create contact failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"contact_id": c.ContactID,
		"name":       c.Name,
		"phone":      c.Phone,
	})
}

type goalPayload struct {
	GoalID        string          `json:"goal_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *string         `json:"deadline,omitempty"`
	IsCompleted   bool            `json:"is_completed"`
}

func goalToPayload(g *domain.Goal) goalPayload {
	p := goalPayload{
		GoalID:        g.GoalID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		IsCompleted:   g.IsCompleted,
	}
	if g.Deadline != nil {
		d := g.Deadline.Format(dateLayout)
		p.Deadline = &d
	}
	return p
}

// ListGoals handles GET /api/goals.
func (h *EntitiesHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	goals, err := h.goals.ListGoalsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list goals failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	out := make([]goalPayload, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalToPayload(g))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type createGoalRequest struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      string          `json:"deadline"`
}

// CreateGoal handles POST /api/goals.
func (h *EntitiesHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.TargetAmount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "target_amount must be positive")
		return
	}

	now := time.Now().UTC()
	g := &domain.Goal{
		GoalID:        uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Deadline != "" {
		d, err := time.Parse(dateLayout, req.Deadline)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid deadline, expected YYYY-MM-DD")
			return
		}
		g.Deadline = &d
	}
	if err := h.goals.InsertGoal(r.Context(), g); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("create goal failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, goalToPayload(g))
}

type investmentPayload struct {
	InvestmentID string          `json:"investment_id"`
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	AssetType    string          `json:"asset_type"`
	Amount       decimal.Decimal `json:"amount"`
	PurchaseDate string          `json:"purchase_date"`
}

// ListInvestments handles GET /api/investments.
func (h *EntitiesHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	list, err := h.investments.ListInvestmentsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list investments failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to list investments")
		return
	}
	out := make([]investmentPayload, 0, len(list))
	for _, inv := range list {
		out = append(out, investmentPayload{
			InvestmentID: inv.InvestmentID,
			AccountID:    inv.AccountID,
			Name:         inv.Name,
			AssetType:    inv.AssetType,
			Amount:       inv.Amount,
			PurchaseDate: inv.PurchaseDate.Format(dateLayout),
		})
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type createInvestmentRequest struct {
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	AssetType    string          `json:"asset_type"`
	Amount       decimal.Decimal `json:"amount"`
	PurchaseDate string          `json:"purchase_date"`
}

// CreateInvestment handles POST /api/investments. It records the position
// only; moving the money happens through /api/transfers with a contribution
// action.
func (h *EntitiesHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name and account_id are required")
		return
	}
	if !req.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	purchaseDate := time.Now().UTC()
	if req.PurchaseDate != "" {
		d, err := time.Parse(dateLayout, req.PurchaseDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid purchase_date, expected YYYY-MM-DD")
			return
		}
		purchaseDate = d
	}

	inv := &domain.Investment{
		InvestmentID: uuid.NewString(),
		UserID:       userID,
		AccountID:    req.AccountID,
		Name:         req.Name,
		AssetType:    req.AssetType,
		Amount:       req.Amount,
		PurchaseDate: purchaseDate,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.investments.InsertInvestment(r.Context(), inv); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("create investment failed")
		middleware.WriteError(w, http.StatusInternalServerError, "failed to create investment")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, investmentPayload{
		InvestmentID: inv.InvestmentID,
		AccountID:    inv.AccountID,
		Name:         inv.Name,
		AssetType:    inv.AssetType,
		Amount:       inv.Amount,
		PurchaseDate: inv.PurchaseDate.Format(dateLayout),
	})
}
