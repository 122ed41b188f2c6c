package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// TransferRequest moves money between two accounts of the same user, e.g.
// funding an investment account or redeeming back into a bank account.
type TransferRequest struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal // positive
	Date          time.Time
	Description   string

	// Action tags both legs when the movement funds or redeems an
	// investment; leave empty for a plain transfer.
	Action domain.InvestmentAction
}

// TransferResult holds the two linked ledger entries of a transfer.
type TransferResult struct {
	Debit  *Mutation
	Credit *Mutation
}

var errInvalidTransfer = errors.New("ledger: transfer requires two distinct accounts and a positive amount")

// Transfer creates two linked ledger entries sharing a correlation group id:
// a debit leg on the source account and a credit leg on the destination.
// The source's real balance (initial plus net of history) must cover the
// amount before any write happens. No trial-balance invariant is enforced
// beyond the shared group id pairing the legs.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.FromAccountID == "" || req.ToAccountID == "" || req.FromAccountID == req.ToAccountID || !req.Amount.IsPositive() {
		return nil, errInvalidTransfer
	}

	unlock := s.lockUser(req.UserID)
	defer unlock()

	real, err := s.RealBalance(ctx, req.FromAccountID)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	if real.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}

	group := uuid.NewString()
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	debit := &domain.Transaction{
		UserID:           req.UserID,
		Description:      req.Description,
		Amount:           req.Amount.Neg(),
		Type:             domain.TransactionTypeTransfer,
		Date:             date,
		AccountID:        req.FromAccountID,
		InvestmentAction: req.Action,
		TransferGroupID:  group,
	}
	credit := &domain.Transaction{
		UserID:           req.UserID,
		Description:      req.Description,
		Amount:           req.Amount,
		Type:             domain.TransactionTypeTransfer,
		Date:             date,
		AccountID:        req.ToAccountID,
		InvestmentAction: req.Action,
		TransferGroupID:  group,
	}

	debitMut, err := s.createLocked(ctx, debit)
	if err != nil {
		return nil, fmt.Errorf("Transfer: debit leg: %w", err)
	}
	creditMut, err := s.createLocked(ctx, credit)
	if err != nil {
		return nil, fmt.Errorf("Transfer: credit leg: %w", err)
	}

	s.log.Info().
		Str("group_id", group).
		Str("from", req.FromAccountID).
		Str("to", req.ToAccountID).
		Str("amount", req.Amount.String()).
		Msg("Transfer recorded")

	return &TransferResult{Debit: debitMut, Credit: creditMut}, nil
}
