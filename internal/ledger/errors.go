package ledger

import "errors"

var (
	// ErrTransactionNotFound is returned by update/delete when the target
	// transaction does not exist. There is no fallback: mutating an unknown
	// transaction is a hard failure.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")

	// ErrInsufficientFunds is returned when a debit would push an account's
	// real balance below zero. Nothing is written when this is returned.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrCreditLimitExceeded is returned when a card charge would exceed the
	// card's configured credit limit.
	ErrCreditLimitExceeded = errors.New("ledger: credit limit exceeded")

	// ErrNoOwner is returned when a transaction references neither an
	// account nor a credit card.
	ErrNoOwner = errors.New("ledger: transaction must reference an account or a card")

	// ErrAmbiguousOwner is returned when a transaction references both an
	// account and a credit card.
	ErrAmbiguousOwner = errors.New("ledger: transaction cannot reference both an account and a card")
)
