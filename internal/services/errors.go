package services

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Sentinel errors shared across services. Handlers map these to HTTP
// statuses; everything else is treated as an internal failure.
var (
	// ErrValidation covers bad input: non-positive amounts, missing
	// parties on a ledger entry, unknown codes.
	ErrValidation = errors.New("validation failed")

	// ErrCyclicReferral is returned when a referral assignment would make a
	// user their own direct or transitive ancestor.
	ErrCyclicReferral = errors.New("referral assignment would create a cycle")

	// ErrInsufficientFunds is returned when a debit would drive a wallet
	// balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrencyConflict is a transient lock/version conflict. It is
	// retried a bounded number of times before being surfaced.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")

	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAccountInactive is returned when an operation requires an active
	// user account.
	ErrAccountInactive = errors.New("account is inactive")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err wraps ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInsufficientFunds reports whether err wraps ErrInsufficientFunds.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsAccountInactive reports whether err wraps ErrAccountInactive.
func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

// IsConcurrencyConflict reports whether err wraps ErrConcurrencyConflict.
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsCyclicReferral reports whether err wraps ErrCyclicReferral.
func IsCyclicReferral(err error) bool {
	return errors.Is(err, ErrCyclicReferral)
}

// isLockConflict reports whether err is a database serialization or lock
// failure that is safe to retry: postgres SQLSTATE 40001 (serialization
// failure), 40P01 (deadlock) or 55P03 (lock not available), or a busy
// sqlite database.
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
