package storage

import "errors"

// ErrAccountNotFound is returned when a user has no Aura account yet.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when opening an account that is already open.
var ErrAccountExists = errors.New("account already exists")

// ErrInsufficientFunds is returned when a debit would take a balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrVersionConflict is returned when an account or bet changed between read and write.
// Callers re-read and retry.
var ErrVersionConflict = errors.New("version conflict")

// ErrBonusAlreadyClaimed is returned when the daily bonus for a date was already granted.
var ErrBonusAlreadyClaimed = errors.New("daily bonus already claimed")

// ErrBetNotFound is returned when a bet does not exist.
var ErrBetNotFound = errors.New("bet not found")

// ErrBetNotActive is returned when a write requires an active bet before its deadline.
var ErrBetNotActive = errors.New("bet is not active")

// ErrAlreadyStaked is returned when a user already holds a stake on a bet.
var ErrAlreadyStaked = errors.New("user already staked on this bet")

// ErrStakeNotFound is returned when a user holds no stake on a bet.
var ErrStakeNotFound = errors.New("stake not found")

// ErrProofNotFound is returned when a proof does not exist.
var ErrProofNotFound = errors.New("proof not found")

// ErrAlreadyResolved is returned when a bet already left the active state.
var ErrAlreadyResolved = errors.New("bet already resolved")

// ErrResolutionNotFound is returned when a bet has no resolution yet.
var ErrResolutionNotFound = errors.New("resolution not found")

// ErrBatchTooLarge is returned when an atomic write exceeds what the backend can commit at once.
var ErrBatchTooLarge = errors.New("atomic batch too large")
