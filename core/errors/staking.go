package errors

import stderrors "errors"

// Staking failure taxonomy. Every rejected precondition maps to exactly one of
// these sentinels so callers can distinguish failure causes without string
// matching. None of them are retried internally.
var (
	ErrUnauthorized              = stderrors.New("staking: unauthorized")
	ErrAlreadyInitialized        = stderrors.New("staking: already initialized")
	ErrNotInitialized            = stderrors.New("staking: not initialized")
	ErrPaused                    = stderrors.New("staking: contract paused")
	ErrInvalidAmount             = stderrors.New("staking: amount must be positive")
	ErrAlreadyStaked             = stderrors.New("staking: active stake exists")
	ErrNoStake                   = stderrors.New("staking: no stake record")
	ErrNotMatured                = stderrors.New("staking: lock period not over")
	ErrNothingToClaim            = stderrors.New("staking: nothing to claim")
	ErrInsufficientFunds         = stderrors.New("staking: insufficient balance")
	ErrInsufficientContractFunds = stderrors.New("staking: reward pool underfunded")
)
