package staking

import (
	stderrors "errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenwadike/voip-staking/core/errors"
	"github.com/cenwadike/voip-staking/core/events"
)

var errNilState = stderrors.New("staking engine: state not configured")

// engineState is the narrow view of persistent state the engine needs. The
// concrete implementation stages every mutation in an overlay so that a
// failing operation leaves no trace; the engine itself never needs to unwind.
type engineState interface {
	StakingConfig() (*Config, bool, error)
	PutStakingConfig(*Config) error
	StakeRecord(owner [20]byte) (*StakeRecord, bool, error)
	PutStakeRecord(*StakeRecord) error

	// Custody adapter boundary: moves tokens on the external ledger.
	// Transfer fails with errors.ErrInsufficientFunds when the source
	// balance cannot cover the amount, and moves nothing in that case.
	Transfer(from, to [20]byte, amount *big.Int) error
	BalanceOf(addr [20]byte) (*big.Int, error)
}

// Engine applies the staking state machine against persistent records,
// moving tokens through the custody vault for every balance change. All six
// operations validate their preconditions, mutate records and invoke the
// custody adapter; the surrounding node commits or discards the whole set of
// effects atomically.
type Engine struct {
	state   engineState
	emitter events.Emitter
	vault   [20]byte
	nowFn   func() uint64
}

// NewEngine creates a staking engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine(vault [20]byte) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		vault:   vault,
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// Vault returns the address holding the contract's custody balance.
func (e *Engine) Vault() [20]byte { return e.vault }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) requireState() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) loadConfig() (*Config, error) {
	cfg, ok, err := e.state.StakingConfig()
	if err != nil {
		return nil, fmt.Errorf("staking: load config: %w", err)
	}
	if !ok {
		return nil, errors.ErrNotInitialized
	}
	return cfg, nil
}

// Initialize creates the singleton Config record with the caller as admin.
// A second call always fails: the record is never overwritten.
func (e *Engine) Initialize(admin [20]byte) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if _, ok, err := e.state.StakingConfig(); err != nil {
		return fmt.Errorf("staking: load config: %w", err)
	} else if ok {
		return errors.ErrAlreadyInitialized
	}
	if err := e.state.PutStakingConfig(&Config{Admin: admin, Paused: false}); err != nil {
		return fmt.Errorf("staking: store config: %w", err)
	}
	e.emit(events.StakingInitialized{Admin: admin})
	return nil
}

// Pause sets the global pause flag, gating new Stake operations. Only the
// admin may pause. Pausing an already-paused contract succeeds and leaves
// state untouched.
func (e *Engine) Pause(caller [20]byte) error {
	return e.setPaused(caller, true)
}

// Unpause clears the global pause flag. Only the admin may unpause.
// Unpausing a running contract succeeds and leaves state untouched.
func (e *Engine) Unpause(caller [20]byte) error {
	return e.setPaused(caller, false)
}

func (e *Engine) setPaused(caller [20]byte, paused bool) error {
	if err := e.requireState(); err != nil {
		return err
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Admin != caller {
		return errors.ErrUnauthorized
	}
	if cfg.Paused == paused {
		return nil
	}
	cfg.Paused = paused
	if err := e.state.PutStakingConfig(cfg); err != nil {
		return fmt.Errorf("staking: store config: %w", err)
	}
	if paused {
		e.emit(events.StakingPaused{Admin: caller})
	} else {
		e.emit(events.StakingUnpaused{Admin: caller})
	}
	return nil
}

// Stake locks amount of the caller's tokens for the chosen tier. The caller
// must have no active stake; an inactive (withdrawn) record is reset in
// place. The principal moves into the custody vault before the record is
// written, and the whole operation aborts if the caller cannot fund it.
func (e *Engine) Stake(caller [20]byte, amount *big.Int, tier DurationTier) (*StakeRecord, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, errors.ErrPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("staking: unknown duration tier %d", uint8(tier))
	}
	if record, ok, err := e.state.StakeRecord(caller); err != nil {
		return nil, fmt.Errorf("staking: load record: %w", err)
	} else if ok && record.Active {
		return nil, errors.ErrAlreadyStaked
	}
	if err := e.state.Transfer(caller, e.vault, amount); err != nil {
		return nil, err
	}
	record := &StakeRecord{
		Owner:          caller,
		Principal:      new(big.Int).Set(amount),
		Tier:           tier,
		StartTimestamp: e.now(),
		ClaimedReward:  big.NewInt(0),
		Active:         true,
	}
	if err := e.state.PutStakeRecord(record); err != nil {
		return nil, fmt.Errorf("staking: store record: %w", err)
	}
	e.emit(events.StakingStaked{
		Owner:     caller,
		Amount:    new(big.Int).Set(amount),
		Tier:      tier.String(),
		StartedAt: record.StartTimestamp,
	})
	return record.Clone(), nil
}

// Claim pays out the reward accrued since the last claim. Accrual is linear
// in elapsed time and caps at maturity. A zero payable amount is rejected
// rather than silently moving nothing.
func (e *Engine) Claim(caller [20]byte) (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	record, err := e.loadActiveRecord(caller)
	if err != nil {
		return nil, err
	}
	now := e.now()
	accrued := record.AccruedReward(now)
	payable := new(big.Int).Sub(accrued, record.ClaimedReward)
	if payable.Sign() <= 0 {
		return nil, errors.ErrNothingToClaim
	}
	if err := e.payFromVault(caller, payable); err != nil {
		return nil, err
	}
	record.ClaimedReward = accrued
	if err := e.state.PutStakeRecord(record); err != nil {
		return nil, fmt.Errorf("staking: store record: %w", err)
	}
	e.emit(events.StakingRewardsClaimed{
		Owner:        caller,
		Paid:         new(big.Int).Set(payable),
		TotalClaimed: new(big.Int).Set(accrued),
	})
	return payable, nil
}

// WithdrawReceipt reports the amounts returned to the owner by a withdrawal.
type WithdrawReceipt struct {
	Principal   *big.Int
	FinalReward *big.Int
}

// Withdraw settles any final unclaimed reward and returns the principal to
// the owner once the lock period has fully elapsed. The bound is inclusive:
// withdrawal at exactly start+lockSeconds succeeds. The record stays behind
// with Active=false until a fresh Stake resets it.
func (e *Engine) Withdraw(caller [20]byte) (*WithdrawReceipt, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	record, err := e.loadActiveRecord(caller)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if now < record.MaturityTimestamp() {
		return nil, errors.ErrNotMatured
	}
	accrued := record.AccruedReward(now)
	finalReward := new(big.Int).Sub(accrued, record.ClaimedReward)
	if finalReward.Sign() > 0 {
		if err := e.payFromVault(caller, finalReward); err != nil {
			return nil, err
		}
		record.ClaimedReward = accrued
	} else {
		finalReward = big.NewInt(0)
	}
	principal := new(big.Int).Set(record.Principal)
	if err := e.payFromVault(caller, principal); err != nil {
		return nil, err
	}
	record.Principal = big.NewInt(0)
	record.Active = false
	if err := e.state.PutStakeRecord(record); err != nil {
		return nil, fmt.Errorf("staking: store record: %w", err)
	}
	e.emit(events.StakingWithdrawn{
		Owner:       caller,
		Principal:   new(big.Int).Set(principal),
		FinalReward: new(big.Int).Set(finalReward),
	})
	return &WithdrawReceipt{Principal: principal, FinalReward: finalReward}, nil
}

// Position describes a stake record together with its accrual standing at a
// point in time. Used by read-only queries; computing it mutates nothing.
type Position struct {
	Record    *StakeRecord
	Accrued   *big.Int
	Payable   *big.Int
	MaturesAt uint64
}

// PositionOf returns the caller's record and reward standing at the current
// time. It fails with ErrNoStake when no record has ever been created.
func (e *Engine) PositionOf(owner [20]byte) (*Position, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	record, ok, err := e.state.StakeRecord(owner)
	if err != nil {
		return nil, fmt.Errorf("staking: load record: %w", err)
	}
	if !ok {
		return nil, errors.ErrNoStake
	}
	ensureRecordDefaults(record)
	accrued := record.AccruedReward(e.now())
	payable := new(big.Int).Sub(accrued, record.ClaimedReward)
	if payable.Sign() < 0 {
		payable = big.NewInt(0)
	}
	return &Position{
		Record:    record.Clone(),
		Accrued:   accrued,
		Payable:   payable,
		MaturesAt: record.MaturityTimestamp(),
	}, nil
}

// ConfigOf returns the current contract configuration.
func (e *Engine) ConfigOf() (*Config, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

func (e *Engine) loadActiveRecord(caller [20]byte) (*StakeRecord, error) {
	record, ok, err := e.state.StakeRecord(caller)
	if err != nil {
		return nil, fmt.Errorf("staking: load record: %w", err)
	}
	if !ok || !record.Active {
		return nil, errors.ErrNoStake
	}
	if record.Owner != caller {
		return nil, errors.ErrUnauthorized
	}
	ensureRecordDefaults(record)
	return record, nil
}

// payFromVault moves tokens out of the custody balance, translating a ledger
// shortfall into the pool-side error kind so callers can tell an underfunded
// reward pool apart from a user-side funding failure.
func (e *Engine) payFromVault(to [20]byte, amount *big.Int) error {
	if err := e.state.Transfer(e.vault, to, amount); err != nil {
		if stderrors.Is(err, errors.ErrInsufficientFunds) {
			return errors.ErrInsufficientContractFunds
		}
		return err
	}
	return nil
}
