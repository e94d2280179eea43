package staking

import (
	"math/big"
)

// Config is the contract's singleton state record. Exactly one exists per
// deployment; it is created by Initialize and mutated only by Pause/Unpause.
type Config struct {
	Admin  [20]byte
	Paused bool
}

// Clone returns a copy of the config so callers can mutate it without
// affecting the stored instance.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// StakeRecord tracks a single user's stake. There is at most one record per
// owner; a record outlives its stake (Active=false after withdrawal) so the
// audit trail survives, and a later Stake call resets it in place.
type StakeRecord struct {
	Owner          [20]byte
	Principal      *big.Int
	Tier           DurationTier
	StartTimestamp uint64
	ClaimedReward  *big.Int
	Active         bool
}

// Clone returns a deep copy of the stake record.
func (r *StakeRecord) Clone() *StakeRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Principal != nil {
		clone.Principal = new(big.Int).Set(r.Principal)
	} else {
		clone.Principal = big.NewInt(0)
	}
	if r.ClaimedReward != nil {
		clone.ClaimedReward = new(big.Int).Set(r.ClaimedReward)
	} else {
		clone.ClaimedReward = big.NewInt(0)
	}
	return &clone
}

// MaturityTimestamp returns the unix time at which the stake's lock period
// ends. Withdrawal is permitted at exactly this instant and later.
func (r *StakeRecord) MaturityTimestamp() uint64 {
	terms, ok := LookupTerms(r.Tier)
	if !ok {
		return 0
	}
	return r.StartTimestamp + terms.LockSeconds
}

func ensureRecordDefaults(r *StakeRecord) {
	if r.Principal == nil {
		r.Principal = big.NewInt(0)
	}
	if r.ClaimedReward == nil {
		r.ClaimedReward = big.NewInt(0)
	}
}

// AccruedReward computes the reward earned by the record at the supplied
// time: principal * rateBps * min(elapsed, lock) / (lock * 10000), floored.
// All arithmetic is integer big.Int; accrual caps at maturity and never grows
// afterwards.
func (r *StakeRecord) AccruedReward(now uint64) *big.Int {
	terms, ok := LookupTerms(r.Tier)
	if !ok || r.Principal == nil || r.Principal.Sign() <= 0 || terms.LockSeconds == 0 {
		return big.NewInt(0)
	}
	if now <= r.StartTimestamp {
		return big.NewInt(0)
	}
	elapsed := now - r.StartTimestamp
	if elapsed > terms.LockSeconds {
		elapsed = terms.LockSeconds
	}
	accrued := new(big.Int).Set(r.Principal)
	accrued.Mul(accrued, new(big.Int).SetUint64(terms.RewardRateBps))
	accrued.Mul(accrued, new(big.Int).SetUint64(elapsed))
	denom := new(big.Int).Mul(new(big.Int).SetUint64(terms.LockSeconds), big.NewInt(10_000))
	return accrued.Quo(accrued, denom)
}
