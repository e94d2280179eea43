package staking

import "fmt"

// DurationTier identifies one of the fixed lock lengths a stake can choose.
type DurationTier uint8

const (
	TierOneHundredDays DurationTier = iota
	TierOneHundredAndEightyDays
	TierThreeHundredAndSixtyDays
)

const secondsPerDay uint64 = 24 * 60 * 60

// Terms describes the policy attached to a duration tier: how long principal
// is locked and the total reward, in basis points of principal, paid out over
// the full lock period. Accrual between stake time and maturity is linear in
// elapsed time and stops growing at maturity.
type Terms struct {
	LockSeconds   uint64
	RewardRateBps uint64
}

// Rates are fixed at deploy time. Changing them requires a new deployment,
// which keeps rate governance out of the contract's attack surface.
var tierTerms = map[DurationTier]Terms{
	TierOneHundredDays:           {LockSeconds: 100 * secondsPerDay, RewardRateBps: 5600},
	TierOneHundredAndEightyDays:  {LockSeconds: 180 * secondsPerDay, RewardRateBps: 10800},
	TierThreeHundredAndSixtyDays: {LockSeconds: 360 * secondsPerDay, RewardRateBps: 18000},
}

// Valid reports whether the tier value is within the supported range.
func (t DurationTier) Valid() bool {
	_, ok := tierTerms[t]
	return ok
}

func (t DurationTier) String() string {
	switch t {
	case TierOneHundredDays:
		return "100d"
	case TierOneHundredAndEightyDays:
		return "180d"
	case TierThreeHundredAndSixtyDays:
		return "360d"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// ParseTier resolves the external tier names accepted at the protocol
// boundary. Unknown names are rejected here and never reach the engine.
func ParseTier(name string) (DurationTier, error) {
	switch name {
	case "100d", "OneHundredDays":
		return TierOneHundredDays, nil
	case "180d", "OneHundredAndEightyDays":
		return TierOneHundredAndEightyDays, nil
	case "360d", "ThreeHundredAndSixtyDays":
		return TierThreeHundredAndSixtyDays, nil
	default:
		return 0, fmt.Errorf("staking: unknown duration tier %q", name)
	}
}

// LookupTerms returns the lock period and reward rate for a tier. It is total
// over the closed set of valid tiers; the boolean is false for anything else.
func LookupTerms(t DurationTier) (Terms, bool) {
	terms, ok := tierTerms[t]
	return terms, ok
}
