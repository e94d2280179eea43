package events

import (
	"math/big"
	"strconv"

	"github.com/cenwadike/voip-staking/core/types"
	"github.com/cenwadike/voip-staking/crypto"
)

const (
	// TypeStakingInitialized marks the one-time creation of the contract config.
	TypeStakingInitialized = "staking.initialized"
	// TypeStakingStaked captures a new or reset stake position.
	TypeStakingStaked = "staking.staked"
	// TypeStakingRewardsClaimed is emitted when accrued rewards are paid out.
	TypeStakingRewardsClaimed = "staking.rewardsClaimed"
	// TypeStakingWithdrawn marks a matured stake returning principal to its owner.
	TypeStakingWithdrawn = "staking.withdrawn"
	// TypeStakingPaused signals that the admin halted new staking.
	TypeStakingPaused = "staking.paused"
	// TypeStakingUnpaused signals that the admin resumed staking.
	TypeStakingUnpaused = "staking.unpaused"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddr(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.VoipPrefix, addr[:]).String()
}

// StakingInitialized captures the creation of the config record.
type StakingInitialized struct {
	Admin [20]byte
}

// EventType satisfies the Event interface.
func (StakingInitialized) EventType() string { return TypeStakingInitialized }

// Event converts the structured payload into a broadcastable event.
func (e StakingInitialized) Event() *types.Event {
	return &types.Event{Type: TypeStakingInitialized, Attributes: map[string]string{
		"admin": formatAddr(e.Admin),
	}}
}

// StakingStaked captures the principal locked by a stake operation.
type StakingStaked struct {
	Owner     [20]byte
	Amount    *big.Int
	Tier      string
	StartedAt uint64
}

// EventType satisfies the Event interface.
func (StakingStaked) EventType() string { return TypeStakingStaked }

// Event converts the structured payload into a broadcastable event.
func (e StakingStaked) Event() *types.Event {
	return &types.Event{Type: TypeStakingStaked, Attributes: map[string]string{
		"owner":     formatAddr(e.Owner),
		"amount":    formatAmount(e.Amount),
		"tier":      e.Tier,
		"startedAt": strconv.FormatUint(e.StartedAt, 10),
	}}
}

// StakingRewardsClaimed captures a reward payout for an account.
type StakingRewardsClaimed struct {
	Owner        [20]byte
	Paid         *big.Int
	TotalClaimed *big.Int
}

// EventType satisfies the Event interface.
func (StakingRewardsClaimed) EventType() string { return TypeStakingRewardsClaimed }

// Event converts the structured payload into a broadcastable event.
func (e StakingRewardsClaimed) Event() *types.Event {
	return &types.Event{Type: TypeStakingRewardsClaimed, Attributes: map[string]string{
		"owner":        formatAddr(e.Owner),
		"paid":         formatAmount(e.Paid),
		"totalClaimed": formatAmount(e.TotalClaimed),
	}}
}

// StakingWithdrawn captures a matured stake being closed out.
type StakingWithdrawn struct {
	Owner       [20]byte
	Principal   *big.Int
	FinalReward *big.Int
}

// EventType satisfies the Event interface.
func (StakingWithdrawn) EventType() string { return TypeStakingWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e StakingWithdrawn) Event() *types.Event {
	return &types.Event{Type: TypeStakingWithdrawn, Attributes: map[string]string{
		"owner":       formatAddr(e.Owner),
		"principal":   formatAmount(e.Principal),
		"finalReward": formatAmount(e.FinalReward),
	}}
}

// StakingPaused records an admin pause of new staking activity.
type StakingPaused struct {
	Admin [20]byte
}

// EventType satisfies the Event interface.
func (StakingPaused) EventType() string { return TypeStakingPaused }

// Event converts the structured payload into a broadcastable event.
func (e StakingPaused) Event() *types.Event {
	return &types.Event{Type: TypeStakingPaused, Attributes: map[string]string{
		"admin": formatAddr(e.Admin),
	}}
}

// StakingUnpaused records an admin resume of staking activity.
type StakingUnpaused struct {
	Admin [20]byte
}

// EventType satisfies the Event interface.
func (StakingUnpaused) EventType() string { return TypeStakingUnpaused }

// Event converts the structured payload into a broadcastable event.
func (e StakingUnpaused) Event() *types.Event {
	return &types.Event{Type: TypeStakingUnpaused, Attributes: map[string]string{
		"admin": formatAddr(e.Admin),
	}}
}
