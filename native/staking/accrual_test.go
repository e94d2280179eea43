package staking

import (
	"math/big"
	"testing"
)

func TestAccruedRewardLinearAndCapped(t *testing.T) {
	record := &StakeRecord{
		Owner:          [20]byte{0x01},
		Principal:      big.NewInt(1000),
		Tier:           TierOneHundredDays,
		StartTimestamp: 1_000_000,
		ClaimedReward:  big.NewInt(0),
		Active:         true,
	}
	lock := 100 * secondsPerDay

	cases := []struct {
		name string
		at   uint64
		want int64
	}{
		{"at stake time", 1_000_000, 0},
		{"one minute in, floors to zero", 1_000_000 + 60, 0},
		{"half way", 1_000_000 + lock/2, 280},
		{"at maturity", 1_000_000 + lock, 560},
		{"long after maturity, capped", 1_000_000 + 10*lock, 560},
	}
	for _, tc := range cases {
		got := record.AccruedReward(tc.at)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("%s: accrued %s, want %d", tc.name, got, tc.want)
		}
	}
}

func TestAccruedRewardFullTermPerTier(t *testing.T) {
	cases := []struct {
		tier DurationTier
		want int64
	}{
		{TierOneHundredDays, 560},
		{TierOneHundredAndEightyDays, 1080},
		{TierThreeHundredAndSixtyDays, 1800},
	}
	for _, tc := range cases {
		record := &StakeRecord{
			Principal:     big.NewInt(1000),
			Tier:          tc.tier,
			ClaimedReward: big.NewInt(0),
			Active:        true,
		}
		got := record.AccruedReward(record.MaturityTimestamp())
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("tier %s: full-term accrual %s, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestAccruedRewardNoTimeTravel(t *testing.T) {
	record := &StakeRecord{
		Principal:      big.NewInt(5000),
		Tier:           TierThreeHundredAndSixtyDays,
		StartTimestamp: 2_000_000,
		ClaimedReward:  big.NewInt(0),
		Active:         true,
	}
	if got := record.AccruedReward(1_999_999); got.Sign() != 0 {
		t.Fatalf("accrual before start should be zero, got %s", got)
	}
}

func TestAccruedRewardZeroPrincipal(t *testing.T) {
	record := &StakeRecord{
		Principal:     big.NewInt(0),
		Tier:          TierOneHundredDays,
		ClaimedReward: big.NewInt(0),
	}
	if got := record.AccruedReward(record.MaturityTimestamp()); got.Sign() != 0 {
		t.Fatalf("zero principal should accrue nothing, got %s", got)
	}
}
