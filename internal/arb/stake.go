package arb

import "math"

// StakeSplit is how a total stake is divided across two legs so both outcomes pay
// the same.
type StakeSplit struct {
	Stake1     float64 `json:"stake_1"`
	Stake2     float64 `json:"stake_2"`
	Return1    float64 `json:"return_1"`
	Return2    float64 `json:"return_2"`
	Guaranteed float64 `json:"guaranteed"`
	Profit     float64 `json:"profit"`
}

// SplitStake divides total across two legs with decimal multipliers d1 and d2:
// stake1 = total*d2/(d1+d2), stake2 = total-stake1. Non-positive inputs give a zero
// split.
func SplitStake(d1, d2, total float64) StakeSplit {
	if d1 <= 0 || d2 <= 0 || total <= 0 {
		return StakeSplit{}
	}
	s1 := total * d2 / (d1 + d2)
	s2 := total - s1
	r1, r2 := s1*d1, s2*d2
	g := math.Min(r1, r2)
	return StakeSplit{
		Stake1:     s1,
		Stake2:     s2,
		Return1:    r1,
		Return2:    r2,
		Guaranteed: g,
		Profit:     g - total,
	}
}
