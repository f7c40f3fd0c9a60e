package domain

import (
	"fmt"
	"time"

	"cosmossdk.io/math"
)

const (
	EndowmentTypeCharity = "charity"
	EndowmentTypeNormal  = "normal"
)

const (
	EndowmentStatusInactive = "inactive"
	EndowmentStatusApproved = "approved"
	EndowmentStatusFrozen   = "frozen"
	EndowmentStatusClosed   = "closed"
)

type EndowmentFee struct {
	PayoutAddress string         `json:"payout_address"`
	Percentage    math.LegacyDec `json:"percentage"`
	Active        bool           `json:"active"`
}

func (fee *EndowmentFee) Validate() error {
	if fee == nil {
		return nil
	}
	if fee.PayoutAddress == "" {
		return fmt.Errorf("%w: fee without payout address", ErrorInvalidInputs)
	}
	if fee.Percentage.IsNil() || fee.Percentage.IsNegative() || fee.Percentage.GT(math.LegacyOneDec()) {
		return fmt.Errorf("%w: fee percentage must be within [0, 1]", ErrorInvalidInputs)
	}
	return nil
}

// Applies reports whether the fee is configured, active and non-zero.
func (fee *EndowmentFee) Applies() bool {
	return fee != nil && fee.Active && !fee.Percentage.IsNil() && fee.Percentage.IsPositive()
}

type EndowmentFees struct {
	Deposit  *EndowmentFee `json:"deposit_fee,omitempty"`
	Withdraw *EndowmentFee `json:"withdraw_fee,omitempty"`
	Earnings *EndowmentFee `json:"earnings_fee,omitempty"`
	Aum      *EndowmentFee `json:"aum_fee,omitempty"`
}

func (fees EndowmentFees) Validate() error {
	for _, fee := range []*EndowmentFee{fees.Deposit, fees.Withdraw, fees.Earnings, fees.Aum} {
		if err := fee.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SplitDetails bounds the share of a deposit that goes to the liquid account.
type SplitDetails struct {
	Min     math.LegacyDec `json:"min"`
	Max     math.LegacyDec `json:"max"`
	Default math.LegacyDec `json:"default"`
}

func (s SplitDetails) Validate() error {
	zero, one := math.LegacyZeroDec(), math.LegacyOneDec()
	if s.Min.IsNil() || s.Max.IsNil() || s.Default.IsNil() {
		return fmt.Errorf("%w: incomplete split details", ErrorInvalidInputs)
	}
	if s.Min.LT(zero) || s.Max.GT(one) || s.Min.GT(s.Max) || s.Default.LT(s.Min) || s.Default.GT(s.Max) {
		return fmt.Errorf("%w: split details must satisfy 0 <= min <= default <= max <= 1", ErrorInvalidInputs)
	}
	return nil
}

// AccountStrategies holds the reassignable strategy lists per account type.
// Invested only grows: every key that ever received funds stays there.
type AccountStrategies struct {
	Locked   []string `json:"locked"`
	Liquid   []string `json:"liquid"`
	Invested []string `json:"invested"`
}

func (s *AccountStrategies) For(accountType string) []string {
	if accountType == AccountTypeLocked {
		return s.Locked
	}
	return s.Liquid
}

func (s *AccountStrategies) Set(accountType string, keys []string) {
	if accountType == AccountTypeLocked {
		s.Locked = keys
	} else {
		s.Liquid = keys
	}
}

// Record adds key to the account's list and to the invested keys unless it is
// already present.
func (s *AccountStrategies) Record(accountType, key string) {
	if !contains(s.Invested, key) {
		s.Invested = append(s.Invested, key)
	}
	list := s.For(accountType)
	if contains(list, key) {
		return
	}
	s.Set(accountType, append(list, key))
}

// All returns locked ∪ liquid without duplicates, locked keys first.
func (s *AccountStrategies) All() []string {
	return union(s.Locked, s.Liquid)
}

// Ever returns every key the endowment is assigned to or has invested in,
// assigned keys first.
func (s *AccountStrategies) Ever() []string {
	return union(s.Locked, s.Liquid, s.Invested)
}

func union(lists ...[]string) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)
	for _, list := range lists {
		for _, k := range list {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

type Endowment struct {
	ID                       uint32            `json:"id"`
	Owner                    string            `json:"owner"`
	Name                     string            `json:"name"`
	EndowmentType            string            `json:"endowment_type"`
	Status                   string            `json:"status"`
	MaturityTime             *uint64           `json:"maturity_time,omitempty"`
	Strategies               AccountStrategies `json:"strategies"`
	PendingRedemptions       uint32            `json:"pending_redemptions"`
	DepositApproved          bool              `json:"deposit_approved"`
	WithdrawApproved         bool              `json:"withdraw_approved"`
	Fees                     EndowmentFees     `json:"fees"`
	SplitToLiquid            *SplitDetails     `json:"split_to_liquid,omitempty"`
	IgnoreUserSplits         bool              `json:"ignore_user_splits"`
	WhitelistedBeneficiaries []string          `json:"whitelisted_beneficiaries"`
	MaturityWhitelist        []string          `json:"maturity_whitelist"`
	CreateTime               time.Time         `json:"create_time"`
}

func (e *Endowment) IsCharity() bool {
	return e.EndowmentType == EndowmentTypeCharity
}

func (e *Endowment) IsClosed() bool {
	return e.Status == EndowmentStatusClosed
}

// IsMature reports whether the maturity time is set and has passed.
func (e *Endowment) IsMature(now uint64) bool {
	return e.MaturityTime != nil && now >= *e.MaturityTime
}

func (e *Endowment) ApplyStatus(status string) error {
	switch status {
	case EndowmentStatusInactive:
		e.DepositApproved, e.WithdrawApproved = false, false
	case EndowmentStatusApproved:
		e.DepositApproved, e.WithdrawApproved = true, true
	case EndowmentStatusFrozen:
		e.DepositApproved, e.WithdrawApproved = true, false
	case EndowmentStatusClosed:
		e.DepositApproved, e.WithdrawApproved = false, false
	default:
		return fmt.Errorf("%w: unknown endowment status %q", ErrorInvalidInputs, status)
	}
	e.Status = status
	return nil
}

func ValidateEndowmentType(endowmentType string) error {
	if endowmentType != EndowmentTypeCharity && endowmentType != EndowmentTypeNormal {
		return fmt.Errorf("%w: unknown endowment type %q", ErrorInvalidInputs, endowmentType)
	}
	return nil
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func (e *Endowment) IsBeneficiaryWhitelisted(address string) bool {
	return contains(e.WhitelistedBeneficiaries, address)
}

func (e *Endowment) IsMaturityWhitelisted(address string) bool {
	return contains(e.MaturityWhitelist, address)
}
