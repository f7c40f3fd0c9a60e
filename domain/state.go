package domain

import (
	"fmt"

	"cosmossdk.io/math"
)

type DonationsReceived struct {
	Locked math.Uint `json:"locked"`
	Liquid math.Uint `json:"liquid"`
}

// EndowmentState is the ledger of a single endowment.
type EndowmentState struct {
	EndowmentID        uint32            `json:"endowment_id"`
	Balances           BalanceInfo       `json:"balances"`
	DonationsReceived  DonationsReceived `json:"donations_received"`
	ClosingEndowment   bool              `json:"closing_endowment"`
	ClosingBeneficiary *Beneficiary      `json:"closing_beneficiary,omitempty"`
}

func NewEndowmentState(id uint32) *EndowmentState {
	return &EndowmentState{
		EndowmentID: id,
		Balances:    NewBalanceInfo(),
		DonationsReceived: DonationsReceived{
			Locked: math.ZeroUint(),
			Liquid: math.ZeroUint(),
		},
	}
}

func (s *EndowmentState) Credit(accountType string, asset Asset) error {
	if err := ValidateAccountType(accountType); err != nil {
		return err
	}
	if Amount(asset.Amount).IsZero() {
		return nil
	}
	return s.Balances.Account(accountType).Add(asset)
}

// Debit fails with ErrorInsufficientFunds when the held amount for the exact asset
// key is smaller than requested.
func (s *EndowmentState) Debit(accountType string, asset Asset) error {
	if err := ValidateAccountType(accountType); err != nil {
		return err
	}
	if Amount(asset.Amount).IsZero() {
		return nil
	}
	return s.Balances.Account(accountType).Deduct(asset)
}

func (s *EndowmentState) BalanceOf(accountType string, info AssetInfo) math.Uint {
	return s.Balances.Account(accountType).Get(info)
}

func (s *EndowmentState) MoveBetweenAccounts(from, to string, asset Asset) error {
	if from == to {
		return fmt.Errorf("%w: cannot move funds into the same account", ErrorInvalidInputs)
	}
	if err := s.Debit(from, asset); err != nil {
		return err
	}
	return s.Credit(to, asset)
}

func (s *EndowmentState) AddDonation(accountType string, amount math.Uint) error {
	var err error
	if accountType == AccountTypeLocked {
		s.DonationsReceived.Locked, err = CheckedAdd(s.DonationsReceived.Locked, amount)
	} else {
		s.DonationsReceived.Liquid, err = CheckedAdd(s.DonationsReceived.Liquid, amount)
	}
	return err
}

// Drain zeroes both balances and returns what was held.
func (s *EndowmentState) Drain() BalanceInfo {
	held := s.Balances
	s.Balances = NewBalanceInfo()
	return held
}
