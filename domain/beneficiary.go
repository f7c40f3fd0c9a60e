package domain

import "fmt"

const (
	BeneficiaryWallet    = "wallet"
	BeneficiaryEndowment = "endowment"
	BeneficiaryIndexFund = "index_fund"
)

// Beneficiary is the resolved recipient of a closing endowment. Exactly one of
// Address (wallet) or ID (endowment, index fund) is meaningful, selected by Kind.
type Beneficiary struct {
	Kind    string `json:"kind"`
	Address string `json:"address,omitempty"`
	ID      uint32 `json:"id,omitempty"`
}

func WalletBeneficiary(address string) Beneficiary {
	return Beneficiary{Kind: BeneficiaryWallet, Address: address}
}

func EndowmentBeneficiary(id uint32) Beneficiary {
	return Beneficiary{Kind: BeneficiaryEndowment, ID: id}
}

func IndexFundBeneficiary(id uint32) Beneficiary {
	return Beneficiary{Kind: BeneficiaryIndexFund, ID: id}
}

func (b Beneficiary) Validate() error {
	switch b.Kind {
	case BeneficiaryWallet:
		if b.Address == "" {
			return fmt.Errorf("%w: wallet beneficiary without address", ErrorInvalidInputs)
		}
	case BeneficiaryEndowment, BeneficiaryIndexFund:
		if b.Address != "" {
			return fmt.Errorf("%w: %v beneficiary must not carry an address", ErrorInvalidInputs, b.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown beneficiary kind %q", ErrorInvalidInputs, b.Kind)
	}
	return nil
}

func (b Beneficiary) String() string {
	if b.Kind == BeneficiaryWallet {
		return "wallet:" + b.Address
	}
	return fmt.Sprintf("%v:%v", b.Kind, b.ID)
}
