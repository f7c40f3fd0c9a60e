package domain

import (
	"cosmossdk.io/math"
)

type AcceptedTokens struct {
	Native []string `json:"native"`
	Cw20   []string `json:"cw20"`
}

func (tokens AcceptedTokens) Accepts(info AssetInfo) bool {
	if info.IsNative() {
		return contains(tokens.Native, info.Ref)
	}
	return contains(tokens.Cw20, info.Ref)
}

// RegistrarConfig is the subset of the registrar's global configuration the
// accounts engine depends on.
type RegistrarConfig struct {
	Treasury           string         `json:"treasury"`
	IndexFundAddress   string         `json:"index_fund_address"`
	AcceptedTokens     AcceptedTokens `json:"accepted_tokens"`
	SplitToLiquid      SplitDetails   `json:"split_to_liquid"`
	WithdrawFeeCharity math.LegacyDec `json:"withdraw_fee_charity"`
	WithdrawFeeNormal  math.LegacyDec `json:"withdraw_fee_normal"`
}

// WithdrawRate returns the registrar's withdraw fee for the given endowment type.
func (c *RegistrarConfig) WithdrawRate(endowmentType string) math.LegacyDec {
	if endowmentType == EndowmentTypeCharity {
		return c.WithdrawFeeCharity
	}
	return c.WithdrawFeeNormal
}

// IndexFund is a registry entry grouping endowments that share index fund
// donations.
type IndexFund struct {
	ID      uint32   `json:"id" mapstructure:"id"`
	Name    string   `json:"name" mapstructure:"name"`
	Members []uint32 `json:"members" mapstructure:"members"`
}

// Excluding returns the members of the fund other than id.
func (fund *IndexFund) Excluding(id uint32) []uint32 {
	members := make([]uint32, 0, len(fund.Members))
	for _, m := range fund.Members {
		if m != id {
			members = append(members, m)
		}
	}
	return members
}

func (fund *IndexFund) Contains(id uint32) bool {
	for _, m := range fund.Members {
		if m == id {
			return true
		}
	}
	return false
}
