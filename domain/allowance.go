package domain

import (
	"fmt"

	"cosmossdk.io/math"
)

// Expiration follows the cw20 convention: at a block height, at a unix time, or never.
type Expiration struct {
	AtHeight uint64 `json:"at_height,omitempty"`
	AtTime   uint64 `json:"at_time,omitempty"`
}

func (e Expiration) IsExpired(env Env) bool {
	if e.AtHeight != 0 && env.BlockHeight >= e.AtHeight {
		return true
	}
	if e.AtTime != 0 && env.BlockTime >= e.AtTime {
		return true
	}
	return false
}

// Allowance is keyed by (owner, spender). Assets and Expires are index aligned and
// an asset appears at most once.
type Allowance struct {
	Owner   string       `json:"owner"`
	Spender string       `json:"spender"`
	Assets  []Asset      `json:"assets"`
	Expires []Expiration `json:"expires"`
}

func NewAllowance(owner, spender string) *Allowance {
	return &Allowance{Owner: owner, Spender: spender, Assets: []Asset{}, Expires: []Expiration{}}
}

func (a *Allowance) index(info AssetInfo) int {
	for i, asset := range a.Assets {
		if asset.Info == info {
			return i
		}
	}
	return -1
}

// Grant adds to an existing entry and overwrites its expiration, or appends a new one.
func (a *Allowance) Grant(asset Asset, expires Expiration) error {
	if i := a.index(asset.Info); i >= 0 {
		sum, err := CheckedAdd(a.Assets[i].Amount, asset.Amount)
		if err != nil {
			return err
		}
		a.Assets[i].Amount = sum
		a.Expires[i] = expires
		return nil
	}
	a.Assets = append(a.Assets, Asset{Info: asset.Info, Amount: Amount(asset.Amount)})
	a.Expires = append(a.Expires, expires)
	return nil
}

// Revoke subtracts from an existing entry. Missing entries and underflow both
// report ErrorNoAllowance.
func (a *Allowance) Revoke(asset Asset) error {
	i := a.index(asset.Info)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrorNoAllowance, asset.Info)
	}
	left, err := CheckedSub(a.Assets[i].Amount, asset.Amount)
	if err != nil {
		return fmt.Errorf("%w: revoking more than granted for %v", ErrorNoAllowance, asset.Info)
	}
	a.Assets[i].Amount = left
	return nil
}

// Spendable returns the allowed amount for info, failing when the entry is
// missing or expired.
func (a *Allowance) Spendable(info AssetInfo, env Env) (math.Uint, error) {
	i := a.index(info)
	if i < 0 {
		return math.ZeroUint(), fmt.Errorf("%w: %v", ErrorNoAllowance, info)
	}
	if a.Expires[i].IsExpired(env) {
		return math.ZeroUint(), fmt.Errorf("%w: allowance for %v expired", ErrorNoAllowance, info)
	}
	return Amount(a.Assets[i].Amount), nil
}

func (a *Allowance) Spend(asset Asset, env Env) error {
	allowed, err := a.Spendable(asset.Info, env)
	if err != nil {
		return err
	}
	if allowed.LT(Amount(asset.Amount)) {
		return fmt.Errorf("%w: allowance of %v is %v, requested %v", ErrorInsufficientFunds, asset.Info, allowed, Amount(asset.Amount))
	}
	a.Assets[a.index(asset.Info)].Amount = allowed.Sub(Amount(asset.Amount))
	return nil
}
