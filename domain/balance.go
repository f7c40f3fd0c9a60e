package domain

import (
	"fmt"

	"cosmossdk.io/math"
)

const (
	AccountTypeLocked = "locked"
	AccountTypeLiquid = "liquid"
)

func ValidateAccountType(accountType string) error {
	if accountType != AccountTypeLocked && accountType != AccountTypeLiquid {
		return fmt.Errorf("%w: unknown account type %q", ErrorInvalidInputs, accountType)
	}
	return nil
}

// GenericBalance keeps native coins keyed by denom and cw20 tokens keyed by
// contract address. Both lists keep insertion order and hold each key once.
type GenericBalance struct {
	Native []Coin     `json:"native"`
	Cw20   []Cw20Coin `json:"cw20"`
}

func NewGenericBalance() GenericBalance {
	return GenericBalance{Native: []Coin{}, Cw20: []Cw20Coin{}}
}

func (b *GenericBalance) Get(info AssetInfo) math.Uint {
	if info.IsNative() {
		for _, c := range b.Native {
			if c.Denom == info.Ref {
				return Amount(c.Amount)
			}
		}
		return math.ZeroUint()
	}
	for _, c := range b.Cw20 {
		if c.Address == info.Ref {
			return Amount(c.Amount)
		}
	}
	return math.ZeroUint()
}

func (b *GenericBalance) Add(asset Asset) error {
	if info := asset.Info; info.IsNative() {
		for i, c := range b.Native {
			if c.Denom == info.Ref {
				sum, err := CheckedAdd(c.Amount, asset.Amount)
				if err != nil {
					return err
				}
				b.Native[i].Amount = sum
				return nil
			}
		}
		b.Native = append(b.Native, Coin{Denom: info.Ref, Amount: Amount(asset.Amount)})
		return nil
	}

	for i, c := range b.Cw20 {
		if c.Address == asset.Info.Ref {
			sum, err := CheckedAdd(c.Amount, asset.Amount)
			if err != nil {
				return err
			}
			b.Cw20[i].Amount = sum
			return nil
		}
	}
	b.Cw20 = append(b.Cw20, Cw20Coin{Address: asset.Info.Ref, Amount: Amount(asset.Amount)})
	return nil
}

// Deduct removes asset.Amount from the matching entry. The entry is kept at zero
// rather than removed so that ordering stays stable.
func (b *GenericBalance) Deduct(asset Asset) error {
	held := b.Get(asset.Info)
	if held.LT(Amount(asset.Amount)) {
		return fmt.Errorf("%w: %v has %v, requested %v", ErrorInsufficientFunds, asset.Info, held, Amount(asset.Amount))
	}

	if asset.Info.IsNative() {
		for i, c := range b.Native {
			if c.Denom == asset.Info.Ref {
				b.Native[i].Amount = Amount(c.Amount).Sub(Amount(asset.Amount))
			}
		}
		return nil
	}
	for i, c := range b.Cw20 {
		if c.Address == asset.Info.Ref {
			b.Cw20[i].Amount = Amount(c.Amount).Sub(Amount(asset.Amount))
		}
	}
	return nil
}

// Merge adds every entry of other onto b.
func (b *GenericBalance) Merge(other GenericBalance) error {
	for _, asset := range other.Assets() {
		if err := b.Add(asset); err != nil {
			return err
		}
	}
	return nil
}

// Assets flattens the balance, natives first, skipping zero entries.
func (b *GenericBalance) Assets() []Asset {
	assets := make([]Asset, 0, len(b.Native)+len(b.Cw20))
	for _, c := range b.Native {
		if !Amount(c.Amount).IsZero() {
			assets = append(assets, Asset{Info: NativeInfo(c.Denom), Amount: c.Amount})
		}
	}
	for _, c := range b.Cw20 {
		if !Amount(c.Amount).IsZero() {
			assets = append(assets, Asset{Info: Cw20Info(c.Address), Amount: c.Amount})
		}
	}
	return assets
}

func (b *GenericBalance) IsEmpty() bool {
	return len(b.Assets()) == 0
}

// Split divides every entry into n equal integer shares. The per-asset
// remainder is returned separately.
func (b *GenericBalance) Split(n uint64) (share GenericBalance, remainder GenericBalance, err error) {
	share, remainder = NewGenericBalance(), NewGenericBalance()
	if n == 0 {
		return share, remainder, nil
	}
	for _, asset := range b.Assets() {
		part := asset.Amount.QuoUint64(n)
		rest, err := CheckedSub(asset.Amount, part.MulUint64(n))
		if err != nil {
			return share, remainder, err
		}
		if !part.IsZero() {
			if err := share.Add(Asset{Info: asset.Info, Amount: part}); err != nil {
				return share, remainder, err
			}
		}
		if !rest.IsZero() {
			if err := remainder.Add(Asset{Info: asset.Info, Amount: rest}); err != nil {
				return share, remainder, err
			}
		}
	}
	return share, remainder, nil
}

// BalanceInfo is the pair of locked and liquid balances of an endowment.
type BalanceInfo struct {
	Locked GenericBalance `json:"locked"`
	Liquid GenericBalance `json:"liquid"`
}

func NewBalanceInfo() BalanceInfo {
	return BalanceInfo{Locked: NewGenericBalance(), Liquid: NewGenericBalance()}
}

func (b *BalanceInfo) Account(accountType string) *GenericBalance {
	if accountType == AccountTypeLocked {
		return &b.Locked
	}
	return &b.Liquid
}
