package domain

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

const (
	AssetKindNative = "native"
	AssetKindCw20   = "cw20"
)

var (
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrorOverflow  = fmt.Errorf("uint128 overflow")
	ErrorUnderflow = fmt.Errorf("uint128 underflow")
)

// AssetInfo identifies an asset either by native denom or by cw20 contract address.
type AssetInfo struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

func NativeInfo(denom string) AssetInfo {
	return AssetInfo{Kind: AssetKindNative, Ref: denom}
}

func Cw20Info(contract string) AssetInfo {
	return AssetInfo{Kind: AssetKindCw20, Ref: contract}
}

func (info AssetInfo) IsNative() bool {
	return info.Kind == AssetKindNative
}

func (info AssetInfo) Validate() error {
	if info.Ref == "" || (info.Kind != AssetKindNative && info.Kind != AssetKindCw20) {
		return fmt.Errorf("%w: unknown asset %v:%v", ErrorInvalidInputs, info.Kind, info.Ref)
	}
	return nil
}

func (info AssetInfo) String() string {
	return info.Kind + ":" + info.Ref
}

type Asset struct {
	Info   AssetInfo `json:"info"`
	Amount math.Uint `json:"amount"`
}

func NewAsset(info AssetInfo, amount uint64) Asset {
	return Asset{Info: info, Amount: math.NewUint(amount)}
}

type Coin struct {
	Denom  string    `json:"denom"`
	Amount math.Uint `json:"amount"`
}

type Cw20Coin struct {
	Address string    `json:"address"`
	Amount  math.Uint `json:"amount"`
}

// Amount normalizes an unset Uint to zero. JSON decoding leaves missing amounts nil.
func Amount(u math.Uint) math.Uint {
	if u == (math.Uint{}) {
		return math.ZeroUint()
	}
	return u
}

func CheckedAdd(a, b math.Uint) (math.Uint, error) {
	sum := new(big.Int).Add(Amount(a).BigInt(), Amount(b).BigInt())
	if sum.Cmp(maxUint128) > 0 {
		return math.ZeroUint(), StdError(ErrorOverflow)
	}
	return math.NewUintFromBigInt(sum), nil
}

func CheckedSub(a, b math.Uint) (math.Uint, error) {
	a, b = Amount(a), Amount(b)
	if a.LT(b) {
		return math.ZeroUint(), StdError(ErrorUnderflow)
	}
	return a.Sub(b), nil
}

// MulFloor returns floor(amount * ratio). Ratios are never negative here.
func MulFloor(amount math.Uint, ratio math.LegacyDec) math.Uint {
	if ratio.IsNil() || ratio.IsNegative() || ratio.IsZero() {
		return math.ZeroUint()
	}
	product := ratio.MulInt(math.NewIntFromBigInt(Amount(amount).BigInt())).TruncateInt()
	return math.NewUintFromBigInt(product.BigInt())
}
