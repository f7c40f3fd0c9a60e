package util

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/dustin/go-humanize"
)

// AmountString renders an amount with thousands separators, e.g. "1,200,000 uluna".
func AmountString(amount math.Uint, unit string) string {
	if amount.IsNil() {
		amount = math.ZeroUint()
	}
	return fmt.Sprintf("%v %v", humanize.BigComma(amount.BigInt()), unit)
}

func PercentString(ratio math.LegacyDec) string {
	if ratio.IsNil() {
		return "0%"
	}
	f, err := ratio.Float64()
	if err != nil {
		return ratio.String()
	}
	return fmt.Sprintf("%v%%", humanize.Ftoa(f*100))
}
