package domain

import (
	"fmt"
)

var (
	ErrorUnauthorized          = fmt.Errorf("unauthorized")
	ErrorInvalidInputs         = fmt.Errorf("invalid inputs")
	ErrorInvalidZeroAmount     = fmt.Errorf("invalid zero amount")
	ErrorInvalidSplit          = fmt.Errorf("locked and liquid percentages must sum to exactly one")
	ErrorInvalidCoinsDeposited = fmt.Errorf("invalid coins deposited")
	ErrorNotInApprovedCoins    = fmt.Errorf("asset is not in the approved coins list")
	ErrorInsufficientFunds     = fmt.Errorf("insufficient funds")
	ErrorBalanceTooSmall       = fmt.Errorf("balance too small")
	ErrorNoAllowance           = fmt.Errorf("no allowance for this account")
	ErrorRedemptionInProgress  = fmt.Errorf("redemption in progress")
	ErrorAccountClosed         = fmt.Errorf("account is closed")
	ErrorUpdatesAfterClosed    = fmt.Errorf("updates are not allowed after closing")
	ErrorEndowmentNotFound     = fmt.Errorf("endowment not found")
	ErrorStrategyNotFound      = fmt.Errorf("strategy not found")
	ErrorStrategyNotApproved   = fmt.Errorf("strategy is not approved")
	ErrorDepositsNotApproved   = fmt.Errorf("deposits are not approved for this endowment")
	ErrorWithdrawsNotApproved  = fmt.Errorf("withdraws are not approved for this endowment")
	ErrorMaturityNotReached    = fmt.Errorf("endowment has not reached maturity")

	// ErrorStd wraps storage lookup failures and arithmetic overflow.
	ErrorStd = fmt.Errorf("std error")
)

// StdError wraps err into the generic storage/arithmetic error category.
func StdError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrorStd, err)
}
