package usecase

import (
	"accounts/domain"
	"fmt"

	"cosmossdk.io/math"
)

// withdraw pays assets out of one account. Who may withdraw depends on the
// endowment type and the account:
//
//	charity / locked  - config owner, net amount moves to the own liquid account
//	charity / liquid  - endowment owner
//	normal  / locked  - owner or maturity whitelist, after maturity only
//	normal  / liquid  - owner or beneficiary whitelist
func (interactor *AccountsInteractor) withdraw(x *execution, msg *domain.WithdrawMsg) error {
	endowment, err := x.tx.loadEndowment(msg.EndowmentID)
	if err != nil {
		return err
	}
	state, err := x.tx.loadState(msg.EndowmentID)
	if err != nil {
		return err
	}
	if err := domain.ValidateAccountType(msg.AccountType); err != nil {
		return err
	}
	if err := interactor.authorizeWithdraw(x, endowment, msg.AccountType); err != nil {
		return err
	}
	if !endowment.WithdrawApproved {
		return domain.ErrorWithdrawsNotApproved
	}
	if len(msg.Assets) == 0 {
		return fmt.Errorf("%w: no assets given", domain.ErrorInvalidInputs)
	}

	target := msg.Beneficiary
	if (target.Wallet == "") == (target.EndowmentID == nil) {
		return fmt.Errorf("%w: beneficiary must be either a wallet or an endowment", domain.ErrorInvalidInputs)
	}

	shuffle := endowment.IsCharity() && msg.AccountType == domain.AccountTypeLocked
	var sibling *domain.Endowment
	if target.EndowmentID != nil && !shuffle {
		if *target.EndowmentID == endowment.ID {
			return fmt.Errorf("%w: cannot withdraw into the same endowment", domain.ErrorInvalidInputs)
		}
		if sibling, err = x.tx.loadEndowment(*target.EndowmentID); err != nil {
			return err
		}
	}

	registrarConfig, err := interactor.loadRegistrarConfig(x.run)
	if err != nil {
		return err
	}
	rate := registrarConfig.WithdrawRate(endowment.EndowmentType)
	if sibling != nil && !sibling.IsCharity() {
		rate = math.LegacyZeroDec()
	}

	for _, asset := range msg.Assets {
		amount := domain.Amount(asset.Amount)
		if amount.IsZero() {
			return fmt.Errorf("%w: %v", domain.ErrorInvalidZeroAmount, asset.Info)
		}
		if err := state.Debit(msg.AccountType, asset); err != nil {
			return err
		}

		fee := math.ZeroUint()
		if !rate.IsNil() && rate.IsPositive() {
			fee = domain.MulFloor(amount, rate)
		}
		x.transfer(registrarConfig.Treasury, domain.Asset{Info: asset.Info, Amount: fee})
		net := domain.Asset{Info: asset.Info, Amount: amount.Sub(fee)}

		switch {
		case shuffle:
			if err := state.Credit(domain.AccountTypeLiquid, net); err != nil {
				return err
			}
		case sibling != nil:
			if !net.Amount.IsZero() {
				x.self(domain.ExecuteMsg{Deposit: &domain.DepositMsg{
					EndowmentID:      sibling.ID,
					LockedPercentage: math.LegacyZeroDec(),
					LiquidPercentage: math.LegacyOneDec(),
				}}, net)
			}
		default:
			x.transfer(target.Wallet, net)
		}
	}
	x.tx.saveState(state)

	x.attr("action", "withdraw")
	x.attr("endowment_id", endowment.ID)
	x.attr("account_type", msg.AccountType)
	return nil
}

func (interactor *AccountsInteractor) authorizeWithdraw(x *execution, endowment *domain.Endowment, accountType string) error {
	sender := x.info.Sender

	if endowment.IsCharity() {
		if accountType == domain.AccountTypeLocked {
			config, err := x.tx.loadConfig()
			if err != nil {
				return err
			}
			if sender != config.Owner {
				return fmt.Errorf("%w: locked charity funds are released by the config owner", domain.ErrorUnauthorized)
			}
			return nil
		}
		if sender != endowment.Owner {
			return fmt.Errorf("%w: sender is not the endowment owner", domain.ErrorUnauthorized)
		}
		return nil
	}

	if accountType == domain.AccountTypeLocked {
		if sender != endowment.Owner && !endowment.IsMaturityWhitelisted(sender) {
			return fmt.Errorf("%w: sender is neither the owner nor maturity whitelisted", domain.ErrorUnauthorized)
		}
		if !endowment.IsMature(x.env.BlockTime) {
			return domain.ErrorMaturityNotReached
		}
		return nil
	}

	if sender != endowment.Owner && !endowment.IsBeneficiaryWhitelisted(sender) {
		return fmt.Errorf("%w: sender is neither the owner nor a whitelisted beneficiary", domain.ErrorUnauthorized)
	}
	return nil
}
