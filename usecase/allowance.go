package usecase

import (
	"accounts/domain"
	"fmt"
)

// allowance grants or revokes a spending limit for a spender on the liquid
// balance of the endowment owner.
func (interactor *AccountsInteractor) allowance(x *execution, msg *domain.AllowanceMsg) error {
	endowment, err := interactor.requireEndowmentOwner(x, msg.EndowmentID)
	if err != nil {
		return err
	}
	if endowment.IsClosed() {
		return domain.ErrorUpdatesAfterClosed
	}
	if msg.Spender == "" || msg.Spender == endowment.Owner {
		return fmt.Errorf("%w: invalid spender", domain.ErrorInvalidInputs)
	}
	if err := msg.Asset.Info.Validate(); err != nil {
		return err
	}
	if domain.Amount(msg.Asset.Amount).IsZero() {
		return domain.ErrorInvalidZeroAmount
	}

	allowance, err := x.tx.loadAllowance(endowment.Owner, msg.Spender)
	if err != nil {
		return err
	}

	switch msg.Action {
	case domain.AllowanceAdd:
		if allowance == nil {
			allowance = domain.NewAllowance(endowment.Owner, msg.Spender)
		}
		expires := domain.Expiration{}
		if msg.Expires != nil {
			expires = *msg.Expires
		}
		if err := allowance.Grant(msg.Asset, expires); err != nil {
			return err
		}
	case domain.AllowanceRemove:
		if allowance == nil {
			return domain.ErrorNoAllowance
		}
		if err := allowance.Revoke(msg.Asset); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown allowance action %q", domain.ErrorInvalidInputs, msg.Action)
	}
	x.tx.saveAllowance(allowance)

	x.attr("action", "allowance")
	x.attr("endowment_id", endowment.ID)
	x.attr("spender", msg.Spender)
	return nil
}

// spendAllowance lets the sender pull from the liquid account within its
// allowance. The asset is transferred to the sender.
func (interactor *AccountsInteractor) spendAllowance(x *execution, msg *domain.SpendAllowanceMsg) error {
	if domain.Amount(msg.Asset.Amount).IsZero() {
		return domain.ErrorInvalidZeroAmount
	}
	endowment, err := x.tx.loadEndowment(msg.EndowmentID)
	if err != nil {
		return err
	}
	state, err := x.tx.loadState(msg.EndowmentID)
	if err != nil {
		return err
	}

	spender := x.info.Sender
	allowance, err := x.tx.loadAllowance(endowment.Owner, spender)
	if err != nil {
		return err
	}
	if allowance == nil {
		return domain.ErrorNoAllowance
	}
	if _, err := allowance.Spendable(msg.Asset.Info, x.env); err != nil {
		return err
	}

	if err := state.Debit(domain.AccountTypeLiquid, msg.Asset); err != nil {
		return err
	}
	if err := allowance.Spend(msg.Asset, x.env); err != nil {
		return err
	}
	x.tx.saveState(state)
	x.tx.saveAllowance(allowance)

	x.transfer(spender, msg.Asset)

	x.attr("action", "spend_allowance")
	x.attr("endowment_id", endowment.ID)
	x.attr("spender", spender)
	return nil
}
