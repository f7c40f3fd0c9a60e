package usecase

import (
	"accounts/domain"
	"accounts/domain/util"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	log "github.com/sirupsen/logrus"
)

// receive unwraps a cw20 send. The token contract is the caller and the
// original sender travels inside the hook.
func (interactor *AccountsInteractor) receive(x *execution, msg *domain.Cw20ReceiveMsg) error {
	if len(x.info.Funds) != 0 {
		return fmt.Errorf("%w: native funds sent along a cw20 hook", domain.ErrorInvalidCoinsDeposited)
	}

	var inner domain.ReceiveMsg
	if err := json.Unmarshal(msg.Msg, &inner); err != nil {
		return fmt.Errorf("%w: malformed receive payload - %v", domain.ErrorInvalidInputs, err)
	}

	forwarded := &execution{
		run: x.run,
		info: domain.MessageInfo{
			Sender: msg.Sender,
			Funds:  []domain.Asset{{Info: domain.Cw20Info(x.info.Sender), Amount: domain.Amount(msg.Amount)}},
		},
	}

	var err error
	switch {
	case inner.Deposit != nil:
		err = interactor.deposit(forwarded, inner.Deposit)
	case inner.VaultReceipt != nil:
		err = interactor.vaultReceipt(forwarded, inner.VaultReceipt)
	default:
		err = fmt.Errorf("%w: empty receive payload", domain.ErrorInvalidInputs)
	}
	x.pending = append(x.pending, forwarded.pending...)
	return err
}

func (interactor *AccountsInteractor) deposit(x *execution, msg *domain.DepositMsg) error {
	endowment, err := x.tx.loadEndowment(msg.EndowmentID)
	if err != nil {
		return err
	}
	state, err := x.tx.loadState(msg.EndowmentID)
	if err != nil {
		return err
	}
	if state.ClosingEndowment {
		return domain.ErrorAccountClosed
	}
	if !endowment.DepositApproved {
		return domain.ErrorDepositsNotApproved
	}

	if msg.LockedPercentage.IsNil() || msg.LiquidPercentage.IsNil() ||
		msg.LockedPercentage.IsNegative() || msg.LiquidPercentage.IsNegative() ||
		!msg.LockedPercentage.Add(msg.LiquidPercentage).Equal(math.LegacyOneDec()) {
		return domain.ErrorInvalidSplit
	}

	if len(x.info.Funds) != 1 {
		return fmt.Errorf("%w: exactly one asset must be deposited", domain.ErrorInvalidCoinsDeposited)
	}
	deposited := x.info.Funds[0]
	amount := domain.Amount(deposited.Amount)
	if amount.IsZero() {
		return fmt.Errorf("%w: zero amount deposited", domain.ErrorInvalidCoinsDeposited)
	}

	registrarConfig, err := interactor.loadRegistrarConfig(x.run)
	if err != nil {
		return err
	}
	if !registrarConfig.AcceptedTokens.Accepts(deposited.Info) {
		return fmt.Errorf("%w: %v", domain.ErrorNotInApprovedCoins, deposited.Info)
	}

	net := amount
	if fee := endowment.Fees.Deposit; fee.Applies() {
		feeAmount := domain.MulFloor(amount, fee.Percentage)
		x.transfer(fee.PayoutAddress, domain.Asset{Info: deposited.Info, Amount: feeAmount})
		net = amount.Sub(feeAmount)
	}

	liquidSplit := interactor.liquidSplit(x, endowment, registrarConfig, msg)
	locked := domain.MulFloor(net, math.LegacyOneDec().Sub(liquidSplit))
	liquid := net.Sub(locked)

	if err := state.Credit(domain.AccountTypeLocked, domain.Asset{Info: deposited.Info, Amount: locked}); err != nil {
		return err
	}
	if err := state.Credit(domain.AccountTypeLiquid, domain.Asset{Info: deposited.Info, Amount: liquid}); err != nil {
		return err
	}
	if err := state.AddDonation(domain.AccountTypeLocked, locked); err != nil {
		return err
	}
	if err := state.AddDonation(domain.AccountTypeLiquid, liquid); err != nil {
		return err
	}
	x.tx.saveState(state)

	x.attr("action", "deposit")
	x.attr("endowment_id", endowment.ID)
	x.attr("locked", locked)
	x.attr("liquid", liquid)

	log.WithFields(log.Fields{"endowment": endowment.ID, "sender": x.info.Sender}).
		Debugf("deposit of %v split into locked %v and liquid %v (%v liquid)",
			util.AmountString(amount, deposited.Info.Ref), locked, liquid, util.PercentString(liquidSplit))
	return nil
}

// liquidSplit decides the share of net going to liquid. The index fund and the
// contract itself dictate the split; otherwise the endowment bounds apply.
func (interactor *AccountsInteractor) liquidSplit(x *execution, endowment *domain.Endowment, registrarConfig *domain.RegistrarConfig, msg *domain.DepositMsg) math.LegacyDec {
	sender := x.info.Sender
	if sender == x.env.ContractAddress || (registrarConfig.IndexFundAddress != "" && sender == registrarConfig.IndexFundAddress) {
		return msg.LiquidPercentage
	}

	bounds := registrarConfig.SplitToLiquid
	if endowment.SplitToLiquid != nil {
		bounds = *endowment.SplitToLiquid
	}
	if endowment.IgnoreUserSplits {
		return bounds.Default
	}

	requested := msg.LiquidPercentage
	if requested.LT(bounds.Min) {
		return bounds.Min
	}
	if requested.GT(bounds.Max) {
		return bounds.Max
	}
	return requested
}
