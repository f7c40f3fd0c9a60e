package usecase

import (
	"accounts/domain"
	"fmt"

	"cosmossdk.io/math"
	log "github.com/sirupsen/logrus"
)

// invest moves funds from the ledger into strategies. The ledger is debited
// right away; a failed dispatch is compensated by the invest reply.
func (interactor *AccountsInteractor) invest(x *execution, msg *domain.StrategiesMsg) error {
	endowment, err := interactor.requireEndowmentOwner(x, msg.EndowmentID)
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
	if len(msg.Strategies) == 0 {
		return fmt.Errorf("%w: no strategies given", domain.ErrorInvalidInputs)
	}

	for _, entry := range msg.Strategies {
		locked, liquid := domain.Amount(entry.LockedAmount), domain.Amount(entry.LiquidAmount)
		if locked.IsZero() && liquid.IsZero() {
			return fmt.Errorf("%w: strategy %v", domain.ErrorInvalidZeroAmount, entry.StrategyKey)
		}

		strategy, err := interactor.registrar.Strategy(entry.StrategyKey)
		if err != nil {
			return err
		}
		if !strategy.IsApproved() {
			return fmt.Errorf("%w: %v", domain.ErrorStrategyNotApproved, entry.StrategyKey)
		}

		denom := strategy.InputDenom
		if err := state.Debit(domain.AccountTypeLocked, domain.Asset{Info: denom, Amount: locked}); err != nil {
			return err
		}
		if err := state.Debit(domain.AccountTypeLiquid, domain.Asset{Info: denom, Amount: liquid}); err != nil {
			return err
		}

		vaultMsg := &domain.VaultInvestMsg{
			Vault:        strategy.Address,
			EndowmentID:  endowment.ID,
			Asset:        denom,
			LockedAmount: locked,
			LiquidAmount: liquid,
		}
		out, err := interactor.strategyMsg(strategy, domain.Asset{Info: denom, Amount: locked.Add(liquid)}, vaultMsg, nil)
		if err != nil {
			return err
		}
		x.emit(out, domain.ReplyOnError, &domain.ReplyTag{
			Kind:         domain.ReplyKindInvest,
			EndowmentID:  endowment.ID,
			StrategyKey:  strategy.Key,
			Asset:        denom,
			LockedAmount: locked,
			LiquidAmount: liquid,
		})

		if !locked.IsZero() {
			endowment.Strategies.Record(domain.AccountTypeLocked, strategy.Key)
		}
		if !liquid.IsZero() {
			endowment.Strategies.Record(domain.AccountTypeLiquid, strategy.Key)
		}
	}

	x.tx.saveState(state)
	x.tx.saveEndowment(endowment)

	x.attr("action", "strategies_invest")
	x.attr("endowment_id", endowment.ID)
	return nil
}

// redeem asks strategies to return funds and arms the latch with the number of
// redeem messages sent.
func (interactor *AccountsInteractor) redeem(x *execution, msg *domain.StrategiesMsg) error {
	endowment, err := interactor.requireEndowmentOwner(x, msg.EndowmentID)
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
	if len(msg.Strategies) == 0 {
		return fmt.Errorf("%w: no strategies given", domain.ErrorInvalidInputs)
	}
	if endowment.PendingRedemptions != 0 {
		return domain.ErrorRedemptionInProgress
	}

	var count uint32
	for _, entry := range msg.Strategies {
		strategy, err := interactor.registrar.Strategy(entry.StrategyKey)
		if err != nil {
			return err
		}
		if !strategy.IsRedeemable() {
			log.Printf("🔵 skipping redeem from strategy %v in state %v\n", strategy.Key, strategy.ApprovalState)
			continue
		}

		locked, liquid := domain.Amount(entry.LockedAmount), domain.Amount(entry.LiquidAmount)
		if locked.IsZero() && liquid.IsZero() {
			return fmt.Errorf("%w: strategy %v", domain.ErrorInvalidZeroAmount, entry.StrategyKey)
		}

		if err := interactor.emitRedeem(x, endowment.ID, strategy, locked, liquid); err != nil {
			return err
		}
		count++
	}
	if count == 0 {
		return fmt.Errorf("%w: none of the strategies can be redeemed", domain.ErrorInvalidInputs)
	}

	endowment.PendingRedemptions = count
	x.tx.saveEndowment(endowment)

	x.attr("action", "strategies_redeem")
	x.attr("endowment_id", endowment.ID)
	x.attr("pending_redemptions", count)
	return nil
}

func (interactor *AccountsInteractor) emitRedeem(x *execution, id uint32, strategy *domain.StrategyParams, locked, liquid math.Uint) error {
	vaultMsg := &domain.VaultRedeemMsg{
		Vault:        strategy.Address,
		EndowmentID:  id,
		LockedAmount: locked,
		LiquidAmount: liquid,
	}
	out, err := interactor.strategyMsg(strategy, domain.Asset{}, nil, vaultMsg)
	if err != nil {
		return err
	}
	x.emit(out, domain.ReplyOnError, &domain.ReplyTag{
		Kind:         domain.ReplyKindRedeem,
		EndowmentID:  id,
		StrategyKey:  strategy.Key,
		Asset:        strategy.InputDenom,
		LockedAmount: locked,
		LiquidAmount: liquid,
	})
	return nil
}

// strategyMsg addresses a vault message directly for native strategies and
// wraps it into a transfer envelope for strategies on another network.
func (interactor *AccountsInteractor) strategyMsg(strategy *domain.StrategyParams, funds domain.Asset, invest *domain.VaultInvestMsg, redeem *domain.VaultRedeemMsg) (domain.CosmosMsg, error) {
	if !strategy.IsRemote() {
		return domain.CosmosMsg{VaultInvest: invest, VaultRedeem: redeem}, nil
	}

	network, err := interactor.registrar.Network(strategy.Network)
	if err != nil {
		return domain.CosmosMsg{}, err
	}
	envelope := &domain.IbcEnvelopeMsg{
		ChainID:  network.ChainID,
		Channel:  network.TransferChannel,
		Gateway:  network.GatewayAddress,
		Strategy: strategy.Key,
		Invest:   invest,
		Redeem:   redeem,
	}
	if invest != nil {
		envelope.Funds = &funds
	}
	return domain.CosmosMsg{IbcEnvelope: envelope}, nil
}

// vaultReceipt credits funds returned by a strategy and retires one latch count.
func (interactor *AccountsInteractor) vaultReceipt(x *execution, msg *domain.VaultReceiptMsg) error {
	strategy, err := interactor.registrar.StrategyByAddress(x.info.Sender)
	if err != nil || strategy == nil {
		return fmt.Errorf("%w: sender is not a registered strategy", domain.ErrorUnauthorized)
	}

	state, err := x.tx.loadState(msg.EndowmentID)
	if err != nil {
		return err
	}
	if _, err := x.tx.loadEndowment(msg.EndowmentID); err != nil {
		return err
	}

	if len(x.info.Funds) != 1 {
		return fmt.Errorf("%w: a receipt carries exactly one asset", domain.ErrorInvalidCoinsDeposited)
	}
	funds := x.info.Funds[0]
	if funds.Info != strategy.InputDenom {
		return fmt.Errorf("%w: strategy %v pays out %v, got %v", domain.ErrorInvalidCoinsDeposited, strategy.Key, strategy.InputDenom, funds.Info)
	}
	locked, liquid := domain.Amount(msg.LockedAmount), domain.Amount(msg.LiquidAmount)
	total, err := domain.CheckedAdd(locked, liquid)
	if err != nil {
		return err
	}
	if !total.Equal(domain.Amount(funds.Amount)) {
		return fmt.Errorf("%w: receipt amounts %v do not match funds %v", domain.ErrorInvalidInputs, total, domain.Amount(funds.Amount))
	}

	if err := state.Credit(domain.AccountTypeLocked, domain.Asset{Info: funds.Info, Amount: locked}); err != nil {
		return err
	}
	if err := state.Credit(domain.AccountTypeLiquid, domain.Asset{Info: funds.Info, Amount: liquid}); err != nil {
		return err
	}
	x.tx.saveState(state)

	x.attr("action", "vault_receipt")
	x.attr("endowment_id", msg.EndowmentID)
	x.attr("strategy", strategy.Key)

	return interactor.retireRedemption(x, msg.EndowmentID)
}

// retireRedemption counts one redemption down. The last one resets the latch
// and continues a pending closure. With no latch armed the call is a no-op.
func (interactor *AccountsInteractor) retireRedemption(x *execution, id uint32) error {
	endowment, err := x.tx.loadEndowment(id)
	if err != nil {
		return err
	}
	state, err := x.tx.loadState(id)
	if err != nil {
		return err
	}

	switch {
	case endowment.PendingRedemptions > 1:
		endowment.PendingRedemptions--
		x.tx.saveEndowment(endowment)
	case endowment.PendingRedemptions == 1:
		endowment.PendingRedemptions = 0
		x.tx.saveEndowment(endowment)
		if state.ClosingEndowment {
			x.self(domain.ExecuteMsg{DistributeToBeneficiary: &domain.DistributeMsg{EndowmentID: id}})
		}
	default:
		log.Printf("🔵 unsolicited payout credited [endowment: %v]\n", id)
	}
	return nil
}

// reply runs the continuation tagged on a dispatched strategy message.
func (interactor *AccountsInteractor) reply(x *execution, tag domain.ReplyTag, reply domain.Reply) error {
	if !reply.Failed() {
		x.attr("action", "reply")
		x.attr("kind", tag.Kind)
		return nil
	}

	switch tag.Kind {
	case domain.ReplyKindInvest:
		state, err := x.tx.loadState(tag.EndowmentID)
		if err != nil {
			return err
		}
		if err := state.Credit(domain.AccountTypeLocked, domain.Asset{Info: tag.Asset, Amount: domain.Amount(tag.LockedAmount)}); err != nil {
			return err
		}
		if err := state.Credit(domain.AccountTypeLiquid, domain.Asset{Info: tag.Asset, Amount: domain.Amount(tag.LiquidAmount)}); err != nil {
			return err
		}
		x.tx.saveState(state)
		log.Printf("🟡 invest into %v failed, funds returned to endowment %v - %v\n", tag.StrategyKey, tag.EndowmentID, reply.Error)

	case domain.ReplyKindRedeem:
		log.Printf("🟡 redeem from %v failed for endowment %v - %v\n", tag.StrategyKey, tag.EndowmentID, reply.Error)
		if err := interactor.retireRedemption(x, tag.EndowmentID); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: unknown reply kind %q", domain.ErrorInvalidInputs, tag.Kind)
	}

	x.attr("action", "reply")
	x.attr("kind", tag.Kind)
	x.attr("endowment_id", tag.EndowmentID)
	return nil
}
