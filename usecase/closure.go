package usecase

import (
	"accounts/domain"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// closeEndowment freezes the endowment and redeems everything it holds in any
// strategy it ever invested in. Distribution follows once the last receipt arrives, or right
// away when nothing is invested.
func (interactor *AccountsInteractor) closeEndowment(x *execution, msg *domain.CloseEndowmentMsg) error {
	if err := interactor.requireContract(x); err != nil {
		return err
	}
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
	if endowment.PendingRedemptions != 0 {
		return domain.ErrorRedemptionInProgress
	}
	if err := msg.Beneficiary.Validate(); err != nil {
		return err
	}
	if err := interactor.requireOpenTarget(x, endowment.ID, msg.Beneficiary); err != nil {
		return err
	}

	beneficiary := msg.Beneficiary
	state.ClosingEndowment = true
	state.ClosingBeneficiary = &beneficiary
	endowment.DepositApproved = false
	endowment.WithdrawApproved = false

	var count uint32
	for _, key := range endowment.Strategies.Ever() {
		strategy, err := interactor.registrar.Strategy(key)
		if err != nil {
			return err
		}
		if strategy.ApprovalState == domain.StrategyNotApproved {
			log.Printf("🔵 skipping not approved strategy %v on closing endowment %v\n", key, endowment.ID)
			continue
		}

		locked, liquid, err := interactor.vaults.Balance(x.ctx, strategy, endowment.ID)
		if err != nil {
			return domain.StdError(fmt.Errorf("querying vault %v - %v", key, err))
		}
		locked, liquid = domain.Amount(locked), domain.Amount(liquid)
		if locked.IsZero() && liquid.IsZero() {
			continue
		}

		if err := interactor.emitRedeem(x, endowment.ID, strategy, locked, liquid); err != nil {
			return err
		}
		count++
	}

	endowment.PendingRedemptions = count
	x.tx.saveEndowment(endowment)
	x.tx.saveState(state)

	x.attr("action", "close_endowment")
	x.attr("endowment_id", endowment.ID)
	x.attr("beneficiary", beneficiary.String())
	x.attr("pending_redemptions", count)

	if count == 0 {
		x.self(domain.ExecuteMsg{DistributeToBeneficiary: &domain.DistributeMsg{EndowmentID: endowment.ID}})
	}
	return nil
}

// distributeToBeneficiary empties the ledger of a closing endowment into its
// beneficiary.
func (interactor *AccountsInteractor) distributeToBeneficiary(x *execution, msg *domain.DistributeMsg) error {
	if err := interactor.requireContract(x); err != nil {
		return err
	}
	state, err := x.tx.loadState(msg.EndowmentID)
	if err != nil {
		return err
	}
	if !state.ClosingEndowment || state.ClosingBeneficiary == nil {
		return fmt.Errorf("%w: endowment %v is not closing", domain.ErrorInvalidInputs, msg.EndowmentID)
	}

	beneficiary := *state.ClosingBeneficiary
	if beneficiary.Kind == domain.BeneficiaryEndowment {
		closed, err := interactor.isClosing(x, beneficiary.ID)
		if err != nil {
			return err
		}
		if closed {
			registrarConfig, err := interactor.loadRegistrarConfig(x.run)
			if err != nil {
				return err
			}
			log.Printf("🟡 beneficiary endowment %v closed meanwhile, paying endowment %v out to the treasury\n", beneficiary.ID, msg.EndowmentID)
			beneficiary = domain.WalletBeneficiary(registrarConfig.Treasury)
		}
	}
	held := state.Drain()
	x.tx.saveState(state)

	switch beneficiary.Kind {
	case domain.BeneficiaryWallet:
		if err := interactor.payWallet(x, beneficiary.Address, held); err != nil {
			return err
		}

	case domain.BeneficiaryEndowment:
		target, err := x.tx.loadState(beneficiary.ID)
		if err != nil {
			return err
		}
		if err := target.Balances.Locked.Merge(held.Locked); err != nil {
			return err
		}
		if err := target.Balances.Liquid.Merge(held.Liquid); err != nil {
			return err
		}
		x.tx.saveState(target)

	case domain.BeneficiaryIndexFund:
		if err := interactor.payIndexFund(x, msg.EndowmentID, beneficiary.ID, held); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: unknown beneficiary kind %q", domain.ErrorInvalidInputs, beneficiary.Kind)
	}

	x.attr("action", "distribute_to_beneficiary")
	x.attr("endowment_id", msg.EndowmentID)
	x.attr("beneficiary", beneficiary.String())
	log.WithFields(log.Fields{"endowment": msg.EndowmentID, "beneficiary": beneficiary.String()}).Info("endowment distributed")
	return nil
}

// payWallet sends all natives in one bank message and each cw20 token in its
// own transfer.
func (interactor *AccountsInteractor) payWallet(x *execution, address string, held domain.BalanceInfo) error {
	all := domain.NewGenericBalance()
	if err := all.Merge(held.Locked); err != nil {
		return err
	}
	if err := all.Merge(held.Liquid); err != nil {
		return err
	}

	coins := make([]domain.Coin, 0, len(all.Native))
	for _, asset := range all.Assets() {
		if asset.Info.IsNative() {
			coins = append(coins, domain.Coin{Denom: asset.Info.Ref, Amount: asset.Amount})
		}
	}
	if len(coins) > 0 {
		x.emit(domain.CosmosMsg{BankSend: &domain.BankSendMsg{ToAddress: address, Amount: coins}}, domain.ReplyNever, nil)
	}
	for _, asset := range all.Assets() {
		if !asset.Info.IsNative() {
			x.transfer(address, asset)
		}
	}
	return nil
}

// payIndexFund splits the held funds equally between the other open members
// of the fund. Remainders of the integer division go to the registrar treasury,
// and so does everything when no such member exists.
func (interactor *AccountsInteractor) payIndexFund(x *execution, self uint32, fundID uint32, held domain.BalanceInfo) error {
	fund, err := interactor.indexFunds.IndexFund(fundID)
	if err != nil {
		return domain.StdError(err)
	}
	registrarConfig, err := interactor.loadRegistrarConfig(x.run)
	if err != nil {
		return err
	}

	members := make([]uint32, 0, len(fund.Members))
	for _, id := range fund.Excluding(self) {
		closed, err := interactor.isClosing(x, id)
		if err != nil {
			return err
		}
		if closed {
			log.Printf("🔵 skipping closed member %v of index fund %v\n", id, fundID)
			continue
		}
		members = append(members, id)
	}
	if len(members) == 0 {
		return interactor.payWallet(x, registrarConfig.Treasury, held)
	}

	lockedShare, lockedRest, err := held.Locked.Split(uint64(len(members)))
	if err != nil {
		return err
	}
	liquidShare, liquidRest, err := held.Liquid.Split(uint64(len(members)))
	if err != nil {
		return err
	}
	for _, id := range members {
		member, err := x.tx.loadState(id)
		if err != nil {
			return err
		}
		if err := member.Balances.Locked.Merge(lockedShare); err != nil {
			return err
		}
		if err := member.Balances.Liquid.Merge(liquidShare); err != nil {
			return err
		}
		x.tx.saveState(member)
	}

	return interactor.payWallet(x, registrarConfig.Treasury, domain.BalanceInfo{Locked: lockedRest, Liquid: liquidRest})
}

// isClosing reports whether the endowment is closed or on its way there. Such
// an endowment can never pay out again, so it must not receive funds.
func (interactor *AccountsInteractor) isClosing(x *execution, id uint32) (bool, error) {
	endowment, err := x.tx.loadEndowment(id)
	if err != nil {
		return false, err
	}
	state, err := x.tx.loadState(id)
	if err != nil {
		return false, err
	}
	return endowment.IsClosed() || state.ClosingEndowment, nil
}

// requireOpenTarget rejects an endowment beneficiary that is the closing
// endowment itself or is closed.
func (interactor *AccountsInteractor) requireOpenTarget(x *execution, self uint32, beneficiary domain.Beneficiary) error {
	if beneficiary.Kind != domain.BeneficiaryEndowment {
		return nil
	}
	if beneficiary.ID == self {
		return fmt.Errorf("%w: endowment cannot be its own beneficiary", domain.ErrorInvalidInputs)
	}
	closed, err := interactor.isClosing(x, beneficiary.ID)
	if err != nil {
		return err
	}
	if closed {
		return fmt.Errorf("%w: beneficiary endowment %v is closed", domain.ErrorInvalidInputs, beneficiary.ID)
	}
	return nil
}
