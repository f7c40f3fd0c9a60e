package usecase

import (
	"accounts/domain"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// createEndowment may be called by the registrar or the config owner. Charity
// endowments start inactive until the registrar approves them.
func (interactor *AccountsInteractor) createEndowment(x *execution, msg *domain.CreateEndowmentMsg) error {
	config, err := x.tx.loadConfig()
	if err != nil {
		return err
	}
	if x.info.Sender != config.Registrar && x.info.Sender != config.Owner {
		return fmt.Errorf("%w: only the registrar or the config owner may create endowments", domain.ErrorUnauthorized)
	}

	if msg.Owner == "" || msg.Name == "" {
		return fmt.Errorf("%w: owner and name are required", domain.ErrorInvalidInputs)
	}
	if err := domain.ValidateEndowmentType(msg.EndowmentType); err != nil {
		return err
	}
	if err := msg.Fees.Validate(); err != nil {
		return err
	}
	if msg.SplitToLiquid != nil {
		if err := msg.SplitToLiquid.Validate(); err != nil {
			return err
		}
	}

	endowment := &domain.Endowment{
		ID:                       config.NextEndowmentID,
		Owner:                    msg.Owner,
		Name:                     msg.Name,
		EndowmentType:            msg.EndowmentType,
		MaturityTime:             msg.MaturityTime,
		Strategies:               domain.AccountStrategies{Locked: []string{}, Liquid: []string{}, Invested: []string{}},
		Fees:                     msg.Fees,
		SplitToLiquid:            msg.SplitToLiquid,
		IgnoreUserSplits:         msg.IgnoreUserSplits,
		WhitelistedBeneficiaries: nonNil(msg.WhitelistedBeneficiaries),
		MaturityWhitelist:        nonNil(msg.MaturityWhitelist),
		CreateTime:               x.env.Time().UTC(),
	}
	initial := domain.EndowmentStatusApproved
	if endowment.IsCharity() {
		initial = domain.EndowmentStatusInactive
	}
	if err := endowment.ApplyStatus(initial); err != nil {
		return err
	}

	config.NextEndowmentID++
	x.tx.saveConfig(config)
	x.tx.saveEndowment(endowment)
	x.tx.saveState(domain.NewEndowmentState(endowment.ID))

	x.attr("action", "create_endowment")
	x.attr("endowment_id", endowment.ID)
	log.WithFields(log.Fields{"endowment": endowment.ID, "type": endowment.EndowmentType}).Info("endowment created")
	return nil
}

// updateEndowmentStatus is reserved to the registrar. Closing chains a
// CloseEndowment with the resolved beneficiary.
func (interactor *AccountsInteractor) updateEndowmentStatus(x *execution, msg *domain.UpdateEndowmentStatusMsg) error {
	config, err := x.tx.loadConfig()
	if err != nil {
		return err
	}
	if x.info.Sender != config.Registrar {
		return fmt.Errorf("%w: only the registrar may update the status", domain.ErrorUnauthorized)
	}

	endowment, err := x.tx.loadEndowment(msg.EndowmentID)
	if err != nil {
		return err
	}
	if endowment.IsClosed() {
		return domain.ErrorUpdatesAfterClosed
	}
	if err := endowment.ApplyStatus(msg.Status); err != nil {
		return err
	}
	x.tx.saveEndowment(endowment)

	x.attr("action", "update_endowment_status")
	x.attr("endowment_id", endowment.ID)
	x.attr("status", endowment.Status)

	if msg.Status != domain.EndowmentStatusClosed {
		return nil
	}

	beneficiary, err := interactor.resolveBeneficiary(x, endowment.ID, msg.Beneficiary)
	if err != nil {
		return err
	}
	x.self(domain.ExecuteMsg{CloseEndowment: &domain.CloseEndowmentMsg{
		EndowmentID: endowment.ID,
		Beneficiary: beneficiary,
	}})
	return nil
}

// resolveBeneficiary picks the explicit beneficiary, else the first index fund
// holding the endowment, else the registrar treasury.
func (interactor *AccountsInteractor) resolveBeneficiary(x *execution, id uint32, explicit *domain.Beneficiary) (domain.Beneficiary, error) {
	if explicit != nil {
		if err := explicit.Validate(); err != nil {
			return domain.Beneficiary{}, err
		}
		if err := interactor.requireOpenTarget(x, id, *explicit); err != nil {
			return domain.Beneficiary{}, err
		}
		return *explicit, nil
	}

	funds, err := interactor.indexFunds.FundsOf(id)
	if err != nil {
		return domain.Beneficiary{}, domain.StdError(err)
	}
	if len(funds) > 0 {
		return domain.IndexFundBeneficiary(funds[0].ID), nil
	}

	registrarConfig, err := interactor.loadRegistrarConfig(x.run)
	if err != nil {
		return domain.Beneficiary{}, err
	}
	return domain.WalletBeneficiary(registrarConfig.Treasury), nil
}

func (interactor *AccountsInteractor) updateEndowmentSettings(x *execution, msg *domain.UpdateEndowmentSettingsMsg) error {
	endowment, err := interactor.requireEndowmentOwner(x, msg.EndowmentID)
	if err != nil {
		return err
	}
	if endowment.IsClosed() {
		return domain.ErrorUpdatesAfterClosed
	}

	if msg.MaturityTime != nil {
		if endowment.MaturityTime != nil && *msg.MaturityTime < *endowment.MaturityTime {
			return fmt.Errorf("%w: maturity time can only be extended", domain.ErrorInvalidInputs)
		}
		maturity := *msg.MaturityTime
		endowment.MaturityTime = &maturity
	}
	if msg.Fees != nil {
		if err := msg.Fees.Validate(); err != nil {
			return err
		}
		endowment.Fees = *msg.Fees
	}
	if msg.SplitToLiquid != nil {
		if err := msg.SplitToLiquid.Validate(); err != nil {
			return err
		}
		split := *msg.SplitToLiquid
		endowment.SplitToLiquid = &split
	}
	if msg.IgnoreUserSplits != nil {
		endowment.IgnoreUserSplits = *msg.IgnoreUserSplits
	}
	if msg.WhitelistedBeneficiaries != nil {
		endowment.WhitelistedBeneficiaries = nonNil(*msg.WhitelistedBeneficiaries)
	}
	if msg.MaturityWhitelist != nil {
		endowment.MaturityWhitelist = nonNil(*msg.MaturityWhitelist)
	}
	x.tx.saveEndowment(endowment)

	x.attr("action", "update_endowment_settings")
	x.attr("endowment_id", endowment.ID)
	return nil
}

// updateStrategies replaces the strategy list of one account. It is refused
// while redemptions are outstanding.
func (interactor *AccountsInteractor) updateStrategies(x *execution, msg *domain.UpdateStrategiesMsg) error {
	endowment, err := interactor.requireEndowmentOwner(x, msg.EndowmentID)
	if err != nil {
		return err
	}
	if endowment.IsClosed() {
		return domain.ErrorUpdatesAfterClosed
	}
	if endowment.PendingRedemptions != 0 {
		return domain.ErrorRedemptionInProgress
	}
	if err := domain.ValidateAccountType(msg.AccountType); err != nil {
		return err
	}

	keys := make([]string, 0, len(msg.Strategies))
	for _, key := range msg.Strategies {
		strategy, err := interactor.registrar.Strategy(key)
		if err != nil {
			return err
		}
		if !strategy.IsApproved() {
			return fmt.Errorf("%w: %v", domain.ErrorStrategyNotApproved, key)
		}
		if !containsString(keys, key) {
			keys = append(keys, key)
		}
	}
	endowment.Strategies.Set(msg.AccountType, keys)
	x.tx.saveEndowment(endowment)

	x.attr("action", "update_strategies")
	x.attr("endowment_id", endowment.ID)
	return nil
}

func (interactor *AccountsInteractor) updateConfig(x *execution, msg *domain.UpdateConfigMsg) error {
	config, err := interactor.requireConfigOwner(x)
	if err != nil {
		return err
	}
	if msg.Registrar == "" {
		return fmt.Errorf("%w: registrar address is required", domain.ErrorInvalidInputs)
	}
	config.Registrar = msg.Registrar
	x.tx.saveConfig(config)
	x.attr("action", "update_config")
	return nil
}

func (interactor *AccountsInteractor) updateOwner(x *execution, msg *domain.UpdateOwnerMsg) error {
	config, err := interactor.requireConfigOwner(x)
	if err != nil {
		return err
	}
	if msg.NewOwner == "" {
		return fmt.Errorf("%w: new owner is required", domain.ErrorInvalidInputs)
	}
	config.Owner = msg.NewOwner
	x.tx.saveConfig(config)
	x.attr("action", "update_owner")
	return nil
}

// resetPendingRedemptions clears a latch whose receipts will never arrive. A
// closing endowment continues with its distribution.
func (interactor *AccountsInteractor) resetPendingRedemptions(x *execution, msg *domain.ResetPendingMsg) error {
	if _, err := interactor.requireConfigOwner(x); err != nil {
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

	previous := endowment.PendingRedemptions
	endowment.PendingRedemptions = 0
	x.tx.saveEndowment(endowment)

	log.Printf("🟡 pending redemptions reset [endowment: %v, was: %v]\n", endowment.ID, previous)
	x.attr("action", "reset_pending_redemptions")
	x.attr("endowment_id", endowment.ID)

	if previous > 0 && state.ClosingEndowment {
		x.self(domain.ExecuteMsg{DistributeToBeneficiary: &domain.DistributeMsg{EndowmentID: endowment.ID}})
	}
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func containsString(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
