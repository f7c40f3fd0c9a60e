package domain

import (
	"encoding/json"

	"cosmossdk.io/math"
)

// ExecuteMsg is the set of mutating operations exposed by the accounts engine.
// Exactly one field is set.
type ExecuteMsg struct {
	CreateEndowment         *CreateEndowmentMsg         `json:"create_endowment,omitempty"`
	UpdateEndowmentStatus   *UpdateEndowmentStatusMsg   `json:"update_endowment_status,omitempty"`
	UpdateEndowmentSettings *UpdateEndowmentSettingsMsg `json:"update_endowment_settings,omitempty"`
	UpdateStrategies        *UpdateStrategiesMsg        `json:"update_strategies,omitempty"`
	UpdateConfig            *UpdateConfigMsg            `json:"update_config,omitempty"`
	UpdateOwner             *UpdateOwnerMsg             `json:"update_owner,omitempty"`
	Receive                 *Cw20ReceiveMsg             `json:"receive,omitempty"`
	Deposit                 *DepositMsg                 `json:"deposit,omitempty"`
	Withdraw                *WithdrawMsg                `json:"withdraw,omitempty"`
	StrategiesInvest        *StrategiesMsg              `json:"strategies_invest,omitempty"`
	StrategiesRedeem        *StrategiesMsg              `json:"strategies_redeem,omitempty"`
	VaultReceipt            *VaultReceiptMsg            `json:"vault_receipt,omitempty"`
	Allowance               *AllowanceMsg               `json:"allowance,omitempty"`
	SpendAllowance          *SpendAllowanceMsg          `json:"spend_allowance,omitempty"`
	CloseEndowment          *CloseEndowmentMsg          `json:"close_endowment,omitempty"`
	DistributeToBeneficiary *DistributeMsg              `json:"distribute_to_beneficiary,omitempty"`
	ResetPendingRedemptions *ResetPendingMsg            `json:"reset_pending_redemptions,omitempty"`
}

// Kind names the set field, used for logging and metrics.
func (msg ExecuteMsg) Kind() string {
	switch {
	case msg.CreateEndowment != nil:
		return "create_endowment"
	case msg.UpdateEndowmentStatus != nil:
		return "update_endowment_status"
	case msg.UpdateEndowmentSettings != nil:
		return "update_endowment_settings"
	case msg.UpdateStrategies != nil:
		return "update_strategies"
	case msg.UpdateConfig != nil:
		return "update_config"
	case msg.UpdateOwner != nil:
		return "update_owner"
	case msg.Receive != nil:
		return "receive"
	case msg.Deposit != nil:
		return "deposit"
	case msg.Withdraw != nil:
		return "withdraw"
	case msg.StrategiesInvest != nil:
		return "strategies_invest"
	case msg.StrategiesRedeem != nil:
		return "strategies_redeem"
	case msg.VaultReceipt != nil:
		return "vault_receipt"
	case msg.Allowance != nil:
		return "allowance"
	case msg.SpendAllowance != nil:
		return "spend_allowance"
	case msg.CloseEndowment != nil:
		return "close_endowment"
	case msg.DistributeToBeneficiary != nil:
		return "distribute_to_beneficiary"
	case msg.ResetPendingRedemptions != nil:
		return "reset_pending_redemptions"
	}
	return "unknown"
}

type CreateEndowmentMsg struct {
	Owner                    string        `json:"owner"`
	Name                     string        `json:"name"`
	EndowmentType            string        `json:"endowment_type"`
	MaturityTime             *uint64       `json:"maturity_time,omitempty"`
	Fees                     EndowmentFees `json:"fees"`
	SplitToLiquid            *SplitDetails `json:"split_to_liquid,omitempty"`
	IgnoreUserSplits         bool          `json:"ignore_user_splits"`
	WhitelistedBeneficiaries []string      `json:"whitelisted_beneficiaries"`
	MaturityWhitelist        []string      `json:"maturity_whitelist"`
}

type UpdateEndowmentStatusMsg struct {
	EndowmentID uint32       `json:"endowment_id"`
	Status      string       `json:"status"`
	Beneficiary *Beneficiary `json:"beneficiary,omitempty"`
}

// UpdateEndowmentSettingsMsg leaves a setting untouched when its field is nil.
type UpdateEndowmentSettingsMsg struct {
	EndowmentID              uint32         `json:"endowment_id"`
	MaturityTime             *uint64        `json:"maturity_time,omitempty"`
	Fees                     *EndowmentFees `json:"fees,omitempty"`
	SplitToLiquid            *SplitDetails  `json:"split_to_liquid,omitempty"`
	IgnoreUserSplits         *bool          `json:"ignore_user_splits,omitempty"`
	WhitelistedBeneficiaries *[]string      `json:"whitelisted_beneficiaries,omitempty"`
	MaturityWhitelist        *[]string      `json:"maturity_whitelist,omitempty"`
}

type UpdateStrategiesMsg struct {
	EndowmentID uint32   `json:"endowment_id"`
	AccountType string   `json:"account_type"`
	Strategies  []string `json:"strategies"`
}

type UpdateConfigMsg struct {
	Registrar string `json:"registrar"`
}

type UpdateOwnerMsg struct {
	NewOwner string `json:"new_owner"`
}

// Cw20ReceiveMsg is delivered by a token contract; Msg holds a ReceiveMsg.
type Cw20ReceiveMsg struct {
	Sender string          `json:"sender"`
	Amount math.Uint       `json:"amount"`
	Msg    json.RawMessage `json:"msg"`
}

type ReceiveMsg struct {
	Deposit      *DepositMsg      `json:"deposit,omitempty"`
	VaultReceipt *VaultReceiptMsg `json:"vault_receipt,omitempty"`
}

type DepositMsg struct {
	EndowmentID      uint32         `json:"endowment_id"`
	LockedPercentage math.LegacyDec `json:"locked_percentage"`
	LiquidPercentage math.LegacyDec `json:"liquid_percentage"`
}

// WithdrawTarget is either a wallet address or a sibling endowment id.
type WithdrawTarget struct {
	Wallet      string  `json:"wallet,omitempty"`
	EndowmentID *uint32 `json:"endowment_id,omitempty"`
}

type WithdrawMsg struct {
	EndowmentID uint32         `json:"endowment_id"`
	AccountType string         `json:"account_type"`
	Beneficiary WithdrawTarget `json:"beneficiary"`
	Assets      []Asset        `json:"assets"`
}

type StrategyInvestment struct {
	StrategyKey  string    `json:"strategy_key"`
	LockedAmount math.Uint `json:"locked_amount"`
	LiquidAmount math.Uint `json:"liquid_amount"`
}

type StrategiesMsg struct {
	EndowmentID uint32               `json:"endowment_id"`
	Strategies  []StrategyInvestment `json:"strategies"`
}

type VaultReceiptMsg struct {
	EndowmentID  uint32    `json:"endowment_id"`
	LockedAmount math.Uint `json:"locked_amount"`
	LiquidAmount math.Uint `json:"liquid_amount"`
}

const (
	AllowanceAdd    = "add"
	AllowanceRemove = "remove"
)

type AllowanceMsg struct {
	EndowmentID uint32      `json:"endowment_id"`
	Action      string      `json:"action"`
	Spender     string      `json:"spender"`
	Asset       Asset       `json:"asset"`
	Expires     *Expiration `json:"expires,omitempty"`
}

type SpendAllowanceMsg struct {
	EndowmentID uint32 `json:"endowment_id"`
	Asset       Asset  `json:"asset"`
}

type CloseEndowmentMsg struct {
	EndowmentID uint32      `json:"endowment_id"`
	Beneficiary Beneficiary `json:"beneficiary"`
}

type DistributeMsg struct {
	EndowmentID uint32 `json:"endowment_id"`
}

type ResetPendingMsg struct {
	EndowmentID uint32 `json:"endowment_id"`
}

// QueryMsg is the set of read-only operations. Exactly one field is set.
type QueryMsg struct {
	Config    *struct{}       `json:"config,omitempty"`
	Endowment *EndowmentQuery `json:"endowment,omitempty"`
	State     *EndowmentQuery `json:"state,omitempty"`
	Allowance *AllowanceQuery `json:"allowance,omitempty"`
}

type EndowmentQuery struct {
	EndowmentID uint32 `json:"endowment_id"`
}

type AllowanceQuery struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}
