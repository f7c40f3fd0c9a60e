package domain

const (
	StrategyNotApproved  = "not_approved"
	StrategyApproved     = "approved"
	StrategyWithdrawOnly = "withdraw_only"
	StrategyDeprecated   = "deprecated"
)

const (
	StrategyLocaleNative = "native"
	StrategyLocaleIbc    = "ibc"
	StrategyLocaleEvm    = "evm"
)

// StrategyParams is the registrar's view of an external vault.
type StrategyParams struct {
	Key           string    `json:"key" mapstructure:"key"`
	ApprovalState string    `json:"approval_state" mapstructure:"approval_state"`
	Locale        string    `json:"locale" mapstructure:"locale"`
	InputDenom    AssetInfo `json:"input_denom" mapstructure:"input_denom"`
	Address       string    `json:"address" mapstructure:"address"`
	Network       string    `json:"network" mapstructure:"network"`
}

func (s *StrategyParams) IsApproved() bool {
	return s.ApprovalState == StrategyApproved
}

// IsRedeemable reports whether redeem requests may be sent to the strategy.
func (s *StrategyParams) IsRedeemable() bool {
	return s.ApprovalState == StrategyApproved || s.ApprovalState == StrategyWithdrawOnly
}

func (s *StrategyParams) IsRemote() bool {
	return s.Locale == StrategyLocaleIbc || s.Locale == StrategyLocaleEvm
}

// NetworkInfo is the connection data needed to route messages to a non native strategy.
type NetworkInfo struct {
	ChainID         string `json:"chain_id" mapstructure:"chain_id"`
	TransferChannel string `json:"transfer_channel" mapstructure:"transfer_channel"`
	GatewayAddress  string `json:"gateway_address" mapstructure:"gateway_address"`
}
