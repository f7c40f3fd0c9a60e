package domain

import (
	"cosmossdk.io/math"
)

// CosmosMsg is an outbound message. Exactly one field is set. Self messages are
// executed by the engine inside the same unit of work and are never persisted.
type CosmosMsg struct {
	BankSend     *BankSendMsg     `json:"bank_send,omitempty"`
	Cw20Transfer *Cw20TransferMsg `json:"cw20_transfer,omitempty"`
	VaultInvest  *VaultInvestMsg  `json:"vault_invest,omitempty"`
	VaultRedeem  *VaultRedeemMsg  `json:"vault_redeem,omitempty"`
	IbcEnvelope  *IbcEnvelopeMsg  `json:"ibc_envelope,omitempty"`
	Self         *SelfMsg         `json:"self,omitempty"`
}

func (m CosmosMsg) Kind() string {
	switch {
	case m.BankSend != nil:
		return "bank_send"
	case m.Cw20Transfer != nil:
		return "cw20_transfer"
	case m.VaultInvest != nil:
		return "vault_invest"
	case m.VaultRedeem != nil:
		return "vault_redeem"
	case m.IbcEnvelope != nil:
		return "ibc_envelope"
	case m.Self != nil:
		return "self"
	}
	return "unknown"
}

type BankSendMsg struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

type Cw20TransferMsg struct {
	Contract  string    `json:"contract"`
	Recipient string    `json:"recipient"`
	Amount    math.Uint `json:"amount"`
}

// VaultInvestMsg deposits LockedAmount+LiquidAmount of Asset into a vault on behalf
// of an endowment.
type VaultInvestMsg struct {
	Vault        string    `json:"vault"`
	EndowmentID  uint32    `json:"endowment_id"`
	Asset        AssetInfo `json:"asset"`
	LockedAmount math.Uint `json:"locked_amount"`
	LiquidAmount math.Uint `json:"liquid_amount"`
}

type VaultRedeemMsg struct {
	Vault        string    `json:"vault"`
	EndowmentID  uint32    `json:"endowment_id"`
	LockedAmount math.Uint `json:"locked_amount"`
	LiquidAmount math.Uint `json:"liquid_amount"`
}

// IbcEnvelopeMsg wraps a vault message for a strategy living on another network.
type IbcEnvelopeMsg struct {
	ChainID  string          `json:"chain_id"`
	Channel  string          `json:"channel"`
	Gateway  string          `json:"gateway"`
	Strategy string          `json:"strategy"`
	Funds    *Asset          `json:"funds,omitempty"`
	Invest   *VaultInvestMsg `json:"invest,omitempty"`
	Redeem   *VaultRedeemMsg `json:"redeem,omitempty"`
}

type SelfMsg struct {
	Msg   ExecuteMsg `json:"msg"`
	Funds []Asset    `json:"funds"`
}

// TransferMsg sends asset to address with a bank send or a cw20 transfer.
func TransferMsg(to string, asset Asset) CosmosMsg {
	if asset.Info.IsNative() {
		return CosmosMsg{BankSend: &BankSendMsg{
			ToAddress: to,
			Amount:    []Coin{{Denom: asset.Info.Ref, Amount: asset.Amount}},
		}}
	}
	return CosmosMsg{Cw20Transfer: &Cw20TransferMsg{
		Contract:  asset.Info.Ref,
		Recipient: to,
		Amount:    asset.Amount,
	}}
}

const (
	ReplyNever   = "never"
	ReplyOnError = "error"
	ReplyAlways  = "always"
)

const (
	ReplyKindInvest = "invest"
	ReplyKindRedeem = "redeem"
)

// ReplyTag is the continuation context stored with a dispatched message so the
// engine can resume when the result is known.
type ReplyTag struct {
	Kind         string    `json:"kind"`
	EndowmentID  uint32    `json:"endowment_id"`
	StrategyKey  string    `json:"strategy_key,omitempty"`
	Asset        AssetInfo `json:"asset"`
	LockedAmount math.Uint `json:"locked_amount"`
	LiquidAmount math.Uint `json:"liquid_amount"`
}

type SubMsg struct {
	ID      string    `json:"id"`
	Msg     CosmosMsg `json:"msg"`
	ReplyOn string    `json:"reply_on"`
	Tag     *ReplyTag `json:"tag,omitempty"`
}

// Reply reports the outcome of a SubMsg back to the engine. The continuation
// is looked up from the stored message.
type Reply struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (r Reply) Failed() bool {
	return r.Error != ""
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Response struct {
	Messages   []SubMsg    `json:"messages"`
	Attributes []Attribute `json:"attributes"`
}
