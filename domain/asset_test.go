package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetInfoValidate(t *testing.T) {
	assert.NoError(t, luna.Validate())
	assert.NoError(t, token.Validate())
	assert.Error(t, NativeInfo("").Validate())
	assert.Error(t, AssetInfo{Kind: "erc20", Ref: "0xabc"}.Validate())
}

func TestAssetJSONMissingAmount(t *testing.T) {
	var asset Asset
	require.NoError(t, json.Unmarshal([]byte(`{"info":{"kind":"native","ref":"uluna"}}`), &asset))
	assert.Equal(t, luna, asset.Info)
	assert.True(t, Amount(asset.Amount).IsZero())
}

func TestTransferMsg(t *testing.T) {
	msg := TransferMsg("terra1dest", NewAsset(luna, 5))
	require.NotNil(t, msg.BankSend)
	assert.Equal(t, "bank_send", msg.Kind())
	assert.Equal(t, "terra1dest", msg.BankSend.ToAddress)
	assert.Equal(t, "uluna", msg.BankSend.Amount[0].Denom)

	msg = TransferMsg("terra1dest", NewAsset(token, 5))
	require.NotNil(t, msg.Cw20Transfer)
	assert.Equal(t, "cw20_transfer", msg.Kind())
	assert.Equal(t, token.Ref, msg.Cw20Transfer.Contract)
	assertAmount(t, 5, msg.Cw20Transfer.Amount)
}

func TestBeneficiaryValidate(t *testing.T) {
	assert.NoError(t, WalletBeneficiary("terra1heir").Validate())
	assert.NoError(t, EndowmentBeneficiary(2).Validate())
	assert.NoError(t, IndexFundBeneficiary(1).Validate())
	assert.Error(t, WalletBeneficiary("").Validate())
	assert.Error(t, Beneficiary{Kind: BeneficiaryEndowment, ID: 2, Address: "x"}.Validate())
	assert.Error(t, Beneficiary{Kind: "dao"}.Validate())

	assert.Equal(t, "wallet:terra1heir", WalletBeneficiary("terra1heir").String())
	assert.Equal(t, "index_fund:1", IndexFundBeneficiary(1).String())
}

func TestIndexFundMembers(t *testing.T) {
	fund := IndexFund{ID: 1, Members: []uint32{2, 3, 4}}
	assert.True(t, fund.Contains(3))
	assert.False(t, fund.Contains(5))
	assert.Equal(t, []uint32{2, 4}, fund.Excluding(3))
	assert.Equal(t, []uint32{2, 3, 4}, fund.Excluding(9))
}
