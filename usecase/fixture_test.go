package usecase_test

import (
	"accounts/domain"
	"accounts/infrastructure/memstore"
	"accounts/infrastructure/registrar"
	"accounts/usecase"
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

const (
	contractAddress  = "terra1accounts"
	configOwner      = "terra1admin"
	registrarAddress = "terra1registrar"
	treasuryAddress  = "terra1treasury"
	indexFundAddress = "terra1indexfund"
	endowmentOwner   = "terra1owner"
	donor            = "terra1donor"
	stranger         = "terra1stranger"
	cw20Token        = "terra1token"

	vaultA      = "terra1vaulta"
	vaultB      = "terra1vaultb"
	vaultLegacy = "terra1vaultlegacy"
	vaultOff    = "terra1vaultoff"
	vaultRemote = "juno1vault"
	vaultToken  = "terra1vaulttoken"
)

var luna = domain.NativeInfo("uluna")

func dec(s string) math.LegacyDec {
	return math.LegacyMustNewDecFromStr(s)
}

func newRegistrar() *registrar.StaticRegistrar {
	config := domain.RegistrarConfig{
		Treasury:         treasuryAddress,
		IndexFundAddress: indexFundAddress,
		AcceptedTokens: domain.AcceptedTokens{
			Native: []string{"uluna"},
			Cw20:   []string{cw20Token},
		},
		SplitToLiquid:      domain.SplitDetails{Min: dec("0"), Max: dec("1"), Default: dec("0.5")},
		WithdrawFeeCharity: dec("0.02"),
		WithdrawFeeNormal:  dec("0.01"),
	}
	strategies := []domain.StrategyParams{
		{Key: "vault-a", ApprovalState: domain.StrategyApproved, Locale: domain.StrategyLocaleNative, InputDenom: luna, Address: vaultA},
		{Key: "vault-b", ApprovalState: domain.StrategyApproved, Locale: domain.StrategyLocaleNative, InputDenom: luna, Address: vaultB},
		{Key: "vault-legacy", ApprovalState: domain.StrategyWithdrawOnly, Locale: domain.StrategyLocaleNative, InputDenom: luna, Address: vaultLegacy},
		{Key: "vault-off", ApprovalState: domain.StrategyNotApproved, Locale: domain.StrategyLocaleNative, InputDenom: luna, Address: vaultOff},
		{Key: "vault-token", ApprovalState: domain.StrategyApproved, Locale: domain.StrategyLocaleNative, InputDenom: domain.Cw20Info(cw20Token), Address: vaultToken},
		{Key: "vault-remote", ApprovalState: domain.StrategyApproved, Locale: domain.StrategyLocaleIbc, InputDenom: luna, Address: vaultRemote, Network: "juno-1"},
	}
	networks := map[string]domain.NetworkInfo{
		"juno-1": {ChainID: "juno-1", TransferChannel: "channel-7", GatewayAddress: "juno1gateway"},
	}
	funds := []domain.IndexFund{
		{ID: 1, Name: "global", Members: []uint32{2, 3, 4}},
		{ID: 2, Name: "solo", Members: []uint32{5}},
	}

	reg, err := registrar.New(config, strategies, networks, funds)
	if err != nil {
		panic(err)
	}
	return reg
}

// fakeVaults answers balance queries from a map keyed by strategy key.
type fakeVaults struct {
	mu       sync.Mutex
	balances map[string][2]uint64
	err      error
}

func newFakeVaults() *fakeVaults {
	return &fakeVaults{balances: make(map[string][2]uint64)}
}

func (v *fakeVaults) set(key string, locked, liquid uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balances[key] = [2]uint64{locked, liquid}
}

func (v *fakeVaults) Balance(_ context.Context, strategy *domain.StrategyParams, _ uint32) (math.Uint, math.Uint, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return math.ZeroUint(), math.ZeroUint(), v.err
	}
	b := v.balances[strategy.Key]
	return math.NewUint(b[0]), math.NewUint(b[1]), nil
}

// fakeDispatcher fails the first failures[kind] dispatches of each message kind.
type fakeDispatcher struct {
	mu         sync.Mutex
	failures   map[string]int
	dispatched []domain.OutboundRequest
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{failures: make(map[string]int)}
}

func (d *fakeDispatcher) Dispatch(_ context.Context, request *domain.OutboundRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kind := request.Message.Msg.Kind()
	if d.failures[kind] > 0 {
		d.failures[kind]--
		return fmt.Errorf("host unavailable")
	}
	d.dispatched = append(d.dispatched, *request)
	return nil
}

func newAccounts(store *memstore.MemStore, vaults usecase.Vaults) *usecase.AccountsInteractor {
	reg := newRegistrar()
	accounts := usecase.NewAccountsInteractor(store, reg, reg, vaults, contractAddress)
	if _, err := accounts.Instantiate(configOwner, registrarAddress); err != nil {
		panic(err)
	}
	return accounts
}
