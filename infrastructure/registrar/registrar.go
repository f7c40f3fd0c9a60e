package registrar

import (
	"accounts/domain"
	"fmt"
	"sort"
)

// StaticRegistrar serves the registrar view and the index fund registry from
// configuration loaded at startup.
type StaticRegistrar struct {
	config     domain.RegistrarConfig
	strategies map[string]domain.StrategyParams
	networks   map[string]domain.NetworkInfo
	funds      []domain.IndexFund
}

func New(config domain.RegistrarConfig,
	strategies []domain.StrategyParams,
	networks map[string]domain.NetworkInfo,
	funds []domain.IndexFund) (*StaticRegistrar, error) {

	registrar := &StaticRegistrar{
		config:     config,
		strategies: make(map[string]domain.StrategyParams, len(strategies)),
		networks:   networks,
		funds:      append([]domain.IndexFund{}, funds...),
	}
	if registrar.networks == nil {
		registrar.networks = make(map[string]domain.NetworkInfo)
	}

	for _, s := range strategies {
		if s.Key == "" || s.Address == "" {
			return nil, fmt.Errorf("%w: strategy without key or address", domain.ErrorInvalidStrategies)
		}
		if err := s.InputDenom.Validate(); err != nil {
			return nil, fmt.Errorf("%w: strategy %v - %v", domain.ErrorInvalidStrategies, s.Key, err)
		}
		if s.IsRemote() {
			if _, ok := registrar.networks[s.Network]; !ok {
				return nil, fmt.Errorf("%w: strategy %v uses unknown network %q", domain.ErrorInvalidStrategies, s.Key, s.Network)
			}
		}
		registrar.strategies[s.Key] = s
	}

	sort.Slice(registrar.funds, func(i, j int) bool { return registrar.funds[i].ID < registrar.funds[j].ID })
	return registrar, nil
}

// FromConfig builds the registrar from the values read by domain.ReadConfig.
func FromConfig() (*StaticRegistrar, error) {
	return New(domain.GetRegistrarConfig(), domain.GetStrategies(), domain.GetNetworks(), domain.GetIndexFunds())
}

func (registrar *StaticRegistrar) Config() (*domain.RegistrarConfig, error) {
	config := registrar.config
	return &config, nil
}

func (registrar *StaticRegistrar) Strategy(key string) (*domain.StrategyParams, error) {
	s, ok := registrar.strategies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrorStrategyNotFound, key)
	}
	return &s, nil
}

func (registrar *StaticRegistrar) StrategyByAddress(address string) (*domain.StrategyParams, error) {
	for _, s := range registrar.strategies {
		if s.Address == address {
			found := s
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: no strategy at %v", domain.ErrorStrategyNotFound, address)
}

func (registrar *StaticRegistrar) Network(chainID string) (*domain.NetworkInfo, error) {
	n, ok := registrar.networks[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown network %q", domain.ErrorInvalidInputs, chainID)
	}
	return &n, nil
}

func (registrar *StaticRegistrar) IndexFund(id uint32) (*domain.IndexFund, error) {
	for _, fund := range registrar.funds {
		if fund.ID == id {
			found := fund
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: index fund %v", domain.ErrorInvalidInputs, id)
}

func (registrar *StaticRegistrar) FundsOf(endowmentID uint32) ([]domain.IndexFund, error) {
	funds := make([]domain.IndexFund, 0)
	for _, fund := range registrar.funds {
		if fund.Contains(endowmentID) {
			funds = append(funds, fund)
		}
	}
	return funds, nil
}
