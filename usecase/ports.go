package usecase

import (
	"accounts/domain"
	"context"
	"time"

	"cosmossdk.io/math"
)

// Changes is everything a unit of work writes. It is committed atomically.
type Changes struct {
	Config     *domain.ContractConfig
	Endowments []*domain.Endowment
	States     []*domain.EndowmentState
	Allowances []*domain.Allowance
	Outbox     []domain.OutboundRequest
	// Settled outbox messages. A settlement whose message left its From states
	// fails the whole commit.
	Settled []domain.RequestSettlement
}

func (c *Changes) IsEmpty() bool {
	return c.Config == nil && len(c.Endowments) == 0 && len(c.States) == 0 &&
		len(c.Allowances) == 0 && len(c.Outbox) == 0 && len(c.Settled) == 0
}

// Store is the keyed persistence of the engine. Find methods return nil with a
// nil error when the key does not exist.
type Store interface {
	FindConfig() (*domain.ContractConfig, error)
	FindEndowment(id uint32) (*domain.Endowment, error)
	FindState(id uint32) (*domain.EndowmentState, error)
	FindAllowance(owner, spender string) (*domain.Allowance, error)
	FindRequest(id string) (*domain.OutboundRequest, error)
	Commit(changes *Changes) error
}

// Outbox is the delivery side of the persisted outbound messages.
type Outbox interface {
	// FindAllTriable returns new and retriable messages below maxRetry, and
	// ongoing ones whose last try started before staleBefore, in order.
	FindAllTriable(maxRetry int, staleBefore time.Time) ([]domain.OutboundRequest, error)
	// FindAwaitingReply returns delivered or failed messages whose tagged
	// continuation has not run yet, in order.
	FindAwaitingReply() ([]domain.OutboundRequest, error)
	SetRetrying(id string, timestamp time.Time) error
	SetSent(id string, timestamp time.Time) error
	SetState(id string, state string, lastError string) error
}

type Registrar interface {
	Config() (*domain.RegistrarConfig, error)
	Strategy(key string) (*domain.StrategyParams, error)
	StrategyByAddress(address string) (*domain.StrategyParams, error)
	Network(chainID string) (*domain.NetworkInfo, error)
}

type IndexFunds interface {
	IndexFund(id uint32) (*domain.IndexFund, error)
	// FundsOf returns the funds having the endowment as a member, ordered by id.
	FundsOf(endowmentID uint32) ([]domain.IndexFund, error)
}

// Vaults reports what an endowment holds inside a strategy.
type Vaults interface {
	Balance(ctx context.Context, strategy *domain.StrategyParams, endowmentID uint32) (locked math.Uint, liquid math.Uint, err error)
}

// Dispatcher hands an outbound message to the host for execution.
type Dispatcher interface {
	Dispatch(ctx context.Context, request *domain.OutboundRequest) error
}
