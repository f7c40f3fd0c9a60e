package usecase

import (
	"accounts/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// txn is a unit of work: entities are loaded once, mutated in memory and only
// the saved ones are written back by commit.
type txn struct {
	store Store

	config     *domain.ContractConfig
	endowments map[uint32]*domain.Endowment
	states     map[uint32]*domain.EndowmentState
	allowances map[string]*domain.Allowance

	configDirty    bool
	dirtyEndowment []uint32
	dirtyState     []uint32
	dirtyAllowance []string
	outbox         []domain.OutboundRequest
	settled        []domain.RequestSettlement
}

func newTxn(store Store) *txn {
	return &txn{
		store:      store,
		endowments: make(map[uint32]*domain.Endowment),
		states:     make(map[uint32]*domain.EndowmentState),
		allowances: make(map[string]*domain.Allowance),
	}
}

func (tx *txn) loadConfig() (*domain.ContractConfig, error) {
	if tx.config != nil {
		return tx.config, nil
	}
	config, err := tx.store.FindConfig()
	if err != nil {
		return nil, domain.StdError(err)
	}
	if config == nil {
		return nil, domain.StdError(fmt.Errorf("contract config is not initialized"))
	}
	tx.config = config
	return config, nil
}

func (tx *txn) saveConfig(config *domain.ContractConfig) {
	tx.config = config
	tx.configDirty = true
}

func (tx *txn) loadEndowment(id uint32) (*domain.Endowment, error) {
	if e, ok := tx.endowments[id]; ok {
		return e, nil
	}
	e, err := tx.store.FindEndowment(id)
	if err != nil {
		return nil, domain.StdError(err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrorEndowmentNotFound, id)
	}
	tx.endowments[id] = e
	return e, nil
}

func (tx *txn) saveEndowment(e *domain.Endowment) {
	if !containsID(tx.dirtyEndowment, e.ID) {
		tx.dirtyEndowment = append(tx.dirtyEndowment, e.ID)
	}
	tx.endowments[e.ID] = e
}

// loadState returns an empty ledger for an endowment that never held funds.
func (tx *txn) loadState(id uint32) (*domain.EndowmentState, error) {
	if s, ok := tx.states[id]; ok {
		return s, nil
	}
	s, err := tx.store.FindState(id)
	if err != nil {
		return nil, domain.StdError(err)
	}
	if s == nil {
		s = domain.NewEndowmentState(id)
	}
	tx.states[id] = s
	return s, nil
}

func (tx *txn) saveState(s *domain.EndowmentState) {
	if !containsID(tx.dirtyState, s.EndowmentID) {
		tx.dirtyState = append(tx.dirtyState, s.EndowmentID)
	}
	tx.states[s.EndowmentID] = s
}

func allowanceKey(owner, spender string) string {
	return owner + "/" + spender
}

// loadAllowance returns nil when no allowance exists for the pair.
func (tx *txn) loadAllowance(owner, spender string) (*domain.Allowance, error) {
	key := allowanceKey(owner, spender)
	if a, ok := tx.allowances[key]; ok {
		return a, nil
	}
	a, err := tx.store.FindAllowance(owner, spender)
	if err != nil {
		return nil, domain.StdError(err)
	}
	if a != nil {
		tx.allowances[key] = a
	}
	return a, nil
}

func (tx *txn) saveAllowance(a *domain.Allowance) {
	key := allowanceKey(a.Owner, a.Spender)
	found := false
	for _, k := range tx.dirtyAllowance {
		if k == key {
			found = true
			break
		}
	}
	if !found {
		tx.dirtyAllowance = append(tx.dirtyAllowance, key)
	}
	tx.allowances[key] = a
}

// enqueue records an outbound message and assigns its id.
func (tx *txn) enqueue(msg domain.SubMsg, now time.Time) domain.SubMsg {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	tx.outbox = append(tx.outbox, domain.OutboundRequest{
		ID:         msg.ID,
		Message:    msg,
		State:      domain.RequestStateNew,
		CreateTime: now,
	})
	return msg
}

// loadRequest returns the stored outbox message with the given id.
func (tx *txn) loadRequest(id string) (*domain.OutboundRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed message id %q", domain.ErrorInvalidInputs, id)
	}
	request, err := tx.store.FindRequest(id)
	if err != nil {
		return nil, domain.StdError(err)
	}
	if request == nil {
		return nil, fmt.Errorf("%w: unknown message %v", domain.ErrorInvalidInputs, id)
	}
	return request, nil
}

func (tx *txn) settle(settlement domain.RequestSettlement) {
	tx.settled = append(tx.settled, settlement)
}

func (tx *txn) changes() *Changes {
	changes := &Changes{Outbox: tx.outbox, Settled: tx.settled}
	if tx.configDirty {
		changes.Config = tx.config
	}
	for _, id := range tx.dirtyEndowment {
		changes.Endowments = append(changes.Endowments, tx.endowments[id])
	}
	for _, id := range tx.dirtyState {
		changes.States = append(changes.States, tx.states[id])
	}
	for _, key := range tx.dirtyAllowance {
		changes.Allowances = append(changes.Allowances, tx.allowances[key])
	}
	return changes
}

func (tx *txn) commit() error {
	changes := tx.changes()
	if changes.IsEmpty() {
		return nil
	}
	if err := tx.store.Commit(changes); err != nil {
		return domain.StdError(err)
	}
	return nil
}

func containsID(list []uint32, id uint32) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
