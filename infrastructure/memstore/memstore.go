package memstore

import (
	"accounts/domain"
	"accounts/usecase"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrorNotFound     = fmt.Errorf("outbox message not found")
	ErrorStateChanged = fmt.Errorf("outbox message state changed")
)

// MemStore keeps the engine state in memory. Values are stored as JSON so a
// caller never shares memory with the store, the way rows work in a database.
type MemStore struct {
	mu sync.Mutex

	config     []byte
	endowments map[uint32][]byte
	states     map[uint32][]byte
	allowances map[string][]byte
	outbox     map[string]*domain.OutboundRequest
	seq        int64
}

func New() *MemStore {
	return &MemStore{
		endowments: make(map[uint32][]byte),
		states:     make(map[uint32][]byte),
		allowances: make(map[string][]byte),
		outbox:     make(map[string]*domain.OutboundRequest),
	}
}

func decode[T any](raw []byte) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

func (store *MemStore) FindConfig() (*domain.ContractConfig, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return decode[domain.ContractConfig](store.config)
}

func (store *MemStore) FindEndowment(id uint32) (*domain.Endowment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return decode[domain.Endowment](store.endowments[id])
}

func (store *MemStore) FindState(id uint32) (*domain.EndowmentState, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return decode[domain.EndowmentState](store.states[id])
}

func (store *MemStore) FindAllowance(owner, spender string) (*domain.Allowance, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return decode[domain.Allowance](store.allowances[owner+"/"+spender])
}

// Commit encodes every change first and only then applies them, so a failing
// change leaves the store untouched.
func (store *MemStore) Commit(changes *usecase.Changes) error {
	var err error
	var config []byte
	if changes.Config != nil {
		if config, err = json.Marshal(changes.Config); err != nil {
			return err
		}
	}
	endowments := make(map[uint32][]byte, len(changes.Endowments))
	for _, e := range changes.Endowments {
		if endowments[e.ID], err = json.Marshal(e); err != nil {
			return err
		}
	}
	states := make(map[uint32][]byte, len(changes.States))
	for _, s := range changes.States {
		if states[s.EndowmentID], err = json.Marshal(s); err != nil {
			return err
		}
	}
	allowances := make(map[string][]byte, len(changes.Allowances))
	for _, a := range changes.Allowances {
		if allowances[a.Owner+"/"+a.Spender], err = json.Marshal(a); err != nil {
			return err
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, settlement := range changes.Settled {
		r, err := store.find(settlement.ID)
		if err != nil {
			return err
		}
		if !containsState(settlement.From, r.State) {
			return fmt.Errorf("%w: %v is %v", ErrorStateChanged, r.ID, r.State)
		}
	}

	if config != nil {
		store.config = config
	}
	for id, raw := range endowments {
		store.endowments[id] = raw
	}
	for id, raw := range states {
		store.states[id] = raw
	}
	for key, raw := range allowances {
		store.allowances[key] = raw
	}
	for _, request := range changes.Outbox {
		store.seq++
		r := request
		r.Seq = store.seq
		store.outbox[r.ID] = &r
	}
	for _, settlement := range changes.Settled {
		r := store.outbox[settlement.ID]
		r.State = domain.RequestStateReplied
		r.LastError = settlement.LastError
	}
	return nil
}

func containsState(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

//-------------------------------------------------------------------
// Outbox

func (store *MemStore) FindRequest(id string) (*domain.OutboundRequest, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	r, ok := store.outbox[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (store *MemStore) FindAllTriable(maxRetry int, staleBefore time.Time) ([]domain.OutboundRequest, error) {
	return store.filter(func(r *domain.OutboundRequest) bool {
		switch r.State {
		case domain.RequestStateNew, domain.RequestStateRetriable:
			return r.Retried < maxRetry
		case domain.RequestStateOngoing:
			return r.RetryTime != nil && r.RetryTime.Before(staleBefore)
		}
		return false
	}), nil
}

func (store *MemStore) FindAwaitingReply() ([]domain.OutboundRequest, error) {
	return store.filter(func(r *domain.OutboundRequest) bool {
		switch r.State {
		case domain.RequestStateError:
			return r.AwaitsReply(true)
		case domain.RequestStateSent:
			return r.Message.Tag != nil && r.Message.ReplyOn == domain.ReplyAlways
		}
		return false
	}), nil
}

func (store *MemStore) filter(keep func(r *domain.OutboundRequest) bool) []domain.OutboundRequest {
	store.mu.Lock()
	defer store.mu.Unlock()

	list := make([]domain.OutboundRequest, 0)
	for _, r := range store.outbox {
		if keep(r) {
			list = append(list, *r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	return list
}

// All returns every outbox message in insertion order.
func (store *MemStore) All() []domain.OutboundRequest {
	store.mu.Lock()
	defer store.mu.Unlock()

	list := make([]domain.OutboundRequest, 0, len(store.outbox))
	for _, r := range store.outbox {
		list = append(list, *r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	return list
}

func (store *MemStore) find(id string) (*domain.OutboundRequest, error) {
	r, ok := store.outbox[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrorNotFound, id)
	}
	return r, nil
}

func (store *MemStore) SetRetrying(id string, timestamp time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	r, err := store.find(id)
	if err != nil {
		return err
	}
	r.Retried++
	r.RetryTime = &timestamp
	r.State = domain.RequestStateOngoing
	return nil
}

func (store *MemStore) SetSent(id string, timestamp time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	r, err := store.find(id)
	if err != nil {
		return err
	}
	r.SentTime = &timestamp
	r.State = domain.RequestStateSent
	return nil
}

func (store *MemStore) SetState(id string, state string, lastError string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	r, err := store.find(id)
	if err != nil {
		return err
	}
	r.State = state
	r.LastError = lastError
	return nil
}
