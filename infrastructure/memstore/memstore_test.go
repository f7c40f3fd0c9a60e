package memstore

import (
	"accounts/domain"
	"accounts/usecase"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreReturnsCopies(t *testing.T) {
	store := New()

	state := domain.NewEndowmentState(1)
	require.NoError(t, state.Credit(domain.AccountTypeLocked, domain.NewAsset(domain.NativeInfo("uluna"), 10)))
	require.NoError(t, store.Commit(&usecase.Changes{States: []*domain.EndowmentState{state}}))

	loaded, err := store.FindState(1)
	require.NoError(t, err)
	require.NoError(t, loaded.Debit(domain.AccountTypeLocked, domain.NewAsset(domain.NativeInfo("uluna"), 10)))

	again, err := store.FindState(1)
	require.NoError(t, err)
	assert.Equal(t, "10", again.BalanceOf(domain.AccountTypeLocked, domain.NativeInfo("uluna")).String())

	missing, err := store.FindEndowment(1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	allowance, err := store.FindAllowance("owner", "spender")
	require.NoError(t, err)
	assert.Nil(t, allowance)
}

func TestMemStoreOutbox(t *testing.T) {
	store := New()
	now := time.Now()
	changes := &usecase.Changes{
		Config: &domain.ContractConfig{Owner: "owner", Registrar: "registrar", NextEndowmentID: 1},
		Outbox: []domain.OutboundRequest{
			{ID: "a", State: domain.RequestStateNew, CreateTime: now},
			{ID: "b", State: domain.RequestStateNew, CreateTime: now},
		},
	}
	require.NoError(t, store.Commit(changes))

	config, err := store.FindConfig()
	require.NoError(t, err)
	assert.Equal(t, "owner", config.Owner)

	list, err := store.FindAllTriable(3, now)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Less(t, list[0].Seq, list[1].Seq)

	require.NoError(t, store.SetRetrying("a", now))
	require.NoError(t, store.SetSent("a", now))
	require.NoError(t, store.SetRetrying("b", now))
	require.NoError(t, store.SetState("b", domain.RequestStateRetriable, "boom"))

	list, err = store.FindAllTriable(3, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 1, list[0].Retried)
	assert.Equal(t, "boom", list[0].LastError)

	list, err = store.FindAllTriable(1, now)
	require.NoError(t, err)
	assert.Empty(t, list)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, domain.RequestStateSent, all[0].State)
	assert.NotNil(t, all[0].SentTime)

	assert.True(t, errors.Is(store.SetSent("c", now), ErrorNotFound))
}

func TestMemStoreSettlement(t *testing.T) {
	store := New()
	now := time.Now()
	tag := &domain.ReplyTag{Kind: domain.ReplyKindInvest, EndowmentID: 1}
	require.NoError(t, store.Commit(&usecase.Changes{Outbox: []domain.OutboundRequest{
		{ID: "a", State: domain.RequestStateNew, CreateTime: now, Message: domain.SubMsg{ID: "a", ReplyOn: domain.ReplyOnError, Tag: tag}},
		{ID: "b", State: domain.RequestStateNew, CreateTime: now, Message: domain.SubMsg{ID: "b", ReplyOn: domain.ReplyNever}},
	}}))

	missing, err := store.FindRequest("c")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SetRetrying("a", now.Add(-time.Hour)))
	require.NoError(t, store.SetRetrying("b", now))
	list, err := store.FindAllTriable(3, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	require.NoError(t, store.SetState("a", domain.RequestStateError, "boom"))
	require.NoError(t, store.SetState("b", domain.RequestStateError, "boom"))
	list, err = store.FindAwaitingReply()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	settle := &usecase.Changes{
		States:  []*domain.EndowmentState{domain.NewEndowmentState(1)},
		Settled: []domain.RequestSettlement{{ID: "a", From: []string{domain.RequestStateError}, LastError: "boom"}},
	}
	require.NoError(t, store.Commit(settle))

	request, err := store.FindRequest("a")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStateReplied, request.State)

	list, err = store.FindAwaitingReply()
	require.NoError(t, err)
	assert.Empty(t, list)

	again := &usecase.Changes{
		States:  []*domain.EndowmentState{domain.NewEndowmentState(2)},
		Settled: []domain.RequestSettlement{{ID: "a", From: []string{domain.RequestStateError}}},
	}
	assert.True(t, errors.Is(store.Commit(again), ErrorStateChanged))
	state, err := store.FindState(2)
	require.NoError(t, err)
	assert.Nil(t, state, "a refused settlement leaves the store untouched")

	unknown := &usecase.Changes{Settled: []domain.RequestSettlement{{ID: "z", From: []string{domain.RequestStateError}}}}
	assert.True(t, errors.Is(store.Commit(unknown), ErrorNotFound))
}
