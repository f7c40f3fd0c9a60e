package repository

import (
	"accounts/domain"
	"accounts/usecase"
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBatch answers every ReadOne command with row, or sql.ErrNoRows when row
// is nil, and keeps the batches it was given.
type fakeBatch struct {
	opts    []*sql.TxOptions
	batches [][]sqlbatch.Command
	row     []interface{}
	err     error
}

func (f *fakeBatch) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {
	f.opts = append(f.opts, opts)
	f.batches = append(f.batches, commands)
	if f.err != nil {
		return nil, f.err
	}

	results := make([]interface{}, len(commands))
	for i, command := range commands {
		if command.ReadOne == nil {
			continue
		}
		if f.row == nil {
			return nil, sql.ErrNoRows
		}
		result, err := command.ReadOne(func(dest ...interface{}) error {
			for j, d := range dest {
				reflect.ValueOf(d).Elem().Set(reflect.ValueOf(f.row[j]))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

func outboxRow(t *testing.T, id string, state string) []interface{} {
	message, err := json.Marshal(domain.SubMsg{
		ID:      id,
		Msg:     domain.TransferMsg("terra1vault", domain.NewAsset(domain.NativeInfo("uluna"), 40)),
		ReplyOn: domain.ReplyOnError,
		Tag: &domain.ReplyTag{
			Kind:         domain.ReplyKindInvest,
			EndowmentID:  1,
			StrategyKey:  "vault-a",
			Asset:        domain.NativeInfo("uluna"),
			LockedAmount: math.NewUint(40),
			LiquidAmount: math.ZeroUint(),
		},
	})
	require.NoError(t, err)
	sent := time.Now()
	return []interface{}{id, int64(7), message, state, 1, "", sent, &sent, &sent}
}

func TestFindRequestReadsTheOutbox(t *testing.T) {
	db := &fakeBatch{row: outboxRow(t, "m-1", domain.RequestStateSent)}
	repo := NewAccountsRepository(db)

	request, err := repo.FindRequest("m-1")
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, "m-1", request.ID)
	assert.Equal(t, int64(7), request.Seq)
	assert.Equal(t, domain.RequestStateSent, request.State)
	require.NotNil(t, request.Message.Tag)
	assert.Equal(t, "vault-a", request.Message.Tag.StrategyKey)
	assert.True(t, request.AwaitsReply(true))
	assert.False(t, request.AwaitsReply(false))

	require.Len(t, db.batches, 1)
	assert.Equal(t, &BatchOptionNormalReadOnly, db.opts[0])
	assert.Equal(t, sqlOutboxFind, db.batches[0][0].Query)
	assert.Equal(t, []interface{}{"m-1"}, db.batches[0][0].Args)
}

func TestFindRequestMissing(t *testing.T) {
	repo := NewAccountsRepository(&fakeBatch{})

	request, err := repo.FindRequest("m-1")
	require.NoError(t, err)
	assert.Nil(t, request)

	boom := errors.New("connection reset")
	repo = NewAccountsRepository(&fakeBatch{err: boom})
	_, err = repo.FindRequest("m-1")
	assert.ErrorIs(t, err, boom)
}

func TestCommitSettlesInTheSameBatch(t *testing.T) {
	db := &fakeBatch{}
	repo := NewAccountsRepository(db)

	from := []string{domain.RequestStateSent, domain.RequestStateError}
	err := repo.Commit(&usecase.Changes{
		Settled: []domain.RequestSettlement{{ID: "m-1", From: from, LastError: "vault paused"}},
	})
	require.NoError(t, err)

	require.Len(t, db.batches, 1)
	assert.Equal(t, &BatchOptionSerializable, db.opts[0])
	commands := db.batches[0]
	settle := commands[len(commands)-1]
	assert.Equal(t, sqlOutboxSettle, settle.Query)
	assert.Equal(t, int64(1), int64(settle.Affect))
	assert.Equal(t, []interface{}{"m-1", "vault paused", pq.Array(from)}, settle.Args)
}
