package repository

import (
	"accounts/domain"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
)

const (
	sqlOutboxInsert = `
	insert into outbox as c (
			id, kind, message, state, retried, last_error, create_time, retry_time, sent_time
		)
		values (
			$1, $2, $3::jsonb, 'new', 0, '', $4, null, null
		)
`

	sqlOutboxFind = `
	select
		id, seq, message, state, retried, last_error, create_time, retry_time, sent_time
	from outbox
	where id = $1
`

	sqlOutboxFindAllTriable = `
	select
		id, seq, message, state, retried, last_error, create_time, retry_time, sent_time
	from outbox
	where (state in ('new', 'retriable') and retried < $1)
		or (state = 'ongoing' and retry_time < $2)
	order by seq
`

	sqlOutboxFindAwaitingReply = `
	select
		id, seq, message, state, retried, last_error, create_time, retry_time, sent_time
	from outbox
	where message->'tag' is not null
		and ((state = 'error' and message->>'reply_on' in ('error', 'always'))
			or (state = 'sent' and message->>'reply_on' = 'always'))
	order by seq
`

	sqlOutboxSettle = `
	update outbox
		set state = 'replied', last_error = $2
	where id = $1 and state = any($3)
`

	sqlOutboxSetState = `
	update outbox
		set state = $2, last_error = $3
	where id = $1
`

	sqlOutboxSetRetrying = `
	update outbox
		set retried = retried + 1, retry_time = $2, state = 'ongoing'
	where id = $1
`

	sqlOutboxSetSent = `
	update outbox
		set sent_time = $2, state = 'sent', last_error = ''
	where id = $1
`
)

type OutboxRepository struct {
	batchHandler BatchHandler
}

func NewOutboxRepository(db BatchHandler) *OutboxRepository {
	return &OutboxRepository{batchHandler: db}
}

func readOutbound(scan func(...interface{}) error) (interface{}, error) {
	r := domain.OutboundRequest{}
	var messageJson []byte
	err := scan(
		&r.ID, &r.Seq, &messageJson, &r.State, &r.Retried, &r.LastError, &r.CreateTime, &r.RetryTime, &r.SentTime,
	)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(messageJson, &r.Message)
	return &r, err
}

func readAllOutbound(all interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := domain.OutboundRequest{}
	var messageJson []byte
	err := scan(
		&r.ID, &r.Seq, &messageJson, &r.State, &r.Retried, &r.LastError, &r.CreateTime, &r.RetryTime, &r.SentTime,
	)
	if err == nil {
		err = json.Unmarshal(messageJson, &r.Message)
	}

	list := all.([]domain.OutboundRequest)
	list = append(list, r)
	return list, err
}

func (repo *OutboxRepository) InsertCommand(request domain.OutboundRequest) (sqlbatch.Command, error) {
	messageJson, err := json.Marshal(request.Message)
	if err != nil {
		return sqlbatch.Command{}, err
	}
	return sqlbatch.Command{
		Query: sqlOutboxInsert,
		Args: []interface{}{
			request.ID, request.Message.Msg.Kind(), messageJson, request.CreateTime,
		},
		Affect: 1,
	}, nil
}

// SettleCommand fails the batch when the message already left the expected
// states, which is how a second reply to the same message is refused.
func (repo *OutboxRepository) SettleCommand(settlement domain.RequestSettlement) sqlbatch.Command {
	return sqlbatch.Command{
		Query:  sqlOutboxSettle,
		Args:   []interface{}{settlement.ID, settlement.LastError, pq.Array(settlement.From)},
		Affect: 1,
	}
}

// Find returns nil when no message has the id.
func (repo *OutboxRepository) Find(id string) (*domain.OutboundRequest, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlOutboxFind,
			Args:    []interface{}{id},
			ReadOne: readOutbound,
		},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.OutboundRequest)
	return result, nil
}

func (repo *OutboxRepository) FindAllTriable(maxRetry int, staleBefore time.Time) ([]domain.OutboundRequest, error) {
	return repo.findAll(sqlOutboxFindAllTriable, maxRetry, staleBefore)
}

func (repo *OutboxRepository) FindAwaitingReply() ([]domain.OutboundRequest, error) {
	return repo.findAll(sqlOutboxFindAwaitingReply)
}

func (repo *OutboxRepository) findAll(query string, args ...interface{}) ([]domain.OutboundRequest, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   query,
			Args:    args,
			Init:    make([]domain.OutboundRequest, 0),
			ReadAll: readAllOutbound,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]domain.OutboundRequest)
	return result, nil
}

func (repo *OutboxRepository) SetState(id string, state string, lastError string) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlOutboxSetState,
			Args:   []interface{}{id, state, lastError},
			Affect: 1,
		},
	})
	return err
}

func (repo *OutboxRepository) SetRetrying(id string, timestamp time.Time) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlOutboxSetRetrying,
			Args:   []interface{}{id, timestamp},
			Affect: 1,
		},
	})
	return err
}

func (repo *OutboxRepository) SetSent(id string, timestamp time.Time) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlOutboxSetSent,
			Args:   []interface{}{id, timestamp},
			Affect: 1,
		},
	})
	return err
}
