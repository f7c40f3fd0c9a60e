package repository

import (
	"accounts/domain"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/behrang/sqlbatch"
)

const (
	sqlEndowmentUpsert = `
	insert into endowments as c (
			id, owner, status, info, update_time
		)
		values (
			$1, $2, $3, $4::jsonb, now()
		)
	on conflict (id) do
		update set
			owner = $2, status = $3, info = $4::jsonb, update_time = now()
`

	sqlEndowmentFind = `
	select
		info
	from endowments
	where id = $1
`

	sqlStateUpsert = `
	insert into endowment_states as c (
			endowment_id, closing, info, update_time
		)
		values (
			$1, $2, $3::jsonb, now()
		)
	on conflict (endowment_id) do
		update set
			closing = $2, info = $3::jsonb, update_time = now()
`

	sqlStateFind = `
	select
		info
	from endowment_states
	where endowment_id = $1
`
)

type EndowmentRepository struct {
	batchHandler BatchHandler
}

func NewEndowmentRepository(db BatchHandler) *EndowmentRepository {
	return &EndowmentRepository{batchHandler: db}
}

func readEndowment(scan func(...interface{}) error) (interface{}, error) {
	r := domain.Endowment{}
	var infoJson []byte
	if err := scan(&infoJson); err != nil {
		return nil, err
	}
	err := json.Unmarshal(infoJson, &r)
	return &r, err
}

func readState(scan func(...interface{}) error) (interface{}, error) {
	r := domain.EndowmentState{}
	var infoJson []byte
	if err := scan(&infoJson); err != nil {
		return nil, err
	}
	err := json.Unmarshal(infoJson, &r)
	return &r, err
}

func (repo *EndowmentRepository) UpsertCommand(e *domain.Endowment) (sqlbatch.Command, error) {
	infoJson, err := json.Marshal(e)
	if err != nil {
		return sqlbatch.Command{}, err
	}
	return sqlbatch.Command{
		Query: sqlEndowmentUpsert,
		Args: []interface{}{
			e.ID, e.Owner, e.Status, infoJson,
		},
		Affect: 1,
	}, nil
}

func (repo *EndowmentRepository) UpsertStateCommand(s *domain.EndowmentState) (sqlbatch.Command, error) {
	infoJson, err := json.Marshal(s)
	if err != nil {
		return sqlbatch.Command{}, err
	}
	return sqlbatch.Command{
		Query: sqlStateUpsert,
		Args: []interface{}{
			s.EndowmentID, s.ClosingEndowment, infoJson,
		},
		Affect: 1,
	}, nil
}

func (repo *EndowmentRepository) Find(id uint32) (*domain.Endowment, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlEndowmentFind,
			Args:    []interface{}{id},
			ReadOne: readEndowment,
		},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.Endowment)
	return result, nil
}

func (repo *EndowmentRepository) FindState(id uint32) (*domain.EndowmentState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlStateFind,
			Args:    []interface{}{id},
			ReadOne: readState,
		},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.EndowmentState)
	return result, nil
}
