package repository

import (
	"accounts/domain"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/behrang/sqlbatch"
)

const (
	sqlAllowanceUpsert = `
	insert into allowances as c (
			owner, spender, info
		)
		values (
			$1, $2, $3::jsonb
		)
	on conflict (owner, spender) do
		update set
			info = $3::jsonb
`

	sqlAllowanceFind = `
	select
		info
	from allowances
	where owner = $1 and spender = $2
`
)

type AllowanceRepository struct {
	batchHandler BatchHandler
}

func NewAllowanceRepository(db BatchHandler) *AllowanceRepository {
	return &AllowanceRepository{batchHandler: db}
}

func readAllowance(scan func(...interface{}) error) (interface{}, error) {
	r := domain.Allowance{}
	var infoJson []byte
	if err := scan(&infoJson); err != nil {
		return nil, err
	}
	err := json.Unmarshal(infoJson, &r)
	return &r, err
}

func (repo *AllowanceRepository) UpsertCommand(a *domain.Allowance) (sqlbatch.Command, error) {
	infoJson, err := json.Marshal(a)
	if err != nil {
		return sqlbatch.Command{}, err
	}
	return sqlbatch.Command{
		Query: sqlAllowanceUpsert,
		Args: []interface{}{
			a.Owner, a.Spender, infoJson,
		},
		Affect: 1,
	}, nil
}

func (repo *AllowanceRepository) Find(owner, spender string) (*domain.Allowance, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlAllowanceFind,
			Args:    []interface{}{owner, spender},
			ReadOne: readAllowance,
		},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.Allowance)
	return result, nil
}
