package repository

import (
	"accounts/domain"
	"accounts/usecase"

	"github.com/behrang/sqlbatch"
)

// AccountsRepository is the postgres backed store of the accounts engine. A
// unit of work is written as one serializable batch.
type AccountsRepository struct {
	batchHandler BatchHandler

	memos      *MemoRepository
	endowments *EndowmentRepository
	allowances *AllowanceRepository
	outbox     *OutboxRepository
}

func NewAccountsRepository(db BatchHandler) *AccountsRepository {
	return &AccountsRepository{
		batchHandler: db,
		memos:        NewMemoRepository(db),
		endowments:   NewEndowmentRepository(db),
		allowances:   NewAllowanceRepository(db),
		outbox:       NewOutboxRepository(db),
	}
}

func (repo *AccountsRepository) Outbox() *OutboxRepository {
	return repo.outbox
}

func (repo *AccountsRepository) FindConfig() (*domain.ContractConfig, error) {
	return repo.memos.FindConfig()
}

func (repo *AccountsRepository) FindEndowment(id uint32) (*domain.Endowment, error) {
	return repo.endowments.Find(id)
}

func (repo *AccountsRepository) FindState(id uint32) (*domain.EndowmentState, error) {
	return repo.endowments.FindState(id)
}

func (repo *AccountsRepository) FindAllowance(owner, spender string) (*domain.Allowance, error) {
	return repo.allowances.Find(owner, spender)
}

func (repo *AccountsRepository) FindRequest(id string) (*domain.OutboundRequest, error) {
	return repo.outbox.Find(id)
}

func (repo *AccountsRepository) Commit(changes *usecase.Changes) error {
	commands, err := repo.commands(changes)
	if err != nil {
		return err
	}
	_, err = repo.batchHandler.Batch(&BatchOptionSerializable, commands)
	return err
}

func (repo *AccountsRepository) commands(changes *usecase.Changes) ([]sqlbatch.Command, error) {
	commands := make([]sqlbatch.Command, 0, 1+len(changes.Endowments)+len(changes.States)+len(changes.Allowances)+len(changes.Outbox)+len(changes.Settled))

	if changes.Config != nil {
		commands = append(commands, repo.memos.UpsertCommand(ConfigMemoKey, changes.Config))
	}
	for _, e := range changes.Endowments {
		command, err := repo.endowments.UpsertCommand(e)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command)
	}
	for _, s := range changes.States {
		command, err := repo.endowments.UpsertStateCommand(s)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command)
	}
	for _, a := range changes.Allowances {
		command, err := repo.allowances.UpsertCommand(a)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command)
	}
	for _, request := range changes.Outbox {
		command, err := repo.outbox.InsertCommand(request)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command)
	}
	for _, settlement := range changes.Settled {
		commands = append(commands, repo.outbox.SettleCommand(settlement))
	}
	return commands, nil
}
