package usecase

import (
	"accounts/domain"
	"accounts/interface/exporter"
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// AccountsInteractor executes endowment messages. Every call runs as one unit of
// work: chained self messages and replies either all commit or none does.
type AccountsInteractor struct {
	store      Store
	registrar  Registrar
	indexFunds IndexFunds
	vaults     Vaults

	contractAddress string

	mu sync.Mutex
}

func NewAccountsInteractor(store Store,
	registrar Registrar,
	indexFunds IndexFunds,
	vaults Vaults,
	contractAddress string) *AccountsInteractor {
	interactor := &AccountsInteractor{
		store:           store,
		registrar:       registrar,
		indexFunds:      indexFunds,
		vaults:          vaults,
		contractAddress: contractAddress,
	}
	return interactor
}

func (interactor *AccountsInteractor) ContractAddress() string {
	return interactor.contractAddress
}

// run is the state shared by every message executed in a unit of work.
type run struct {
	ctx      context.Context
	tx       *txn
	env      domain.Env
	response *domain.Response
	kinds    []string

	registrarConfig *domain.RegistrarConfig
}

// execution is a single message of a run. Messages emitted by its handler are
// processed once the handler returns.
type execution struct {
	*run
	info    domain.MessageInfo
	pending []domain.SubMsg
}

func (x *execution) emit(msg domain.CosmosMsg, replyOn string, tag *domain.ReplyTag) {
	x.pending = append(x.pending, domain.SubMsg{Msg: msg, ReplyOn: replyOn, Tag: tag})
}

func (x *execution) transfer(to string, asset domain.Asset) {
	if domain.Amount(asset.Amount).IsZero() {
		return
	}
	x.emit(domain.TransferMsg(to, asset), domain.ReplyNever, nil)
}

func (x *execution) self(msg domain.ExecuteMsg, funds ...domain.Asset) {
	if funds == nil {
		funds = []domain.Asset{}
	}
	x.emit(domain.CosmosMsg{Self: &domain.SelfMsg{Msg: msg, Funds: funds}}, domain.ReplyNever, nil)
}

func (x *execution) attr(key string, value interface{}) {
	x.response.Attributes = append(x.response.Attributes, domain.Attribute{Key: key, Value: fmt.Sprint(value)})
}

func (interactor *AccountsInteractor) newRun(ctx context.Context, env domain.Env) *run {
	if env.ContractAddress == "" {
		env.ContractAddress = interactor.contractAddress
	}
	return &run{
		ctx:      ctx,
		tx:       newTxn(interactor.store),
		env:      env,
		response: &domain.Response{Messages: []domain.SubMsg{}, Attributes: []domain.Attribute{}},
	}
}

func (interactor *AccountsInteractor) loadRegistrarConfig(r *run) (*domain.RegistrarConfig, error) {
	if r.registrarConfig != nil {
		return r.registrarConfig, nil
	}
	config, err := interactor.registrar.Config()
	if err != nil {
		return nil, domain.StdError(err)
	}
	r.registrarConfig = config
	return config, nil
}

// Instantiate stores the initial contract config. It is a no-op when a config
// already exists.
func (interactor *AccountsInteractor) Instantiate(owner string, registrar string) (*domain.ContractConfig, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	config, err := interactor.store.FindConfig()
	if err != nil {
		return nil, domain.StdError(err)
	}
	if config != nil {
		return config, nil
	}

	config = &domain.ContractConfig{Owner: owner, Registrar: registrar, NextEndowmentID: 1}
	tx := newTxn(interactor.store)
	tx.saveConfig(config)
	if err := tx.commit(); err != nil {
		return nil, err
	}
	log.Printf("contract instantiated [owner: %v, registrar: %v]\n", owner, registrar)
	return config, nil
}

func (interactor *AccountsInteractor) Execute(ctx context.Context, env domain.Env, info domain.MessageInfo, msg domain.ExecuteMsg) (*domain.Response, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	r := interactor.newRun(ctx, env)
	err := interactor.handle(r, info, msg)
	if err == nil {
		err = r.tx.commit()
	}
	if err != nil {
		exporter.IncErrorCount()
		log.WithFields(log.Fields{"kind": msg.Kind(), "sender": info.Sender}).Printf("🔴 executing message - %v\n", err.Error())
		return nil, err
	}

	interactor.report(r)
	return r.response, nil
}

// Reply resumes the continuation of a delivered or undeliverable message once
// the host reports its outcome. Each message is resumed at most once.
func (interactor *AccountsInteractor) Reply(ctx context.Context, env domain.Env, reply domain.Reply) (*domain.Response, error) {
	return interactor.resume(ctx, env, reply, domain.RequestStateSent, domain.RequestStateError)
}

// Undeliverable resumes the continuation of a message the messenger gave up
// on. The message leaves the ongoing state in the same commit.
func (interactor *AccountsInteractor) Undeliverable(ctx context.Context, env domain.Env, reply domain.Reply) (*domain.Response, error) {
	return interactor.resume(ctx, env, reply, domain.RequestStateOngoing, domain.RequestStateError)
}

func (interactor *AccountsInteractor) resume(ctx context.Context, env domain.Env, reply domain.Reply, from ...string) (*domain.Response, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	r := interactor.newRun(ctx, env)
	x := &execution{run: r, info: domain.MessageInfo{Sender: r.env.ContractAddress}}

	var tag domain.ReplyTag
	request, err := r.tx.loadRequest(reply.MessageID)
	if err == nil {
		if !containsString(from, request.State) || !request.AwaitsReply(reply.Failed()) {
			err = fmt.Errorf("%w: message %v in state %v does not await this reply", domain.ErrorInvalidInputs, request.ID, request.State)
		}
	}
	if err == nil {
		tag = *request.Message.Tag
		r.tx.settle(domain.RequestSettlement{ID: request.ID, From: from, LastError: reply.Error})
		err = interactor.reply(x, tag, reply)
	}
	if err == nil {
		err = interactor.flush(x)
	}
	if err == nil {
		err = r.tx.commit()
	}
	if err != nil {
		exporter.IncErrorCount()
		log.WithFields(log.Fields{"kind": tag.Kind, "message": reply.MessageID}).Printf("🔴 handling reply - %v\n", err.Error())
		return nil, err
	}

	interactor.report(r)
	return r.response, nil
}

func (interactor *AccountsInteractor) report(r *run) {
	for _, kind := range r.kinds {
		exporter.IncMessageCount(kind)
	}
	for id, e := range r.tx.endowments {
		exporter.SetPendingRedemptions(id, e.PendingRedemptions)
	}
}

// handle executes msg and then, depth first and in emission order, the self
// messages its handler emitted. Other messages go to the outbox.
func (interactor *AccountsInteractor) handle(r *run, info domain.MessageInfo, msg domain.ExecuteMsg) error {
	if err := interactor.ctxErr(r); err != nil {
		return err
	}

	x := &execution{run: r, info: info}
	if err := interactor.route(x, msg); err != nil {
		return err
	}
	r.kinds = append(r.kinds, msg.Kind())

	return interactor.flush(x)
}

func (interactor *AccountsInteractor) flush(x *execution) error {
	for _, sub := range x.pending {
		if sub.Msg.Self != nil {
			info := domain.MessageInfo{Sender: x.env.ContractAddress, Funds: sub.Msg.Self.Funds}
			if err := interactor.handle(x.run, info, sub.Msg.Self.Msg); err != nil {
				return err
			}
			continue
		}
		sub = x.tx.enqueue(sub, x.env.Time())
		x.response.Messages = append(x.response.Messages, sub)
	}
	x.pending = nil
	return nil
}

func (interactor *AccountsInteractor) ctxErr(r *run) error {
	if r.ctx == nil {
		return nil
	}
	if err := r.ctx.Err(); err != nil {
		return domain.StdError(err)
	}
	return nil
}

func (interactor *AccountsInteractor) route(x *execution, msg domain.ExecuteMsg) error {
	switch {
	case msg.CreateEndowment != nil:
		return interactor.createEndowment(x, msg.CreateEndowment)
	case msg.UpdateEndowmentStatus != nil:
		return interactor.updateEndowmentStatus(x, msg.UpdateEndowmentStatus)
	case msg.UpdateEndowmentSettings != nil:
		return interactor.updateEndowmentSettings(x, msg.UpdateEndowmentSettings)
	case msg.UpdateStrategies != nil:
		return interactor.updateStrategies(x, msg.UpdateStrategies)
	case msg.UpdateConfig != nil:
		return interactor.updateConfig(x, msg.UpdateConfig)
	case msg.UpdateOwner != nil:
		return interactor.updateOwner(x, msg.UpdateOwner)
	case msg.Receive != nil:
		return interactor.receive(x, msg.Receive)
	case msg.Deposit != nil:
		return interactor.deposit(x, msg.Deposit)
	case msg.Withdraw != nil:
		return interactor.withdraw(x, msg.Withdraw)
	case msg.StrategiesInvest != nil:
		return interactor.invest(x, msg.StrategiesInvest)
	case msg.StrategiesRedeem != nil:
		return interactor.redeem(x, msg.StrategiesRedeem)
	case msg.VaultReceipt != nil:
		return interactor.vaultReceipt(x, msg.VaultReceipt)
	case msg.Allowance != nil:
		return interactor.allowance(x, msg.Allowance)
	case msg.SpendAllowance != nil:
		return interactor.spendAllowance(x, msg.SpendAllowance)
	case msg.CloseEndowment != nil:
		return interactor.closeEndowment(x, msg.CloseEndowment)
	case msg.DistributeToBeneficiary != nil:
		return interactor.distributeToBeneficiary(x, msg.DistributeToBeneficiary)
	case msg.ResetPendingRedemptions != nil:
		return interactor.resetPendingRedemptions(x, msg.ResetPendingRedemptions)
	}
	return fmt.Errorf("%w: empty message", domain.ErrorInvalidInputs)
}

// Query answers read-only requests against committed state.
func (interactor *AccountsInteractor) Query(msg domain.QueryMsg) (interface{}, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	tx := newTxn(interactor.store)
	switch {
	case msg.Config != nil:
		return tx.loadConfig()
	case msg.Endowment != nil:
		return tx.loadEndowment(msg.Endowment.EndowmentID)
	case msg.State != nil:
		if _, err := tx.loadEndowment(msg.State.EndowmentID); err != nil {
			return nil, err
		}
		return tx.loadState(msg.State.EndowmentID)
	case msg.Allowance != nil:
		a, err := tx.loadAllowance(msg.Allowance.Owner, msg.Allowance.Spender)
		if err != nil {
			return nil, err
		}
		if a == nil {
			a = domain.NewAllowance(msg.Allowance.Owner, msg.Allowance.Spender)
		}
		return a, nil
	}
	return nil, fmt.Errorf("%w: empty query", domain.ErrorInvalidInputs)
}

//-------------------------------------------------------------------
// Authorization helpers

func (interactor *AccountsInteractor) requireContract(x *execution) error {
	if x.info.Sender != x.env.ContractAddress {
		return fmt.Errorf("%w: only the contract itself may call this", domain.ErrorUnauthorized)
	}
	return nil
}

func (interactor *AccountsInteractor) requireConfigOwner(x *execution) (*domain.ContractConfig, error) {
	config, err := x.tx.loadConfig()
	if err != nil {
		return nil, err
	}
	if x.info.Sender != config.Owner {
		return nil, fmt.Errorf("%w: sender is not the config owner", domain.ErrorUnauthorized)
	}
	return config, nil
}

func (interactor *AccountsInteractor) requireEndowmentOwner(x *execution, id uint32) (*domain.Endowment, error) {
	endowment, err := x.tx.loadEndowment(id)
	if err != nil {
		return nil, err
	}
	if x.info.Sender != endowment.Owner {
		return nil, fmt.Errorf("%w: sender is not the endowment owner", domain.ErrorUnauthorized)
	}
	return endowment, nil
}
