package usecase_test

import (
	"accounts/domain"
	"accounts/infrastructure/memstore"
	"accounts/usecase"
	"context"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/suite"
)

type MessengerTestSuite struct {
	suite.Suite
	store      *memstore.MemStore
	dispatcher *fakeDispatcher
	accounts   *usecase.AccountsInteractor
	messenger  *usecase.MessengerInteractor
	env        domain.Env
	id         uint32
}

func TestMessengerTestSuite(t *testing.T) {
	suite.Run(t, new(MessengerTestSuite))
}

func (s *MessengerTestSuite) SetupTest() {
	s.store = memstore.New()
	s.dispatcher = newFakeDispatcher()
	s.accounts = newAccounts(s.store, newFakeVaults())
	s.messenger = usecase.NewMessengerInteractor(s.store, s.dispatcher, s.accounts, 1000, 2, time.Minute)
	s.env = domain.Env{BlockHeight: 100, BlockTime: 1_700_000_000, ContractAddress: contractAddress}

	ctx := context.Background()
	_, err := s.accounts.Execute(ctx, s.env, domain.MessageInfo{Sender: registrarAddress}, domain.ExecuteMsg{
		CreateEndowment: &domain.CreateEndowmentMsg{Owner: endowmentOwner, Name: "e", EndowmentType: domain.EndowmentTypeNormal},
	})
	s.Require().NoError(err)
	s.id = 1

	_, err = s.accounts.Execute(ctx, s.env, domain.MessageInfo{Sender: donor, Funds: []domain.Asset{domain.NewAsset(luna, 200)}}, domain.ExecuteMsg{
		Deposit: &domain.DepositMsg{EndowmentID: s.id, LockedPercentage: dec("0.5"), LiquidPercentage: dec("0.5")},
	})
	s.Require().NoError(err)
}

func (s *MessengerTestSuite) invest(locked uint64) {
	_, err := s.accounts.Execute(context.Background(), s.env, domain.MessageInfo{Sender: endowmentOwner}, domain.ExecuteMsg{
		StrategiesInvest: &domain.StrategiesMsg{
			EndowmentID: s.id,
			Strategies:  []domain.StrategyInvestment{{StrategyKey: "vault-a", LockedAmount: math.NewUint(locked), LiquidAmount: math.ZeroUint()}},
		},
	})
	s.Require().NoError(err)
}

func (s *MessengerTestSuite) locked() string {
	v, err := s.accounts.Query(domain.QueryMsg{State: &domain.EndowmentQuery{EndowmentID: s.id}})
	s.Require().NoError(err)
	return v.(*domain.EndowmentState).BalanceOf(domain.AccountTypeLocked, luna).String()
}

func (s *MessengerTestSuite) TestDeliverSendsInOrder() {
	s.invest(10)
	s.invest(20)

	sent, err := s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal(2, sent)

	s.Require().Len(s.dispatcher.dispatched, 2)
	s.Equal("10", s.dispatcher.dispatched[0].Message.Msg.VaultInvest.LockedAmount.String())
	s.Equal("20", s.dispatcher.dispatched[1].Message.Msg.VaultInvest.LockedAmount.String())

	for _, r := range s.store.All() {
		s.Equal(domain.RequestStateSent, r.State)
		s.NotNil(r.SentTime)
		s.Equal(1, r.Retried)
	}
	s.Equal("70", s.locked())

	sent, err = s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal(0, sent)
}

func (s *MessengerTestSuite) TestDeliverRetriesThenSucceeds() {
	s.invest(40)
	s.dispatcher.failures["vault_invest"] = 1

	sent, err := s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal(0, sent)

	outbox := s.store.All()
	s.Require().Len(outbox, 1)
	s.Equal(domain.RequestStateRetriable, outbox[0].State)
	s.Equal("host unavailable", outbox[0].LastError)

	sent, err = s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal(1, sent)
	s.Equal(domain.RequestStateSent, s.store.All()[0].State)
	s.Equal("60", s.locked())
}

func (s *MessengerTestSuite) TestDeliverGivesUpAndCompensates() {
	s.invest(40)
	s.Equal("60", s.locked())
	s.dispatcher.failures["vault_invest"] = 2

	for i := 0; i < 3; i++ {
		_, err := s.messenger.Deliver(context.Background())
		s.Require().NoError(err)
	}

	outbox := s.store.All()
	s.Require().Len(outbox, 1)
	s.Equal(domain.RequestStateReplied, outbox[0].State)
	s.Equal("host unavailable", outbox[0].LastError)
	s.Equal(2, outbox[0].Retried)
	s.Empty(s.dispatcher.dispatched)
	s.Equal("100", s.locked())

	_, err := s.accounts.Reply(context.Background(), s.env, domain.Reply{MessageID: outbox[0].ID, Error: "host unavailable"})
	s.requireInvalid(err)
	s.Equal("100", s.locked())
}

func (s *MessengerTestSuite) requireInvalid(err error) {
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrorInvalidInputs)
}

func (s *MessengerTestSuite) TestDeliverResumesUnrepliedFailures() {
	s.invest(40)
	request := s.store.All()[0]
	s.Require().NoError(s.store.SetRetrying(request.ID, time.Now()))
	s.Require().NoError(s.store.SetState(request.ID, domain.RequestStateError, "host unavailable"))
	s.Equal("60", s.locked())

	sent, err := s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal(0, sent)
	s.Equal("100", s.locked())
	s.Equal(domain.RequestStateReplied, s.store.All()[0].State)

	_, err = s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal("100", s.locked())
	s.Empty(s.dispatcher.dispatched)
}

func (s *MessengerTestSuite) TestDeliverPicksUpStaleOngoingMessages() {
	s.invest(40)
	s.invest(10)
	outbox := s.store.All()
	s.Require().NoError(s.store.SetRetrying(outbox[0].ID, time.Now().Add(-2*time.Minute)))
	s.Require().NoError(s.store.SetRetrying(outbox[1].ID, time.Now()))

	sent, err := s.messenger.Deliver(context.Background())
	s.Require().NoError(err)
	s.Equal(1, sent)
	s.Require().Len(s.dispatcher.dispatched, 1)
	s.Equal(outbox[0].ID, s.dispatcher.dispatched[0].ID)

	outbox = s.store.All()
	s.Equal(domain.RequestStateSent, outbox[0].State)
	s.Equal(2, outbox[0].Retried)
	s.Equal(domain.RequestStateOngoing, outbox[1].State)
}

func (s *MessengerTestSuite) TestFailedTransferIsNotCompensated() {
	_, err := s.accounts.Execute(context.Background(), s.env, domain.MessageInfo{Sender: endowmentOwner}, domain.ExecuteMsg{
		Withdraw: &domain.WithdrawMsg{
			EndowmentID: s.id,
			AccountType: domain.AccountTypeLiquid,
			Beneficiary: domain.WithdrawTarget{Wallet: "terra1payee"},
			Assets:      []domain.Asset{domain.NewAsset(luna, 50)},
		},
	})
	s.Require().NoError(err)
	s.dispatcher.failures["bank_send"] = 2

	for i := 0; i < 2; i++ {
		_, err := s.messenger.Deliver(context.Background())
		s.Require().NoError(err)
	}

	outbox := s.store.All()
	s.Require().Len(outbox, 1)
	s.Equal(domain.RequestStateError, outbox[0].State)
	s.Equal("100", s.locked())
}

func (s *MessengerTestSuite) TestDeliverStopsOnCancelledContext() {
	s.invest(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := s.messenger.Deliver(ctx)
	s.Error(err)
	s.Equal(0, sent)
	s.Equal(domain.RequestStateNew, s.store.All()[0].State)
}
