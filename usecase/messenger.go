package usecase

import (
	"accounts/domain"
	"accounts/interface/exporter"
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// MessengerInteractor delivers outbox messages to the host and reports the
// outcome of tagged messages back to the accounts engine.
type MessengerInteractor struct {
	outbox     Outbox
	dispatcher Dispatcher
	accounts   *AccountsInteractor
	limiter    *rate.Limiter
	maxRetry   int
	staleAfter time.Duration
}

func NewMessengerInteractor(outbox Outbox,
	dispatcher Dispatcher,
	accounts *AccountsInteractor,
	deliverRate float64,
	maxRetry int,
	staleAfter time.Duration) *MessengerInteractor {
	if maxRetry < 1 {
		maxRetry = 1
	}
	interactor := &MessengerInteractor{
		outbox:     outbox,
		dispatcher: dispatcher,
		accounts:   accounts,
		limiter:    rate.NewLimiter(rate.Limit(deliverRate), 1),
		maxRetry:   maxRetry,
		staleAfter: staleAfter,
	}
	return interactor
}

// Deliver first resumes continuations a previous round could not run, then
// sends every triable message once. It returns the number of messages that
// reached the host.
func (interactor *MessengerInteractor) Deliver(ctx context.Context) (int, error) {
	if err := interactor.replyPending(ctx); err != nil {
		return 0, err
	}

	requests, err := interactor.outbox.FindAllTriable(interactor.maxRetry, time.Now().Add(-interactor.staleAfter))
	if err != nil {
		log.Printf("🔴 loading outbox - %v\n", err.Error())
		return 0, err
	}

	sent := 0
	for i := range requests {
		if err := interactor.limiter.Wait(ctx); err != nil {
			return sent, err
		}
		if interactor.deliver(ctx, &requests[i]) {
			sent++
		}
	}
	return sent, nil
}

// replyPending runs the continuations of messages that were settled on the
// outbox but whose reply did not commit.
func (interactor *MessengerInteractor) replyPending(ctx context.Context) error {
	requests, err := interactor.outbox.FindAwaitingReply()
	if err != nil {
		log.Printf("🔴 loading unreplied messages - %v\n", err.Error())
		return err
	}
	for _, request := range requests {
		if err := ctx.Err(); err != nil {
			return err
		}
		reply := domain.Reply{MessageID: request.ID, Error: request.LastError}
		if request.State == domain.RequestStateSent {
			reply.Error = ""
		}
		if _, err := interactor.accounts.Reply(ctx, interactor.env(), reply); err != nil {
			log.Printf("🔴 replying to message %v - %v\n", request.ID, err.Error())
		}
	}
	return nil
}

func (interactor *MessengerInteractor) deliver(ctx context.Context, request *domain.OutboundRequest) bool {
	if err := interactor.outbox.SetRetrying(request.ID, time.Now()); err != nil {
		log.Printf("🔴 marking message %v as ongoing - %v\n", request.ID, err.Error())
		return false
	}
	request.Retried++

	err := interactor.dispatcher.Dispatch(ctx, request)
	if err == nil {
		if err := interactor.outbox.SetSent(request.ID, time.Now()); err != nil {
			// stays ongoing and is sent again once stale, under the same idempotency key
			log.Printf("🔴 marking message %v as sent - %v\n", request.ID, err.Error())
			return false
		}
		exporter.IncDeliveryCount(domain.RequestStateSent)
		log.Printf("message sent [id: %v, kind: %v]\n", request.ID, request.Message.Msg.Kind())

		if request.AwaitsReply(false) {
			if _, err := interactor.accounts.Reply(ctx, interactor.env(), domain.Reply{MessageID: request.ID}); err != nil {
				log.Printf("🔴 replying to message %v - %v\n", request.ID, err.Error())
			}
		}
		return true
	}

	if request.Retried < interactor.maxRetry {
		log.Printf("🟡 sending message %v failed, will retry - %v\n", request.ID, err.Error())
		if serr := interactor.outbox.SetState(request.ID, domain.RequestStateRetriable, err.Error()); serr != nil {
			log.Printf("🔴 marking message %v as retriable - %v\n", request.ID, serr.Error())
		}
		exporter.IncDeliveryCount(domain.RequestStateRetriable)
		return false
	}

	log.Printf("🔴 sending message %v failed after %v tries - %v\n", request.ID, request.Retried, err.Error())
	exporter.IncDeliveryCount(domain.RequestStateError)

	if request.AwaitsReply(true) {
		reply := domain.Reply{MessageID: request.ID, Error: err.Error()}
		_, rerr := interactor.accounts.Undeliverable(ctx, interactor.env(), reply)
		if rerr == nil {
			return false
		}
		log.Printf("🔴 replying to message %v, left for the next round - %v\n", request.ID, rerr.Error())
	}
	if serr := interactor.outbox.SetState(request.ID, domain.RequestStateError, err.Error()); serr != nil {
		log.Printf("🔴 marking message %v as failed - %v\n", request.ID, serr.Error())
	}
	return false
}

func (interactor *MessengerInteractor) env() domain.Env {
	return domain.Env{
		BlockTime:       uint64(time.Now().Unix()),
		ContractAddress: interactor.accounts.ContractAddress(),
	}
}
