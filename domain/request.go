package domain

import (
	"time"
)

const (
	RequestStateNew       = "new"
	RequestStateOngoing   = "ongoing"
	RequestStateSent      = "sent"
	RequestStateRetriable = "retriable"
	RequestStateError     = "error"
	RequestStateReplied   = "replied"
)

// OutboundRequest is an outbound message waiting in the outbox for delivery to the
// host gateway.
type OutboundRequest struct {
	ID         string     `json:"id"`
	Seq        int64      `json:"seq"`
	Message    SubMsg     `json:"message"`
	State      string     `json:"state"`
	Retried    int        `json:"retried"`
	LastError  string     `json:"last_error"`
	CreateTime time.Time  `json:"create_time"`
	RetryTime  *time.Time `json:"retry_time"`
	SentTime   *time.Time `json:"sent_time"`
}

// AwaitsReply reports whether an outcome of the given kind resumes a
// continuation of this message.
func (r *OutboundRequest) AwaitsReply(failed bool) bool {
	if r.Message.Tag == nil {
		return false
	}
	switch r.Message.ReplyOn {
	case ReplyAlways:
		return true
	case ReplyOnError:
		return failed
	}
	return false
}

// RequestSettlement moves an outbox message to the replied state. It only
// applies while the message is still in one of From.
type RequestSettlement struct {
	ID        string
	From      []string
	LastError string
}
