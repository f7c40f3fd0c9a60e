package api

import (
	"accounts/domain"
	"accounts/usecase"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type ExecuteRequest struct {
	Env  domain.Env         `json:"env"`
	Info domain.MessageInfo `json:"info"`
	Msg  domain.ExecuteMsg  `json:"msg"`
}

type envelope struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Code      string      `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

type Handler struct {
	accounts *usecase.AccountsInteractor
}

func NewHandler(accounts *usecase.AccountsInteractor) *Handler {
	return &Handler{accounts: accounts}
}

func (h *Handler) currentEnv(env domain.Env) domain.Env {
	if env.BlockTime == 0 {
		env.BlockTime = uint64(time.Now().Unix())
	}
	env.ContractAddress = h.accounts.ContractAddress()
	return env
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	if req.Info.Sender == "" || req.Info.Sender == h.accounts.ContractAddress() {
		writeError(w, http.StatusForbidden, "unauthorized", "invalid sender", requestIDFromContext(r.Context()))
		return
	}
	resp, err := h.accounts.Execute(r.Context(), h.currentEnv(req.Env), req.Info, req.Msg)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, req.Msg.Kind(), resp)
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryMsg
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	result, err := h.accounts.Query(req)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "query", result)
}

// reply receives the asynchronous outcome of a dispatched message from the host.
func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	var req domain.Reply
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	resp, err := h.accounts.Reply(r.Context(), h.currentEnv(domain.Env{}), req)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "reply", resp)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, code string, message string, requestID string) {
	writeJSON(w, status, envelope{Status: "error", Code: code, Message: message, RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("🔴 writing response - %v\n", err.Error())
	}
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrorUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, domain.ErrorEndowmentNotFound):
		return http.StatusNotFound, "endowment_not_found"
	case errors.Is(err, domain.ErrorStrategyNotFound):
		return http.StatusNotFound, "strategy_not_found"
	case errors.Is(err, domain.ErrorInsufficientFunds), errors.Is(err, domain.ErrorBalanceTooSmall):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, domain.ErrorNoAllowance):
		return http.StatusUnprocessableEntity, "no_allowance"
	case errors.Is(err, domain.ErrorRedemptionInProgress):
		return http.StatusConflict, "redemption_in_progress"
	case errors.Is(err, domain.ErrorAccountClosed), errors.Is(err, domain.ErrorUpdatesAfterClosed):
		return http.StatusConflict, "account_closed"
	case errors.Is(err, domain.ErrorDepositsNotApproved), errors.Is(err, domain.ErrorWithdrawsNotApproved),
		errors.Is(err, domain.ErrorMaturityNotReached), errors.Is(err, domain.ErrorStrategyNotApproved):
		return http.StatusConflict, "not_allowed"
	case errors.Is(err, domain.ErrorInvalidInputs), errors.Is(err, domain.ErrorInvalidZeroAmount),
		errors.Is(err, domain.ErrorInvalidSplit), errors.Is(err, domain.ErrorInvalidCoinsDeposited),
		errors.Is(err, domain.ErrorNotInApprovedCoins):
		return http.StatusBadRequest, "invalid_input"
	}
	return http.StatusInternalServerError, "internal_error"
}
