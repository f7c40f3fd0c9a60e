package hostclient

import (
	"accounts/domain"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	var received dispatchRequest
	var key string

	r := chi.NewRouter()
	r.Post("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if received.Message.Msg.BankSend == nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":"unsupported message"}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	server := httptest.NewServer(r)
	defer server.Close()

	client := New(server.URL)
	request := &domain.OutboundRequest{
		ID:      "msg-1",
		Message: domain.SubMsg{ID: "msg-1", Msg: domain.TransferMsg("terra1payee", domain.NewAsset(domain.NativeInfo("uluna"), 5))},
	}
	require.NoError(t, client.Dispatch(context.Background(), request))
	assert.Equal(t, "msg-1", key)
	assert.Equal(t, "msg-1", received.ID)
	assert.Equal(t, "terra1payee", received.Message.Msg.BankSend.ToAddress)

	request.Message.Msg = domain.TransferMsg("terra1payee", domain.NewAsset(domain.Cw20Info("terra1token"), 5))
	err := client.Dispatch(context.Background(), request)
	assert.True(t, errors.Is(err, ErrorHostRejected))
	assert.Contains(t, err.Error(), "unsupported message")
}

func TestBalance(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/vaults/{address}/balance", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "address") != "terra1vaulta" || r.URL.Query().Get("endowment_id") != "4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"locked":"40","liquid":"2"}`))
	})
	server := httptest.NewServer(r)
	defer server.Close()

	client := New(server.URL)
	strategy := &domain.StrategyParams{Key: "vault-a", Address: "terra1vaulta"}

	locked, liquid, err := client.Balance(context.Background(), strategy, 4)
	require.NoError(t, err)
	assert.Equal(t, "40", locked.String())
	assert.Equal(t, "2", liquid.String())

	_, _, err = client.Balance(context.Background(), strategy, 5)
	assert.True(t, errors.Is(err, ErrorHostRejected))
}
