package hostclient

import (
	"accounts/domain"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cosmossdk.io/math"
)

var ErrorHostRejected = fmt.Errorf("host gateway rejected the request")

// Client talks to the host gateway that executes outbound messages and answers
// vault balance queries.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

type dispatchRequest struct {
	ID      string        `json:"id"`
	Message domain.SubMsg `json:"message"`
}

func (c *Client) Dispatch(ctx context.Context, request *domain.OutboundRequest) error {
	b, err := json.Marshal(dispatchRequest{ID: request.ID, Message: request.Message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", request.ID)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var out struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		return fmt.Errorf("%w: status %d %v", ErrorHostRejected, resp.StatusCode, out.Error)
	}
	return nil
}

type vaultBalance struct {
	Locked math.Uint `json:"locked"`
	Liquid math.Uint `json:"liquid"`
}

func (c *Client) Balance(ctx context.Context, strategy *domain.StrategyParams, endowmentID uint32) (math.Uint, math.Uint, error) {
	query := url.Values{}
	query.Set("endowment_id", strconv.FormatUint(uint64(endowmentID), 10))
	query.Set("network", strategy.Network)
	endpoint := fmt.Sprintf("%s/v1/vaults/%s/balance?%s", c.BaseURL, url.PathEscape(strategy.Address), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return math.ZeroUint(), math.ZeroUint(), err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return math.ZeroUint(), math.ZeroUint(), err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return math.ZeroUint(), math.ZeroUint(), fmt.Errorf("%w: status %d", ErrorHostRejected, resp.StatusCode)
	}

	var out vaultBalance
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return math.ZeroUint(), math.ZeroUint(), err
	}
	return domain.Amount(out.Locked), domain.Amount(out.Liquid), nil
}
