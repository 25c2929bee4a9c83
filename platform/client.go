package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

// Client is a ledger.Executor backed by the platform's ledger API. Each batch
// carries an idempotency key so a retried request is applied once.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ ledger.Executor = (*Client)(nil)

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) authHeader() string {
	return "Bearer " + c.token
}

// Balance returns the amount held at h.
func (c *Client) Balance(ctx context.Context, h ledger.Holding) (uint64, error) {
	q := url.Values{}
	q.Set("owner", string(h.Owner))
	q.Set("asset", string(h.Asset))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ledger/balance?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", c.authHeader())
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var data struct {
		Amount uint64 `json:"amount"`
		Error  string `json:"error"`
	}
	_ = json.Unmarshal(body, &data)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("platform: balance %s: %d %s", h, resp.StatusCode, data.Error)
	}
	return data.Amount, nil
}

type transferRequest struct {
	BatchID   uuid.UUID         `json:"batchId"`
	Transfers []ledger.Transfer `json:"transfers"`
}

// Execute submits transfers as one all-or-nothing batch.
func (c *Client) Execute(ctx context.Context, transfers []ledger.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	payload := transferRequest{BatchID: uuid.New(), Transfers: transfers}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ledger/transfers", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Idempotency-Key", payload.BatchID.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	var data struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = json.Unmarshal(respBody, &data)
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case data.Code == "insufficient_funds":
		return fmt.Errorf("platform: %w: %s", ledger.ErrInsufficientFunds, data.Error)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("platform: %w: %s", ledger.ErrUnauthorizedTransfer, data.Error)
	default:
		return fmt.Errorf("platform: transfers: %d %s", resp.StatusCode, data.Error)
	}
}
