package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/naileon/karte-api/internal/entity"
)

const serviceName = "line"

var ErrNotConfigured = errors.New("line: channel access token not configured")

// Client pushes messages through the LINE Messaging API.
type Client struct {
	accessToken string
	baseURL     string
	http        *http.Client
}

func NewClient(accessToken, baseURL string, timeout time.Duration) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a channel access token is set.
func (c *Client) Configured() bool {
	return c.accessToken != ""
}

func (c *Client) PushText(ctx context.Context, input PushMessageInput) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload := pushMessageRequest{
		To:       input.To,
		Messages: []textMessage{{Type: "text", Text: input.Text}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message/push", bytes.NewReader(body))
	if err != nil {
		return &entity.UpstreamError{Service: serviceName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return &entity.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return entity.NewUpstreamError(serviceName, resp.StatusCode, respBody)
	}
	return nil
}
