package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
)

const serviceName = "airtable"

type Config struct {
	BaseURL string // e.g. https://api.airtable.com/v0
	BaseID  string
	Table   string
	APIKey  string
	Timeout time.Duration
}

// Client stores karte records in one Airtable table.
type Client struct {
	tableURL string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		tableURL: fmt.Sprintf("%s/%s/%s", base, url.PathEscape(cfg.BaseID), url.PathEscape(cfg.Table)),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger.With(zap.String("client", serviceName)),
	}
}

// FindByUserID returns the most recently updated record of the user.
func (c *Client) FindByUserID(ctx context.Context, userID string) (*entity.KarteRecord, error) {
	q := url.Values{}
	q.Set("filterByFormula", fmt.Sprintf("{%s}='%s'", ColumnUserID, escapeFormula(userID)))
	q.Set("maxRecords", "1")
	q.Set("sort[0][field]", ColumnUpdatedAt)
	q.Set("sort[0][direction]", "desc")

	var out listResponse
	if err := c.do(ctx, http.MethodGet, c.tableURL+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Records) == 0 {
		return nil, entity.ErrKarteNotFound
	}

	rec := out.Records[0]
	return &entity.KarteRecord{ID: rec.ID, Karte: fromFields(rec.Fields)}, nil
}

// Create inserts a new record with every column and returns its id (recXXXX).
func (c *Client) Create(ctx context.Context, k *entity.Karte) (string, error) {
	var out record
	if err := c.do(ctx, http.MethodPost, c.tableURL, writeRequest{Fields: toFields(k, true)}, &out); err != nil {
		return "", err
	}
	c.logger.Info("record created", zap.String("record_id", out.ID))
	return out.ID, nil
}

// Update patches the writable columns of an existing record.
func (c *Client) Update(ctx context.Context, recordID string, k *entity.Karte) error {
	target := c.tableURL + "/" + url.PathEscape(recordID)
	if err := c.do(ctx, http.MethodPatch, target, writeRequest{Fields: toFields(k, false)}, nil); err != nil {
		return err
	}
	c.logger.Info("record updated", zap.String("record_id", recordID))
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal airtable payload: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &entity.UpstreamError{Service: serviceName, Err: err}
	}
	c.setHeaders(req, payload != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", zap.String("method", method), zap.Error(err))
		return &entity.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &entity.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("api rejected request",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return entity.NewUpstreamError(serviceName, resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &entity.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

var formulaEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeFormula(s string) string {
	return formulaEscaper.Replace(s)
}
