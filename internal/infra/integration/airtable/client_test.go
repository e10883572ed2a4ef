package airtable

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL: srv.URL + "/v0",
		BaseID:  "appNaileon",
		Table:   "カルテ",
		APIKey:  "key-test",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestFindByUserIDQueriesLatestRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v0/appNaileon/カルテ", r.URL.Path)
		assert.Equal(t, "Bearer key-test", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "{LINE User ID}='U1'", q.Get("filterByFormula"))
		assert.Equal(t, "1", q.Get("maxRecords"))
		assert.Equal(t, "最終更新日時", q.Get("sort[0][field]"))
		assert.Equal(t, "desc", q.Get("sort[0][direction]"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"records":[{"id":"recA1","fields":{
			"LINE User ID":"U1","ステータス":"middle","参考料金":5000,
			"第1希望日時":"2024-02-01 10:00","キャンセルポリシー同意":true,
			"最終更新日時":"2024-01-02T00:00:00.000Z"}}]}`)
	})

	rec, err := client.FindByUserID(t.Context(), "U1")
	require.NoError(t, err)

	assert.Equal(t, "recA1", rec.ID)
	assert.Equal(t, "U1", rec.Karte.UserID)
	assert.Equal(t, "middle", rec.Karte.Status)
	assert.Equal(t, 5000.0, rec.Karte.EstimatedPrice)
	assert.Equal(t, "2024-02-01 10:00", rec.Karte.PreferredDate1)
	assert.True(t, rec.Karte.CancelPolicy)
	assert.Empty(t, rec.Karte.FullName)
}

func TestFindByUserIDEscapesQuotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `{LINE User ID}='U\'1'`, r.URL.Query().Get("filterByFormula"))
		io.WriteString(w, `{"records":[]}`)
	})

	_, err := client.FindByUserID(t.Context(), "U'1")
	assert.ErrorIs(t, err, entity.ErrKarteNotFound)
}

func TestCreateSendsAllColumns(t *testing.T) {
	var got writeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"id":"recNew","fields":{}}`)
	})

	id, err := client.Create(t.Context(), &entity.Karte{
		UserID:         "U1",
		Status:         entity.StageLight,
		Timestamp:      "2024-01-01T00:00:00Z",
		EstimatedPrice: 5000,
	})
	require.NoError(t, err)

	assert.Equal(t, "recNew", id)
	assert.Len(t, got.Fields, len(columns))
	assert.Equal(t, "U1", got.Fields["LINE User ID"])
	assert.Equal(t, "2024-01-01T00:00:00Z", got.Fields["登録日時"])
	assert.Equal(t, 5000.0, got.Fields["参考料金"])
	assert.Equal(t, false, got.Fields["キャンセルポリシー同意"])
	assert.Equal(t, "", got.Fields["本名"])
}

func TestUpdatePatchesWritableColumnsOnly(t *testing.T) {
	var got writeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v0/appNaileon/カルテ/recA1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"id":"recA1","fields":{}}`)
	})

	err := client.Update(t.Context(), "recA1", &entity.Karte{
		UserID:   "U1",
		Status:   entity.StageFull,
		FullName: "Jane Doe",
	})
	require.NoError(t, err)

	assert.NotContains(t, got.Fields, "LINE User ID")
	assert.NotContains(t, got.Fields, "登録日時")
	assert.Equal(t, "full", got.Fields["ステータス"])
	assert.Equal(t, "Jane Doe", got.Fields["本名"])
	assert.Len(t, got.Fields, len(columns)-2)
}

func TestNon2xxBecomesUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":{"type":"UNKNOWN_FIELD_NAME","message":"Unknown field name"}}`)
	})

	_, err := client.Create(t.Context(), &entity.Karte{UserID: "U1"})

	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "airtable", upErr.Service)
	assert.Equal(t, http.StatusUnprocessableEntity, upErr.StatusCode)
	assert.Equal(t, map[string]any{
		"error": map[string]any{"type": "UNKNOWN_FIELD_NAME", "message": "Unknown field name"},
	}, upErr.Details())
}

func TestTransportFailureBecomesUpstreamError(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", BaseID: "app", Table: "t", Timeout: time.Second}, zap.NewNop())

	_, err := client.FindByUserID(t.Context(), "U1")

	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Zero(t, upErr.StatusCode)
	assert.Error(t, upErr.Err)
}
