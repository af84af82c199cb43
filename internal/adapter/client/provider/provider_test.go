package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, batch int, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewProviderClient(&config.Provider{
		URL:       srv.URL + "/api/v2",
		Key:       "secret",
		Timeout:   time.Second,
		BatchSize: batch,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		code       int
		expStatus  domain.OrderStatus
		expRemains *int64
		expErr     error
	}{
		{
			name:       "string fields",
			response:   `{"charge":"0.27819","start_count":"3572","status":"Partial","remains":"157","currency":"USD"}`,
			code:       http.StatusOK,
			expStatus:  domain.OrderStatusPartial,
			expRemains: ptr(157),
		},
		{
			name:       "numeric fields",
			response:   `{"charge":0.5,"start_count":10,"status":"In progress","remains":0}`,
			code:       http.StatusOK,
			expStatus:  domain.OrderStatusInProgress,
			expRemains: ptr(0),
		},
		{
			name:      "null remains",
			response:  `{"status":"Pending","remains":null}`,
			code:      http.StatusOK,
			expStatus: domain.OrderStatusPending,
		},
		{
			name:     "provider error",
			response: `{"error":"Incorrect order ID"}`,
			code:     http.StatusOK,
			expErr:   domain.ErrProviderOrder,
		},
		{
			name:     "unknown status",
			response: `{"status":"Exploded","remains":"1"}`,
			code:     http.StatusOK,
			expErr:   domain.ErrUnknownProviderStatus,
		},
		{
			name:     "malformed body",
			response: `<html>`,
			code:     http.StatusOK,
			expErr:   domain.ErrProviderUnavailable,
		},
		{
			name:     "server error",
			response: ``,
			code:     http.StatusBadGateway,
			expErr:   domain.ErrProviderUnavailable,
		},
		{
			name:     "rate limited",
			response: ``,
			code:     http.StatusTooManyRequests,
			expErr:   domain.ErrProviderRateLimited,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.NoError(t, r.ParseForm())
				assert.Equal(t, "secret", r.PostForm.Get("key"))
				assert.Equal(t, "status", r.PostForm.Get("action"))
				assert.Equal(t, "77", r.PostForm.Get("order"))
				if test.code == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "3")
				}
				w.WriteHeader(test.code)
				_, _ = w.Write([]byte(test.response))
			})

			report, err := c.Status(context.Background(), "77")
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				assert.Nil(t, report)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "77", report.ExternalOrderID)
			assert.Equal(t, test.expStatus, report.Status)
			assert.Equal(t, test.expRemains, report.Remains)
		})
	}
}

func TestClient_StatusRetryAfter(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Status(context.Background(), "1")
	d, ok := RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)
}

func TestClient_StatusMany(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "1,2,3", r.PostForm.Get("orders"))
		_, _ = w.Write([]byte(`{
			"1": {"status":"Completed","remains":"0","start_count":"10"},
			"2": {"error":"Incorrect order ID"},
			"3": {"status":"Canceled","remains":"500"}
		}`))
	})

	res := c.StatusMany(context.Background(), []string{"1", "2", "3"})
	require.Len(t, res, 3)

	require.NoError(t, res["1"].Err)
	assert.Equal(t, domain.OrderStatusCompleted, res["1"].Report.Status)
	assert.Equal(t, ptr(10), res["1"].Report.StartCount)

	assert.ErrorIs(t, res["2"].Err, domain.ErrProviderOrder)
	assert.Nil(t, res["2"].Report)

	require.NoError(t, res["3"].Err)
	assert.Equal(t, domain.OrderStatusCanceled, res["3"].Report.Status)
}

func TestClient_StatusManyChunks(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		ids := strings.Split(r.PostForm.Get("orders"), ",")
		if ids[0] == "c" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf(`%q:{"status":"Processing","remains":"5"}`, id))
		}
		_, _ = w.Write([]byte("{" + strings.Join(parts, ",") + "}"))
	})

	res := c.StatusMany(context.Background(), []string{"a", "b", "c", "d", "e"})
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, res, 5)
	for _, id := range []string{"a", "b", "e"} {
		require.NoError(t, res[id].Err, id)
		assert.Equal(t, domain.OrderStatusProcessing, res[id].Report.Status)
	}
	for _, id := range []string{"c", "d"} {
		assert.ErrorIs(t, res[id].Err, domain.ErrProviderUnavailable, id)
	}
}

func TestClient_StatusManyMissingID(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"1":{"status":"Completed","remains":"0"}}`))
	})

	res := c.StatusMany(context.Background(), []string{"1", "2"})
	assert.NoError(t, res["1"].Err)
	assert.ErrorIs(t, res["2"].Err, domain.ErrProviderOrder)
}

func TestClient_Refill(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refill", r.PostForm.Get("action"))
		if r.PostForm.Get("order") == "bad" {
			_, _ = w.Write([]byte(`{"error":"Refill not available"}`))
			return
		}
		_, _ = w.Write([]byte(`{"refill":1}`))
	})

	id, err := c.Refill(context.Background(), "23501")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	_, err = c.Refill(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrProviderOrder)
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]domain.OrderStatus{
		"Pending":     domain.OrderStatusPending,
		"processing":  domain.OrderStatusProcessing,
		"In progress": domain.OrderStatusInProgress,
		"in_progress": domain.OrderStatusInProgress,
		"Completed":   domain.OrderStatusCompleted,
		"Partial":     domain.OrderStatusPartial,
		"Canceled":    domain.OrderStatusCanceled,
		"Cancelled":   domain.OrderStatusCanceled,
		"Refunded":    domain.OrderStatusRefunded,
	}
	for raw, want := range tests {
		got, err := NormalizeStatus(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := NormalizeStatus("")
	assert.ErrorIs(t, err, domain.ErrUnknownProviderStatus)
}

func TestNewProviderClient(t *testing.T) {
	_, err := NewProviderClient(&config.Provider{}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewProviderClient(&config.Provider{URL: "not a url"}, zap.NewNop())
	assert.Error(t, err)
}

func ptr(v int64) *int64 {
	return &v
}
