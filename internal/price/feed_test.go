package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUsdPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Contains(t, r.URL.Query().Get("ids"), "ethereum")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ethereum":{"usd":2514.23},"matic-network":{"usd":0.52}}`))
	}))
	defer server.Close()

	feed := NewFeed(server.URL, 2*time.Second)
	prices, err := feed.FetchUsdPrices(context.Background(), []string{"ETH", "matic"})
	require.NoError(t, err)

	assert.Equal(t, 2514.23, prices["ETH"])
	assert.Equal(t, 0.52, prices["MATIC"])
}

func TestFetchUsdPricesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	feed := NewFeed(server.URL, 2*time.Second)
	_, err := feed.FetchUsdPrices(context.Background(), []string{"ETH"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestFetchUsdPricesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	feed := NewFeed(server.URL, 2*time.Second)
	_, err := feed.FetchUsdPrices(context.Background(), []string{"ETH"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestFetchUsdPricesUnknownSymbolsSkipped(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	feed := NewFeed(server.URL, 2*time.Second)
	prices, err := feed.FetchUsdPrices(context.Background(), []string{"DOGE2000"})
	require.NoError(t, err)
	assert.Empty(t, prices)
	assert.False(t, called, "request must be skipped when no symbol maps to a feed id")
}
