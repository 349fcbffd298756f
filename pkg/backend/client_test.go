package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhkim/gapboard/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingGap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/gap", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","binance_rate":0.0001,"bitget_rate":0.0003,"next_funding_time":null},
			{"symbol":"ETHUSDT","binance_rate":-0.0025,"bitget_rate":0.0075,"next_funding_time":"2026-08-31T16:00:00"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rows, err := client.FundingGap(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "BTCUSDT", rows[0].Symbol)
	assert.True(t, rows[0].BinanceRate.Equal(decimal.RequireFromString("0.0001")))
	assert.False(t, rows[0].NextFundingTime.Valid, "null timestamp stays absent")

	require.True(t, rows[1].NextFundingTime.Valid)
	assert.Equal(t, 16, rows[1].NextFundingTime.Time.Hour())
}

func TestFundingGapNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FundingGap(context.Background())
	assert.Error(t, err)
}

func TestBitgetLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bitget/latest", r.URL.Path)
		w.Write([]byte(`[{"symbol":"XRPUSDT","funding_rate":0.0002,"next_funding_time":"2026-08-31T16:00:00Z"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rows, err := client.BitgetLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].NextFundingTime.Valid)
}

func TestPlaceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/bitget/order", r.URL.Path)

		var req models.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "open_long", req.Side)

		json.NewEncoder(w).Encode(models.OrderResult{Status: "ok", Message: "order placed"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.PlaceOrder(context.Background(), models.ExchangeBitget, models.OrderRequest{
		Symbol:    "BTCUSDT",
		Side:      "open_long",
		USDAmount: decimal.RequireFromString("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "order placed", result.Message)
}

func TestPlaceOrderSurfacesBackendFailureVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.OrderResult{Status: "error", Message: "insufficient margin"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.PlaceOrder(context.Background(), models.ExchangeBinance, models.OrderRequest{})
	require.NoError(t, err, "a decodable error body is a result, not a transport failure")
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "insufficient margin", result.Message)
}

func TestAuthenticatorHeaderApplied(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithAuthenticator(NewTokenAuthenticator("sekrit")))
	_, err := client.FundingGap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer sekrit", gotAuth)
}

func TestFlexTimeLayouts(t *testing.T) {
	cases := []string{
		`"2026-08-31T16:00:00Z"`,
		`"2026-08-31T16:00:00+09:00"`,
		`"2026-08-31T16:00:00"`,
		`"2026-08-31T16:00:00.123456"`,
	}
	for _, raw := range cases {
		var ft FlexTime
		require.NoError(t, ft.UnmarshalJSON([]byte(raw)), raw)
		assert.True(t, ft.Valid, raw)
	}

	var ft FlexTime
	require.NoError(t, ft.UnmarshalJSON([]byte(`null`)))
	assert.False(t, ft.Valid)
	assert.Nil(t, ft.Ptr())
}
