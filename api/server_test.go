package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhkim/gapboard/pkg/backend"
	"github.com/dhkim/gapboard/pkg/poller"
	"github.com/dhkim/gapboard/pkg/view"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	p := poller.New(nil, logger, nil)
	screen := view.NewScreen(&bytes.Buffer{}, false)
	bc := backend.NewClient(backendURL)

	srv := NewServer(p, screen, bc, logger, 0)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, "http://localhost:0")

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHealthEndpointRejectsPost(t *testing.T) {
	ts := newTestServer(t, "http://localhost:0")

	resp, err := http.Post(ts.URL+"/api/health", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSortToggleEndpoint(t *testing.T) {
	ts := newTestServer(t, "http://localhost:0")

	post := func(column string) (*http.Response, map[string]interface{}) {
		resp, err := http.Post(ts.URL+"/api/sort/"+column, "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return resp, body
	}

	resp, body := post("gap")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gap", body["sort_column"])
	assert.Equal(t, "asc", body["sort_dir"])

	resp, body = post("gap")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "desc", body["sort_dir"])

	resp, _ = post("volume")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSortEndpointRejectsGet(t *testing.T) {
	ts := newTestServer(t, "http://localhost:0")

	resp, err := http.Get(ts.URL + "/api/sort/gap")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestOrderEndpointMapsSide(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	fakeBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","message":"order placed"}`))
	}))
	defer fakeBackend.Close()

	ts := newTestServer(t, fakeBackend.URL)

	form := `{"symbol":"BTCUSDT","usdAmount":"100","leverage":5,"marginMode":"crossed"}`
	resp, err := http.Post(ts.URL+"/api/bitget/order?action=BUY", "application/json", strings.NewReader(form))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "order placed", result["message"])

	assert.Equal(t, "/api/bitget/order", gotPath)
	assert.Equal(t, "open_long", gotBody["side"])
	assert.Equal(t, "BTCUSDT", gotBody["symbol"])
}

func TestOrderEndpointValidation(t *testing.T) {
	ts := newTestServer(t, "http://localhost:0")

	// unknown action
	resp, err := http.Post(ts.URL+"/api/binance/order?action=HODL", "application/json",
		strings.NewReader(`{"symbol":"BTCUSDT","usdAmount":"100"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// missing symbol
	resp, err = http.Post(ts.URL+"/api/binance/order?action=BUY", "application/json",
		strings.NewReader(`{"usdAmount":"100"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
