package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-greeks/internal/data"
	"github.com/contactkeval/option-greeks/internal/pricing"
	"github.com/contactkeval/option-greeks/internal/report"
)

func newTestRouter() http.Handler {
	prov := data.NewStaticProvider(100, nil)
	return NewRouter(NewPricingHandler(prov, 2))
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestPrice(t *testing.T) {
	w := post(t, newTestRouter(), "/api/v1/pricing/price",
		`{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res pricing.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, 6.8887, res.CallPrice, 1e-4)
	assert.InDelta(t, 4.4197, res.PutPrice, 1e-4)
}

func TestPrice_SpotFromProvider(t *testing.T) {
	w := post(t, newTestRouter(), "/api/v1/pricing/price",
		`{"underlying": "SPY", "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res pricing.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, 6.8887, res.CallPrice, 1e-4)
}

func TestPrice_ProviderFailure(t *testing.T) {
	router := NewRouter(NewPricingHandler(data.NewStaticProvider(0, nil), 1))
	w := post(t, router, "/api/v1/pricing/price",
		`{"underlying": "SPY", "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPrice_DomainError(t *testing.T) {
	w := post(t, newTestRouter(), "/api/v1/pricing/price",
		`{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sigma", body.Field)
	assert.Contains(t, body.Error, "sigma must be > 0")
}

func TestPrice_BadJSON(t *testing.T) {
	w := post(t, newTestRouter(), "/api/v1/pricing/price", `{"S": "abc"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatch(t *testing.T) {
	body := `{"contracts": [
		{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2},
		{"S": 110, "K": 100, "T": 0.25, "r": 0.03, "sigma": 0.3}
	]}`
	w := post(t, newTestRouter(), "/api/v1/pricing/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Results []pricing.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.InDelta(t, 6.888729, got.Results[0].CallPrice, 1e-6)
	assert.InDelta(t, 13.038845, got.Results[1].CallPrice, 1e-6)
}

func TestBatch_DomainError(t *testing.T) {
	body := `{"contracts": [
		{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2},
		{"S": 100, "K": 100, "T": 0, "r": 0.05, "sigma": 0.2}
	]}`
	w := post(t, newTestRouter(), "/api/v1/pricing/batch", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "contract 1")
}

func TestBatch_TooManyContracts(t *testing.T) {
	contract := `{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2}`
	contracts := strings.TrimSuffix(strings.Repeat(contract+",", maxBatchContracts+1), ",")

	w := post(t, newTestRouter(), "/api/v1/pricing/batch", `{"contracts": [`+contracts+`]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "too many contracts")
}

func TestBatch_AtLimit(t *testing.T) {
	contract := `{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2}`
	contracts := strings.TrimSuffix(strings.Repeat(contract+",", maxBatchContracts), ",")

	w := post(t, newTestRouter(), "/api/v1/pricing/batch", `{"contracts": [`+contracts+`]}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayoff(t *testing.T) {
	body := `{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2, "min": 50, "max": 150, "points": 3}`
	w := post(t, newTestRouter(), "/api/v1/pricing/payoff", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc report.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Payoff, 3)
	assert.Equal(t, 50.0, doc.Payoff[0].Spot)
	assert.InDelta(t, -6.8887, doc.Payoff[0].CallPnL, 1e-4)
	assert.InDelta(t, -6.8887, doc.Payoff[1].CallPnL, 1e-4)
	assert.InDelta(t, 43.1113, doc.Payoff[2].CallPnL, 1e-4)
	assert.InDelta(t, 106.8887, doc.BreakEven.Call, 1e-4)
}

func TestPayoff_InvalidRange(t *testing.T) {
	router := newTestRouter()

	w := post(t, router, "/api/v1/pricing/payoff",
		`{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2, "min": 150, "max": 50, "points": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, router, "/api/v1/pricing/payoff",
		`{"S": 100, "K": 100, "T": 0.5, "r": 0.05, "sigma": 0.2, "min": 50, "max": 150, "points": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
