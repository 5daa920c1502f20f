package cash_flows

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*chi.Mux, *Repository) {
	t.Helper()

	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	handler := NewHandler(repo, zerolog.Nop())

	router := chi.NewRouter()
	router.Put("/api/deals/{dealID}/cashflows", handler.HandlePutSeries)
	router.Get("/api/deals/{dealID}/cashflows", handler.HandleGetSeries)
	return router, repo
}

func TestHandlers_PutThenGetSeries(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{"start_date": "2023-06-01", "amounts": [-1000, 0, 1300]}`
	req := httptest.NewRequest(http.MethodPut, "/api/deals/deal-1/cashflows", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/deals/deal-1/cashflows", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []CashFlowRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "2023-06-01", rows[0].Date)
	assert.Equal(t, -1000.0, rows[0].Amount)
	assert.Equal(t, 1300.0, rows[2].Amount)
}

func TestHandlers_PutRejectsBadInput(t *testing.T) {
	router, _ := setupRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"start_date": `},
		{"bad date", `{"start_date": "June 2023", "amounts": [-1000]}`},
		{"empty amounts", `{"start_date": "2023-06-01", "amounts": []}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/deals/deal-1/cashflows", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlers_GetUnknownDealReturnsEmptyList(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/deals/missing/cashflows", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
