package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReferenceDataRoutes(t *testing.T) {
	router := setupRouter(t)

	rec := put(t, router, "/inventory/facilities", `{"facility_id":"PUSK-02","facility_name":"Puskesmas Gambir","latitude":-6.17,"longitude":106.82}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = put(t, router, "/inventory/items", `{"item_id":"MED-IBU","item_name":"Ibuprofen 400mg"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = put(t, router, "/inventory/positions", `{"facilityId":"PUSK-02","itemId":"MED-IBU","currentStock":12,"minStockThreshold":20,"maxStockCapacity":80,"expiryDate":"2027-01-31"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	position := body["position"].(map[string]interface{})
	assert.Equal(t, float64(12), position["current_stock"])
	assert.Equal(t, "Puskesmas Gambir", position["facility_name"])
}

func TestReferenceDataRoutes_Errors(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"malformed body", "/inventory/facilities", `{`, http.StatusBadRequest, "validation"},
		{"bad coordinates", "/inventory/facilities", `{"facility_id":"X","facility_name":"X","latitude":120}`, http.StatusBadRequest, "validation"},
		{"missing item name", "/inventory/items", `{"item_id":"MED-X"}`, http.StatusBadRequest, "validation"},
		{"unknown facility", "/inventory/positions", `{"facilityId":"NOPE","itemId":"MED-AMX","currentStock":1}`, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := put(t, router, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "FAILED", body["status"])
			assert.Equal(t, tt.kind, body["kind"])
		})
	}
}
