package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	testutil "github.com/riverwatchhq/riverwatch/internal/database/testutil"
	"github.com/riverwatchhq/riverwatch/internal/models"
)

func newStationsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	handler, err := NewStationsHandler(db)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/stations", handler.List)
	r.GET("/api/stations/:id", handler.Get)
	r.PUT("/api/stations/:id", handler.Upsert)
	return r
}

func upsertStation(t *testing.T, router *gin.Engine, id string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/stations/"+id, jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestStationsHandlerUpsertAndGet(t *testing.T) {
	router := newStationsRouter(t)

	rec := upsertStation(t, router, "ABC123", map[string]any{
		"name":       "Boulder Creek at Broadway",
		"river_name": "Boulder Creek",
		"state":      "CO",
		"latitude":   40.0135,
		"longitude":  -105.2812,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stations/ABC123", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)

	var station models.Station
	require.NoError(t, json.Unmarshal(envelope.Data, &station))
	require.Equal(t, "Boulder Creek at Broadway", station.Name)
	require.Equal(t, "CO", station.State)
	require.InDelta(t, 40.0135, station.Latitude, 1e-9)
}

func TestStationsHandlerGetUnknown(t *testing.T) {
	router := newStationsRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stations/NOPE", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "STATION_NOT_FOUND", envelope.Error.Code)
}

func TestStationsHandlerUpsertRequiresName(t *testing.T) {
	router := newStationsRouter(t)

	rec := upsertStation(t, router, "ABC123", map[string]any{"state": "CO"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStationsHandlerListOrdersByName(t *testing.T) {
	router := newStationsRouter(t)

	require.Equal(t, http.StatusOK, upsertStation(t, router, "B2", map[string]any{"name": "Zuni River"}).Code)
	require.Equal(t, http.StatusOK, upsertStation(t, router, "A1", map[string]any{"name": "Animas River"}).Code)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stations", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)

	var stations []models.Station
	require.NoError(t, json.Unmarshal(envelope.Data, &stations))
	require.Len(t, stations, 2)
	require.Equal(t, "Animas River", stations[0].Name)
	require.Equal(t, "Zuni River", stations[1].Name)
}
