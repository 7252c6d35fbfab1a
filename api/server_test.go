package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/ingest"
	"github.com/ZamarianPatrick/plantwatch-backend/metrics"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"github.com/ZamarianPatrick/plantwatch-backend/store/storetest"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server   *Server
	db       *gorm.DB
	pipeline *ingest.Pipeline
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, cfg Config, opts ...ingest.Option) *fixture {
	t.Helper()

	db := storetest.OpenSeeded(t)
	root := filepath.Join(t.TempDir(), "photos")
	m := metrics.New()
	opts = append([]ingest.Option{
		ingest.WithMetrics(m),
		ingest.WithLocation(time.UTC),
	}, opts...)
	p := ingest.NewPipeline(db, ingest.NewPhotoStore(root), opts...)
	if cfg.Version == "" {
		cfg.Version = "test"
	}
	cfg.PhotoRoot = root
	return &fixture{
		server:   NewServer(cfg, db, p, m),
		db:       db,
		pipeline: p,
		metrics:  m,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestSensorDataRoundTrip(t *testing.T) {
	f := newFixture(t, Config{})
	photo := []byte("\x89PNG fake image")

	w := f.do(t, http.MethodPost, "/sensor-data", map[string]any{
		"id":              "Card001",
		"temperature":     21.5,
		"light":           410,
		"ground_humidity": []float64{33.3, 90},
		"image":           base64.StdEncoding.EncodeToString(photo),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"success","plants_updated":2}`, w.Body.String())

	for _, id := range []string{"1", "2"} {
		w = f.do(t, http.MethodGet, "/GetPlantInfos?id="+id, nil)
		require.Equal(t, http.StatusOK, w.Code)

		info := decode[model.PlantInfo](t, w)
		assert.Equal(t, 21.5, info.Temperature)
		assert.Equal(t, 410.0, info.Luminosity)
		assert.Equal(t, 33.3, info.Humidity)
		assert.True(t, strings.HasPrefix(info.LastPhotoRef, id+"/"), info.LastPhotoRef)

		w = f.do(t, http.MethodGet, "/photos/"+info.LastPhotoRef, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, photo, w.Body.Bytes())
	}

	// plant 3 is not on Card001
	info := decode[model.PlantInfo](t, f.do(t, http.MethodGet, "/GetPlantInfos?id=3", nil))
	assert.Equal(t, 25.0, info.Temperature)
}

func TestSensorDataErrors(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		name   string
		body   any
		status int
		error  string
	}{
		{"unknown token", map[string]any{"id": "Nope", "temperature": 20, "light": 100}, http.StatusNotFound, "unknown token"},
		{"malformed json", `{"id": "Card001",`, http.StatusBadRequest, "Invalid JSON data"},
		{"missing temperature", map[string]any{"id": "Card001", "light": 100}, http.StatusBadRequest, "Invalid JSON data"},
		{"missing id", map[string]any{"temperature": 20, "light": 100}, http.StatusBadRequest, "Invalid JSON data"},
		{"bad image", map[string]any{"id": "Card001", "temperature": 20, "light": 100, "image": "!!not base64!!"}, http.StatusBadRequest, "image is not valid base64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/sensor-data", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, map[string]string{"error": tt.error}, decode[map[string]string](t, w))
		})
	}

	// none of the rejected posts touched plant 1
	info := decode[model.PlantInfo](t, f.do(t, http.MethodGet, "/GetPlantInfos?id=1", nil))
	assert.Equal(t, 22.5, info.Temperature)
	assert.Equal(t, "fern.jpg", info.LastPhotoRef)
}

func TestSensorDataAcceptsZeroValues(t *testing.T) {
	f := newFixture(t, Config{})

	w := f.do(t, http.MethodPost, "/sensor-data", map[string]any{"id": "Card002", "temperature": 0, "light": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	info := decode[model.PlantInfo](t, f.do(t, http.MethodGet, "/GetPlantInfos?id=3", nil))
	assert.Zero(t, info.Temperature)
	assert.Zero(t, info.Luminosity)
	// no humidity sample, previous value kept
	assert.Equal(t, 60.0, info.Humidity)
}

func TestSensorDataRateLimit(t *testing.T) {
	f := newFixture(t, Config{}, ingest.WithRateLimit(0.001, 1))
	body := map[string]any{"id": "Card002", "temperature": 20, "light": 100}

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/sensor-data", body).Code)

	w := f.do(t, http.MethodPost, "/sensor-data", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// other cards have their own bucket
	body["id"] = "Card003"
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/sensor-data", body).Code)

	// unknown cards are not limited, they are rejected
	body["id"] = "Nope"
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/sensor-data", body).Code)
	}
}

func TestSensorDataBodyLimit(t *testing.T) {
	f := newFixture(t, Config{MaxBodyBytes: 64})

	w := f.do(t, http.MethodPost, "/sensor-data", map[string]any{
		"id": "Card001", "temperature": 20, "light": 100,
		"image": base64.StdEncoding.EncodeToString(make([]byte, 256)),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())

	// a broken body under the limit is still a bad request
	w = f.do(t, http.MethodPost, "/sensor-data", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSensorDataTwoReadingsInOneMonth(t *testing.T) {
	at := time.Date(2025, 5, 3, 10, 30, 0, 0, time.UTC)
	f := newFixture(t, Config{}, ingest.WithClock(func() time.Time { return at }))

	for _, h := range []float64{30, 31} {
		w := f.do(t, http.MethodPost, "/sensor-data", map[string]any{
			"id": "Card002", "temperature": 20, "light": 150, "ground_humidity": []float64{h},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := f.do(t, http.MethodGet, "/GetLatestRapport?id_plante=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[model.ReportInfo](t, w)
	assert.Equal(t, "30,31", report.HumidityHistory)
	assert.Equal(t, "20,20", report.TemperatureHistory)
	assert.Equal(t, "150,150", report.LuminosityHistory)
	assert.Equal(t, "2025-05", report.Month)
}

func TestPlantInfosFields(t *testing.T) {
	f := newFixture(t, Config{})

	w := f.do(t, http.MethodGet, "/GetPlantInfos?id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fields := decode[map[string]any](t, w)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"id", "nom", "type_plante", "localisation", "humidite", "temperature", "luminosite", "derniere_photo",
	}, keys)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/GetPlantInfos?id=999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/GetPlantInfos", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/GetPlantInfos?id=abc", nil).Code)
}

func TestReadEndpoints(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/GetPlantBesoins?id=1", http.StatusOK, `{"statut":"normal","superviseur":1,"derniere_intervention":"2024-12-01"}`},
		{"/GetPlantInterventions?id_plante=3", http.StatusOK, `[{"date_intervention":"2024-12-03","id":3}]`},
		{"/GetPlantInterventions?id_plante=13", http.StatusOK, `[]`},
		{"/GetInterventionInfos?id_intervention=3", http.StatusOK, `{"nom_intervenant":"Doe","id_intervenant":3,"role_intervenant":"Treasurer","id_plante":3,"nom_plante":"Basil","note":"Pinched flowering tips","id_intervention":3}`},
		{"/GetInterventionInfos?id_intervention=30", http.StatusNotFound, `{"error":"intervention not found"}`},
		{"/GetLatestIntervention?id_plante=2", http.StatusOK, `{"nom_intervenant":"Smith","id_intervenant":2,"role_intervenant":"President","id_plante":2,"nom_plante":"Cactus","note":"Removed dry stems","id_intervention":2}`},
		{"/GetAllRapports?id_plante=2", http.StatusOK, `[{"id":2,"date_rapport":"2024-02"}]`},
		{"/GetRapport?id_rapport=1", http.StatusOK, `{"date_rapport":"2024-01","historique_humidite":"45,46,47","historique_temperature":"22,23,22","historique_luminosite":"300,310,320","photo":"fern_hist.jpg"}`},
		{"/GetRapport", http.StatusBadRequest, `{"error":"missing query parameter id_rapport"}`},
		{"/GetLatestRapport?id_plante=3", http.StatusOK, `{"date_rapport":"2024-03","historique_humidite":"60,62,59","historique_temperature":"25,26,25","historique_luminosite":"200,210,220","photo":"basil_hist.jpg"}`},
		{"/GetLatestRapport?id_plante=5", http.StatusNotFound, `{"error":"report for this plant not found"}`},
		{"/GetHierarchie", http.StatusOK, `[{"nom":"Smith","prenom":"John","role":"President"},{"nom":"Johnson","prenom":"Emily","role":"Vice President"},{"nom":"Brown","prenom":"Charlie","role":"Secretary"},{"nom":"Doe","prenom":"Jane","role":"Treasurer"},{"nom":"Williams","prenom":"Ethan","role":"Communications Lead"}]`},
		{"/GetAgendaClasse?classe=2A", http.StatusOK, `{"agenda":"Agenda 2A"}`},
		{"/GetAgendaClasse?classe=3C", http.StatusNotFound, `{"error":"class not found"}`},
		{"/GetAgendaClasse", http.StatusBadRequest, `{"error":"missing query parameter classe"}`},
		{"/GetMembreInfos?id_membre=x", http.StatusBadRequest, `{"error":"id_membre must be a positive integer"}`},
		{"/Nowhere", http.StatusNotFound, `{"error":"Route not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestListEndpoints(t *testing.T) {
	f := newFixture(t, Config{})

	plants := decode[[]model.PlantSummary](t, f.do(t, http.MethodGet, "/GetPlantList", nil))
	assert.Len(t, plants, 13)

	members := decode[[]model.MemberSummary](t, f.do(t, http.MethodGet, "/GetListeMembre", nil))
	require.Len(t, members, 11)
	assert.Equal(t, "Clark", members[0].LastName)

	info := decode[map[string]any](t, f.do(t, http.MethodGet, "/GetMembreInfos?id_membre=3", nil))
	assert.Equal(t, "Doe", info["nom"])
	assert.Equal(t, "2024-01-02", info["date_inscription"])
	assert.Equal(t, "Cactus", info["plante_principale"])
	assert.EqualValues(t, 1, info["nombre_interventions"])
	assert.Contains(t, info, "anciennete_annees")
}

func TestPreflight(t *testing.T) {
	f := newFixture(t, Config{})

	for _, target := range []string{"/sensor-data", "/GetPlantList", "/anything"} {
		w := f.do(t, http.MethodOptions, target, nil)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, Config{Version: "1.2.3"})

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	f.do(t, http.MethodPost, "/sensor-data", map[string]any{"id": "Nope", "temperature": 1, "light": 1})

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `plantwatch_ingest_requests_total{outcome="unknown_token"} 1`)
	assert.Contains(t, w.Body.String(), `plantwatch_http_request_duration_seconds_count{method="GET",route="/health",status="200"} 1`)
}

func TestLivePlantUpdates(t *testing.T) {
	f := newFixture(t, Config{})
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/plants", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.pipeline.Feed().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	body, err := json.Marshal(map[string]any{"id": "Card003", "temperature": 19, "light": 250, "ground_humidity": []float64{41}})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/sensor-data", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got []model.PlantUpdate
	for i := 0; i < 2; i++ {
		var u model.PlantUpdate
		require.NoError(t, conn.ReadJSON(&u))
		got = append(got, u)
	}
	assert.Equal(t, uint64(2), got[0].PlantID)
	assert.Equal(t, uint64(3), got[1].PlantID)
	assert.Equal(t, "Card003", got[0].Card)
	assert.Equal(t, 19.0, got[0].Temperature)
	require.NotNil(t, got[0].Humidity)
	assert.Equal(t, 41.0, *got[0].Humidity)

	conn.Close()
	assert.Eventually(t, func() bool { return f.pipeline.Feed().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
