package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bloom-monitor/broadcast"
	"bloom-monitor/database"
	"bloom-monitor/models"
	"bloom-monitor/repositories"
	"bloom-monitor/services"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type staticStatus struct {
	status database.ConnectorStatus
}

func (s staticStatus) Status() database.ConnectorStatus { return s.status }

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	e     *echo.Echo
	db    *gorm.DB
	alert *services.AlertService
}

func newTestServer(t *testing.T, state database.ConnState) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	assetRepo := repositories.NewAssetRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	alertService := services.NewAlertService(alertRepo, broadcast.Nop{}, log)
	ingestion := services.NewIngestionService(assetRepo, database.NewUnitOfWork(db), alertService, nil, log)
	health := services.NewHealthService(assetRepo, alertRepo)

	e := NewRouter(Handlers{
		API:        NewAPIHandler(staticStatus{status: database.ConnectorStatus{State: state}}),
		Datacenter: NewDatacenterHandler(assetRepo, ingestion, health),
		Alerts:     NewAlertHandler(alertService),
	}, log)

	return &testServer{e: e, db: db, alert: alertService}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func (s *testServer) createAsset(t *testing.T) models.Asset {
	t.Helper()

	rec, resp := s.do(t, http.MethodPost, "/api/datacenter", `{"location":"Rack A","assetType":"server"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating asset, got %d: %s", rec.Code, rec.Body.String())
	}
	var asset models.Asset
	if err := json.Unmarshal(resp.Data, &asset); err != nil {
		t.Fatalf("Failed to decode asset: %v", err)
	}
	return asset
}
