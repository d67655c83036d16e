package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	clientservice "github.com/sahelsolar/fieldops/internal/client/service"
	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/config"
	dashboardservice "github.com/sahelsolar/fieldops/internal/dashboard/service"
	"github.com/sahelsolar/fieldops/internal/events"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	interventionservice "github.com/sahelsolar/fieldops/internal/intervention/service"
	"github.com/sahelsolar/fieldops/internal/notification"
	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	supplierservice "github.com/sahelsolar/fieldops/internal/supplier/service"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
	technicianservice "github.com/sahelsolar/fieldops/internal/technician/service"
)

var serverNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setupServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&supplierdomain.Supplier{},
		&clientdomain.Client{},
		&techniciandomain.Technician{},
		&interventiondomain.Intervention{},
		&reportdomain.Report{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	err = db.Exec(`CREATE TABLE ops_events (
		id BIGINT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT,
		dedupe_key TEXT UNIQUE,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create ops_events: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	log := zap.NewNop()
	clk := clock.Fixed{At: serverNow}

	srv := &Server{
		cfg: config.Config{Environment: "test"},
		db:  db,
		log: log,
		supplierSvc: supplierservice.NewService(supplierservice.ServiceParam{
			DB: db, Log: log, GenID: node,
		}),
		clientSvc: clientservice.NewService(clientservice.ServiceParam{
			DB: db, Log: log, GenID: node,
		}),
		technicianSvc: technicianservice.NewService(technicianservice.ServiceParam{
			DB: db, Log: log, GenID: node,
		}),
		interventionSvc: interventionservice.NewService(interventionservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: clk,
			Outbox:   events.NewOutbox(db, node),
			Notifier: notification.NewNoopNotifier(log),
		}),
		dashboardSvc: dashboardservice.NewService(dashboardservice.ServiceParam{
			DB: db, Log: log, Clock: clk,
		}),
		engine:  gin.New(),
		limiter: newRateLimiter(1000, time.Minute),
	}
	srv.RegisterRoutes()
	return srv, db
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, envelope.Data)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestClientAndInterventionFlow(t *testing.T) {
	srv, _ := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/clients", gin.H{
		"name":                 "Awa Diop",
		"address":              "Dakar",
		"phone":                "771112233",
		"email":                "awa@example.sn",
		"installed_at":         serverNow.AddDate(-1, 0, 0),
		"equipment_descriptor": "8KVA 10KWH backup",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create client: %d %s", w.Code, w.Body.String())
	}
	var client clientdomain.Client
	decodeData(t, w, &client)

	w = doJSON(t, srv, http.MethodGet, "/api/clients/"+client.ID.String()+"/price-preview?kind=installation", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("price preview: %d %s", w.Code, w.Body.String())
	}
	var preview clientdomain.PricePreview
	decodeData(t, w, &preview)
	if preview.Capacity != 8 || preview.Price != 80000 {
		t.Fatalf("preview = %+v", preview)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/interventions", gin.H{
		"kind":         "maintenance",
		"scheduled_at": serverNow.Add(24 * time.Hour),
		"client_id":    client.ID.String(),
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create intervention: %d %s", w.Code, w.Body.String())
	}
	var iv interventiondomain.Intervention
	decodeData(t, w, &iv)
	if iv.Price != 30000 {
		t.Fatalf("derived price = %d, want 30000", iv.Price)
	}
	if iv.Status != interventiondomain.StatusInProgress {
		t.Fatalf("status = %q", iv.Status)
	}

	w = doJSON(t, srv, http.MethodPut, "/api/interventions/"+iv.ID.String(), gin.H{
		"version": 1,
		"status":  "completed",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete intervention: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPut, "/api/interventions/"+iv.ID.String(), gin.H{
		"version": 1,
		"status":  "cancelled",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("stale version: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/dashboards/admin", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin dashboard: %d %s", w.Code, w.Body.String())
	}
}

func TestCreateClientRejectsUnratedDescriptor(t *testing.T) {
	srv, _ := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/clients", gin.H{
		"name":                 "Sans Fiche",
		"address":              "Thiès",
		"phone":                "779990011",
		"email":                "sans@example.sn",
		"installed_at":         serverNow,
		"equipment_descriptor": "batterie 20KWH",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestTechnicianHeadersScopeAccess(t *testing.T) {
	srv, db := setupServer(t)

	node, _ := snowflake.NewNode(2)
	tech := &techniciandomain.Technician{
		ID: node.Generate(), Name: "Moussa Ba", Phone: "778889900", Email: "moussa@example.sn",
	}
	if err := db.Create(tech).Error; err != nil {
		t.Fatalf("seed technician: %v", err)
	}

	headers := map[string]string{
		"X-Caller-Role": "technician",
		"X-Caller-Id":   tech.ID.String(),
	}

	w := doJSON(t, srv, http.MethodPost, "/api/interventions", gin.H{
		"kind":         "repair",
		"scheduled_at": serverNow,
		"client_id":    "123",
	}, headers)
	if w.Code != http.StatusForbidden {
		t.Fatalf("technician create: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/dashboards/admin", nil, headers)
	if w.Code != http.StatusForbidden {
		t.Fatalf("technician admin dashboard: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/dashboards/technicians/"+tech.ID.String(), nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("own dashboard: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/interventions", nil, map[string]string{
		"X-Caller-Role": "technician",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing caller id: %d %s", w.Code, w.Body.String())
	}
}

func TestUnknownInterventionReturns404(t *testing.T) {
	srv, _ := setupServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/interventions/999999999", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestWriteRateLimit(t *testing.T) {
	srv, _ := setupServer(t)
	srv.limiter = newRateLimiter(2, time.Minute)

	body := gin.H{"name": "Sahel Energy"}
	for i := 0; i < 2; i++ {
		w := doJSON(t, srv, http.MethodPost, "/api/suppliers", gin.H{"name": fmt.Sprintf("Sahel %d", i)}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: %d %s", i, w.Code, w.Body.String())
		}
	}
	w := doJSON(t, srv, http.MethodPost, "/api/suppliers", body, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
