package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"brewbook/internal/store"
	"brewbook/models"
)

var testDBCounter atomic.Int64

func newTestRegistry(t *testing.T) *store.Registry {
	t.Helper()

	dsn := fmt.Sprintf("file:servertest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Recipe{},
		&models.Equipment{},
		&models.Fermentable{},
		&models.Hop{},
		&models.Yeast{},
		&models.BrewNote{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return store.NewRegistry(db)
}

func TestNewRequiresRegistry(t *testing.T) {
	if _, err := New(Config{Addr: ":0"}); err == nil {
		t.Fatal("expected error when registry is missing")
	}
}

func TestServerRoutesRequests(t *testing.T) {
	reg := newTestRegistry(t)
	srv, err := New(Config{Addr: ":0", Registry: reg})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(`{"name":"Routed"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create recipe: expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/recipes/1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get recipe: expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/undo", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("undo state: expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/nothing", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected status 404, got %d", w.Code)
	}

	if err := reg.Recipes.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reg.Recipes.Len() != 1 {
		t.Fatalf("expected created recipe persisted, got %d", reg.Recipes.Len())
	}
}
