package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"brewbook/internal/ancestry"
	"brewbook/internal/store"
	"brewbook/internal/undo"
	"brewbook/models"
)

var testDBCounter atomic.Int64

// withTestEnvironment swaps the package-level dependencies for a fresh
// in-memory setup and restores the originals on cleanup.
func withTestEnvironment(t *testing.T) *store.Registry {
	t.Helper()

	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared", testDBCounter.Add(1))
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

	origRegistry, origVersions, origStack := registry, versions, stack
	reg := store.NewRegistry(db)
	Configure(reg, ancestry.NewService(reg.Recipes), undo.NewStack())
	t.Cleanup(func() {
		registry, versions, stack = origRegistry, origVersions, origStack
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return reg
}

func insertTestRecipe(t *testing.T, reg *store.Registry, name string) *models.Recipe {
	t.Helper()
	rec := &models.Recipe{Record: models.Record{Name: name, Display: true}}
	if err := reg.Recipes.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert recipe %s: %v", name, err)
	}
	return rec
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
	if resp.Time.IsZero() {
		t.Fatal("expected response time to be populated")
	}
}

func TestUnconfiguredHandlersReturnServiceUnavailable(t *testing.T) {
	origRegistry, origVersions, origStack := registry, versions, stack
	registry, versions, stack = nil, nil, nil
	t.Cleanup(func() {
		registry, versions, stack = origRegistry, origVersions, origStack
	})

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}
