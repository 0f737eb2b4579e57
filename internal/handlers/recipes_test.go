package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brewbook/models"
)

func TestCreateRecipe(t *testing.T) {
	reg := withTestEnvironment(t)

	body := `{"name":"House Pale","brewer":"Sam","batch_size_l":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp recipeResponse
	decodeBody(t, w, &resp)
	if resp.ID == 0 {
		t.Fatal("expected created recipe to carry a key")
	}
	if resp.Name != "House Pale" || resp.Brewer != "Sam" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if reg.Recipes.Len() != 1 {
		t.Fatalf("expected recipe cached, got %d", reg.Recipes.Len())
	}
	if !stack.CanUndo() {
		t.Fatal("expected creation to be undoable")
	}
}

func TestCreateRecipeRequiresName(t *testing.T) {
	withTestEnvironment(t)

	req := httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(`{"brewer":"Sam"}`))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestListRecipesHidesRetiredByDefault(t *testing.T) {
	reg := withTestEnvironment(t)

	visible := insertTestRecipe(t, reg, "Visible")
	hidden := insertTestRecipe(t, reg, "Hidden")
	hidden.Display = false
	if err := reg.Recipes.Update(context.Background(), hidden); err != nil {
		t.Fatalf("hide: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	var resp []recipeResponse
	decodeBody(t, w, &resp)
	if len(resp) != 1 || resp[0].ID != visible.Key() {
		t.Fatalf("expected only the visible recipe, got %d entries", len(resp))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/recipes?all=1", nil)
	w = httptest.NewRecorder()
	RecipeResource(w, req)

	decodeBody(t, w, &resp)
	if len(resp) != 2 {
		t.Fatalf("expected all=1 to include retired recipes, got %d", len(resp))
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	withTestEnvironment(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/404", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUpdateRecipeBuildsUndoableComposite(t *testing.T) {
	reg := withTestEnvironment(t)
	rec := insertTestRecipe(t, reg, "Old Name")

	body := `{"name":"New Name","brewer":"Pat"}`
	req := httptest.NewRequest(http.MethodPut, "/api/recipes/1", strings.NewReader(body))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if rec.Name != "New Name" || rec.Brewer != "Pat" {
		t.Fatalf("expected fields applied, got %q %q", rec.Name, rec.Brewer)
	}
	if stack.Len() != 1 {
		t.Fatalf("expected one history slot for the whole edit, got %d", stack.Len())
	}

	if err := stack.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if rec.Name != "Old Name" || rec.Brewer != "" {
		t.Fatalf("expected single undo to revert both fields, got %q %q", rec.Name, rec.Brewer)
	}
}

func TestUpdateLockedRecipeConflicts(t *testing.T) {
	reg := withTestEnvironment(t)
	rec := insertTestRecipe(t, reg, "Frozen")
	rec.Locked = true
	if err := reg.Recipes.Update(context.Background(), rec); err != nil {
		t.Fatalf("lock: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/recipes/1", strings.NewReader(`{"name":"Thawed"}`))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if rec.Name != "Frozen" {
		t.Fatalf("expected locked recipe untouched, got %q", rec.Name)
	}

	// An explicit unlock is the one edit a locked recipe accepts.
	req = httptest.NewRequest(http.MethodPut, "/api/recipes/1", strings.NewReader(`{"locked":false}`))
	w = httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected unlock to pass, got %d: %s", w.Code, w.Body.String())
	}
	if rec.Locked {
		t.Fatal("expected recipe unlocked")
	}
}

func TestDeleteRecipeIsUndoable(t *testing.T) {
	reg := withTestEnvironment(t)
	rec := insertTestRecipe(t, reg, "Ephemeral")

	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/1", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if !rec.Deleted {
		t.Fatal("expected recipe soft deleted")
	}

	if err := stack.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if rec.Deleted {
		t.Fatal("expected recipe restored by undo")
	}
}

func TestPurgeReferencedRecipeConflicts(t *testing.T) {
	reg := withTestEnvironment(t)
	rec := insertTestRecipe(t, reg, "Parent")
	ctx := context.Background()

	child, err := reg.Recipes.InsertCopyOf(ctx, rec.Key())
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	key := rec.Key()
	child.AncestorID = &key
	if err := reg.Recipes.Update(ctx, child); err != nil {
		t.Fatalf("link: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/1?purge=1", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBranchRecipe(t *testing.T) {
	reg := withTestEnvironment(t)
	rec := insertTestRecipe(t, reg, "Flagship")
	rec.Locked = true
	if err := reg.Recipes.Update(context.Background(), rec); err != nil {
		t.Fatalf("lock: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/recipes/1/branch", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp recipeResponse
	decodeBody(t, w, &resp)
	if resp.AncestorID == nil || *resp.AncestorID != rec.Key() {
		t.Fatal("expected revision to point at its source")
	}
	if resp.Locked {
		t.Fatal("expected revision open for editing")
	}
	if rec.Display || !rec.Locked {
		t.Fatal("expected source retired")
	}
}

func TestAncestorsEndpoint(t *testing.T) {
	reg := withTestEnvironment(t)
	ctx := context.Background()

	v1 := insertTestRecipe(t, reg, "v1")
	v2 := insertTestRecipe(t, reg, "v2")
	v3 := insertTestRecipe(t, reg, "v3")
	if err := versions.ConnectDescendant(ctx, v1, v2); err != nil {
		t.Fatalf("connect v1 v2: %v", err)
	}
	if err := versions.ConnectDescendant(ctx, v2, v3); err != nil {
		t.Fatalf("connect v2 v3: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/3/ancestors", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	var resp []recipeResponse
	decodeBody(t, w, &resp)
	if len(resp) != 2 || resp[0].ID != v2.Key() || resp[1].ID != v1.Key() {
		t.Fatalf("expected [v2 v1], got %+v", resp)
	}
}

func TestConnectDescendantRejectsCycle(t *testing.T) {
	reg := withTestEnvironment(t)
	ctx := context.Background()

	v1 := insertTestRecipe(t, reg, "v1")
	v2 := insertTestRecipe(t, reg, "v2")
	if err := versions.ConnectDescendant(ctx, v1, v2); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// v2 descends from v1; attaching v1 under v2 would close the loop.
	req := httptest.NewRequest(http.MethodPost, "/api/recipes/2/ancestor", strings.NewReader(`{"descendant_id":1}`))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCandidatesEndpointFilters(t *testing.T) {
	reg := withTestEnvironment(t)
	ctx := context.Background()

	insertTestRecipe(t, reg, "anchor")
	insertTestRecipe(t, reg, "eligible")
	retired := insertTestRecipe(t, reg, "retired")
	retired.Display = false
	if err := reg.Recipes.Update(ctx, retired); err != nil {
		t.Fatalf("retire: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/1/candidates", nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	var resp []recipeResponse
	decodeBody(t, w, &resp)
	if len(resp) != 1 || resp[0].Name != "eligible" {
		t.Fatalf("expected one candidate, got %+v", resp)
	}
}

func TestSwapEquipmentUpdatesVolumes(t *testing.T) {
	reg := withTestEnvironment(t)
	ctx := context.Background()

	rec := insertTestRecipe(t, reg, "Scaled")
	rec.BatchSizeL = 20
	rec.BoilSizeL = 24
	if err := reg.Recipes.Update(ctx, rec); err != nil {
		t.Fatalf("seed volumes: %v", err)
	}

	eq := &models.Equipment{
		Record:     models.Record{Name: "Big rig", Display: true},
		BatchSizeL: 40,
		BoilSizeL:  48,
	}
	if err := reg.Equipment.Insert(ctx, eq); err != nil {
		t.Fatalf("insert equipment: %v", err)
	}

	body := `{"equipment_id":1,"update_volumes":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/recipes/1/equipment", strings.NewReader(body))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if rec.EquipmentID == nil || *rec.EquipmentID != eq.Key() {
		t.Fatal("expected equipment assigned")
	}
	if rec.BatchSizeL != 40 || rec.BoilSizeL != 48 {
		t.Fatalf("expected volumes adopted, got %v %v", rec.BatchSizeL, rec.BoilSizeL)
	}

	if err := stack.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if rec.EquipmentID != nil || rec.BatchSizeL != 20 || rec.BoilSizeL != 24 {
		t.Fatal("expected single undo to revert the swap and both volumes")
	}
}

func TestBrewNotesEndpoint(t *testing.T) {
	reg := withTestEnvironment(t)
	rec := insertTestRecipe(t, reg, "Logged")

	body := `{"og":1.052,"fg":1.010,"notes":"smooth brew day"}`
	req := httptest.NewRequest(http.MethodPost, "/api/recipes/1/brewnotes", strings.NewReader(body))
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if reg.BrewNotes.Len() != 1 {
		t.Fatalf("expected one brew note stored, got %d", reg.BrewNotes.Len())
	}
	note := reg.BrewNotes.All()[0]
	if note.RecipeID != rec.Key() {
		t.Fatal("expected note attached to the recipe")
	}
	if !strings.HasPrefix(note.Name, "Logged ") {
		t.Fatalf("expected auto-generated name, got %q", note.Name)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/recipes/1/brewnotes", nil)
	w = httptest.NewRecorder()
	RecipeResource(w, req)

	var resp []map[string]any
	decodeBody(t, w, &resp)
	if len(resp) != 1 {
		t.Fatalf("expected one listed note, got %d", len(resp))
	}
}
