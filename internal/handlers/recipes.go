package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"brewbook/internal/ancestry"
	applog "brewbook/internal/log"
	"brewbook/internal/store"
	"brewbook/internal/undo"
	"brewbook/models"
)

type recipeCreateRequest struct {
	Name        string  `json:"name"`
	Folder      string  `json:"folder"`
	Type        string  `json:"type"`
	Brewer      string  `json:"brewer"`
	StyleName   string  `json:"style_name"`
	Notes       string  `json:"notes"`
	BatchSizeL  float64 `json:"batch_size_l"`
	BoilSizeL   float64 `json:"boil_size_l"`
	BoilTimeMin float64 `json:"boil_time_min"`
	Efficiency  float64 `json:"efficiency"`
}

// recipeUpdateRequest uses pointer fields so only the fields present in
// the payload become undoable field changes.
type recipeUpdateRequest struct {
	Name        *string  `json:"name"`
	Folder      *string  `json:"folder"`
	Type        *string  `json:"type"`
	Brewer      *string  `json:"brewer"`
	StyleName   *string  `json:"style_name"`
	Notes       *string  `json:"notes"`
	BatchSizeL  *float64 `json:"batch_size_l"`
	BoilSizeL   *float64 `json:"boil_size_l"`
	BoilTimeMin *float64 `json:"boil_time_min"`
	Efficiency  *float64 `json:"efficiency"`
	Locked      *bool    `json:"locked"`
}

type recipeResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Folder      string    `json:"folder"`
	Display     bool      `json:"display"`
	Deleted     bool      `json:"deleted"`
	Locked      bool      `json:"locked"`
	Type        string    `json:"type"`
	Brewer      string    `json:"brewer"`
	StyleName   string    `json:"style_name"`
	Notes       string    `json:"notes"`
	BatchSizeL  float64   `json:"batch_size_l"`
	BoilSizeL   float64   `json:"boil_size_l"`
	BoilTimeMin float64   `json:"boil_time_min"`
	Efficiency  float64   `json:"efficiency"`
	AncestorID  *uint     `json:"ancestor_id,omitempty"`
	EquipmentID *uint     `json:"equipment_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func projectRecipe(rec *models.Recipe) recipeResponse {
	return recipeResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Folder:      rec.Folder,
		Display:     rec.Display,
		Deleted:     rec.Deleted,
		Locked:      rec.Locked,
		Type:        rec.Type,
		Brewer:      rec.Brewer,
		StyleName:   rec.StyleName,
		Notes:       rec.Notes,
		BatchSizeL:  rec.BatchSizeL,
		BoilSizeL:   rec.BoilSizeL,
		BoilTimeMin: rec.BoilTimeMin,
		Efficiency:  rec.Efficiency,
		AncestorID:  rec.AncestorID,
		EquipmentID: rec.EquipmentID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func projectRecipes(recs []*models.Recipe) []recipeResponse {
	out := make([]recipeResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, projectRecipe(rec))
	}
	return out
}

// RecipeResource handles everything under /api/recipes: CRUD, the
// version graph, equipment swaps, and ingredient additions.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/recipes"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", parts[0], "error", err)
		http.NotFound(w, r)
		return
	}

	rec, err := registry.Recipes.Get(r.Context(), uint(idValue))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(r.Context(), "failed to load recipe", "key", idValue, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	switch len(parts) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, projectRecipe(rec))
		case http.MethodPut:
			updateRecipe(w, r, rec)
		case http.MethodDelete:
			deleteRecipe(w, r, rec)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 2:
		recipeSubresource(w, r, rec, parts[1])
	case 3:
		removeAddition(w, r, rec, parts[1], parts[2])
	default:
		http.NotFound(w, r)
	}
}

func recipeSubresource(w http.ResponseWriter, r *http.Request, rec *models.Recipe, sub string) {
	switch sub {
	case "branch":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		branchRecipe(w, r, rec)
	case "candidates":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, projectRecipes(versions.CandidateDescendants(rec)))
	case "ancestors":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listAncestors(w, r, rec)
	case "ancestor":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		connectDescendant(w, r, rec)
	case "equipment":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		swapEquipment(w, r, rec)
	case "fermentables", "hops", "yeasts":
		additionsSubresource(w, r, rec, sub)
	case "brewnotes":
		brewNotesSubresource(w, r, rec)
	default:
		http.NotFound(w, r)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "1" {
		writeJSON(w, http.StatusOK, projectRecipes(registry.Recipes.All()))
		return
	}
	writeJSON(w, http.StatusOK, projectRecipes(registry.Recipes.AllDisplayable()))
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	var payload recipeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	rec := &models.Recipe{
		Record: models.Record{
			Name:    strings.TrimSpace(payload.Name),
			Folder:  payload.Folder,
			Display: true,
		},
		Type:        payload.Type,
		Brewer:      payload.Brewer,
		StyleName:   payload.StyleName,
		Notes:       payload.Notes,
		BatchSizeL:  payload.BatchSizeL,
		BoilSizeL:   payload.BoilSizeL,
		BoilTimeMin: payload.BoilTimeMin,
		Efficiency:  payload.Efficiency,
	}

	cmd := undo.NewAddItem(registry.Recipes, rec, func(*models.Recipe) {}, func(*models.Recipe) {}, "Add recipe "+rec.Name)
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipe(rec))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	var payload recipeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	recipes := registry.Recipes
	edit := undo.NewComposite("Change recipe " + rec.Name)

	if payload.Name != nil && *payload.Name != rec.Name {
		edit.Add(undo.NewFieldChange(recipes, rec, "name", &rec.Name, *payload.Name, "Change recipe name"))
	}
	if payload.Folder != nil && *payload.Folder != rec.Folder {
		edit.Add(undo.NewFieldChange(recipes, rec, "folder", &rec.Folder, *payload.Folder, "Change recipe folder"))
	}
	if payload.Type != nil && *payload.Type != rec.Type {
		edit.Add(undo.NewFieldChange(recipes, rec, "type", &rec.Type, *payload.Type, "Change recipe type"))
	}
	if payload.Brewer != nil && *payload.Brewer != rec.Brewer {
		edit.Add(undo.NewFieldChange(recipes, rec, "brewer", &rec.Brewer, *payload.Brewer, "Change brewer"))
	}
	if payload.StyleName != nil && *payload.StyleName != rec.StyleName {
		edit.Add(undo.NewFieldChange(recipes, rec, "style_name", &rec.StyleName, *payload.StyleName, "Change style"))
	}
	if payload.Notes != nil && *payload.Notes != rec.Notes {
		edit.Add(undo.NewFieldChange(recipes, rec, "notes", &rec.Notes, *payload.Notes, "Change recipe notes"))
	}
	if payload.BatchSizeL != nil && *payload.BatchSizeL != rec.BatchSizeL {
		edit.Add(undo.NewFieldChange(recipes, rec, "batch_size_l", &rec.BatchSizeL, *payload.BatchSizeL, "Change batch size"))
	}
	if payload.BoilSizeL != nil && *payload.BoilSizeL != rec.BoilSizeL {
		edit.Add(undo.NewFieldChange(recipes, rec, "boil_size_l", &rec.BoilSizeL, *payload.BoilSizeL, "Change boil size"))
	}
	if payload.BoilTimeMin != nil && *payload.BoilTimeMin != rec.BoilTimeMin {
		edit.Add(undo.NewFieldChange(recipes, rec, "boil_time_min", &rec.BoilTimeMin, *payload.BoilTimeMin, "Change boil time"))
	}
	if payload.Efficiency != nil && *payload.Efficiency != rec.Efficiency {
		edit.Add(undo.NewFieldChange(recipes, rec, "efficiency", &rec.Efficiency, *payload.Efficiency, "Change efficiency"))
	}

	// A locked recipe only accepts an explicit unlock; its core fields
	// evolve through branching instead.
	if rec.Locked && !edit.Empty() {
		writeJSONError(w, http.StatusConflict, "recipe is locked; branch a new version or unlock first")
		return
	}
	if payload.Locked != nil && *payload.Locked != rec.Locked {
		edit.Add(undo.NewFieldChange(recipes, rec, "locked", &rec.Locked, *payload.Locked, "Change recipe lock"))
	}

	if edit.Empty() {
		writeJSON(w, http.StatusOK, projectRecipe(rec))
		return
	}

	if err := stack.Execute(r.Context(), edit); err != nil {
		applog.Error(r.Context(), "failed to update recipe", "key", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(rec))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	if r.URL.Query().Get("purge") == "1" {
		if err := registry.Recipes.HardDelete(r.Context(), rec.Key()); err != nil {
			if errors.Is(err, store.ErrReferenced) {
				writeJSONError(w, http.StatusConflict, err.Error())
				return
			}
			applog.Error(r.Context(), "failed to hard delete recipe", "key", rec.Key(), "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cmd := undo.NewSoftDelete(registry.Recipes, rec, "Remove recipe "+rec.Name)
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to soft delete recipe", "key", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func branchRecipe(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	revision, err := versions.Branch(r.Context(), rec)
	if err != nil {
		applog.Error(r.Context(), "failed to branch recipe", "key", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to branch recipe")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipe(revision))
}

func listAncestors(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	line, err := versions.AncestorLine(r.Context(), rec)
	if err != nil {
		applog.Error(r.Context(), "failed to walk ancestor line", "key", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to list ancestors")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipes(line))
}

func connectDescendant(w http.ResponseWriter, r *http.Request, ancestor *models.Recipe) {
	var payload struct {
		DescendantID uint `json:"descendant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid ancestor connect payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	descendant, err := registry.Recipes.Get(r.Context(), payload.DescendantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "unable to load descendant")
		return
	}

	if err := versions.ConnectDescendant(r.Context(), ancestor, descendant); err != nil {
		switch {
		case errors.Is(err, ancestry.ErrWouldCycle), errors.Is(err, ancestry.ErrHasAncestor):
			writeJSONError(w, http.StatusConflict, err.Error())
		default:
			applog.Error(r.Context(), "failed to connect descendant", "ancestor", ancestor.Key(), "descendant", descendant.Key(), "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to connect descendant")
		}
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(descendant))
}

func swapEquipment(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	var payload struct {
		EquipmentID   *uint `json:"equipment_id"`
		UpdateVolumes bool  `json:"update_volumes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid equipment swap payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if rec.Locked {
		writeJSONError(w, http.StatusConflict, "recipe is locked")
		return
	}

	var equip *models.Equipment
	if payload.EquipmentID != nil && *payload.EquipmentID != 0 {
		var err error
		equip, err = registry.Equipment.Get(r.Context(), *payload.EquipmentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "unable to load equipment")
			return
		}
	}

	swap := undo.NewComposite("Change recipe equipment")
	swap.Add(undo.NewRelationChange(registry.Recipes, rec, "equipment_id", &rec.EquipmentID, payload.EquipmentID, nil, "Change equipment"))
	if payload.UpdateVolumes && equip != nil {
		swap.Add(undo.NewFieldChange(registry.Recipes, rec, "batch_size_l", &rec.BatchSizeL, equip.BatchSizeL, "Update batch size from equipment"))
		swap.Add(undo.NewFieldChange(registry.Recipes, rec, "boil_size_l", &rec.BoilSizeL, equip.BoilSizeL, "Update boil size from equipment"))
	}

	if err := stack.Execute(r.Context(), swap); err != nil {
		applog.Error(r.Context(), "failed to swap equipment", "key", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to change equipment")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(rec))
}
