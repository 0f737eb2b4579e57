package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	applog "brewbook/internal/log"
	"brewbook/internal/store"
	"brewbook/internal/undo"
	"brewbook/models"
)

// additionRequest names a catalog entry to copy into a recipe, with
// optional overrides for the per-addition fields.
type additionRequest struct {
	CatalogID uint     `json:"catalog_id"`
	AmountKg  *float64 `json:"amount_kg"`
	TimeMin   *float64 `json:"time_min"`
	Use       *string  `json:"use"`
}

func additionsSubresource(w http.ResponseWriter, r *http.Request, rec *models.Recipe, kind string) {
	switch r.Method {
	case http.MethodGet:
		listAdditions(w, rec, kind)
	case http.MethodPost:
		postAdditions(w, r, rec, kind)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listAdditions(w http.ResponseWriter, rec *models.Recipe, kind string) {
	switch kind {
	case "fermentables":
		writeJSON(w, http.StatusOK, projectEntities(registry.Fermentables.FindAll(func(f *models.Fermentable) bool {
			return f.RecipeID != nil && *f.RecipeID == rec.ID && !f.Deleted
		})))
	case "hops":
		writeJSON(w, http.StatusOK, projectEntities(registry.Hops.FindAll(func(h *models.Hop) bool {
			return h.RecipeID != nil && *h.RecipeID == rec.ID && !h.Deleted
		})))
	case "yeasts":
		writeJSON(w, http.StatusOK, projectEntities(registry.Yeasts.FindAll(func(y *models.Yeast) bool {
			return y.RecipeID != nil && *y.RecipeID == rec.ID && !y.Deleted
		})))
	}
}

func postAdditions(w http.ResponseWriter, r *http.Request, rec *models.Recipe, kind string) {
	if rec.Locked {
		writeJSONError(w, http.StatusConflict, "recipe is locked")
		return
	}

	var payload struct {
		additionRequest
		Items []additionRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid addition payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	reqs := payload.Items
	if len(reqs) == 0 {
		if payload.CatalogID == 0 {
			writeJSONError(w, http.StatusBadRequest, "catalog_id or items is required")
			return
		}
		reqs = []additionRequest{payload.additionRequest}
	}

	switch kind {
	case "fermentables":
		addAdditions(w, r, rec, registry.Fermentables, reqs, "fermentable",
			func(f *models.Fermentable, req additionRequest) {
				if req.AmountKg != nil {
					f.AmountKg = *req.AmountKg
				}
			},
			func(f *models.Fermentable) { id := rec.ID; f.RecipeID = &id },
			func(f *models.Fermentable) { f.RecipeID = nil },
		)
	case "hops":
		addAdditions(w, r, rec, registry.Hops, reqs, "hop",
			func(h *models.Hop, req additionRequest) {
				if req.AmountKg != nil {
					h.AmountKg = *req.AmountKg
				}
				if req.TimeMin != nil {
					h.TimeMin = *req.TimeMin
				}
				if req.Use != nil {
					h.Use = *req.Use
				}
			},
			func(h *models.Hop) { id := rec.ID; h.RecipeID = &id },
			func(h *models.Hop) { h.RecipeID = nil },
		)
	case "yeasts":
		addAdditions(w, r, rec, registry.Yeasts, reqs, "yeast",
			func(*models.Yeast, additionRequest) {},
			func(y *models.Yeast) { id := rec.ID; y.RecipeID = &id },
			func(y *models.Yeast) { y.RecipeID = nil },
		)
	}
}

// addAdditions copies the named catalog entries into unpersisted
// instance-of-use rows and executes one undoable command covering the
// whole drop: persisting happens as a side effect of the first add, and
// a single undo removes every item in the batch.
func addAdditions[T any, P store.Model[T]](
	w http.ResponseWriter,
	r *http.Request,
	rec *models.Recipe,
	s *store.Store[T, P],
	reqs []additionRequest,
	label string,
	customize func(P, additionRequest),
	attach, detach func(P),
) {
	items := make([]P, 0, len(reqs))
	for _, req := range reqs {
		cat, err := s.Get(r.Context(), req.CatalogID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, fmt.Sprintf("%s %d not found", label, req.CatalogID))
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "unable to load "+label)
			return
		}

		cp := *cat
		p := P(&cp)
		p.Meta().Model = gorm.Model{}
		p.DetachPointers()
		parent := req.CatalogID
		p.Meta().ParentID = &parent
		p.Meta().Deleted = false
		customize(p, req)
		items = append(items, p)
	}

	var cmd undo.Command
	if len(items) == 1 {
		cmd = undo.NewAddItem(s, items[0], attach, detach, fmt.Sprintf("Add %s %s to recipe %s", label, items[0].Meta().Name, rec.Name))
	} else {
		cmd = undo.NewAddList(s, items, attach, detach, fmt.Sprintf("Add %d %ss to recipe %s", len(items), label, rec.Name))
	}

	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to add items to recipe", "kind", label, "recipe", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to add "+label)
		return
	}
	writeJSON(w, http.StatusCreated, projectEntities(items))
}

func removeAddition(w http.ResponseWriter, r *http.Request, rec *models.Recipe, kind, rawID string) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	idValue, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch kind {
	case "fermentables":
		dropAddition(w, r, rec, registry.Fermentables, uint(idValue), "fermentable",
			func(f *models.Fermentable) *uint { return f.RecipeID },
			func(f *models.Fermentable) { id := rec.ID; f.RecipeID = &id },
			func(f *models.Fermentable) { f.RecipeID = nil },
		)
	case "hops":
		dropAddition(w, r, rec, registry.Hops, uint(idValue), "hop",
			func(h *models.Hop) *uint { return h.RecipeID },
			func(h *models.Hop) { id := rec.ID; h.RecipeID = &id },
			func(h *models.Hop) { h.RecipeID = nil },
		)
	case "yeasts":
		dropAddition(w, r, rec, registry.Yeasts, uint(idValue), "yeast",
			func(y *models.Yeast) *uint { return y.RecipeID },
			func(y *models.Yeast) { id := rec.ID; y.RecipeID = &id },
			func(y *models.Yeast) { y.RecipeID = nil },
		)
	default:
		http.NotFound(w, r)
	}
}

func dropAddition[T any, P store.Model[T]](
	w http.ResponseWriter,
	r *http.Request,
	rec *models.Recipe,
	s *store.Store[T, P],
	key uint,
	label string,
	owner func(P) *uint,
	attach, detach func(P),
) {
	item, err := s.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "unable to load "+label)
		return
	}
	if id := owner(item); id == nil || *id != rec.ID {
		http.NotFound(w, r)
		return
	}

	cmd := undo.NewRemoveItem(s, item, attach, detach, fmt.Sprintf("Remove %s %s from recipe %s", label, item.Meta().Name, rec.Name))
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to remove item from recipe", "kind", label, "recipe", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to remove "+label)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
