package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	applog "brewbook/internal/log"
	"brewbook/internal/store"
	"brewbook/internal/undo"
)

// EquipmentResource handles CRUD for the equipment catalog.
func EquipmentResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	catalogResource(w, r, "/api/equipment", registry.Equipment)
}

// FermentableResource handles CRUD for the fermentable catalog.
func FermentableResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	catalogResource(w, r, "/api/fermentables", registry.Fermentables)
}

// HopResource handles CRUD for the hop catalog.
func HopResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	catalogResource(w, r, "/api/hops", registry.Hops)
}

// YeastResource handles CRUD for the yeast catalog.
func YeastResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	catalogResource(w, r, "/api/yeasts", registry.Yeasts)
}

// catalogResource is the shared routing core of the four catalog
// endpoints. Creates, edits, and deletes all go through the undo stack.
func catalogResource[T any, P store.Model[T]](w http.ResponseWriter, r *http.Request, prefix string, s *store.Store[T, P]) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listCatalog(w, r, s)
		case http.MethodPost:
			createCatalogEntry(w, r, s)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid catalog identifier", "type", s.Name(), "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}

	entry, err := s.Get(r.Context(), uint(idValue))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(r.Context(), "failed to load catalog entry", "type", s.Name(), "key", idValue, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load "+s.Name())
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, projectEntity(entry))
	case http.MethodPut:
		updateCatalogEntry(w, r, s, entry)
	case http.MethodDelete:
		deleteCatalogEntry(w, r, s, entry)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listCatalog[T any, P store.Model[T]](w http.ResponseWriter, r *http.Request, s *store.Store[T, P]) {
	if r.URL.Query().Get("all") == "1" {
		writeJSON(w, http.StatusOK, projectEntities(s.All()))
		return
	}
	writeJSON(w, http.StatusOK, projectEntities(s.AllDisplayable()))
}

func createCatalogEntry[T any, P store.Model[T]](w http.ResponseWriter, r *http.Request, s *store.Store[T, P]) {
	var row T
	p := P(&row)
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		applog.Debug(r.Context(), "invalid catalog create payload", "type", s.Name(), "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	// A client-supplied ID must not mark the entity persisted.
	p.Meta().Model = gorm.Model{}
	if strings.TrimSpace(p.Meta().Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	p.Meta().Display = true
	p.Meta().Deleted = false

	cmd := undo.NewAddItem(s, p, func(P) {}, func(P) {}, "Add "+s.Name()+" "+p.Meta().Name)
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to create catalog entry", "type", s.Name(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create "+s.Name())
		return
	}
	writeJSON(w, http.StatusCreated, projectEntity(p))
}

func updateCatalogEntry[T any, P store.Model[T]](w http.ResponseWriter, r *http.Request, s *store.Store[T, P], entry P) {
	// Start from the current state so omitted fields keep their values.
	next := *entry
	if err := json.NewDecoder(r.Body).Decode(P(&next)); err != nil {
		applog.Debug(r.Context(), "invalid catalog update payload", "type", s.Name(), "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(P(&next).Meta().Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	// An edit that changes nothing earns no history slot.
	if s.Equivalent(entry, P(&next)) {
		writeJSON(w, http.StatusOK, projectEntity(entry))
		return
	}

	cmd := undo.NewReplace(s, entry, next, "Change "+s.Name()+" "+entry.Meta().Name)
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to update catalog entry", "type", s.Name(), "key", entry.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update "+s.Name())
		return
	}
	writeJSON(w, http.StatusOK, projectEntity(entry))
}

func deleteCatalogEntry[T any, P store.Model[T]](w http.ResponseWriter, r *http.Request, s *store.Store[T, P], entry P) {
	if r.URL.Query().Get("purge") == "1" {
		if err := s.HardDelete(r.Context(), entry.Key()); err != nil {
			if errors.Is(err, store.ErrReferenced) {
				writeJSONError(w, http.StatusConflict, err.Error())
				return
			}
			applog.Error(r.Context(), "failed to hard delete catalog entry", "type", s.Name(), "key", entry.Key(), "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to delete "+s.Name())
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cmd := undo.NewSoftDelete(s, entry, "Remove "+s.Name()+" "+entry.Meta().Name)
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to soft delete catalog entry", "type", s.Name(), "key", entry.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete "+s.Name())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
