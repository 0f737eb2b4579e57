package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	applog "brewbook/internal/log"
	"brewbook/internal/undo"
	"brewbook/models"
)

type brewNoteRequest struct {
	BrewDate    time.Time `json:"brew_date"`
	FermentDate time.Time `json:"ferment_date"`
	OG          float64   `json:"og"`
	FG          float64   `json:"fg"`
	Notes       string    `json:"notes"`
}

// brewNotesSubresource lists or records brew sessions of one recipe.
// Listing includes notes of soft-deleted recipes by design: brew history
// outlives the recipe's presence in listings.
func brewNotesSubresource(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	switch r.Method {
	case http.MethodGet:
		notes := registry.BrewNotes.FindAll(func(n *models.BrewNote) bool {
			return n.RecipeID == rec.ID && !n.Deleted
		})
		writeJSON(w, http.StatusOK, projectEntities(notes))
	case http.MethodPost:
		createBrewNote(w, r, rec)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func createBrewNote(w http.ResponseWriter, r *http.Request, rec *models.Recipe) {
	var payload brewNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid brew note payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	brewDate := payload.BrewDate
	if brewDate.IsZero() {
		brewDate = time.Now().UTC()
	}

	note := &models.BrewNote{
		Record: models.Record{
			Name:    fmt.Sprintf("%s %s", rec.Name, brewDate.Format("2006-01-02")),
			Display: true,
		},
		RecipeID:    rec.ID,
		BrewDate:    brewDate,
		FermentDate: payload.FermentDate,
		OG:          payload.OG,
		FG:          payload.FG,
		Notes:       payload.Notes,
	}

	cmd := undo.NewAddItem(registry.BrewNotes, note, func(*models.BrewNote) {}, func(*models.BrewNote) {}, "Add brew note for "+rec.Name)
	if err := stack.Execute(r.Context(), cmd); err != nil {
		applog.Error(r.Context(), "failed to create brew note", "recipe", rec.Key(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create brew note")
		return
	}
	writeJSON(w, http.StatusCreated, projectEntity(note))
}
