package handlers

import (
	"net/http"

	applog "brewbook/internal/log"
)

type undoStateResponse struct {
	CanUndo         bool   `json:"can_undo"`
	CanRedo         bool   `json:"can_redo"`
	UndoDescription string `json:"undo_description,omitempty"`
	RedoDescription string `json:"redo_description,omitempty"`
	Depth           int    `json:"depth"`
}

func undoState() undoStateResponse {
	return undoStateResponse{
		CanUndo:         stack.CanUndo(),
		CanRedo:         stack.CanRedo(),
		UndoDescription: stack.UndoDescription(),
		RedoDescription: stack.RedoDescription(),
		Depth:           stack.Len(),
	}
}

// UndoResource reports the history state on GET and reverses the most
// recent command on POST.
func UndoResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, undoState())
	case http.MethodPost:
		if err := stack.Undo(r.Context()); err != nil {
			applog.Error(r.Context(), "undo failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "undo failed")
			return
		}
		writeJSON(w, http.StatusOK, undoState())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RedoResource re-applies the most recently undone command.
func RedoResource(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := stack.Redo(r.Context()); err != nil {
		applog.Error(r.Context(), "redo failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "redo failed")
		return
	}
	writeJSON(w, http.StatusOK, undoState())
}
