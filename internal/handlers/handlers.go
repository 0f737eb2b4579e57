package handlers

import (
	"encoding/json"
	"net/http"

	"brewbook/internal/ancestry"
	applog "brewbook/internal/log"
	"brewbook/internal/store"
	"brewbook/internal/undo"
)

var (
	registry *store.Registry
	versions *ancestry.Service
	stack    *undo.Stack
)

// Configure installs the shared dependencies used by every handler in
// this package.
func Configure(reg *store.Registry, vs *ancestry.Service, st *undo.Stack) {
	registry = reg
	versions = vs
	stack = st
}

// ready rejects requests arriving before Configure has run.
func ready(w http.ResponseWriter, r *http.Request) bool {
	if registry == nil || versions == nil || stack == nil {
		applog.Debug(r.Context(), "request before handler configuration", "path", r.URL.Path)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(nil, "failed to encode response payload", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
