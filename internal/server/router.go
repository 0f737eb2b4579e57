package server

import (
	"context"
	"net/http"

	"brewbook/internal/handlers"
	applog "brewbook/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)

	mux.HandleFunc("/api/recipes", handlers.RecipeResource)
	mux.HandleFunc("/api/recipes/", handlers.RecipeResource)
	mux.HandleFunc("/api/equipment", handlers.EquipmentResource)
	mux.HandleFunc("/api/equipment/", handlers.EquipmentResource)
	mux.HandleFunc("/api/fermentables", handlers.FermentableResource)
	mux.HandleFunc("/api/fermentables/", handlers.FermentableResource)
	mux.HandleFunc("/api/hops", handlers.HopResource)
	mux.HandleFunc("/api/hops/", handlers.HopResource)
	mux.HandleFunc("/api/yeasts", handlers.YeastResource)
	mux.HandleFunc("/api/yeasts/", handlers.YeastResource)

	mux.HandleFunc("/api/undo", handlers.UndoResource)
	mux.HandleFunc("/api/redo", handlers.RedoResource)

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
