package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"brewbook/models"
)

// Instantiated store aliases, to keep consumer signatures readable.
type (
	Recipes      = Store[models.Recipe, *models.Recipe]
	Equipments   = Store[models.Equipment, *models.Equipment]
	Fermentables = Store[models.Fermentable, *models.Fermentable]
	Hops         = Store[models.Hop, *models.Hop]
	Yeasts       = Store[models.Yeast, *models.Yeast]
	BrewNotes    = Store[models.BrewNote, *models.BrewNote]
)

// Registry owns the per-type stores and the shared database handle. It
// is constructed once at startup and handed to every consumer; there is
// no ambient global state.
type Registry struct {
	db *gorm.DB

	Recipes      *Recipes
	Equipment    *Equipments
	Fermentables *Fermentables
	Hops         *Hops
	Yeasts       *Yeasts
	BrewNotes    *BrewNotes
}

// NewRegistry builds the stores and wires the referential-integrity
// guards between them.
func NewRegistry(db *gorm.DB) *Registry {
	r := &Registry{
		db:           db,
		Recipes:      New[models.Recipe, *models.Recipe](db, "recipe"),
		Equipment:    New[models.Equipment, *models.Equipment](db, "equipment"),
		Fermentables: New[models.Fermentable, *models.Fermentable](db, "fermentable"),
		Hops:         New[models.Hop, *models.Hop](db, "hop"),
		Yeasts:       New[models.Yeast, *models.Yeast](db, "yeast"),
		BrewNotes:    New[models.BrewNote, *models.BrewNote](db, "brew note"),
	}

	r.Equipment.AddGuard(refGuard(r.Recipes, "equipment_id", "equipment %d is used by a recipe"))

	r.Recipes.AddGuard(refGuard(r.Recipes, "ancestor_id", "recipe %d is the ancestor of another revision"))
	r.Recipes.AddGuard(refGuard(r.BrewNotes, "recipe_id", "recipe %d has brew notes"))
	r.Recipes.AddGuard(refGuard(r.Fermentables, "recipe_id", "recipe %d has fermentable additions"))
	r.Recipes.AddGuard(refGuard(r.Hops, "recipe_id", "recipe %d has hop additions"))
	r.Recipes.AddGuard(refGuard(r.Yeasts, "recipe_id", "recipe %d has yeast additions"))

	r.Fermentables.AddGuard(refGuard(r.Fermentables, "parent_id", "fermentable %d has instance-of-use rows"))
	r.Hops.AddGuard(refGuard(r.Hops, "parent_id", "hop %d has instance-of-use rows"))
	r.Yeasts.AddGuard(refGuard(r.Yeasts, "parent_id", "yeast %d has instance-of-use rows"))

	return r
}

// DB exposes the shared handle for callers that run raw transactions,
// such as the catalog importer.
func (r *Registry) DB() *gorm.DB {
	return r.db
}

// Load warms every store from the backing database.
func (r *Registry) Load(ctx context.Context) error {
	for _, load := range []func(context.Context) error{
		r.Equipment.Load,
		r.Fermentables.Load,
		r.Hops.Load,
		r.Yeasts.Load,
		r.Recipes.Load,
		r.BrewNotes.Load,
	} {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// refGuard vetoes a delete while any row of s still holds key in the
// given column. It queries the backing table rather than the cache, so
// the check stays honest when a store is cold or only partially warmed.
// reason carries one %d verb for the key.
func refGuard[T any, P Model[T]](s *Store[T, P], column, reason string) Guard {
	return func(ctx context.Context, key uint) error {
		referenced, err := s.AnyWhere(ctx, column+" = ?", key)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("%s: %w", fmt.Sprintf(reason, key), ErrReferenced)
		}
		return nil
	}
}
