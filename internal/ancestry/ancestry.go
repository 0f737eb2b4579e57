// Package ancestry maintains the derived-from relationship between
// recipe revisions: a forest of ancestor links stored as plain key
// columns and resolved through the recipe store.
package ancestry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	applog "brewbook/internal/log"
	"brewbook/internal/store"
	"brewbook/models"
)

var (
	// ErrWouldCycle reports a connection refused because it would make a
	// recipe its own ancestor. Callers treat this as a normal outcome,
	// not a failure.
	ErrWouldCycle = errors.New("connection would create an ancestry cycle")
	// ErrHasAncestor reports a connection refused because the descendant
	// is already linked to a revision; re-parenting is not supported.
	ErrHasAncestor = errors.New("recipe already has an ancestor")
	// ErrLineageCorrupt reports a walk that revisited a key. Stored data
	// must never contain a cycle, so this is a consistency error rather
	// than something to loop through.
	ErrLineageCorrupt = errors.New("ancestry chain revisits a recipe")
)

// Service answers ancestry questions against the canonical recipe store.
type Service struct {
	recipes *store.Recipes
}

func NewService(recipes *store.Recipes) *Service {
	return &Service{recipes: recipes}
}

// IsAncestorOf walks b's ancestor chain and reports whether a appears on
// it. The walk carries a visited set so corrupt data surfaces as
// ErrLineageCorrupt instead of an infinite loop.
func (s *Service) IsAncestorOf(ctx context.Context, a, b *models.Recipe) (bool, error) {
	visited := make(map[uint]bool)
	cur := b
	for cur.AncestorID != nil && *cur.AncestorID != 0 {
		key := *cur.AncestorID
		if visited[key] {
			return false, fmt.Errorf("recipe %d: %w", key, ErrLineageCorrupt)
		}
		visited[key] = true
		if key == a.Key() {
			return true, nil
		}
		next, err := s.recipes.Get(ctx, key)
		if err != nil {
			return false, fmt.Errorf("resolve ancestor of recipe %d: %w", cur.Key(), err)
		}
		cur = next
	}
	return false, nil
}

// AncestorLine returns the chain of revisions behind a recipe, nearest
// ancestor first. Used by "show ancestors" views.
func (s *Service) AncestorLine(ctx context.Context, recipe *models.Recipe) ([]*models.Recipe, error) {
	var line []*models.Recipe
	visited := map[uint]bool{recipe.Key(): true}
	cur := recipe
	for cur.AncestorID != nil && *cur.AncestorID != 0 {
		key := *cur.AncestorID
		if visited[key] {
			return nil, fmt.Errorf("recipe %d: %w", key, ErrLineageCorrupt)
		}
		visited[key] = true
		ancestor, err := s.recipes.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("resolve ancestor of recipe %d: %w", cur.Key(), err)
		}
		line = append(line, ancestor)
		cur = ancestor
	}
	return line, nil
}

// ConnectDescendant links descendant to ancestor and retires the
// ancestor into history (hidden from listings, locked against edits).
// The link is refused when it would close a cycle or when the
// descendant is already parented.
func (s *Service) ConnectDescendant(ctx context.Context, ancestor, descendant *models.Recipe) error {
	if ancestor.Key() == descendant.Key() {
		return ErrWouldCycle
	}
	if descendant.AncestorID != nil && *descendant.AncestorID != 0 {
		return fmt.Errorf("recipe %d: %w", descendant.Key(), ErrHasAncestor)
	}
	cyclic, err := s.IsAncestorOf(ctx, descendant, ancestor)
	if err != nil {
		return err
	}
	if cyclic {
		return fmt.Errorf("recipe %d descends from recipe %d: %w", ancestor.Key(), descendant.Key(), ErrWouldCycle)
	}

	key := ancestor.Key()
	descendant.AncestorID = &key
	if err := s.recipes.UpdateColumn(ctx, descendant, "ancestor_id", key); err != nil {
		descendant.AncestorID = nil
		return err
	}

	ancestor.Display = false
	ancestor.Locked = true
	if err := s.recipes.Update(ctx, ancestor); err != nil {
		return err
	}

	applog.Info(ctx, "recipe versioned", "ancestor", ancestor.Key(), "descendant", descendant.Key())
	return nil
}

// CandidateDescendants lists the recipes eligible to become a
// descendant of ancestor: not the ancestor itself, displayable, and not
// already parented. Sorted by name, key breaking ties.
func (s *Service) CandidateDescendants(ancestor *models.Recipe) []*models.Recipe {
	out := s.recipes.FindAll(func(rec *models.Recipe) bool {
		if rec.Key() == ancestor.Key() || !rec.Displayable() {
			return false
		}
		return rec.AncestorID == nil || *rec.AncestorID == 0
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Branch creates a new revision of src: a value copy under a fresh key,
// pointing back at src and open for editing. src itself becomes the
// hidden, locked historical revision. Branching is how a locked recipe
// keeps evolving.
func (s *Service) Branch(ctx context.Context, src *models.Recipe) (*models.Recipe, error) {
	cp, err := s.recipes.InsertCopyOf(ctx, src.Key())
	if err != nil {
		return nil, err
	}

	key := src.Key()
	cp.AncestorID = &key
	cp.Locked = false
	cp.Display = true
	cp.Deleted = false
	if err := s.recipes.Update(ctx, cp); err != nil {
		return nil, err
	}

	src.Display = false
	src.Locked = true
	if err := s.recipes.Update(ctx, src); err != nil {
		return nil, err
	}

	applog.Info(ctx, "recipe branched", "source", src.Key(), "revision", cp.Key())
	return cp, nil
}
