package undo

import (
	"context"

	"brewbook/internal/store"
)

// replaceChange swaps the entire field set of an entity, capturing the
// prior values at construction. Used for dialog-style "apply" edits
// where a form rewrites many fields at once.
type replaceChange[T any, P store.Model[T]] struct {
	store  *store.Store[T, P]
	target P
	oldVal T
	newVal T
	desc   string
}

// NewReplace builds a command that overwrites target with next and
// persists the row, restoring the captured state on undo. Storage
// bookkeeping (key, timestamps) of the target is preserved.
func NewReplace[T any, P store.Model[T]](s *store.Store[T, P], target P, next T, desc string) Command {
	n := P(&next)
	n.Meta().Model = target.Meta().Model
	return &replaceChange[T, P]{
		store:  s,
		target: target,
		oldVal: *target,
		newVal: next,
		desc:   desc,
	}
}

func (c *replaceChange[T, P]) Redo(ctx context.Context) error {
	*c.target = c.newVal
	return c.store.Update(ctx, c.target)
}

func (c *replaceChange[T, P]) Undo(ctx context.Context) error {
	*c.target = c.oldVal
	return c.store.Update(ctx, c.target)
}

func (c *replaceChange[T, P]) Description() string {
	return c.desc
}
