package undo

import (
	"context"

	"brewbook/internal/store"
)

// fieldChange reverses a single-field edit. The old value is captured at
// construction time; forward and inverse both write exactly one column.
type fieldChange[T any, P store.Model[T], V any] struct {
	store   *store.Store[T, P]
	target  P
	column  string
	field   *V
	oldVal  V
	newVal  V
	refresh func()
	desc    string
}

// NewFieldChange builds a command that sets *field (a field of target)
// to next and persists the named column, restoring the captured old
// value on undo.
func NewFieldChange[T any, P store.Model[T], V any](s *store.Store[T, P], target P, column string, field *V, next V, desc string) Command {
	return &fieldChange[T, P, V]{
		store:  s,
		target: target,
		column: column,
		field:  field,
		oldVal: *field,
		newVal: next,
		desc:   desc,
	}
}

// NewRelationChange is NewFieldChange for related-entity references
// (foreign-key columns), with a display-refresh callback invoked after
// either direction so dependent state recomputes.
func NewRelationChange[T any, P store.Model[T], V any](s *store.Store[T, P], target P, column string, field *V, next V, refresh func(), desc string) Command {
	return &fieldChange[T, P, V]{
		store:   s,
		target:  target,
		column:  column,
		field:   field,
		oldVal:  *field,
		newVal:  next,
		refresh: refresh,
		desc:    desc,
	}
}

func (c *fieldChange[T, P, V]) Redo(ctx context.Context) error {
	return c.apply(ctx, c.newVal)
}

func (c *fieldChange[T, P, V]) Undo(ctx context.Context) error {
	return c.apply(ctx, c.oldVal)
}

func (c *fieldChange[T, P, V]) apply(ctx context.Context, v V) error {
	*c.field = v
	if err := c.store.UpdateColumn(ctx, c.target, c.column, v); err != nil {
		return err
	}
	if c.refresh != nil {
		c.refresh()
	}
	return nil
}

func (c *fieldChange[T, P, V]) Description() string {
	return c.desc
}

// softDelete reverses a logical deletion. The entity stays resolvable by
// key in either state.
type softDelete[T any, P store.Model[T]] struct {
	store  *store.Store[T, P]
	target P
	desc   string
}

// NewSoftDelete builds a command whose forward action marks target
// deleted and whose inverse restores it to listings.
func NewSoftDelete[T any, P store.Model[T]](s *store.Store[T, P], target P, desc string) Command {
	return &softDelete[T, P]{store: s, target: target, desc: desc}
}

func (c *softDelete[T, P]) Redo(ctx context.Context) error {
	return c.store.SoftDelete(ctx, c.target)
}

func (c *softDelete[T, P]) Undo(ctx context.Context) error {
	return c.store.Restore(ctx, c.target)
}

func (c *softDelete[T, P]) Description() string {
	return c.desc
}
