package undo

import (
	"context"

	"brewbook/internal/store"
)

// listChange adds or removes a batch of items on a collection-valued
// relationship (e.g. hop additions of a recipe) as one undoable step.
// attach and detach are the caller-supplied halves of the relationship:
// attach points an item at its owner, detach clears that link.
//
// Items that are not yet persisted when first added are persisted as a
// side effect; removal is always a soft delete so redo and history keep
// resolving the rows.
type listChange[T any, P store.Model[T]] struct {
	store       *store.Store[T, P]
	items       []P
	attach      func(P)
	detach      func(P)
	forwardAdds bool
	desc        string
}

// NewAddItem builds a command whose forward action adds one item.
func NewAddItem[T any, P store.Model[T]](s *store.Store[T, P], item P, attach, detach func(P), desc string) Command {
	return &listChange[T, P]{store: s, items: []P{item}, attach: attach, detach: detach, forwardAdds: true, desc: desc}
}

// NewRemoveItem builds a command whose forward action removes one item.
func NewRemoveItem[T any, P store.Model[T]](s *store.Store[T, P], item P, attach, detach func(P), desc string) Command {
	return &listChange[T, P]{store: s, items: []P{item}, attach: attach, detach: detach, forwardAdds: false, desc: desc}
}

// NewAddList is NewAddItem for a batch dropped at once; all items are
// added together and a single undo removes them all.
func NewAddList[T any, P store.Model[T]](s *store.Store[T, P], items []P, attach, detach func(P), desc string) Command {
	return &listChange[T, P]{store: s, items: items, attach: attach, detach: detach, forwardAdds: true, desc: desc}
}

// NewRemoveList is the bulk counterpart of NewRemoveItem.
func NewRemoveList[T any, P store.Model[T]](s *store.Store[T, P], items []P, attach, detach func(P), desc string) Command {
	return &listChange[T, P]{store: s, items: items, attach: attach, detach: detach, forwardAdds: false, desc: desc}
}

func (c *listChange[T, P]) Redo(ctx context.Context) error {
	if c.forwardAdds {
		return c.addAll(ctx)
	}
	return c.removeAll(ctx)
}

func (c *listChange[T, P]) Undo(ctx context.Context) error {
	if c.forwardAdds {
		return c.removeAll(ctx)
	}
	return c.addAll(ctx)
}

func (c *listChange[T, P]) addAll(ctx context.Context) error {
	for _, item := range c.items {
		c.attach(item)
		if !item.Persisted() {
			if err := c.store.Insert(ctx, item); err != nil {
				return err
			}
			continue
		}
		if err := c.store.Update(ctx, item); err != nil {
			return err
		}
		if item.Meta().Deleted {
			if err := c.store.Restore(ctx, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *listChange[T, P]) removeAll(ctx context.Context) error {
	for i := len(c.items) - 1; i >= 0; i-- {
		item := c.items[i]
		c.detach(item)
		if err := c.store.Update(ctx, item); err != nil {
			return err
		}
		if err := c.store.SoftDelete(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (c *listChange[T, P]) Description() string {
	return c.desc
}
