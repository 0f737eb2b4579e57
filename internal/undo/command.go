// Package undo provides the reversible-command layer: every
// user-visible mutation is wrapped in a Command and pushed onto a
// single Stack so arbitrary edit sequences can be undone and redone.
package undo

import "context"

// Command is one reversible mutation. Redo applies the forward action,
// Undo the inverse. Both are expected to succeed once the command has
// been constructed; an apply-time store failure means the stack can no
// longer be trusted and is surfaced as an error, never retried.
type Command interface {
	Redo(ctx context.Context) error
	Undo(ctx context.Context) error
	Description() string
}
