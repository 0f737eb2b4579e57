package undo

import (
	"context"
	"fmt"
	"sync"

	applog "brewbook/internal/log"
)

// Stack is the session-wide last-in-first-out command history. A
// position pointer separates applied commands from undone ones, so an
// undone command can be re-applied without re-capturing state.
type Stack struct {
	mu   sync.Mutex
	cmds []Command
	pos  int
}

func NewStack() *Stack {
	return &Stack{}
}

// Execute applies the command's forward action and pushes it. Any redo
// tail beyond the current position is discarded: once a new command is
// executed, the undone ones cannot be resurrected.
func (s *Stack) Execute(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := cmd.Redo(ctx); err != nil {
		return fmt.Errorf("execute %q: %w", cmd.Description(), err)
	}
	s.cmds = append(s.cmds[:s.pos], cmd)
	s.pos = len(s.cmds)
	applog.Debug(ctx, "command executed", "description", cmd.Description(), "depth", s.pos)
	return nil
}

// Undo reverses the most recently applied command. A no-op when there
// is nothing to undo.
func (s *Stack) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos == 0 {
		return nil
	}
	cmd := s.cmds[s.pos-1]
	if err := cmd.Undo(ctx); err != nil {
		applog.Error(ctx, "undo failed, history no longer trustworthy", "description", cmd.Description(), "error", err)
		return fmt.Errorf("undo %q: %w", cmd.Description(), err)
	}
	s.pos--
	applog.Debug(ctx, "command undone", "description", cmd.Description(), "depth", s.pos)
	return nil
}

// Redo re-applies the command just past the position pointer. A no-op
// when there is nothing to redo.
func (s *Stack) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.cmds) {
		return nil
	}
	cmd := s.cmds[s.pos]
	if err := cmd.Redo(ctx); err != nil {
		applog.Error(ctx, "redo failed, history no longer trustworthy", "description", cmd.Description(), "error", err)
		return fmt.Errorf("redo %q: %w", cmd.Description(), err)
	}
	s.pos++
	applog.Debug(ctx, "command redone", "description", cmd.Description(), "depth", s.pos)
	return nil
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos < len(s.cmds)
}

// UndoDescription names the command Undo would reverse, empty when none.
func (s *Stack) UndoDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == 0 {
		return ""
	}
	return s.cmds[s.pos-1].Description()
}

// RedoDescription names the command Redo would re-apply, empty when none.
func (s *Stack) RedoDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.cmds) {
		return ""
	}
	return s.cmds[s.pos].Description()
}

// Len reports how many commands the stack currently owns, undone tail
// included.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cmds)
}

// Clear drops the whole history, e.g. after a degraded reload.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = nil
	s.pos = 0
}
