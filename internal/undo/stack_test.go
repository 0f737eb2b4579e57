package undo

import (
	"context"
	"errors"
	"testing"
)

// probe is a minimal command recording apply order into a shared log.
type probe struct {
	name string
	log  *[]string
	fail error
}

func (p *probe) Redo(context.Context) error {
	if p.fail != nil {
		return p.fail
	}
	*p.log = append(*p.log, "redo "+p.name)
	return nil
}

func (p *probe) Undo(context.Context) error {
	if p.fail != nil {
		return p.fail
	}
	*p.log = append(*p.log, "undo "+p.name)
	return nil
}

func (p *probe) Description() string { return p.name }

func TestStackRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStack()
	ctx := context.Background()
	var log []string

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Execute(ctx, &probe{name: name, log: &log}); err != nil {
			t.Fatalf("execute %s: %v", name, err)
		}
	}

	for i := 0; i < 3; i++ {
		if err := s.Undo(ctx); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := s.Redo(ctx); err != nil {
			t.Fatalf("redo %d: %v", i, err)
		}
	}

	want := []string{
		"redo a", "redo b", "redo c",
		"undo c", "undo b", "undo a",
		"redo a", "redo b", "redo c",
	}
	if len(log) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(log), log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("entry %d: expected %q, got %q", i, want[i], log[i])
		}
	}
}

func TestStackNoOpAtBoundaries(t *testing.T) {
	t.Parallel()

	s := NewStack()
	ctx := context.Background()

	if err := s.Undo(ctx); err != nil {
		t.Fatalf("undo on empty stack: %v", err)
	}
	if err := s.Redo(ctx); err != nil {
		t.Fatalf("redo on empty stack: %v", err)
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("expected empty stack to offer neither direction")
	}
	if s.UndoDescription() != "" || s.RedoDescription() != "" {
		t.Fatal("expected empty descriptions on empty stack")
	}
}

func TestExecuteTruncatesRedoTail(t *testing.T) {
	t.Parallel()

	s := NewStack()
	ctx := context.Background()
	var log []string

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Execute(ctx, &probe{name: name, log: &log}); err != nil {
			t.Fatalf("execute %s: %v", name, err)
		}
	}
	if err := s.Undo(ctx); err != nil {
		t.Fatalf("undo c: %v", err)
	}
	if err := s.Undo(ctx); err != nil {
		t.Fatalf("undo b: %v", err)
	}

	if err := s.Execute(ctx, &probe{name: "d", log: &log}); err != nil {
		t.Fatalf("execute d: %v", err)
	}

	if s.CanRedo() {
		t.Fatal("expected redo tail discarded after a fresh execute")
	}
	if s.Len() != 2 {
		t.Fatalf("expected history [a d], got %d commands", s.Len())
	}
	if s.UndoDescription() != "d" {
		t.Fatalf("expected d on top, got %q", s.UndoDescription())
	}

	// Redo after truncation must not resurrect b or c.
	if err := s.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	for _, entry := range log {
		if entry == "redo b" && countOf(log, "redo b") > 1 {
			t.Fatal("expected b not re-applied after truncation")
		}
	}
}

func countOf(log []string, s string) int {
	n := 0
	for _, e := range log {
		if e == s {
			n++
		}
	}
	return n
}

func TestExecuteFailureKeepsHistoryIntact(t *testing.T) {
	t.Parallel()

	s := NewStack()
	ctx := context.Background()
	var log []string

	if err := s.Execute(ctx, &probe{name: "a", log: &log}); err != nil {
		t.Fatalf("execute a: %v", err)
	}

	boom := errors.New("boom")
	if err := s.Execute(ctx, &probe{name: "bad", log: &log, fail: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected apply failure surfaced, got %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("expected failed command not pushed, got %d commands", s.Len())
	}
	if s.UndoDescription() != "a" {
		t.Fatalf("expected a on top, got %q", s.UndoDescription())
	}
}

func TestClearDropsHistory(t *testing.T) {
	t.Parallel()

	s := NewStack()
	ctx := context.Background()
	var log []string

	if err := s.Execute(ctx, &probe{name: "a", log: &log}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	s.Clear()

	if s.Len() != 0 || s.CanUndo() || s.CanRedo() {
		t.Fatal("expected cleared stack to be empty")
	}
}
