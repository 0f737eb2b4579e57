package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gorm.io/gorm"

	applog "brewbook/internal/log"
	"brewbook/models"
)

var (
	// ErrNotFound reports a key absent from both cache and backing store.
	ErrNotFound = errors.New("not found")
	// ErrNotPersisted reports an operation that requires a stored entity.
	ErrNotPersisted = errors.New("entity is not persisted")
	// ErrAlreadyPersisted reports an insert of an entity that already has a key.
	ErrAlreadyPersisted = errors.New("entity is already persisted")
	// ErrReferenced reports a hard delete refused because other rows still
	// reference the key.
	ErrReferenced = errors.New("entity is still referenced")
)

// Entity is the surface every stored model exposes through its embedded
// models.Record.
type Entity interface {
	Key() uint
	Meta() *models.Record
	Persisted() bool
	Displayable() bool
	DetachPointers()
}

// Model constrains the pointer type paired with a concrete model type.
type Model[T any] interface {
	*T
	Entity
}

// Guard vetoes a hard delete while other rows still reference the key.
type Guard func(ctx context.Context, key uint) error

// Store keeps one canonical in-memory instance per stored row of T,
// synchronized with the backing database. Every lookup by key returns
// the same pointer, so an in-place edit made by one holder is visible
// to every other holder without a notification fan-out.
type Store[T any, P Model[T]] struct {
	db   *gorm.DB
	name string

	mu     sync.RWMutex
	cache  map[uint]P
	subs   []func(Event)
	guards []Guard
}

// New builds an empty store for one entity type. The name labels events,
// errors, and log lines.
func New[T any, P Model[T]](db *gorm.DB, name string) *Store[T, P] {
	return &Store[T, P]{
		db:    db,
		name:  name,
		cache: make(map[uint]P),
	}
}

// Name returns the label the store was constructed with.
func (s *Store[T, P]) Name() string {
	return s.name
}

// Subscribe registers a callback for insert/delete events. Callbacks run
// synchronously after the store mutation, outside the store lock.
func (s *Store[T, P]) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// AddGuard registers a referential-integrity check consulted by HardDelete.
func (s *Store[T, P]) AddGuard(g Guard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards = append(s.guards, g)
}

func (s *Store[T, P]) emit(ev Event) {
	s.mu.RLock()
	subs := append(make([]func(Event), 0, len(s.subs)), s.subs...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Load warms the cache with every row of the backing table, including
// soft-deleted ones. Existing cached instances for the same keys are
// kept so outstanding references stay canonical.
func (s *Store[T, P]) Load(ctx context.Context) error {
	var rows []T
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load %s table: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rows {
		p := P(&rows[i])
		if _, ok := s.cache[p.Key()]; !ok {
			s.cache[p.Key()] = p
		}
	}
	applog.Debug(ctx, "store loaded", "type", s.name, "rows", len(rows))
	return nil
}

// Get resolves a key to the canonical shared instance, falling back to
// the backing store on a cache miss. Soft-deleted entities resolve.
func (s *Store[T, P]) Get(ctx context.Context, key uint) (P, error) {
	s.mu.RLock()
	if p, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	var zero P
	var row T
	if err := s.db.WithContext(ctx).First(&row, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%s %d: %w", s.name, key, ErrNotFound)
		}
		return zero, fmt.Errorf("load %s %d: %w", s.name, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.cache[key]; ok {
		return p, nil
	}
	p := P(&row)
	s.cache[key] = p
	return p, nil
}

// Contains reports whether the key resolves in cache or backing store.
func (s *Store[T, P]) Contains(ctx context.Context, key uint) bool {
	s.mu.RLock()
	_, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return true
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(P(new(T))).Where("id = ?", key).Count(&count).Error; err != nil {
		applog.Error(ctx, "contains probe failed", "type", s.name, "key", key, "error", err)
		return false
	}
	return count > 0
}

// AnyWhere reports whether any backing-store row matches the condition,
// soft-deleted rows included. Referential guards use it so the check
// covers rows the cache has not loaded.
func (s *Store[T, P]) AnyWhere(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(P(new(T))).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count %s rows: %w", s.name, err)
	}
	return count > 0, nil
}

// All returns every cached instance, ordered by key.
func (s *Store[T, P]) All() []P {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]P, 0, len(s.cache))
	for _, p := range s.cache {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// AllDisplayable returns the instances eligible for normal listings,
// ordered by name with key as the tie-breaker.
func (s *Store[T, P]) AllDisplayable() []P {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]P, 0, len(s.cache))
	for _, p := range s.cache {
		if p.Displayable() {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out
}

// FindFirst returns the first cached instance matching pred, scanning in
// key order.
func (s *Store[T, P]) FindFirst(pred func(P) bool) (P, bool) {
	for _, p := range s.All() {
		if pred(p) {
			return p, true
		}
	}
	var zero P
	return zero, false
}

// FindAll returns every cached instance matching pred, in key order.
func (s *Store[T, P]) FindAll(pred func(P) bool) []P {
	var out []P
	for _, p := range s.All() {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// Insert writes a not-yet-persisted entity to the backing store, adopts
// the assigned key, and caches the instance as the canonical one. The
// cache is untouched when the backing write fails.
func (s *Store[T, P]) Insert(ctx context.Context, p P) error {
	if p.Persisted() {
		return fmt.Errorf("insert %s %d: %w", s.name, p.Key(), ErrAlreadyPersisted)
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.cache[p.Key()] = p
	s.mu.Unlock()

	applog.Debug(ctx, "entity inserted", "type", s.name, "key", p.Key(), "name", p.Meta().Name)
	s.emit(Event{Op: OpInserted, Key: p.Key(), Name: p.Meta().Name})
	return nil
}

// Update flushes every column of an already-persisted entity.
func (s *Store[T, P]) Update(ctx context.Context, p P) error {
	if !p.Persisted() {
		return fmt.Errorf("update %s: %w", s.name, ErrNotPersisted)
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("update %s %d: %w", s.name, p.Key(), err)
	}
	return nil
}

// UpdateColumn flushes a single column, for high-frequency field edits
// where rewriting the whole row is wasteful. The in-memory field is
// expected to hold the new value already.
func (s *Store[T, P]) UpdateColumn(ctx context.Context, p P, column string, value any) error {
	if !p.Persisted() {
		return fmt.Errorf("update %s column %s: %w", s.name, column, ErrNotPersisted)
	}
	if err := s.db.WithContext(ctx).Model(p).Update(column, value).Error; err != nil {
		return fmt.Errorf("update %s %d column %s: %w", s.name, p.Key(), column, err)
	}
	return nil
}

// SoftDelete marks the entity deleted while keeping it resolvable by
// key, so undo history and brew records continue to resolve it.
func (s *Store[T, P]) SoftDelete(ctx context.Context, p P) error {
	if !p.Persisted() {
		return fmt.Errorf("soft delete %s: %w", s.name, ErrNotPersisted)
	}
	if err := s.db.WithContext(ctx).Model(p).Update("deleted", true).Error; err != nil {
		return fmt.Errorf("soft delete %s %d: %w", s.name, p.Key(), err)
	}
	p.Meta().Deleted = true

	applog.Debug(ctx, "entity soft deleted", "type", s.name, "key", p.Key())
	s.emit(Event{Op: OpDeleted, Key: p.Key(), Name: p.Meta().Name})
	return nil
}

// Restore reverses a soft delete and announces the entity to listings
// again.
func (s *Store[T, P]) Restore(ctx context.Context, p P) error {
	if !p.Persisted() {
		return fmt.Errorf("restore %s: %w", s.name, ErrNotPersisted)
	}
	if err := s.db.WithContext(ctx).Model(p).Update("deleted", false).Error; err != nil {
		return fmt.Errorf("restore %s %d: %w", s.name, p.Key(), err)
	}
	p.Meta().Deleted = false

	s.emit(Event{Op: OpInserted, Key: p.Key(), Name: p.Meta().Name})
	return nil
}

// HardDelete permanently removes the row from the backing store and the
// cache. Registered guards run first; any veto aborts the delete.
func (s *Store[T, P]) HardDelete(ctx context.Context, key uint) error {
	s.mu.RLock()
	guards := append([]Guard(nil), s.guards...)
	s.mu.RUnlock()
	for _, g := range guards {
		if err := g(ctx, key); err != nil {
			return err
		}
	}

	p, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	name := p.Meta().Name

	if err := s.db.WithContext(ctx).Unscoped().Delete(P(new(T)), key).Error; err != nil {
		return fmt.Errorf("hard delete %s %d: %w", s.name, key, err)
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	applog.Info(ctx, "entity hard deleted", "type", s.name, "key", key, "name", name)
	s.emit(Event{Op: OpDeleted, Key: key, Name: name})
	return nil
}

// InsertCopyOf persists a deep value copy of an existing entity under a
// fresh key, detaching it into independent existence.
func (s *Store[T, P]) InsertCopyOf(ctx context.Context, key uint) (P, error) {
	var zero P
	src, err := s.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	cp := *src
	p := P(&cp)
	p.Meta().Model = gorm.Model{}
	p.DetachPointers()
	if err := s.Insert(ctx, p); err != nil {
		return zero, err
	}
	return p, nil
}

// Equivalent reports value equality of two entities, ignoring storage
// bookkeeping (key and timestamps). Used for change detection and list
// diffing rather than reference identity.
func (s *Store[T, P]) Equivalent(a, b P) bool {
	return cmp.Equal(*a, *b, cmpopts.IgnoreTypes(gorm.Model{}))
}

// Len reports how many instances are cached, soft-deleted ones included.
func (s *Store[T, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func sortByName[P Entity](items []P) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Meta().Name != b.Meta().Name {
			return a.Meta().Name < b.Meta().Name
		}
		return a.Key() < b.Key()
	})
}
