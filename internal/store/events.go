package store

// Op identifies the kind of store mutation an Event announces.
type Op int

const (
	// OpInserted fires when an entity joins the displayable population,
	// on insert and on restore.
	OpInserted Op = iota + 1
	// OpDeleted fires on soft and hard deletes alike; subscribers drop
	// any row they hold for the key.
	OpDeleted
)

// Event carries enough for a list or tree subscriber to incrementally
// add or remove one row instead of re-querying the store.
type Event struct {
	Op   Op
	Key  uint
	Name string
}
