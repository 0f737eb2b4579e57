package models

import (
	"gorm.io/gorm"
)

// Record is the base shape shared by every stored entity. It is embedded
// in each model so all rows carry the same identity, grouping, and
// soft-delete columns.
type Record struct {
	gorm.Model
	Name    string `gorm:"not null;index" json:"name"`
	Folder  string `json:"folder"`
	Display bool   `gorm:"not null;default:true" json:"display"`
	Deleted bool   `gorm:"not null;default:false" json:"deleted"`

	// ParentID marks this row as an instance of use of a catalog entry,
	// e.g. a hop addition derived from an inventory hop. Catalog rows
	// leave it nil.
	ParentID *uint `json:"parent_id,omitempty"`
}

// Key returns the stable storage identifier, zero while unpersisted.
func (r *Record) Key() uint {
	return r.ID
}

// Meta exposes the embedded record to code generic over entity types.
func (r *Record) Meta() *Record {
	return r
}

// Persisted reports whether the backing store has assigned a key.
func (r *Record) Persisted() bool {
	return r.ID > 0
}

// Displayable reports whether the record belongs in normal listings:
// visible, not logically deleted, and not an instance-of-use row.
func (r *Record) Displayable() bool {
	return r.Display && !r.Deleted && (r.ParentID == nil || *r.ParentID == 0)
}

// DetachPointers replaces the record's pointer cells with copies, so a
// value copy of a row shares nothing with its source. Models carrying
// reference fields of their own shadow this and extend it.
func (r *Record) DetachPointers() {
	r.ParentID = cloneID(r.ParentID)
}

func cloneID(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
