package models

type Recipe struct {
	Record
	Type      string `gorm:"type:varchar(32);default:'All Grain'" json:"type"`
	Brewer    string `json:"brewer"`
	StyleName string `json:"style_name"`
	Notes     string `gorm:"type:text" json:"notes"`

	BatchSizeL  float64 `json:"batch_size_l"`
	BoilSizeL   float64 `json:"boil_size_l"`
	BoilTimeMin float64 `json:"boil_time_min"`
	Efficiency  float64 `gorm:"default:70" json:"efficiency"`

	// AncestorID points at the revision this recipe was branched from.
	// It is a weak reference resolved through the store, never a
	// preloaded association, so revisions cannot form ownership cycles.
	AncestorID *uint `json:"ancestor_id,omitempty"`

	// Locked freezes the recipe's core fields; evolving a locked recipe
	// means branching a new revision off it.
	Locked bool `gorm:"not null;default:false" json:"locked"`

	EquipmentID *uint `json:"equipment_id,omitempty"`
}

func (rec *Recipe) DetachPointers() {
	rec.Record.DetachPointers()
	rec.AncestorID = cloneID(rec.AncestorID)
	rec.EquipmentID = cloneID(rec.EquipmentID)
}
