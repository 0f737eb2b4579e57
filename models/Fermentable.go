package models

type Fermentable struct {
	Record
	Type         string  `gorm:"type:varchar(32);default:'Grain'" json:"type"`
	AmountKg     float64 `json:"amount_kg"`
	YieldPct     float64 `json:"yield_pct"`
	ColorSRM     float64 `json:"color_srm"`
	AddAfterBoil bool    `gorm:"not null;default:false" json:"add_after_boil"`
	Origin       string  `json:"origin"`
	Supplier     string  `json:"supplier"`
	Notes        string  `gorm:"type:text" json:"notes"`

	// RecipeID is set when this row is an addition belonging to a
	// recipe; catalog entries leave it nil.
	RecipeID *uint `gorm:"index" json:"recipe_id,omitempty"`
}

func (f *Fermentable) DetachPointers() {
	f.Record.DetachPointers()
	f.RecipeID = cloneID(f.RecipeID)
}
