package models

type Hop struct {
	Record
	AlphaPct float64 `json:"alpha_pct"`
	BetaPct  float64 `json:"beta_pct"`
	AmountKg float64 `json:"amount_kg"`
	Use      string  `gorm:"type:varchar(32);default:'Boil'" json:"use"`
	TimeMin  float64 `json:"time_min"`
	Form     string  `gorm:"type:varchar(32);default:'Pellet'" json:"form"`
	Origin   string  `json:"origin"`
	Notes    string  `gorm:"type:text" json:"notes"`

	RecipeID *uint `gorm:"index" json:"recipe_id,omitempty"`
}

func (h *Hop) DetachPointers() {
	h.Record.DetachPointers()
	h.RecipeID = cloneID(h.RecipeID)
}
