package models

type Yeast struct {
	Record
	Type           string  `gorm:"type:varchar(32);default:'Ale'" json:"type"`
	Form           string  `gorm:"type:varchar(32);default:'Dry'" json:"form"`
	Laboratory     string  `json:"laboratory"`
	ProductID      string  `json:"product_id"`
	MinTempC       float64 `json:"min_temp_c"`
	MaxTempC       float64 `json:"max_temp_c"`
	AttenuationPct float64 `json:"attenuation_pct"`
	Notes          string  `gorm:"type:text" json:"notes"`

	RecipeID *uint `gorm:"index" json:"recipe_id,omitempty"`
}

func (y *Yeast) DetachPointers() {
	y.Record.DetachPointers()
	y.RecipeID = cloneID(y.RecipeID)
}
