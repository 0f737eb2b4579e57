package models

import "time"

// BrewNote records one brew session of a recipe. Brew notes keep
// referencing their recipe by key even after the recipe is soft
// deleted, which is why deletion is logical rather than physical.
type BrewNote struct {
	Record
	RecipeID    uint      `gorm:"not null;index" json:"recipe_id"`
	BrewDate    time.Time `json:"brew_date"`
	FermentDate time.Time `json:"ferment_date"`
	OG          float64   `json:"og"`
	FG          float64   `json:"fg"`
	Notes       string    `gorm:"type:text" json:"notes"`
}
