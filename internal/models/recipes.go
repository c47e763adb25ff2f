package models

import (
	"time"
)

// Tag is a recipe label, unique by name and by slug.
type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
	Slug string `gorm:"size:100;not null;uniqueIndex"`
}

// Ingredient is a catalog entry. The same name may appear with different
// measurement units, so uniqueness is on the (name, unit) pair.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `gorm:"size:50;not null;uniqueIndex:idx_ingredient_name_unit"`
}

// Recipe is owned by exactly one author. Tags are a plain many2many set;
// ingredients go through RecipeIngredient because each link carries an
// amount. ShortCode backs the stable short link and is assigned at create.
type Recipe struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	AuthorID    uint   `gorm:"not null;index"`
	Name        string `gorm:"size:200;not null"`
	Image       string `gorm:"size:255;not null"`
	Text        string `gorm:"type:text;not null"`
	CookingTime int    `gorm:"not null"`
	ShortCode   string `gorm:"size:16;not null;uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author            *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags              []Tag              `gorm:"many2many:recipe_tags"`
	RecipeIngredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is the junction between a recipe and an ingredient,
// carrying the quantity. A recipe cannot list the same ingredient twice.
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	RecipeID     uint `gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint `gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	Amount       int  `gorm:"not null"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// Favorite is a user's bookmark of a recipe, unique per (user, recipe).
type Favorite struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	CreatedAt time.Time

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// Purchase is a recipe's membership in a user's shopping cart, unique per
// (user, recipe). Created and destroyed only by the toggle endpoints.
type Purchase struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_purchase_user_recipe"`
	RecipeID  uint `gorm:"not null;index;uniqueIndex:idx_purchase_user_recipe"`
	CreatedAt time.Time

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// TableName overrides the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}

// TableName overrides the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}
