package services

import (
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// Read-side projections. Write payloads (commands) live next to the write
// paths; these are the response shapes, always rebuilt from storage after a
// mutation, never echoed from the input.

// TagView is the response shape for a tag.
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IngredientView is the response shape for a catalog ingredient.
type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientInRecipeView is an ingredient line inside a recipe, with the
// quantity from the junction row.
type IngredientInRecipeView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// UserView is the response shape for a user. IsSubscribed is relative to the
// viewer and always false for anonymous requests.
type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

// RecipeView is the full response shape for a recipe.
type RecipeView struct {
	ID               uint                     `json:"id"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
	Ingredients      []IngredientInRecipeView `json:"ingredients"`
	Tags             []TagView                `json:"tags"`
	Author           UserView                 `json:"author"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
}

// ShortRecipeView is the compact recipe shape used by toggle responses and
// subscription listings.
type ShortRecipeView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionView is an author in a subscription listing: the user fields
// plus a truncated list of their recipes and a total count.
type SubscriptionView struct {
	UserView
	Recipes      []ShortRecipeView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// Page is the DRF-style pagination envelope.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// ProjectTag builds the API shape for a single tag.
func ProjectTag(t models.Tag) TagView {
	return projectTag(t)
}

// ProjectIngredient builds the API shape for a single catalog ingredient.
func ProjectIngredient(i models.Ingredient) IngredientView {
	return projectIngredient(i)
}

func projectTag(t models.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func projectIngredient(i models.Ingredient) IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func projectUser(u models.User, baseURL string, subscribed bool) UserView {
	return UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       utils.MediaURL(baseURL, u.Avatar),
	}
}

// ProjectShortRecipe builds the compact recipe shape for toggle responses.
func ProjectShortRecipe(r models.Recipe, baseURL string) ShortRecipeView {
	return projectShortRecipe(r, baseURL)
}

func projectShortRecipe(r models.Recipe, baseURL string) ShortRecipeView {
	return ShortRecipeView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       utils.MediaURL(baseURL, r.Image),
		CookingTime: r.CookingTime,
	}
}

// ProjectUser builds a UserView for a viewer. viewerID 0 means anonymous.
func ProjectUser(db *gorm.DB, u models.User, baseURL string, viewerID uint) (UserView, error) {
	subscribed := false
	if viewerID != 0 && viewerID != u.ID {
		var count int64
		if err := db.Model(&models.Subscription{}).
			Where("user_id = ? AND author_id = ?", viewerID, u.ID).
			Count(&count).Error; err != nil {
			return UserView{}, err
		}
		subscribed = count > 0
	}
	return projectUser(u, baseURL, subscribed), nil
}

// ProjectRecipes builds RecipeViews for a slice of recipes loaded with their
// Author, Tags and RecipeIngredients.Ingredient associations. The viewer's
// favorite and cart memberships are fetched with two set queries instead of
// per-recipe lookups.
func ProjectRecipes(db *gorm.DB, recipes []models.Recipe, baseURL string, viewerID uint) ([]RecipeView, error) {
	views := make([]RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited := map[uint]bool{}
	inCart := map[uint]bool{}
	subscribed := map[uint]bool{}
	if viewerID != 0 {
		var ids []uint
		if err := db.Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
			Pluck("recipe_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			favorited[id] = true
		}

		ids = nil
		if err := db.Model(&models.Purchase{}).
			Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
			Pluck("recipe_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			inCart[id] = true
		}

		ids = nil
		if err := db.Model(&models.Subscription{}).
			Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
			Pluck("author_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			subscribed[id] = true
		}
	}

	for _, r := range recipes {
		view := RecipeView{
			ID:               r.ID,
			Name:             r.Name,
			Image:            utils.MediaURL(baseURL, r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			Ingredients:      make([]IngredientInRecipeView, 0, len(r.RecipeIngredients)),
			Tags:             make([]TagView, 0, len(r.Tags)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
		}
		for _, ri := range r.RecipeIngredients {
			line := IngredientInRecipeView{Amount: ri.Amount, ID: ri.IngredientID}
			if ri.Ingredient != nil {
				line.Name = ri.Ingredient.Name
				line.MeasurementUnit = ri.Ingredient.MeasurementUnit
			}
			view.Ingredients = append(view.Ingredients, line)
		}
		for _, t := range r.Tags {
			view.Tags = append(view.Tags, projectTag(t))
		}
		if r.Author != nil {
			view.Author = projectUser(*r.Author, baseURL, subscribed[r.AuthorID])
		}
		views = append(views, view)
	}

	return views, nil
}

// recipeScope loads a recipe with every association the read projection needs.
func recipeScope(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient")
}
