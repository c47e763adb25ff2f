package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/types"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// IngredientAmountInput is one ingredient line in a recipe write payload.
type IngredientAmountInput struct {
	ID     uint          `json:"id"`
	Amount types.FlexInt `json:"amount"`
}

// RecipeInput is the recipe write command. Ingredients and Tags are pointers
// so an omitted list (leave associations untouched on update) can be told
// apart from an empty one (always invalid).
type RecipeInput struct {
	Name        string                   `json:"name"`
	Image       string                   `json:"image"`
	Text        string                   `json:"text"`
	CookingTime types.FlexInt            `json:"cooking_time"`
	Ingredients *[]IngredientAmountInput `json:"ingredients"`
	Tags        *types.FlexList[uint]    `json:"tags"`
}

// RecipeFilter narrows the recipe listing.
type RecipeFilter struct {
	Authors        []uint
	TagSlugs       []string
	Favorited      bool
	InShoppingCart bool
	ViewerID       uint
}

// ValidateRecipeInput checks the whole payload and collects every violation
// into one field-keyed report. With partial set (the update path) a nil list
// or an empty image means "keep the stored value"; a present-but-empty list
// is invalid on either path. The error return carries database failures.
func ValidateRecipeInput(db *gorm.DB, cfg *config.Config, input RecipeInput, partial bool) (types.FieldErrors, error) {
	errs := types.FieldErrors{}

	if strings.TrimSpace(input.Name) == "" {
		errs.Add("name", "this field is required")
	} else if len(input.Name) > 200 {
		errs.Add("name", "name must be at most 200 characters")
	}

	if strings.TrimSpace(input.Text) == "" {
		errs.Add("text", "this field is required")
	}

	if !partial && input.Image == "" {
		errs.Add("image", "this field is required")
	}

	if input.CookingTime.Int() <= 0 {
		errs.Add("cooking_time", "cooking time must be greater than zero")
	} else if input.CookingTime.Int() > cfg.MaxCookingTime {
		errs.Add("cooking_time", fmt.Sprintf("cooking time must be at most %d", cfg.MaxCookingTime))
	}

	if input.Ingredients == nil {
		if !partial {
			errs.Add("ingredients", "at least one ingredient is required")
		}
	} else if len(*input.Ingredients) == 0 {
		errs.Add("ingredients", "at least one ingredient is required")
	} else {
		seen := make(map[uint]struct{}, len(*input.Ingredients))
		ids := make([]uint, 0, len(*input.Ingredients))
		for _, item := range *input.Ingredients {
			if _, dup := seen[item.ID]; dup && !errs.Has("ingredients") {
				errs.Add("ingredients", "ingredients must not repeat")
			}
			seen[item.ID] = struct{}{}
			ids = append(ids, item.ID)

			if amount := item.Amount.Int(); amount <= 0 {
				if !errs.Has("ingredients") {
					errs.Add("ingredients", "ingredient amount must be greater than zero")
				}
			} else if amount > cfg.MaxIngredientAmount && !errs.Has("ingredients") {
				errs.Add("ingredients", fmt.Sprintf("ingredient amount must be at most %d", cfg.MaxIngredientAmount))
			}
		}

		var count int64
		if err := db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return nil, err
		} else if int(count) != len(seen) && !errs.Has("ingredients") {
			errs.Add("ingredients", "unknown ingredient id")
		}
	}

	if input.Tags == nil {
		if !partial {
			errs.Add("tags", "at least one tag is required")
		}
	} else if len(*input.Tags) == 0 {
		errs.Add("tags", "at least one tag is required")
	} else {
		tagIDs := input.Tags.Slice()
		seen := make(map[uint]struct{}, len(tagIDs))
		for _, id := range tagIDs {
			if _, dup := seen[id]; dup && !errs.Has("tags") {
				errs.Add("tags", "tags must not repeat")
			}
			seen[id] = struct{}{}
		}

		var count int64
		if err := db.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
			return nil, err
		} else if int(count) != len(seen) && !errs.Has("tags") {
			errs.Add("tags", "unknown tag id")
		}
	}

	return errs, nil
}

// CreateRecipe persists a validated recipe and its associations in one
// transaction and returns the re-fetched record.
func CreateRecipe(db *gorm.DB, cfg *config.Config, author *models.User, input RecipeInput) (*models.Recipe, error) {
	errs, err := ValidateRecipeInput(db, cfg, input, false)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	imagePath, err := utils.SaveBase64Image(cfg.MediaRoot, "recipes", input.Image)
	if err != nil {
		return nil, types.FieldErrors{"image": {err.Error()}}
	}

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        input.Name,
		Image:       imagePath,
		Text:        input.Text,
		CookingTime: input.CookingTime.Int(),
		ShortCode:   newShortCode(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceRecipeIngredients(tx, recipe.ID, *input.Ingredients); err != nil {
			return err
		}
		return replaceRecipeTags(tx, &recipe, input.Tags.Slice())
	})
	if err != nil {
		_ = utils.RemoveImage(cfg.MediaRoot, imagePath)
		return nil, err
	}

	return GetRecipe(db, recipe.ID)
}

// UpdateRecipe applies scalar changes and, for each association list that is
// present in the payload, replaces the full set atomically. Omitted lists
// stay untouched. A failure leaves the stored associations exactly as they
// were.
func UpdateRecipe(db *gorm.DB, cfg *config.Config, recipe *models.Recipe, input RecipeInput) (*models.Recipe, error) {
	errs, err := ValidateRecipeInput(db, cfg, input, true)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	previousImage := ""
	imagePath := recipe.Image
	if input.Image != "" {
		path, err := utils.SaveBase64Image(cfg.MediaRoot, "recipes", input.Image)
		if err != nil {
			return nil, types.FieldErrors{"image": {err.Error()}}
		}
		previousImage = recipe.Image
		imagePath = path
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime.Int(),
			"image":        imagePath,
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return err
		}

		if input.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := replaceRecipeIngredients(tx, recipe.ID, *input.Ingredients); err != nil {
				return err
			}
		}

		if input.Tags != nil {
			if err := replaceRecipeTags(tx, recipe, input.Tags.Slice()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if previousImage != "" {
			// roll the file write back; the row still points at the old image
			_ = utils.RemoveImage(cfg.MediaRoot, imagePath)
		}
		return nil, err
	}

	if previousImage != "" {
		_ = utils.RemoveImage(cfg.MediaRoot, previousImage)
	}

	return GetRecipe(db, recipe.ID)
}

// replaceRecipeIngredients bulk-inserts the junction rows for a recipe.
// Callers delete the old rows first when replacing.
func replaceRecipeIngredients(tx *gorm.DB, recipeID uint, items []IngredientAmountInput) error {
	links := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		links = append(links, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount.Int(),
		})
	}
	return tx.Create(&links).Error
}

// replaceRecipeTags swaps the recipe's tag set for the given ids.
func replaceRecipeTags(tx *gorm.DB, recipe *models.Recipe, tagIDs []uint) error {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Replace(tags)
}

// GetRecipe fetches a recipe with all read-projection associations.
func GetRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := recipeScope(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// GetRecipeByShortCode resolves a short-link code.
func GetRecipeByShortCode(db *gorm.DB, code string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.Where("short_code = ?", code).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes, newest first, after applying the
// filter. The favorited and cart filters only narrow for authenticated
// viewers; anonymous callers get the unfiltered listing per the filter
// contract.
func ListRecipes(db *gorm.DB, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	query := db.Model(&models.Recipe{})

	if len(filter.Authors) > 0 {
		query = query.Where("recipes.author_id IN ?", filter.Authors)
	}

	if len(filter.TagSlugs) > 0 {
		// membership subquery rather than a join, so pagination and count
		// see one row per recipe
		query = query.Where(
			"recipes.id IN (?)",
			db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs),
		)
	}

	if filter.Favorited && filter.ViewerID != 0 {
		query = query.Where(
			"recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID),
		)
	}

	if filter.InShoppingCart && filter.ViewerID != 0 {
		query = query.Where(
			"recipes.id IN (?)",
			db.Model(&models.Purchase{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID),
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	if err := query.Session(&gorm.Session{}).
		Order("recipes.created_at DESC, recipes.id DESC").
		Offset(offset).Limit(limit).
		Pluck("recipes.id", &ids).Error; err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, total, nil
	}

	var recipes []models.Recipe
	if err := recipeScope(db).
		Where("id IN ?", ids).
		Order("created_at DESC, id DESC").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// DeleteRecipe removes the recipe row; junction rows cascade. The image file
// goes last so a failed delete keeps it reachable.
func DeleteRecipe(db *gorm.DB, mediaRoot string, recipe *models.Recipe) error {
	if err := db.Select("Tags", "RecipeIngredients").Delete(recipe).Error; err != nil {
		return err
	}
	return utils.RemoveImage(mediaRoot, recipe.Image)
}

// newShortCode derives a compact stable code for the recipe short link.
func newShortCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
