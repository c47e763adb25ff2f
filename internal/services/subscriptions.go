package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/models"
)

// Subscribe creates a follow edge from user to author and returns the
// author's subscription view. Self-subscription is always a conflict; a
// duplicate pair is detected by the unique index, not just the pre-check.
func Subscribe(db *gorm.DB, baseURL string, user *models.User, authorID uint, recipesLimit int) (*SubscriptionView, error) {
	author, err := GetUser(db, authorID)
	if err != nil {
		return nil, err
	}

	if user.ID == author.ID {
		return nil, &ConflictError{Reason: "cannot subscribe to yourself"}
	}

	sub := models.Subscription{UserID: user.ID, AuthorID: author.ID}
	if err := db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "subscription already exists"}
		}
		return nil, err
	}

	view, err := projectSubscription(db, baseURL, *author, recipesLimit)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Unsubscribe removes the follow edge. A missing edge is a conflict.
func Unsubscribe(db *gorm.DB, user *models.User, authorID uint) error {
	if _, err := GetUser(db, authorID); err != nil {
		return err
	}

	res := db.Where("user_id = ? AND author_id = ?", user.ID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ConflictError{Reason: "subscription does not exist"}
	}
	return nil
}

// ListSubscriptions returns one page of the authors the user follows,
// ordered by username, each with a truncated recipe list and total count.
func ListSubscriptions(db *gorm.DB, baseURL string, user *models.User, offset, limit, recipesLimit int) ([]SubscriptionView, int64, error) {
	var total int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ?", user.ID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := db.
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", user.ID).
		Order("users.username").
		Offset(offset).Limit(limit).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	views := make([]SubscriptionView, 0, len(authors))
	for _, author := range authors {
		view, err := projectSubscription(db, baseURL, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// projectSubscription shapes an author the caller follows: is_subscribed is
// true by construction on every path that reaches here.
func projectSubscription(db *gorm.DB, baseURL string, author models.User, recipesLimit int) (*SubscriptionView, error) {
	var count int64
	if err := db.Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	query := db.Where("author_id = ?", author.ID).
		Order("created_at DESC, id DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	shorts := make([]ShortRecipeView, 0, len(recipes))
	for _, r := range recipes {
		shorts = append(shorts, projectShortRecipe(r, baseURL))
	}

	return &SubscriptionView{
		UserView:     projectUser(author, baseURL, true),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}
