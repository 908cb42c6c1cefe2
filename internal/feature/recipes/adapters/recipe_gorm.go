// Package adapters provides repository implementations for the recipes feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipebook/internal/feature/recipes/domain/entity"
	"recipebook/internal/feature/recipes/usecase"
)

// recipeGorm is the GORM implementation of the RecipeRepository interface.
type recipeGorm struct {
	db *gorm.DB
}

var _ usecase.RecipeRepository = (*recipeGorm)(nil)

// NewRecipeRepository creates a recipeGorm backed by the shared connection.
func NewRecipeRepository(db *gorm.DB) *recipeGorm {
	return &recipeGorm{db: db}
}

// Create inserts a recipe and fills in its ID.
func (r *recipeGorm) Create(ctx context.Context, recipe *entity.Recipe) error {
	if recipe == nil {
		return errors.New("recipe is nil")
	}
	return r.db.WithContext(ctx).Create(recipe).Error
}

// FindByID retrieves a recipe by ID.
// Returns usecase.ErrRecipeNotFound if the recipe does not exist.
func (r *recipeGorm) FindByID(ctx context.Context, id uint) (*entity.Recipe, error) {
	var recipe entity.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// FindAll lists recipes in insert order, or newest first when requested.
func (r *recipeGorm) FindAll(ctx context.Context, opts entity.ListOptions) ([]entity.Recipe, error) {
	q := r.db.WithContext(ctx)
	if opts.OwnerID != 0 {
		q = q.Where("user_id = ?", opts.OwnerID)
	}
	if opts.MostRecentFirst {
		q = q.Order("id DESC")
	} else {
		q = q.Order("id ASC")
	}

	var recipes []entity.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// IsTitleUniqueForOwner reports whether ownerID has no recipe with this title.
func (r *recipeGorm) IsTitleUniqueForOwner(ctx context.Context, ownerID uint, title string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Recipe{}).
		Where("user_id = ? AND title = ?", ownerID, title).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// CountByImagePath returns how many recipes point at imagePath.
func (r *recipeGorm) CountByImagePath(ctx context.Context, imagePath string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Recipe{}).
		Where("img_src = ?", imagePath).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update replaces the five mutable columns in a single UPDATE.
func (r *recipeGorm) Update(ctx context.Context, recipe *entity.Recipe) error {
	if recipe == nil {
		return errors.New("recipe is nil")
	}
	result := r.db.WithContext(ctx).
		Model(&entity.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]any{
			"title":      recipe.Title,
			"ingredient": recipe.Ingredients,
			"content":    recipe.Content,
			"img_src":    recipe.ImagePath,
			"user_id":    recipe.OwnerID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrRecipeNotFound
	}
	return nil
}

// Delete removes a recipe by ID.
func (r *recipeGorm) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Recipe{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrRecipeNotFound
	}
	return nil
}
