package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authentity "recipebook/internal/feature/auth/domain/entity"
	"recipebook/internal/feature/recipes/domain/entity"
)

// RecipeRepository abstracts the persistence layer for recipes.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type RecipeRepository interface {
	// Create inserts a recipe and fills in its ID.
	Create(ctx context.Context, recipe *entity.Recipe) error

	// FindByID retrieves a recipe. Returns ErrRecipeNotFound if absent.
	FindByID(ctx context.Context, id uint) (*entity.Recipe, error)

	// FindAll lists recipes, optionally filtered to one owner.
	FindAll(ctx context.Context, opts entity.ListOptions) ([]entity.Recipe, error)

	// IsTitleUniqueForOwner reports whether ownerID has no recipe titled title.
	IsTitleUniqueForOwner(ctx context.Context, ownerID uint, title string) (bool, error)

	// CountByImagePath returns how many recipes reference the stored image path.
	CountByImagePath(ctx context.Context, imagePath string) (int64, error)

	// Update replaces title, ingredients, content, image path and owner in one statement.
	Update(ctx context.Context, recipe *entity.Recipe) error

	// Delete removes a recipe. Returns ErrRecipeNotFound if absent.
	Delete(ctx context.Context, id uint) error
}

// FileStore persists uploaded images under server-relative paths.
type FileStore interface {
	Save(ctx context.Context, path string, r io.Reader) error
	Remove(ctx context.Context, path string) error
}

// RecipeInput carries the submitted recipe form.
// Image may be nil on update, which keeps the current image.
type RecipeInput struct {
	Title       string
	Ingredients string
	Content     string
	FileName    string
	Image       io.Reader
}

// CanAccessRecipe reports whether the session may view or change recipe:
// it must be authenticated and either own the recipe or be an administrator.
func CanAccessRecipe(state authentity.SessionState, recipe *entity.Recipe) bool {
	if !state.Authenticated || recipe == nil {
		return false
	}
	return state.UserID == recipe.OwnerID || state.Administrator
}

// recipeUsecase provides business logic for recipe operations.
type recipeUsecase struct {
	recipes      RecipeRepository
	files        FileStore
	uploadPrefix string
}

// NewRecipeUsecase creates a new recipeUsecase.
// uploadPrefix is the server-relative directory for stored images.
func NewRecipeUsecase(recipes RecipeRepository, files FileStore, uploadPrefix string) *recipeUsecase {
	return &recipeUsecase{
		recipes:      recipes,
		files:        files,
		uploadPrefix: uploadPrefix,
	}
}

// List returns recipes according to opts.
func (u *recipeUsecase) List(ctx context.Context, opts entity.ListOptions) ([]entity.Recipe, error) {
	return u.recipes.FindAll(ctx, opts)
}

// Get returns a recipe the session is allowed to see.
// Returns ErrRecipeNotFound or ErrForbidden otherwise.
func (u *recipeUsecase) Get(ctx context.Context, state authentity.SessionState, id uint) (*entity.Recipe, error) {
	recipe, err := u.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessRecipe(state, recipe) {
		return nil, ErrForbidden
	}
	return recipe, nil
}

// Add validates and stores a new recipe owned by the session user.
// Nothing is written when the title is taken or the file type is not allowed.
func (u *recipeUsecase) Add(ctx context.Context, state authentity.SessionState, in RecipeInput) (*entity.Recipe, error) {
	if !state.Authenticated {
		return nil, ErrUnauthenticated
	}

	unique, err := u.recipes.IsTitleUniqueForOwner(ctx, state.UserID, in.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to check title: %w", err)
	}
	if !unique {
		return nil, ErrTitleTaken
	}
	if !AllowedFile(in.FileName) {
		return nil, ErrUnsupportedMedia
	}

	imagePath := UploadPath(u.uploadPrefix, in.Title, in.FileName)
	if err := u.files.Save(ctx, imagePath, in.Image); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	recipe := &entity.Recipe{
		Title:       in.Title,
		Ingredients: in.Ingredients,
		Content:     in.Content,
		ImagePath:   imagePath,
		OwnerID:     state.UserID,
	}
	if err := u.recipes.Create(ctx, recipe); err != nil {
		u.removeImage(ctx, imagePath)
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// Update replaces the recipe fields. The owner never changes.
// A nil in.Image keeps the current image.
func (u *recipeUsecase) Update(ctx context.Context, state authentity.SessionState, id uint, in RecipeInput) (*entity.Recipe, error) {
	recipe, err := u.Get(ctx, state, id)
	if err != nil {
		return nil, err
	}

	if in.Title != recipe.Title {
		unique, err := u.recipes.IsTitleUniqueForOwner(ctx, recipe.OwnerID, in.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to check title: %w", err)
		}
		if !unique {
			return nil, ErrTitleTaken
		}
	}

	imagePath := recipe.ImagePath
	if in.Image != nil {
		if !AllowedFile(in.FileName) {
			return nil, ErrUnsupportedMedia
		}
		imagePath = UploadPath(u.uploadPrefix, in.Title, in.FileName)
		if err := u.files.Save(ctx, imagePath, in.Image); err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
	}

	updated := &entity.Recipe{
		ID:          recipe.ID,
		Title:       in.Title,
		Ingredients: in.Ingredients,
		Content:     in.Content,
		ImagePath:   imagePath,
		OwnerID:     recipe.OwnerID,
	}
	if err := u.recipes.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	if imagePath != recipe.ImagePath {
		u.removeImage(ctx, recipe.ImagePath)
	}
	return updated, nil
}

// Delete removes a recipe the session owns (or any recipe for administrators).
func (u *recipeUsecase) Delete(ctx context.Context, state authentity.SessionState, id uint) error {
	recipe, err := u.Get(ctx, state, id)
	if err != nil {
		return err
	}
	if err := u.recipes.Delete(ctx, recipe.ID); err != nil {
		return err
	}
	u.removeImage(ctx, recipe.ImagePath)
	return nil
}

// removeImage deletes a stored image unless another recipe still points at it.
// Recipes of different owners may share a title and therefore a path.
// Failures only leave an orphaned file.
func (u *recipeUsecase) removeImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	refs, err := u.recipes.CountByImagePath(ctx, path)
	if err != nil {
		slog.Warn("failed to count recipe image references", "path", path, "error", err)
		return
	}
	if refs > 0 {
		slog.Debug("recipe image still referenced", "path", path, "refs", refs)
		return
	}
	if err := u.files.Remove(ctx, path); err != nil {
		slog.Warn("failed to remove recipe image", "path", path, "error", err)
	}
}
