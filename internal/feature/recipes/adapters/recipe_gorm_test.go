package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipebook/internal/feature/recipes/domain/entity"
	"recipebook/internal/feature/recipes/usecase"
	platformdb "recipebook/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := platformdb.OpenSQLite(":memory:", &entity.Recipe{})
	require.NoError(t, err, "failed to initialize test database")

	return db
}

// seedRecipe creates a recipe directly in the database.
func seedRecipe(t *testing.T, db *gorm.DB, ownerID uint, title string) *entity.Recipe {
	t.Helper()

	r := &entity.Recipe{
		Title:       title,
		Ingredients: "ingredients of " + title,
		Content:     "steps for " + title,
		ImagePath:   "static/img/recipes/" + title + ".png",
		OwnerID:     ownerID,
	}
	require.NoError(t, db.Create(r).Error, "failed to seed recipe")
	return r
}

func TestRecipeGorm_CreateAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	recipe := &entity.Recipe{Title: "Soup", Ingredients: "water", Content: "boil", ImagePath: "img/Soup.png", OwnerID: 7}
	require.NoError(t, repo.Create(ctx, recipe))
	require.NotZero(t, recipe.ID)

	found, err := repo.FindByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, *recipe, *found)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrRecipeNotFound)

	assert.Error(t, repo.Create(ctx, nil))
}

func TestRecipeGorm_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	first := seedRecipe(t, db, 1, "A")
	second := seedRecipe(t, db, 2, "B")
	third := seedRecipe(t, db, 1, "C")

	tests := []struct {
		name string
		opts entity.ListOptions
		want []uint
	}{
		{"all in stored order", entity.ListOptions{}, []uint{first.ID, second.ID, third.ID}},
		{"all most recent first", entity.ListOptions{MostRecentFirst: true}, []uint{third.ID, second.ID, first.ID}},
		{"by owner", entity.ListOptions{OwnerID: 1}, []uint{first.ID, third.ID}},
		{"by owner most recent first", entity.ListOptions{OwnerID: 1, MostRecentFirst: true}, []uint{third.ID, first.ID}},
		{"owner without recipes", entity.ListOptions{OwnerID: 9}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, err := repo.FindAll(ctx, tt.opts)
			require.NoError(t, err)

			var ids []uint
			for _, r := range recipes {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRecipeGorm_IsTitleUniqueForOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	seedRecipe(t, db, 1, "Soup")

	unique, err := repo.IsTitleUniqueForOwner(ctx, 1, "Soup")
	require.NoError(t, err)
	assert.False(t, unique, "same owner, same title")

	unique, err = repo.IsTitleUniqueForOwner(ctx, 2, "Soup")
	require.NoError(t, err)
	assert.True(t, unique, "title is unique per owner, not globally")

	unique, err = repo.IsTitleUniqueForOwner(ctx, 1, "Stew")
	require.NoError(t, err)
	assert.True(t, unique)
}

func TestRecipeGorm_CountByImagePath(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	ann := seedRecipe(t, db, 1, "Soup")
	seedRecipe(t, db, 2, "Soup")
	seedRecipe(t, db, 1, "Stew")

	n, err := repo.CountByImagePath(ctx, "static/img/recipes/Soup.png")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "two owners share one title")

	require.NoError(t, repo.Delete(ctx, ann.ID))
	n, err = repo.CountByImagePath(ctx, "static/img/recipes/Soup.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountByImagePath(ctx, "static/img/recipes/Cake.png")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecipeGorm_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	recipe := seedRecipe(t, db, 1, "Soup")
	untouched := seedRecipe(t, db, 1, "Stew")

	changed := &entity.Recipe{
		ID:          recipe.ID,
		Title:       "Borscht",
		Ingredients: "beets",
		Content:     "simmer",
		ImagePath:   "img/Borscht.jpg",
		OwnerID:     1,
	}
	require.NoError(t, repo.Update(ctx, changed))

	found, err := repo.FindByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, *changed, *found, "every column lands in its own field")

	other, err := repo.FindByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stew", other.Title)

	err = repo.Update(ctx, &entity.Recipe{ID: 999, Title: "x"})
	assert.ErrorIs(t, err, usecase.ErrRecipeNotFound)
}

func TestRecipeGorm_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	recipe := seedRecipe(t, db, 1, "Soup")

	require.NoError(t, repo.Delete(ctx, recipe.ID))

	_, err := repo.FindByID(ctx, recipe.ID)
	assert.ErrorIs(t, err, usecase.ErrRecipeNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, recipe.ID), usecase.ErrRecipeNotFound)
}
