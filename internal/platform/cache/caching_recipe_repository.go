// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"recipebook/internal/feature/recipes/domain/entity"
	"recipebook/internal/feature/recipes/usecase"
)

// CachingRecipeRepository decorates a RecipeRepository with Redis caching.
// Reads of single recipes and recipe lists are cached; every write goes to
// the inner repository first and then invalidates the affected keys.
type CachingRecipeRepository struct {
	inner     usecase.RecipeRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.RecipeRepository = (*CachingRecipeRepository)(nil)

// NewCachingRecipeRepository decorates a RecipeRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "recipes".
// A nil client disables caching.
func NewCachingRecipeRepository(rdb *redis.Client, ttl time.Duration, inner usecase.RecipeRepository, namespace string) *CachingRecipeRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "recipes"
	}
	return &CachingRecipeRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create inserts a recipe and invalidates cached lists.
func (c *CachingRecipeRepository) Create(ctx context.Context, recipe *entity.Recipe) error {
	if err := c.inner.Create(ctx, recipe); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	_ = c.deleteByPattern(ctx, c.listPattern()) // Best effort
	return nil
}

// FindByID returns a recipe from cache, falling back to the inner repository.
// Lookup errors, including not-found, are never cached.
func (c *CachingRecipeRepository) FindByID(ctx context.Context, id uint) (*entity.Recipe, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.recipeKey(id)
	var cached entity.Recipe
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	recipe, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, recipe)
	return recipe, nil
}

// FindAll returns a recipe list from cache, falling back to the inner repository.
func (c *CachingRecipeRepository) FindAll(ctx context.Context, opts entity.ListOptions) ([]entity.Recipe, error) {
	if c.rdb == nil {
		return c.inner.FindAll(ctx, opts)
	}

	key := c.listKey(opts)
	var cached []entity.Recipe
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	recipes, err := c.inner.FindAll(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, recipes)
	return recipes, nil
}

// IsTitleUniqueForOwner always asks the inner repository.
func (c *CachingRecipeRepository) IsTitleUniqueForOwner(ctx context.Context, ownerID uint, title string) (bool, error) {
	return c.inner.IsTitleUniqueForOwner(ctx, ownerID, title)
}

// CountByImagePath always asks the inner repository.
func (c *CachingRecipeRepository) CountByImagePath(ctx context.Context, imagePath string) (int64, error) {
	return c.inner.CountByImagePath(ctx, imagePath)
}

// Update writes through and invalidates the recipe and every list.
func (c *CachingRecipeRepository) Update(ctx context.Context, recipe *entity.Recipe) error {
	if err := c.inner.Update(ctx, recipe); err != nil {
		return err
	}
	c.invalidate(ctx, recipe.ID)
	return nil
}

// Delete removes a recipe and invalidates the recipe and every list.
func (c *CachingRecipeRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingRecipeRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.recipeKey(id)).Err()
	_ = c.deleteByPattern(ctx, c.listPattern())
}

// get decodes key into dst. Corrupted entries are deleted and reported as a miss.
func (c *CachingRecipeRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores v under key (best effort).
func (c *CachingRecipeRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// recipeKey generates the cache key for a single recipe.
func (c *CachingRecipeRepository) recipeKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// listKey generates the cache key for one listing query.
func (c *CachingRecipeRepository) listKey(opts entity.ListOptions) string {
	order := "asc"
	if opts.MostRecentFirst {
		order = "desc"
	}
	return fmt.Sprintf("%s:list:%d:%s", c.namespace, opts.OwnerID, order)
}

// listPattern matches every cached list.
func (c *CachingRecipeRepository) listPattern() string {
	return c.namespace + ":list:*"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingRecipeRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
