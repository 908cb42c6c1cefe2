// Package handler provides the HTTP handlers for the recipes feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authentity "recipebook/internal/feature/auth/domain/entity"
	"recipebook/internal/feature/recipes/domain/entity"
	"recipebook/internal/feature/recipes/transport/http/dto"
	"recipebook/internal/feature/recipes/usecase"
	jwtmw "recipebook/internal/platform/jwt"
)

// Messages shown inline on the recipe forms.
const (
	MsgInvalidData      = "please fill in the title, ingredients and description"
	MsgImageRequired    = "please choose a cover image"
	MsgTitleTaken       = "you already have a recipe with this title"
	MsgUnsupportedMedia = "unsupported file type (not jpg, jpeg, png, gif)"
)

// imageField is the multipart field carrying the cover image.
const imageField = "img"

// RecipeUsecase defines the recipe operations used by the handlers.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type RecipeUsecase interface {
	List(ctx context.Context, opts entity.ListOptions) ([]entity.Recipe, error)
	Get(ctx context.Context, state authentity.SessionState, id uint) (*entity.Recipe, error)
	Add(ctx context.Context, state authentity.SessionState, in usecase.RecipeInput) (*entity.Recipe, error)
	Update(ctx context.Context, state authentity.SessionState, id uint, in usecase.RecipeInput) (*entity.Recipe, error)
	Delete(ctx context.Context, state authentity.SessionState, id uint) error
}

// Renderer renders a named view.
type Renderer interface {
	Render(c *gin.Context, status int, view string, data gin.H)
}

// Metrics receives recipe events. It may be nil.
type Metrics interface {
	RecipeCreated()
}

// Options tunes handler behavior from configuration.
type Options struct {
	MostRecentFirst bool // List newest recipes first
	EditingEnabled  bool // Show edit/delete controls on the detail page
}

// RecipeHandler handles the recipe pages.
type RecipeHandler struct {
	recipes RecipeUsecase
	views   Renderer
	metrics Metrics
	opts    Options
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipes RecipeUsecase, views Renderer, metrics Metrics, opts Options) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		views:   views,
		metrics: metrics,
		opts:    opts,
	}
}

// List renders every recipe. The list is never filtered by owner.
func (h *RecipeHandler) List(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), entity.ListOptions{MostRecentFirst: h.opts.MostRecentFirst})
	if err != nil {
		slog.Error("failed to list recipes", "error", err)
		h.renderError(c, http.StatusInternalServerError)
		return
	}
	h.views.Render(c, http.StatusOK, "recipes", gin.H{"Recipes": recipes})
}

// Detail renders one recipe.
// - Unknown or non-numeric id → 404
// - Neither owner nor administrator → 403
func (h *RecipeHandler) Detail(c *gin.Context) {
	recipe, ok := h.load(c)
	if !ok {
		return
	}
	h.views.Render(c, http.StatusOK, "recipe", gin.H{
		"Recipe":         recipe,
		"EditingEnabled": h.opts.EditingEnabled,
	})
}

// AddForm renders an empty add-recipe form.
func (h *RecipeHandler) AddForm(c *gin.Context) {
	h.views.Render(c, http.StatusOK, "add_recipe", gin.H{"Form": dto.RecipeForm{}})
}

// Add handles POST /recipes/add.
// - Missing or oversized fields, duplicate titles and disallowed file types re-render the form
// - Success stores the image, inserts the recipe and redirects to the list
func (h *RecipeHandler) Add(c *gin.Context) {
	var form dto.RecipeForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("add recipe validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderForm(c, "add_recipe", 0, form, MsgInvalidData)
		return
	}

	header, err := c.FormFile(imageField)
	if err != nil {
		slog.Warn("add recipe without image", "error", err, "remote_addr", c.ClientIP())
		h.renderForm(c, "add_recipe", 0, form, MsgImageRequired)
		return
	}
	file, err := header.Open()
	if err != nil {
		slog.Error("failed to open upload", "error", err)
		h.renderError(c, http.StatusInternalServerError)
		return
	}
	defer file.Close()

	state := jwtmw.CurrentSession(c)
	recipe, err := h.recipes.Add(c.Request.Context(), state, toInput(form, header, file))
	if err != nil {
		h.handleWriteError(c, "add_recipe", 0, form, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecipeCreated()
	}
	slog.Info("recipe created", "recipe_id", recipe.ID, "user_id", state.UserID)
	c.Redirect(http.StatusFound, "/recipes")
}

// EditForm renders the edit form filled with the current recipe.
func (h *RecipeHandler) EditForm(c *gin.Context) {
	recipe, ok := h.load(c)
	if !ok {
		return
	}
	h.views.Render(c, http.StatusOK, "edit_recipe", gin.H{
		"RecipeID": recipe.ID,
		"Form": dto.RecipeForm{
			Title:       recipe.Title,
			Ingredients: recipe.Ingredients,
			Description: recipe.Content,
		},
	})
}

// Edit handles POST /recipe/:id/edit. The image is optional and kept when absent.
func (h *RecipeHandler) Edit(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var form dto.RecipeForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("edit recipe validation failed", "error", err, "recipe_id", id)
		h.renderForm(c, "edit_recipe", id, form, MsgInvalidData)
		return
	}

	in := usecase.RecipeInput{Title: form.Title, Ingredients: form.Ingredients, Content: form.Description}
	header, err := c.FormFile(imageField)
	switch {
	case err == nil:
		file, err := header.Open()
		if err != nil {
			slog.Error("failed to open upload", "error", err)
			h.renderError(c, http.StatusInternalServerError)
			return
		}
		defer file.Close()
		in = toInput(form, header, file)
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		slog.Warn("unreadable upload", "error", err, "recipe_id", id)
		h.renderForm(c, "edit_recipe", id, form, MsgImageRequired)
		return
	}

	state := jwtmw.CurrentSession(c)
	if _, err := h.recipes.Update(c.Request.Context(), state, id, in); err != nil {
		h.handleWriteError(c, "edit_recipe", id, form, err)
		return
	}

	slog.Info("recipe updated", "recipe_id", id, "user_id", state.UserID)
	c.Redirect(http.StatusFound, "/recipe/"+strconv.FormatUint(uint64(id), 10))
}

// Delete handles POST /recipe/:id/delete.
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	state := jwtmw.CurrentSession(c)
	if err := h.recipes.Delete(c.Request.Context(), state, id); err != nil {
		h.handleAccessError(c, id, err)
		return
	}

	slog.Info("recipe deleted", "recipe_id", id, "user_id", state.UserID)
	c.Redirect(http.StatusFound, "/recipes")
}

// load fetches the recipe named by :id, writing the error page on failure.
func (h *RecipeHandler) load(c *gin.Context) (*entity.Recipe, bool) {
	id, ok := h.parseID(c)
	if !ok {
		return nil, false
	}
	recipe, err := h.recipes.Get(c.Request.Context(), jwtmw.CurrentSession(c), id)
	if err != nil {
		h.handleAccessError(c, id, err)
		return nil, false
	}
	return recipe, true
}

// parseID reads :id. Anything but a positive integer is a 404.
func (h *RecipeHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		h.renderError(c, http.StatusNotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *RecipeHandler) handleAccessError(c *gin.Context, id uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrRecipeNotFound):
		h.renderError(c, http.StatusNotFound)
	case errors.Is(err, usecase.ErrForbidden):
		slog.Warn("recipe access denied", "recipe_id", id, "user_id", jwtmw.CurrentSession(c).UserID)
		h.renderError(c, http.StatusForbidden)
	default:
		slog.Error("recipe operation failed", "error", err, "recipe_id", id)
		h.renderError(c, http.StatusInternalServerError)
	}
}

func (h *RecipeHandler) handleWriteError(c *gin.Context, view string, id uint, form dto.RecipeForm, err error) {
	switch {
	case errors.Is(err, usecase.ErrTitleTaken):
		h.renderForm(c, view, id, form, MsgTitleTaken)
	case errors.Is(err, usecase.ErrUnsupportedMedia):
		h.renderForm(c, view, id, form, MsgUnsupportedMedia)
	case errors.Is(err, usecase.ErrUnauthenticated):
		c.Redirect(http.StatusFound, jwtmw.LoginPath)
	default:
		h.handleAccessError(c, id, err)
	}
}

func (h *RecipeHandler) renderForm(c *gin.Context, view string, id uint, form dto.RecipeForm, msg string) {
	h.views.Render(c, http.StatusOK, view, gin.H{"RecipeID": id, "Form": form, "Error": msg})
}

func (h *RecipeHandler) renderError(c *gin.Context, status int) {
	h.views.Render(c, status, "error", gin.H{"Status": status, "StatusText": http.StatusText(status)})
}

func toInput(form dto.RecipeForm, header *multipart.FileHeader, file multipart.File) usecase.RecipeInput {
	return usecase.RecipeInput{
		Title:       form.Title,
		Ingredients: form.Ingredients,
		Content:     form.Description,
		FileName:    header.Filename,
		Image:       file,
	}
}
