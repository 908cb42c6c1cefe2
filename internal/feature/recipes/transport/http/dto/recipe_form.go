// Package dto defines the form bindings for the recipes feature's HTTP transport layer.
package dto

// RecipeForm is the text part of the multipart add/edit recipe form.
// The cover image arrives separately in the "img" file field.
type RecipeForm struct {
	Title       string `form:"title" binding:"required,max=100"`
	Ingredients string `form:"ingredients" binding:"required,max=1000"`
	Description string `form:"description" binding:"required,max=2000"`
}
