// Package router assembles the gin engine: middleware, routes and static files.
package router

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	authhandler "recipebook/internal/feature/auth/transport/handler"
	recipehandler "recipebook/internal/feature/recipes/transport/handler"
	"recipebook/internal/platform/http/handler"
	jwtmw "recipebook/internal/platform/jwt"
	"recipebook/internal/platform/logging"
	"recipebook/internal/platform/metrics"
	"recipebook/internal/shared/ratelimiter"
)

// Options selects optional routes.
type Options struct {
	// EditingEnabled mounts /recipe/:id/edit and /recipe/:id/delete.
	EditingEnabled bool
	// UploadRoot, when set, serves UploadRoot/static under /static.
	UploadRoot string
}

// Deps are the collaborators the routes need.
type Deps struct {
	Auth     *authhandler.AuthHandler
	Recipes  *recipehandler.RecipeHandler
	Signer   jwtmw.Signer
	Sessions jwtmw.SessionResolver
	DB       handler.Pinger
	Metrics  *metrics.Metrics
	// Limiter throttles credential submissions. Nil disables it.
	Limiter ratelimiter.RateLimiterInterface
}

// NewRouter builds the engine.
func NewRouter(d Deps, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(jwtmw.LoadSession(d.Signer, d.Sessions))
	r.Use(logging.RequestLogger(func(c *gin.Context) uint {
		return jwtmw.CurrentSession(c).UserID
	}))

	// Public routes
	health := handler.Health(d.DB)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}
	if opts.UploadRoot != "" {
		r.Static("/static", filepath.Join(opts.UploadRoot, "static"))
	}

	var throttle gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if d.Limiter != nil {
		throttle = ratelimiter.Middleware(d.Limiter)
	}
	r.GET("/login", d.Auth.LoginForm)
	r.POST("/login", throttle, d.Auth.Login)
	r.GET("/register", d.Auth.RegisterForm)
	r.POST("/register", throttle, d.Auth.Register)
	// Logout is a no-op redirect for anonymous requests.
	r.GET("/logout", d.Auth.Logout)

	// Routes requiring a session; anonymous requests are redirected to /login.
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/", d.Recipes.List)
		auth.GET("/recipes", d.Recipes.List)
		auth.GET("/recipe/:id", d.Recipes.Detail)
		auth.GET("/recipes/add", d.Recipes.AddForm)
		auth.POST("/recipes/add", d.Recipes.Add)

		if opts.EditingEnabled {
			auth.GET("/recipe/:id/edit", d.Recipes.EditForm)
			auth.POST("/recipe/:id/edit", d.Recipes.Edit)
			auth.POST("/recipe/:id/delete", d.Recipes.Delete)
		}
	}

	return r
}
