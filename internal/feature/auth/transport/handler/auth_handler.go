// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recipebook/internal/feature/auth/domain/entity"
	"recipebook/internal/feature/auth/transport/http/dto"
	"recipebook/internal/feature/auth/usecase"
	jwtmw "recipebook/internal/platform/jwt"
)

// Messages shown inline on the login and register forms.
const (
	MsgInvalidData        = "please enter valid data"
	MsgInvalidCredentials = "invalid username or password"
	MsgNameTaken          = "username already taken"
)

// AuthUsecase defines the authentication operations used by the handlers.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	// Register creates a non-administrator user.
	Register(ctx context.Context, name, password string) error
	// Login verifies credentials and opens a session.
	Login(ctx context.Context, name, password string) (*entity.Session, error)
	// Logout discards a session.
	Logout(ctx context.Context, sessionID string) error
	// TTL returns the session lifetime.
	TTL() time.Duration
}

// Renderer renders a named view.
type Renderer interface {
	Render(c *gin.Context, status int, view string, data gin.H)
}

// Metrics receives auth events. It may be nil.
type Metrics interface {
	LoginSucceeded()
	LoginFailed()
	UserRegistered()
}

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	auth         AuthUsecase
	signer       jwtmw.Signer
	views        Renderer
	metrics      Metrics
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase, signer jwtmw.Signer, views Renderer, metrics Metrics, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		signer:       signer,
		views:        views,
		metrics:      metrics,
		secureCookie: secureCookie,
	}
}

// LoginForm renders an empty login form.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.views.Render(c, http.StatusOK, "login", gin.H{"Form": dto.CredentialsForm{}})
}

// Login handles POST /login.
// - Missing fields re-render the form with MsgInvalidData
// - Bad credentials re-render the form with MsgInvalidCredentials
// - Success sets the session cookie and redirects to the recipe list
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.CredentialsForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderForm(c, "login", form, MsgInvalidData)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), form.UserName, form.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// Unknown user and wrong password get the same message.
			slog.Warn("login failed", "user_name", form.UserName, "remote_addr", c.ClientIP())
			h.countLogin(false)
			h.renderForm(c, "login", form, MsgInvalidCredentials)
			return
		}
		slog.Error("login error", "error", err, "user_name", form.UserName)
		h.renderError(c, http.StatusInternalServerError)
		return
	}

	token, err := h.signer.Sign(session.ID)
	if err != nil {
		slog.Error("failed to sign session cookie", "error", err)
		h.renderError(c, http.StatusInternalServerError)
		return
	}

	jwtmw.SetSessionCookie(c, token, h.auth.TTL(), h.secureCookie)
	h.countLogin(true)
	slog.Info("user login successful", "user_id", session.UserID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusFound, "/recipes")
}

// RegisterForm renders an empty registration form.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	h.views.Render(c, http.StatusOK, "register", gin.H{"Form": dto.CredentialsForm{}})
}

// Register handles POST /register.
// - Missing fields and passwords over 72 bytes re-render the form with MsgInvalidData
// - A taken name re-renders the form with MsgNameTaken
// - Success redirects to the login page
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.CredentialsForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderForm(c, "register", form, MsgInvalidData)
		return
	}

	if err := h.auth.Register(c.Request.Context(), form.UserName, form.Password); err != nil {
		if errors.Is(err, usecase.ErrPasswordTooLong) {
			slog.Warn("register rejected: password too long", "user_name", form.UserName, "remote_addr", c.ClientIP())
			h.renderForm(c, "register", form, MsgInvalidData)
			return
		}
		if errors.Is(err, usecase.ErrUserNameTaken) {
			slog.Warn("register rejected: name taken", "user_name", form.UserName, "remote_addr", c.ClientIP())
			h.renderForm(c, "register", form, MsgNameTaken)
			return
		}
		slog.Error("register error", "error", err, "user_name", form.UserName)
		h.renderError(c, http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.UserRegistered()
	}
	slog.Info("user registered", "user_name", form.UserName, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusFound, jwtmw.LoginPath)
}

// Logout discards the current session, clears the cookie and redirects to login.
// It is a no-op for anonymous requests apart from the redirect.
func (h *AuthHandler) Logout(c *gin.Context) {
	if id := jwtmw.CurrentSessionID(c); id != "" {
		if err := h.auth.Logout(c.Request.Context(), id); err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}
	jwtmw.ClearSessionCookie(c, h.secureCookie)
	c.Redirect(http.StatusFound, jwtmw.LoginPath)
}

func (h *AuthHandler) renderForm(c *gin.Context, view string, form dto.CredentialsForm, msg string) {
	h.views.Render(c, http.StatusOK, view, gin.H{"Form": form.Redacted(), "Error": msg})
}

func (h *AuthHandler) renderError(c *gin.Context, status int) {
	h.views.Render(c, status, "error", gin.H{"Status": status, "StatusText": http.StatusText(status)})
}

func (h *AuthHandler) countLogin(ok bool) {
	if h.metrics == nil {
		return
	}
	if ok {
		h.metrics.LoginSucceeded()
	} else {
		h.metrics.LoginFailed()
	}
}
