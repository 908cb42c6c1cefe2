// Package render renders the HTML views from embedded templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	jwtmw "recipebook/internal/platform/jwt"
)

//go:embed templates/*.html
var templateFS embed.FS

// layoutFile wraps every page.
const layoutFile = "templates/layout.html"

// HTMLRenderer renders named views. Each view is the layout plus one page template.
type HTMLRenderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. imageBase is prepended to stored image paths.
func New(imageBase string) (*HTMLRenderer, error) {
	funcs := template.FuncMap{
		"imageURL": func(p string) string {
			if p == "" {
				return ""
			}
			return imageBase + strings.TrimPrefix(p, "/")
		},
	}

	layout, err := template.New("base").Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return &HTMLRenderer{pages: pages}, nil
}

// Render executes view with data and writes it with status.
// The current session is added to data under "Session".
func (r *HTMLRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	t, ok := r.pages[view]
	if !ok {
		slog.Error("unknown view", "view", view)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	if data == nil {
		data = gin.H{}
	}
	data["Session"] = jwtmw.CurrentSession(c)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render view", "view", view, "error", err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Views lists the available view names.
func (r *HTMLRenderer) Views() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}
