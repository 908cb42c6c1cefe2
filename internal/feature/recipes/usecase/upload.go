package usecase

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/unidecode"

	"recipebook/internal/feature/recipes/domain/entity"
)

// allowedExtensions is the image extension allow-list (lower case).
var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// splitExtension returns the text after the last '.'; ok is false when there is no '.'.
func splitExtension(filename string) (ext string, ok bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", false
	}
	return filename[i+1:], true
}

// AllowedFile reports whether filename has an allowed image extension.
// Matching is case-insensitive on the text after the last '.'.
func AllowedFile(filename string) bool {
	ext, ok := splitExtension(filename)
	if !ok {
		return false
	}
	_, allowed := allowedExtensions[strings.ToLower(ext)]
	return allowed
}

// Slug transliterates title to Latin script and replaces spaces with underscores.
// Path separators are replaced too so the result stays a single file name.
func Slug(title string) string {
	s := unidecode.Unidecode(strings.TrimSpace(title))
	s = strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(s)
	s = strings.Trim(s, ".")
	if s == "" {
		s = "recipe"
	}
	return s
}

// UploadPath builds the server-relative storage path for a recipe image:
// <prefix>/<slug(title)>.<original extension>.
// The slug is shortened so the path fits entity.MaxImagePathLen; at least
// one character of it is kept.
func UploadPath(prefix, title, filename string) string {
	ext, _ := splitExtension(filename)
	slug := Slug(title)

	p := path.Join(prefix, slug+"."+ext)
	if over := len(p) - entity.MaxImagePathLen; over > 0 {
		slug = truncateBytes(slug, max(len(slug)-over, 1))
		p = path.Join(prefix, slug+"."+ext)
	}
	return p
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
