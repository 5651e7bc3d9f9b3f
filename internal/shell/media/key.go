package media

import (
	"path"
	"strings"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/google/uuid"
)

// StorageKey builds a unique object key of the form
// "yyyy/mm/<uuid8>-<slug>.<ext>". The extension comes from the detected
// content type, not from the client's filename.
func StorageKey(filename, contentType string, now time.Time) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, `\`, "/")), path.Ext(filename))
	slug := domain.Slugify(base)
	if slug == "" {
		slug = "file"
	}
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	ext := ExtensionFor(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	now = now.UTC()
	return now.Format("2006/01") + "/" + uuid.New().String()[:8] + "-" + slug + ext
}

// ValidKey reports whether key is a clean relative path.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "../") && key != ".."
}
