package content

import (
	"net/url"
	"strings"
)

// ImageURL joins a relative image path with base. Absolute URLs and empty
// paths are returned unchanged.
func ImageURL(base, path string) string {
	if path == "" {
		return ""
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
