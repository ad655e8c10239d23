package static

import (
	"mime"
	"path"
	"strings"
)

// DefaultMimeType is used when the extension is unknown.
const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".html":  "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".eot":   "application/vnd.ms-fontobject",
	".otf":   "application/x-font-opentype",
	".svg":   "image/svg+xml",
	".ttf":   "application/x-font-ttf",
	".woff":  "application/font-woff",
	".woff2": "application/font-woff2",
}

// MimeType returns the content type for name based on its extension. The
// web asset table wins over the system MIME table.
func MimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return DefaultMimeType
	}
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return DefaultMimeType
}

// cleanName turns a logical name into a slash separated path relative to the
// source root. It returns "" for the root itself.
func cleanName(name string) string {
	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	return cleaned
}
