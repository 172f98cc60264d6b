package schedule

import (
	"path/filepath"
	"strings"
)

const DefaultContentType = "application/octet-stream"

// contentTypes is the one table used for both the current and the next slot.
var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
}

// ContentTypeFor maps a filename's extension (case-insensitive) to a MIME type.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return DefaultContentType
}
