package constants

import "strings"

// AllowedImageExtensions holds the raster formats accepted for contract page images.
var AllowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"gif":  {},
}

// MaxImageBytes is the per-file size ceiling for contract images.
const MaxImageBytes = 10 * 1024 * 1024

// MaxImageWidth and MaxImageHeight cap pixel dimensions for contract images.
const (
	MaxImageWidth  = 4096
	MaxImageHeight = 4096
)

// DocumentRoles for comparison inputs.
const (
	RoleOriginal  = "original"
	RoleAmendment = "amendment"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
