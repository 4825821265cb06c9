package imagecheck

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"mime"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
)

// Validate enforces the image input contract for contract pages: supported
// raster extension, size ceiling, pixel-dimension ceiling, and decodable pixel
// data. Pure and deterministic; no retries, no side effects.
func Validate(data []byte, filename string) error {
	if len(data) == 0 {
		return common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("empty image data for %s", filename), common.ErrInputValidation)
	}

	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedImageExtensions[ext]; !ok {
		return common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("unsupported format %q for %s", ext, filename), common.ErrInputValidation)
	}

	if len(data) > constants.MaxImageBytes {
		return common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("file too large: %.1fMB, max %dMB",
				float64(len(data))/1024/1024, constants.MaxImageBytes/1024/1024),
			common.ErrInputValidation)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("invalid or corrupted image %s", filename), common.ErrInputValidation)
	}
	if cfg.Width > constants.MaxImageWidth || cfg.Height > constants.MaxImageHeight {
		return common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("image too large: %dx%d, max %dx%d",
				cfg.Width, cfg.Height, constants.MaxImageWidth, constants.MaxImageHeight),
			common.ErrInputValidation)
	}

	// Full decode catches truncated or corrupt pixel data that DecodeConfig
	// (header-only) accepts.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("invalid or corrupted image %s", filename), common.ErrInputValidation)
	}
	return nil
}

// ReadAndValidate loads an image from disk and validates it. A missing file is
// an input-validation failure, not an I/O surprise for callers.
func ReadAndValidate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("IMAGE_INVALID",
			fmt.Sprintf("file does not exist or is unreadable: %s", path), common.ErrInputValidation)
	}
	if err := Validate(data, path); err != nil {
		return nil, err
	}
	return data, nil
}

// DataURL encodes validated image bytes as a base64 data URI for vision calls.
func DataURL(data []byte, filename string) string {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	mt := mime.TypeByExtension("." + ext)
	if mt == "" {
		switch ext {
		case "jpg", "jpeg":
			mt = "image/jpeg"
		case "png":
			mt = "image/png"
		case "webp":
			mt = "image/webp"
		case "gif":
			mt = "image/gif"
		default:
			mt = "application/octet-stream"
		}
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}
