package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/apperr"
	"birdfinder-server-go/src/core/utils"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WEBP decoder
)

// InvalidImageMessage returned when the payload does not decode as an image
const InvalidImageMessage = "Uploaded file is not a valid image."

// ImageInspector checks the real content of an admitted upload.
// The extra decoders let it name formats that are disguised behind an allowed MIME type.
type ImageInspector struct {
	config  *configs.UploadConfig
	logger  *utils.TaggedLogger
	formats map[string]bool
}

// NewImageInspector derives the accepted decoder formats from upload.allowed_types.
func NewImageInspector(config *configs.UploadConfig, logger *utils.Logger) *ImageInspector {
	formats := make(map[string]bool)
	for _, t := range config.AllowedTypes {
		if f := formatOf(t); f != "" {
			formats[f] = true
		}
	}
	return &ImageInspector{
		config:  config,
		logger:  logger.WithTag("image"),
		formats: formats,
	}
}

// formatOf maps a MIME type to the name image.DecodeConfig reports
func formatOf(contentType string) string {
	sub, ok := strings.CutPrefix(strings.ToLower(contentType), "image/")
	if !ok {
		return ""
	}
	if sub == "jpg" {
		return "jpeg"
	}
	return sub
}

// Inspect decodes the image header and enforces format and dimension limits.
func (v *ImageInspector) Inspect(img *UploadedImage, rejectMessage string) ValidationResult {
	result := ValidationResult{FileSize: int64(len(img.Data))}

	cfg, actualFormat, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		v.logger.Warn("image decode failed", map[string]interface{}{
			"declared": img.ContentType,
			"header":   fmt.Sprintf("%x", img.Data[:min(len(img.Data), 16)]),
			"error":    err.Error(),
		})
		result.Error = apperr.Validation(apperr.CodeInvalidImage, InvalidImageMessage)
		return result
	}
	result.Format = actualFormat

	if !v.formats[actualFormat] {
		v.logger.Warn("declared type does not match content", map[string]interface{}{
			"declared": img.ContentType,
			"actual":   actualFormat,
		})
		result.Error = apperr.Validation(apperr.CodeUnsupportedType, rejectMessage)
		return result
	}

	if declared := formatOf(img.ContentType); declared != actualFormat {
		v.logger.Debug("declared type differs from content", map[string]interface{}{
			"declared": img.ContentType,
			"actual":   actualFormat,
		})
	}

	if (v.config.MaxWidth > 0 && cfg.Width > v.config.MaxWidth) ||
		(v.config.MaxHeight > 0 && cfg.Height > v.config.MaxHeight) {
		result.Error = apperr.Validation(apperr.CodeInvalidImage,
			fmt.Sprintf("Image dimensions %dx%d exceed %dx%d.", cfg.Width, cfg.Height, v.config.MaxWidth, v.config.MaxHeight))
		return result
	}

	totalPixels := int64(cfg.Width) * int64(cfg.Height)
	if v.config.MaxPixels > 0 && totalPixels > v.config.MaxPixels {
		result.Error = apperr.Validation(apperr.CodeInvalidImage,
			fmt.Sprintf("Image has %d pixels, limit is %d.", totalPixels, v.config.MaxPixels))
		return result
	}

	result.IsValid = true
	result.Width = cfg.Width
	result.Height = cfg.Height
	return result
}
