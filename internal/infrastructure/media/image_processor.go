// Package media provides image decoding and WebP variant generation
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	domain "github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/errs"
)

// VariantWidths are the WebP widths generated for every uploaded image.
var VariantWidths = []int{1200, 600, 300}

var dataURLPattern = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

// IsDataURL reports whether s is an inline base64 image.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

// DecodeDataURL turns "data:image/png;base64,..." into an upload named
// baseName plus the detected extension.
func DecodeDataURL(data, baseName string) (domain.Upload, error) {
	if data == "" {
		return domain.Upload{}, errs.Invalid("image", "empty base64 data")
	}
	m := dataURLPattern.FindStringSubmatch(data)
	if m == nil {
		return domain.Upload{}, errs.Invalid("image", "invalid image data URL")
	}
	decoded, err := base64.StdEncoding.DecodeString(data[len(m[0]):])
	if err != nil {
		return domain.Upload{}, errs.Invalid("image", fmt.Sprintf("failed to decode base64: %v", err))
	}
	return domain.Upload{
		FileName:    fmt.Sprintf("%s.%s", baseName, extensionFor(m[1])),
		ContentType: m[1],
		Data:        decoded,
	}, nil
}

// extensionFor maps a MIME type to a file extension, defaulting to png.
func extensionFor(mime string) string {
	switch mime {
	case "image/svg+xml":
		return "svg"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/x-icon", "image/vnd.microsoft.icon":
		return "ico"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	return "png"
}

// SniffContentType fills in a missing or generic content type.
func SniffContentType(u *domain.Upload) {
	if u.ContentType == "" || u.ContentType == "application/octet-stream" {
		u.ContentType = http.DetectContentType(u.Data)
	}
}

// Variant is one resized WebP rendition.
type Variant struct {
	Width    int
	FileName string
	Data     []byte
}

// IsRaster reports whether the upload can be resized.
func IsRaster(u domain.Upload) bool {
	switch u.ContentType {
	case "image/png", "image/jpeg", "image/jpg", "image/gif":
		return true
	}
	return false
}

// GenerateWebPVariants decodes data and encodes one WebP per VariantWidths
// entry. Images narrower than a width are not upscaled.
func GenerateWebPVariants(data []byte, fileName string) ([]Variant, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	srcWidth := img.Bounds().Dx()

	variants := make([]Variant, 0, len(VariantWidths))
	for _, width := range VariantWidths {
		resized := img
		if width < srcWidth {
			resized = imaging.Resize(img, width, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := webp.Encode(&buf, resized, &webp.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("failed to encode %dpx WebP: %w", width, err)
		}
		variants = append(variants, Variant{
			Width:    width,
			FileName: fmt.Sprintf("%s_%dpx.webp", base, width),
			Data:     buf.Bytes(),
		})
	}
	return variants, nil
}
