package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageResult is a processed image as returned to the host.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Path is set when the image was also written to disk.
	Path string `json:"path,omitempty"`
}

// ImagePayload returns the encoded image for hosts that render image content.
func (r *ImageResult) ImagePayload() (data, mimeType string) {
	return r.ImageBase64, r.MimeType
}

// EncodeResult encodes img as a base64 PNG. When outputPath is not empty the
// image is also saved there, in the format implied by the path's extension, so
// that a following operation can load it by path.
//
// Parameters:
//   - img: The processed image. Any bounds origin is accepted; the payload is
//     always PNG regardless of outputPath's extension.
//   - outputPath: Optional file to write. Empty means no file is written.
//
// Returns:
//   - *ImageResult: Size, base64 payload and MIME type, with Path set to
//     outputPath.
//   - error: Non-nil if PNG encoding fails or the file cannot be saved. Nothing
//     is returned on error, even if the encoding itself succeeded.
//
// The caller is responsible for evicting outputPath from any ImageCache so that
// later loads see the new pixels.
func EncodeResult(img image.Image, outputPath string) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	if outputPath != "" {
		if err := imaging.Save(img, outputPath); err != nil {
			return nil, fmt.Errorf("failed to save image to %s: %w", outputPath, err)
		}
	}

	bounds := img.Bounds()
	return &ImageResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Path:        outputPath,
	}, nil
}

// DecodeResult reverses EncodeResult's base64 PNG payload.
//
// Returns an error if ImageBase64 is not valid base64 or does not hold a
// decodable image.
func DecodeResult(r *ImageResult) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
