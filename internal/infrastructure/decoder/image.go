package decoder

import (
	"fmt"
	"image"
	"io"

	// registered formats for uploads and frames
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/doeshing/qrshield/internal/domain"
)

// LoadImage decodes r with any registered format and returns the format name.
func LoadImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}
	return img, format, nil
}
