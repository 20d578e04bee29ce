package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

func init() {
	Register(".png", "PNG image", decodeImage)
	Register(".gif", "GIF image (first frame)", decodeImage)
	Register(".jpg", "JPEG image (lossy, exact colors not guaranteed)", decodeImage)
	Register(".jpeg", "JPEG image (lossy, exact colors not guaranteed)", decodeImage)
	Register(".bmp", "BMP image", decodeImage)
	Register(".tif", "TIFF image", decodeImage)
	Register(".tiff", "TIFF image", decodeImage)
	Register(".webp", "WebP image", decodeImage)
}

// decodeImage decodes any format registered with the image package.
func decodeImage(_ string, data []byte, _ Options) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
