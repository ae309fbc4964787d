package imagestore

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	MaxDimension = 800
	JPEGQuality  = 75
)

// Optimize decodes data, shrinks it to fit MaxDimension on both sides keeping the
// aspect ratio, and re-encodes it as JPEG. Smaller images are not enlarged.
func Optimize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imaging.Decode: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}
