package styled

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

// maxLogoSize bounds both logo dimensions; the styled template renders the
// logo in a small header box.
const maxLogoSize = 300

// LoadLogo reads the image at path, fits it within maxLogoSize×maxLogoSize
// and returns it PNG-encoded as base64.
func LoadLogo(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("styled: read logo: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("styled: decode logo %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() > maxLogoSize || b.Dy() > maxLogoSize {
		img = imaging.Fit(img, maxLogoSize, maxLogoSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("styled: encode logo: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
