package qr

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/zeebo/errs/v2"
)

// DecodeLogo decodes a base64 PNG, JPEG or GIF of at most limit bytes. A
// limit of zero rejects every logo and a negative limit accepts any size. A
// data URI prefix such as "data:image/png;base64," is accepted and ignored.
func DecodeLogo(enc string, limit int) (image.Image, error) {
	if i := strings.Index(enc, ";base64,"); i >= 0 && strings.HasPrefix(enc, "data:") {
		enc = enc[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, errs.Errorf("logo: %w", err)
	}
	if limit >= 0 && len(data) > limit {
		return nil, errs.Errorf("logo: %d bytes exceeds limit of %d", len(data), limit)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Errorf("logo: %w", err)
	}
	return img, nil
}
