package utils

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// RenderQR encodes an opaque payload into a PNG QR image. Stateless: the
// same payload always yields the same encodable content.
func RenderQR(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr payload: %w", err)
	}
	return png, nil
}
