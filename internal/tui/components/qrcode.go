package components

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

// AddressQR renders content as a QR code using half-block characters, two
// modules per terminal cell vertically
func AddressQR(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(q.ToSmallString(false), "\n"), nil
}
