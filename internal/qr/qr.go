// Package qr draws the ticket token as a QR code and reads tokens back from
// photographed or uploaded QR images.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for uploaded photos
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

// Display sizes of the code in pixels.  The page toggles between them.
const (
	SmallSize = 200
	LargeSize = 250
)

var (
	// ErrEmptyPayload is returned when asked to draw an empty token.
	ErrEmptyPayload = errors.New("qr: empty payload")
	// ErrNoCode is returned when an image holds no readable QR code.
	ErrNoCode = errors.New("qr: no code found in image")
)

// SizeFor maps a requested width to one of the two supported sizes.
func SizeFor(width int) int {
	if width >= LargeSize {
		return LargeSize
	}
	return SmallSize
}

// Toggle switches between the small and the large size.
func Toggle(width int) int {
	if width == SmallSize {
		return LargeSize
	}
	return SmallSize
}

// PNG encodes text as a black-on-white QR code with the highest error
// correction level.
func PNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyPayload
	}
	code, err := qrcode.New(text, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return code.PNG(SizeFor(size))
}

// Decode reads the first QR code found in a PNG or JPEG image.
func Decode(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("qr: decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("qr: binarize: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCode, err)
	}
	if res.GetText() == "" {
		return "", ErrNoCode
	}
	return res.GetText(), nil
}

// DecodeBytes is Decode over an in-memory image.
func DecodeBytes(b []byte) (string, error) {
	return Decode(bytes.NewReader(b))
}
