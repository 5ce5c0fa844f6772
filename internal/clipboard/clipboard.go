// Package clipboard moves images between the editor and the system
// clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"

	"github.com/example/emotecrop/internal/imageio"
)

var (
	// ErrNoImage is returned when the clipboard holds no image data.
	ErrNoImage = errors.New("clipboard does not contain image data")
	// ErrNoText is returned when the clipboard holds no text.
	ErrNoText = errors.New("clipboard does not contain text data")

	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	return imageio.DecodeBytes(data)
}

func trimText(data []byte) (string, error) {
	// Some owners terminate STRING replies with a NUL.
	data = bytes.TrimRight(data, "\x00")
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// ReadImageOrURL returns the clipboard image or, failing that, an http(s)
// URL copied as text.
func ReadImageOrURL() (image.Image, string, error) {
	img, imgErr := ReadImage()
	if imgErr == nil {
		return img, "", nil
	}
	text, err := ReadText()
	if err == nil && imageio.IsURL(text) {
		return nil, text, nil
	}
	return nil, "", imgErr
}
