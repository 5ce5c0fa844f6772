// Package imageio loads source images from files, readers, URLs and
// clipboard bytes.
package imageio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for data no registered decoder understands.
var ErrUnsupported = errors.New("imageio: unsupported image format")

// DefaultName is the base name used when none can be derived.
const DefaultName = "untitled"

// MaxDownload caps the size of images fetched by LoadURL.
const MaxDownload = 64 << 20

// Decode reads an image and applies its EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DecodeBytes decodes an in-memory image such as clipboard contents.
func DecodeBytes(b []byte) (image.Image, error) {
	if len(b) == 0 {
		return nil, ErrUnsupported
	}
	return Decode(bytes.NewReader(b))
}

// LoadFile decodes the image at p and returns it with its base name.
func LoadFile(p string) (image.Image, string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, err := Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", p, err)
	}
	return img, BaseName(filepath.Base(p)), nil
}

// LoadURL fetches and decodes an image over HTTP. A nil client uses
// http.DefaultClient.
func LoadURL(ctx context.Context, client *http.Client, rawURL string) (image.Image, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}
	img, err := Decode(io.LimitReader(resp.Body, MaxDownload))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", rawURL, err)
	}
	return img, BaseName(path.Base(u.Path)), nil
}

// IsURL reports whether s looks like an http(s) URL rather than a path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads src as a URL through client or as a local path.
func Load(ctx context.Context, client *http.Client, src string) (image.Image, string, error) {
	if IsURL(src) {
		return LoadURL(ctx, client, src)
	}
	return LoadFile(src)
}

// BaseName is the part of a file name before its first dot.
func BaseName(name string) string {
	name = strings.TrimSpace(name)
	base, _, _ := strings.Cut(name, ".")
	if base == "" || base == "/" {
		return DefaultName
	}
	return base
}
