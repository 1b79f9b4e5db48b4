// Package dataurl handles the base64 data URIs the backend uses for every
// image, both uploaded references and generated results.
package dataurl

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes is the largest decoded image accepted as a reference.
const MaxImageBytes = 10 << 20

const imagePrefix = "data:image/"

var pattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,(.*)$`)

// IsImage reports whether uri has an image MIME prefix.
func IsImage(uri string) bool {
	return strings.HasPrefix(uri, imagePrefix)
}

// Encode builds a data URI. An empty mime is sniffed from data.
func Encode(mime string, data []byte) string {
	if mime == "" {
		mime = Sniff(data)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits uri into its MIME type and raw bytes.
func Decode(uri string) (string, []byte, error) {
	m := pattern.FindStringSubmatch(uri)
	if m == nil {
		return "", nil, fmt.Errorf("not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return m[1], data, nil
}

// DecodedSize estimates the payload size without decoding it.
func DecodedSize(uri string) int {
	i := strings.Index(uri, ",")
	if i < 0 {
		return 0
	}
	return base64.StdEncoding.DecodedLen(len(uri) - i - 1)
}

// Sniff detects the MIME type of data from its content.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImageMIME reports whether a MIME type names an image.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// Info describes a decoded image.
type Info struct {
	MIME   string
	Format string
	Width  int
	Height int
	Bytes  int
}

// Inspect decodes the header of the image in uri.
func Inspect(uri string) (*Info, error) {
	mime, data, err := Decode(uri)
	if err != nil {
		return nil, err
	}
	if !IsImageMIME(mime) {
		return nil, fmt.Errorf("%s is not an image type", mime)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("undecodable %s image: %w", mime, err)
	}
	return &Info{MIME: mime, Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: len(data)}, nil
}

// DecodeImage fully decodes the image in uri.
func DecodeImage(uri string) (image.Image, error) {
	_, data, err := Decode(uri)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
