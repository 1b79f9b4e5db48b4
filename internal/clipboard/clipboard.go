// Package clipboard reads images from and writes text to the system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/zhubert/imagine/internal/dataurl"
	"github.com/zhubert/imagine/internal/logger"
)

// ImageData is a clipboard image, re-encoded as PNG.
type ImageData struct {
	Data      []byte
	MediaType string
	Width     int
	Height    int
}

var (
	initOnce sync.Once
	initErr  error
)

// Init initializes the clipboard. Safe to call multiple times.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			logger.WithComponent("clipboard").Warn("init failed", "error", err)
			initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	})
	return initErr
}

// Replaced in tests; the real clipboard needs a display.
var (
	readImageBytes = func() ([]byte, error) {
		if err := Init(); err != nil {
			return nil, err
		}
		return clipboard.Read(clipboard.FmtImage), nil
	}
	writeTextBytes = func(b []byte) error {
		if err := Init(); err != nil {
			return err
		}
		clipboard.Write(clipboard.FmtText, b)
		return nil
	}
)

// ReadImage returns the clipboard image, or nil when the clipboard holds
// no image.
func ReadImage() (*ImageData, error) {
	log := logger.WithComponent("clipboard")

	raw, err := readImageBytes()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		log.Debug("no image on clipboard")
		return nil, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode clipboard image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}

	b := img.Bounds()
	log.Debug("image read", "format", format, "width", b.Dx(), "height", b.Dy(), "bytes", buf.Len())
	return &ImageData{
		Data:      buf.Bytes(),
		MediaType: "image/png",
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

// WriteText puts text on the clipboard.
func WriteText(text string) error {
	return writeTextBytes([]byte(text))
}

// Validate checks the image against the reference size ceiling.
func (img *ImageData) Validate() error {
	if len(img.Data) > dataurl.MaxImageBytes {
		return fmt.Errorf("image too large: %d KB (max %d MB)", img.SizeKB(), dataurl.MaxImageBytes>>20)
	}
	return nil
}

// SizeKB returns the image size in kilobytes
func (img *ImageData) SizeKB() int {
	return len(img.Data) / 1024
}

// DataURI encodes the image for upload.
func (img *ImageData) DataURI() string {
	return dataurl.Encode(img.MediaType, img.Data)
}
