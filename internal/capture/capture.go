// Package capture turns external image sources (files on disk, a native file
// picker, the system clipboard) into data URIs ready for upload.
//
// Sources are acquired and released explicitly. A Capture holds whatever the
// source still has open until Close; WithCapture guarantees Close on every path,
// including a failure halfway through acquisition.
package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/ncruces/zenity"

	"github.com/zhubert/imagine/internal/clipboard"
	"github.com/zhubert/imagine/internal/dataurl"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
)

// Item is one captured image, or the reason it was rejected.
type Item struct {
	Name    string
	DataURI string
	Err     error
}

// Capture is the result of acquiring a source.
type Capture struct {
	Items []Item

	mu      sync.Mutex
	closers []io.Closer
	closed  bool
}

// Images returns the data URIs of the accepted items, in order.
func (c *Capture) Images() []string {
	var out []string
	for _, it := range c.Items {
		if it.Err == nil {
			out = append(out, it.DataURI)
		}
	}
	return out
}

// Errors returns the rejection reasons, in order.
func (c *Capture) Errors() []error {
	var out []error
	for _, it := range c.Items {
		if it.Err != nil {
			out = append(out, it.Err)
		}
	}
	return out
}

// Close releases everything the source held. It is idempotent.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Closed reports whether Close has run.
func (c *Capture) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Capture) hold(cl io.Closer) {
	c.mu.Lock()
	c.closers = append(c.closers, cl)
	c.mu.Unlock()
}

// release closes cl early and drops it from the set Close will release.
func (c *Capture) release(cl io.Closer) error {
	c.mu.Lock()
	c.closers = slices.DeleteFunc(c.closers, func(x io.Closer) bool { return x == cl })
	c.mu.Unlock()
	return cl.Close()
}

// Source produces images. Acquire may return a partially filled Capture
// together with an error; the caller must still Close it.
type Source interface {
	Acquire(ctx context.Context) (*Capture, error)
}

// WithCapture acquires src, runs fn on the result and always releases it.
func WithCapture(ctx context.Context, src Source, fn func(*Capture) error) error {
	c, err := src.Acquire(ctx)
	if c != nil {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				logger.WithComponent("capture").Warn("release failed", "error", cerr)
			}
		}()
	}
	if err != nil {
		return err
	}
	return fn(c)
}

// Files reads images from paths. A bad file is reported on its Item and
// does not stop the others.
type Files struct {
	Paths []string
}

// Acquire opens every path and validates its contents.
func (f Files) Acquire(ctx context.Context) (*Capture, error) {
	c := &Capture{}
	for _, p := range f.Paths {
		if err := ctx.Err(); err != nil {
			return c, err
		}
		c.Items = append(c.Items, readFile(c, p))
	}
	return c, nil
}

func readFile(c *Capture, path string) Item {
	name := filepath.Base(path)
	fh, err := os.Open(path)
	if err != nil {
		return Item{Name: name, Err: pErrors.E(pErrors.Op("capture.Read"), pErrors.KindIO,
			"Could not open '"+name+"'.", err)}
	}
	// Held only while reading, so a large selection never keeps every
	// descriptor open at once.
	c.hold(fh)
	data, err := io.ReadAll(io.LimitReader(fh, dataurl.MaxImageBytes+1))
	if cerr := c.release(fh); cerr != nil {
		logger.WithComponent("capture").Debug("closing file failed", "path", path, "error", cerr)
	}
	if err != nil {
		return Item{Name: name, Err: pErrors.E(pErrors.Op("capture.Read"), pErrors.KindIO,
			"Could not read '"+name+"'.", err)}
	}
	uri, err := Encode(name, data)
	return Item{Name: name, DataURI: uri, Err: err}
}

// Encode validates raw image bytes and returns them as a data URI.
func Encode(name string, data []byte) (string, error) {
	if len(data) > dataurl.MaxImageBytes {
		return "", pErrors.ImageTooLarge(name, dataurl.MaxImageBytes>>20)
	}
	mime := dataurl.Sniff(data)
	if !dataurl.IsImageMIME(mime) {
		return "", pErrors.NotAnImage(name)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", pErrors.NotAnImage(name)
	}
	return dataurl.Encode(mime, data), nil
}

// ImagePatterns are the file dialog filters.
var ImagePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.bmp"}

// Picker asks the user for files with the native dialog. Cancelling yields
// an empty Capture, not an error.
type Picker struct {
	Title string
	// Multiple allows selecting several files at once.
	Multiple bool
}

// Acquire shows the dialog and reads the chosen files.
func (p Picker) Acquire(ctx context.Context) (*Capture, error) {
	title := p.Title
	if title == "" {
		title = "Select reference images"
	}
	opts := []zenity.Option{
		zenity.Title(title),
		zenity.Context(ctx),
		zenity.FileFilters{{Name: "Images", Patterns: ImagePatterns, CaseFold: true}},
	}

	var paths []string
	var err error
	if p.Multiple {
		paths, err = zenity.SelectFileMultiple(opts...)
	} else {
		var one string
		one, err = zenity.SelectFile(opts...)
		if one != "" {
			paths = []string{one}
		}
	}
	if errors.Is(err, zenity.ErrCanceled) {
		return &Capture{}, nil
	}
	if err != nil {
		logger.WithComponent("capture").Error("file picker failed", "error", err)
		return nil, pErrors.E(pErrors.Op("capture.Picker"), pErrors.KindIO, "The file picker could not be opened.", err)
	}
	return Files{Paths: paths}.Acquire(ctx)
}

// Clipboard captures the image currently on the system clipboard.
type Clipboard struct{}

// Acquire reads the clipboard. An empty clipboard is a KindNotFound error.
func (Clipboard) Acquire(ctx context.Context) (*Capture, error) {
	img, err := clipboard.ReadImage()
	if err != nil {
		return nil, pErrors.E(pErrors.Op("capture.Clipboard"), pErrors.KindIO, "Could not read the clipboard.", err)
	}
	if img == nil {
		return nil, pErrors.E(pErrors.Op("capture.Clipboard"), pErrors.KindNotFound, "The clipboard has no image.")
	}
	if err := img.Validate(); err != nil {
		return &Capture{Items: []Item{{Name: "clipboard", Err: pErrors.ImageTooLarge("clipboard", dataurl.MaxImageBytes>>20)}}}, nil
	}
	return &Capture{Items: []Item{{Name: "clipboard", DataURI: img.DataURI()}}}, nil
}
