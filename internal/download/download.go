// Package download writes generated images to disk.
package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/zhubert/imagine/internal/dataurl"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
)

// FilePrefix names saved images: generada_1.png, generada_2.png, ...
const FilePrefix = "generada_"

// Saver writes images below a base directory.
type Saver struct {
	Dir string
	now func() time.Time
}

// New creates a Saver rooted at dir.
func New(dir string) *Saver {
	return &Saver{Dir: dir, now: time.Now}
}

// Batch is the result of saving one set of results.
type Batch struct {
	// Dir is the per-run directory the files were written to.
	Dir   string
	Files []string
	// Errors holds one entry per image that could not be written.
	Errors []error
}

// SaveAll writes every image into a fresh run directory. Images that are not
// valid data URIs are skipped and reported in Batch.Errors; the others are
// still written.
func (s *Saver) SaveAll(images []string) (*Batch, error) {
	if len(images) == 0 {
		return &Batch{}, nil
	}
	dir := filepath.Join(s.Dir, s.runName())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, pErrors.E(pErrors.Op("download.SaveAll"), pErrors.KindIO,
			fmt.Sprintf("Could not create %s.", dir), err)
	}

	log := logger.WithComponent("download")
	b := &Batch{Dir: dir}
	for i, img := range images {
		path, err := writeImage(dir, i+1, img)
		if err != nil {
			log.Warn("image not saved", "index", i+1, "error", err)
			b.Errors = append(b.Errors, err)
			continue
		}
		b.Files = append(b.Files, path)
	}
	log.Info("images saved", "dir", dir, "count", len(b.Files), "failed", len(b.Errors))
	if len(b.Files) == 0 {
		return b, errors.Join(b.Errors...)
	}
	return b, nil
}

// SaveOne writes a single image, numbered index (1-based), directly into the
// base directory.
func (s *Saver) SaveOne(image string, index int) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", pErrors.E(pErrors.Op("download.SaveOne"), pErrors.KindIO,
			fmt.Sprintf("Could not create %s.", s.Dir), err)
	}
	return writeImage(s.Dir, index, image)
}

func (s *Saver) runName() string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return now().Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

func writeImage(dir string, index int, image string) (string, error) {
	op := pErrors.Op("download.Write")
	mime, data, err := dataurl.Decode(image)
	if err != nil || !dataurl.IsImageMIME(mime) {
		return "", pErrors.E(op, pErrors.KindInvalid, fmt.Sprintf("Image %d is not a valid image.", index), err)
	}
	name := FileName(index, mime)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		name = fmt.Sprintf("%s%d-%s%s", FilePrefix, index, uuid.NewString()[:8], extension(mime))
		path = filepath.Join(dir, name)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", pErrors.E(op, pErrors.KindIO, fmt.Sprintf("Could not write %s.", name), err)
	}
	return path, nil
}

// FileName is the file name for the index-th (1-based) image of a result set.
func FileName(index int, mime string) string {
	return fmt.Sprintf("%s%d%s", FilePrefix, index, extension(mime))
}

func extension(mime string) string {
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".png"
}
