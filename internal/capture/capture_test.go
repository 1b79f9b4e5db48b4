package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	pErrors "github.com/zhubert/imagine/internal/errors"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFiles_ContinuesPastBadFiles(t *testing.T) {
	dir := t.TempDir()
	good1 := writePNG(t, dir, "a.png")
	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("just some text"), 0644); err != nil {
		t.Fatal(err)
	}
	good2 := writePNG(t, dir, "b.png")
	missing := filepath.Join(dir, "missing.png")

	var seen *Capture
	err := WithCapture(context.Background(), Files{Paths: []string{good1, text, missing, good2}}, func(c *Capture) error {
		seen = c
		return nil
	})
	if err != nil {
		t.Fatalf("WithCapture: %v", err)
	}

	if got := len(seen.Images()); got != 2 {
		t.Errorf("accepted %d images, want 2", got)
	}
	errs := seen.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	if pErrors.UserMessage(errs[0]) != "'notes.txt' is not an image." {
		t.Errorf("first error = %q", pErrors.UserMessage(errs[0]))
	}
	if !pErrors.Is(errs[1], pErrors.KindIO) {
		t.Errorf("missing file error kind = %v", pErrors.GetKind(errs[1]))
	}
	if !seen.Closed() {
		t.Error("capture must be released after WithCapture")
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1)))

	uri, err := Encode("x.png", buf.Bytes())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if uri[:22] != "data:image/png;base64," {
		t.Errorf("uri prefix = %q", uri[:22])
	}

	if _, err := Encode("big.png", make([]byte, 10<<20+1)); !pErrors.Is(err, pErrors.KindInvalid) {
		t.Errorf("oversized err = %v", err)
	}
	// A PNG signature with a broken body sniffs as an image but does not decode.
	broken := append([]byte{}, buf.Bytes()[:16]...)
	if _, err := Encode("broken.png", broken); err == nil {
		t.Error("undecodable image should be rejected")
	}
}

type failingSource struct {
	partial *Capture
}

func (f failingSource) Acquire(context.Context) (*Capture, error) {
	return f.partial, errors.New("device went away")
}

type closeTracker struct{ closed bool }

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestWithCapture_ReleasesOnAcquireError(t *testing.T) {
	tracker := &closeTracker{}
	partial := &Capture{}
	partial.hold(tracker)

	called := false
	err := WithCapture(context.Background(), failingSource{partial: partial}, func(*Capture) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected acquire error")
	}
	if called {
		t.Error("fn must not run when acquisition fails")
	}
	if !tracker.closed {
		t.Error("partially acquired resources must be released")
	}
}

func TestWithCapture_ReleasesOnCallbackError(t *testing.T) {
	tracker := &closeTracker{}
	src := sourceFunc(func(context.Context) (*Capture, error) {
		c := &Capture{}
		c.hold(tracker)
		return c, nil
	})

	err := WithCapture(context.Background(), src, func(*Capture) error {
		return errors.New("upload failed")
	})
	if err == nil || err.Error() != "upload failed" {
		t.Errorf("err = %v", err)
	}
	if !tracker.closed {
		t.Error("resources must be released when fn fails")
	}
}

func TestCapture_CloseIdempotent(t *testing.T) {
	tracker := &closeTracker{}
	c := &Capture{}
	c.hold(tracker)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	tracker.closed = false
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if tracker.closed {
		t.Error("second Close must not release again")
	}
}

func TestFiles_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := Files{Paths: []string{"a", "b"}}.Acquire(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(c.Items) != 0 {
		t.Errorf("no files should be read after cancel, got %d", len(c.Items))
	}
}

type sourceFunc func(context.Context) (*Capture, error)

func (f sourceFunc) Acquire(ctx context.Context) (*Capture, error) { return f(ctx) }

func TestFiles_ReleasesEachFileAfterReading(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		paths = append(paths, writePNG(t, dir, name))
	}

	c, err := Files{Paths: paths}.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer c.Close()

	if len(c.Images()) != 3 {
		t.Fatalf("accepted %d images, want 3", len(c.Images()))
	}
	c.mu.Lock()
	open := len(c.closers)
	c.mu.Unlock()
	if open != 0 {
		t.Errorf("%d file handles still held after reading", open)
	}
}

func TestCapture_ReleaseEarly(t *testing.T) {
	first, second := &closeTracker{}, &closeTracker{}
	c := &Capture{}
	c.hold(first)
	c.hold(second)

	if err := c.release(first); err != nil {
		t.Fatal(err)
	}
	if !first.closed || second.closed {
		t.Fatalf("release closed first=%v second=%v", first.closed, second.closed)
	}

	first.closed = false
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if first.closed {
		t.Error("Close must not close a released handle again")
	}
	if !second.closed {
		t.Error("Close must release the remaining handle")
	}
}
