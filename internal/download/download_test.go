package download

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zhubert/imagine/internal/dataurl"
)

func pngURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return dataurl.Encode("image/png", buf.Bytes())
}

func TestSaveAll(t *testing.T) {
	base := t.TempDir()
	s := New(base)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	img := pngURI(t)
	b, err := s.SaveAll([]string{img, "data:text/plain;base64,aGk=", img})
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(b.Dir), "20260304-050607-") {
		t.Errorf("run dir = %s", b.Dir)
	}
	if len(b.Files) != 2 || len(b.Errors) != 1 {
		t.Fatalf("files=%v errors=%v", b.Files, b.Errors)
	}
	if filepath.Base(b.Files[0]) != "generada_1.png" || filepath.Base(b.Files[1]) != "generada_3.png" {
		t.Errorf("files = %v", b.Files)
	}
	for _, f := range b.Files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if dataurl.Sniff(data) != "image/png" {
			t.Errorf("%s does not hold a PNG", f)
		}
	}
}

func TestSaveAll_Empty(t *testing.T) {
	base := t.TempDir()
	b, err := New(base).SaveAll(nil)
	if err != nil || len(b.Files) != 0 {
		t.Errorf("SaveAll(nil) = %+v, %v", b, err)
	}
	entries, _ := os.ReadDir(base)
	if len(entries) != 0 {
		t.Error("no run directory should be created for an empty result")
	}
}

func TestSaveAll_AllInvalid(t *testing.T) {
	_, err := New(t.TempDir()).SaveAll([]string{"garbage"})
	if err == nil {
		t.Error("expected error when nothing could be saved")
	}
}

func TestSaveOne_NoOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	img := pngURI(t)

	first, err := s.SaveOne(img, 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SaveOne(img, 1)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("second save overwrote %s", first)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", "generada_2.png"},
		{"image/jpeg", "generada_2.jpg"},
		{"image/webp", "generada_2.webp"},
		{"image/x-unknown", "generada_2.png"},
	}
	for _, tt := range tests {
		if got := FileName(2, tt.mime); got != tt.want {
			t.Errorf("FileName(%s) = %s, want %s", tt.mime, got, tt.want)
		}
	}
}
