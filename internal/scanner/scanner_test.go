package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/ignorelist"
)

func stripes(w, h, period int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/period)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.NRGBA{R: 20, G: 40, B: 60, A: 255})
			}
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Creating directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encoding %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Writing %s: %v", path, err)
	}
}

func newScanner(t *testing.T, workers int, ignore *ignorelist.IgnoreList) *Scanner {
	t.Helper()
	e, err := fingerprint.New(fingerprint.Options{Strategy: fingerprint.Average, GridWidth: 8, GridHeight: 8})
	if err != nil {
		t.Fatalf("Creating extractor: %v", err)
	}
	return New(e, workers, ignore)
}

func fixture(t *testing.T) string {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), stripes(64, 64, 8))
	writePNG(t, filepath.Join(root, "b", "copy.png"), stripes(32, 32, 4))
	writePNG(t, filepath.Join(root, "c.png"), stripes(64, 64, 32))
	writeFile(t, filepath.Join(root, "broken.png"), "definitely not a png")
	writeFile(t, filepath.Join(root, "notes.txt"), "hello")
	writeFile(t, filepath.Join(root, "phone.HEIC"), "heic data")
	writePNG(t, filepath.Join(root, ".cache", "hidden.png"), stripes(8, 8, 2))
	writePNG(t, filepath.Join(root, "thumbs", "t.png"), stripes(8, 8, 2))
	return root
}

func TestWalk(t *testing.T) {
	root := fixture(t)
	s := newScanner(t, 2, ignorelist.FromPatterns("thumbs"))

	l, err := s.Walk(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wantCandidates := []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "b", "copy.png"),
		filepath.Join(root, "broken.png"),
		filepath.Join(root, "c.png"),
	}
	if !reflect.DeepEqual(l.Candidates, wantCandidates) {
		t.Errorf("Candidates = %v, want %v", l.Candidates, wantCandidates)
	}
	wantUnsupported := []string{
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "phone.HEIC"),
	}
	if !reflect.DeepEqual(l.Unsupported, wantUnsupported) {
		t.Errorf("Unsupported = %v, want %v", l.Unsupported, wantUnsupported)
	}
	if l.Ignored != 1 {
		t.Errorf("Ignored = %d, want 1", l.Ignored)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	s := newScanner(t, 1, nil)
	if _, err := s.Walk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestScan(t *testing.T) {
	root := fixture(t)
	for _, workers := range []int{1, 4} {
		s := newScanner(t, workers, ignorelist.FromPatterns("thumbs"))
		l, err := s.Walk(root)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		var calls int64
		s.OnProgress = func(n int64) { calls = n }
		res := s.Scan(context.Background(), l)

		var ids []string
		for _, r := range res.Records {
			ids = append(ids, r.ID)
		}
		want := []string{
			filepath.Join(root, "a.png"),
			filepath.Join(root, "b", "copy.png"),
			filepath.Join(root, "c.png"),
		}
		if !reflect.DeepEqual(ids, want) {
			t.Errorf("workers=%d: records = %v, want %v", workers, ids, want)
		}
		if len(res.Failures) != 1 || res.Failures[0].Path != filepath.Join(root, "broken.png") {
			t.Fatalf("workers=%d: unexpected failures %v", workers, res.Failures)
		}
		if res.Interrupted() || calls != 4 || s.Processed() != 4 || s.Failed() != 1 {
			t.Errorf("workers=%d: unexpected counters: calls=%d processed=%d failed=%d", workers, calls, s.Processed(), s.Failed())
		}

		a, copied, c := res.Records[0], res.Records[1], res.Records[2]
		if !a.Fingerprint.Equal(copied.Fingerprint) {
			t.Errorf("Scaled copy has a different fingerprint: %s vs %s", a.Fingerprint, copied.Fingerprint)
		}
		if a.Fingerprint.Equal(c.Fingerprint) {
			t.Error("Different images share a fingerprint")
		}
		if a.PixelWidth != 64 || a.PixelHeight != 64 || a.ByteSize <= 0 {
			t.Errorf("Unexpected metadata %+v", a)
		}
	}
}

func TestDecodeErrorIsRecoverable(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bad.jpg")
	writeFile(t, path, "\xff\xd8\xff garbage")
	e, _ := fingerprint.New(fingerprint.Options{Strategy: fingerprint.Gradient})

	_, err := buildRecord(path, e)
	var de *DecodeError
	if !errors.As(err, &de) || de.Path != path {
		t.Fatalf("Expected DecodeError for %s, got %v", path, err)
	}
}

func TestScanReadsJPEG(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "photo.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Creating file: %v", err)
	}
	if err := jpeg.Encode(f, stripes(40, 30, 5), nil); err != nil {
		t.Fatalf("Encoding: %v", err)
	}
	f.Close()

	e, _ := fingerprint.New(fingerprint.Options{Strategy: fingerprint.Gradient})
	r, err := buildRecord(path, e)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.PixelWidth != 40 || r.PixelHeight != 30 || r.Fingerprint.Len() != 64 {
		t.Errorf("Unexpected record %+v", r)
	}
	// The encoder writes no EXIF block.
	if r.HorizontalResolution != 0 || r.VerticalResolution != 0 {
		t.Errorf("Unexpected resolution %v x %v", r.HorizontalResolution, r.VerticalResolution)
	}
}

func TestScanCancelled(t *testing.T) {
	root := fixture(t)
	s := newScanner(t, 2, nil)
	l, err := s.Walk(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.Scan(ctx, l)
	if got := len(res.Records) + len(res.Failures) + res.Skipped; got != len(l.Candidates) {
		t.Errorf("Accounted for %d of %d candidates", got, len(l.Candidates))
	}
	if res.Skipped != len(l.Candidates) || !res.Interrupted() {
		t.Errorf("Skipped %d of %d candidates after cancellation", res.Skipped, len(l.Candidates))
	}
}

func TestScanCancelledHandsOutNothing(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 200; i++ {
		writePNG(t, filepath.Join(root, fmt.Sprintf("img%03d.png", i)), stripes(8, 8, 1+i%4))
	}
	s := newScanner(t, 4, nil)
	l, err := s.Walk(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for run := 0; run < 20; run++ {
		res := s.Scan(ctx, l)
		if len(res.Records) != 0 || len(res.Failures) != 0 || res.Skipped != len(l.Candidates) {
			t.Fatalf("Run %d processed %d files after cancellation", run, len(res.Records)+len(res.Failures))
		}
	}
}

func TestIsSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.JPG": true, "a.jpeg": true, "a.png": true, "a.gif": true, "a.bmp": true,
		"a.tif": true, "a.tiff": true, "a.webp": true, "a.heic": false, "a.heif": false,
		"a.mp4": false, "a": false,
	} {
		if got := IsSupported(path); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
}
