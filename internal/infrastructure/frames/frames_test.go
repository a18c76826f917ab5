package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/qrshield/internal/domain"
)

func solid(c color.Gray) image.Image {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = c.Y
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func drain(t *testing.T, src interface {
	Next(context.Context) (image.Image, error)
}) int {
	t.Helper()
	n := 0
	for {
		_, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return n
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		n++
	}
}

func TestNewOpener(t *testing.T) {
	if _, err := NewOpener(""); !errors.Is(err, domain.ErrCameraUnavailable) {
		t.Fatalf("empty source err = %v", err)
	}
	o, err := NewOpener("http://cam.local/stream")
	if err != nil {
		t.Fatalf("NewOpener: %v", err)
	}
	if _, ok := o.(*MJPEGOpener); !ok {
		t.Fatalf("got %T, want *MJPEGOpener", o)
	}
	o, err = NewOpener("/tmp/frames")
	if err != nil {
		t.Fatalf("NewOpener: %v", err)
	}
	if o.Describe() != "dir:/tmp/frames" {
		t.Fatalf("Describe = %q", o.Describe())
	}
}

func TestDirSourceReplaysImagesInOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "002.png"), solid(color.Gray{Y: 0}))
	writePNG(t, filepath.Join(dir, "001.png"), solid(color.Gray{Y: 255}))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := (&DirOpener{Path: dir}).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	first, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if r, _, _, _ := first.At(0, 0).RGBA(); r != 0xffff {
		t.Fatalf("expected 001.png (white) first, got r=%x", r)
	}
	if n := drain(t, src); n != 1 {
		t.Fatalf("remaining frames = %d, want 1", n)
	}
}

func TestDirOpenerMissingPath(t *testing.T) {
	_, err := (&DirOpener{Path: filepath.Join(t.TempDir(), "nope")}).Open(context.Background())
	if !errors.Is(err, domain.ErrCameraUnavailable) {
		t.Fatalf("err = %v, want ErrCameraUnavailable", err)
	}
}

func mjpegHandler(frames int, stall time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mw := multipart.NewWriter(w)
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mw.Boundary())
		for i := 0; i < frames; i++ {
			part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"image/jpeg"}})
			if err != nil {
				return
			}
			_ = jpeg.Encode(part, solid(color.Gray{Y: 128}), nil)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		if stall > 0 {
			// open the next part but never send its body
			_, _ = mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"image/jpeg"}})
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			select {
			case <-time.After(stall):
			case <-r.Context().Done():
			}
			return
		}
		_ = mw.Close()
	}
}

func TestMJPEGSourceReadsFrames(t *testing.T) {
	srv := httptest.NewServer(mjpegHandler(3, 0))
	defer srv.Close()

	src, err := (&MJPEGOpener{URL: srv.URL, Client: srv.Client()}).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()
	if n := drain(t, src); n != 3 {
		t.Fatalf("frames = %d, want 3", n)
	}
}

func TestMJPEGSourceFrameTimeout(t *testing.T) {
	srv := httptest.NewServer(mjpegHandler(1, 5*time.Second))
	defer srv.Close()

	src, err := (&MJPEGOpener{URL: srv.URL, Client: srv.Client()}).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	if _, err := src.Next(context.Background()); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestMJPEGOpenerRejectsNonStream(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "not found", handler: http.NotFound},
		{name: "plain image", handler: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			_ = jpeg.Encode(w, solid(color.Gray{}), nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := (&MJPEGOpener{URL: srv.URL, Client: srv.Client()}).Open(context.Background())
			if !errors.Is(err, domain.ErrCameraUnavailable) {
				t.Fatalf("err = %v, want ErrCameraUnavailable", err)
			}
		})
	}
}

func TestSnapshotViewerWritesJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live", "latest.jpg")
	viewer := &SnapshotViewer{Path: path}
	if err := viewer.Show(solid(color.Gray{Y: 200})); err != nil {
		t.Fatalf("Show: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	if _, err := jpeg.Decode(file); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
}
