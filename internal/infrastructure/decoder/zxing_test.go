package decoder

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/doeshing/qrshield/internal/domain"
)

func encodeQR(t *testing.T, text string) []byte {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, matrix); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodersReadPayload(t *testing.T) {
	const payload = "http://example.com/menu"
	for _, backend := range []string{domain.DecoderMulti, domain.DecoderSingle} {
		t.Run(backend, func(t *testing.T) {
			dec, err := New(backend, true)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			img, format, err := LoadImage(bytes.NewReader(encodeQR(t, payload)))
			if err != nil {
				t.Fatalf("LoadImage: %v", err)
			}
			if format != "png" {
				t.Fatalf("format = %q", format)
			}
			got, err := dec.Decode(img)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff([]string{payload}, got); diff != "" {
				t.Fatalf("payloads mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeBlankImageIsEmpty(t *testing.T) {
	dec, err := New(domain.DecoderMulti, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, _, err := LoadImage(bytes.NewReader(blankPNG(t)))
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	got, err := dec.Decode(img)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no payloads, got %v", got)
	}
}

func TestLoadImageRejectsGarbage(t *testing.T) {
	_, _, err := LoadImage(bytes.NewReader([]byte("definitely not an image")))
	if !errors.Is(err, domain.ErrUnsupportedImage) {
		t.Fatalf("err = %v, want ErrUnsupportedImage", err)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New("zbar", false); err == nil {
		t.Fatal("expected error")
	}
}

func TestDistinctKeepsFirstOccurrence(t *testing.T) {
	got := distinct([]string{"b", "a", "b", "", "c", "a"})
	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Fatalf("distinct mismatch (-want +got):\n%s", diff)
	}
}
