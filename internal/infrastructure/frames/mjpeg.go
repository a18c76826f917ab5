package frames

import (
	"context"
	"fmt"
	"image"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/decoder"
	"github.com/doeshing/qrshield/internal/ports"
)

// MJPEGOpener reads a multipart/x-mixed-replace stream as served by IP cameras.
type MJPEGOpener struct {
	URL    string
	Client *http.Client
}

func (o *MJPEGOpener) Describe() string {
	return "mjpeg:" + o.URL
}

// Open connects to the stream. The request lives as long as ctx.
func (o *MJPEGOpener) Open(ctx context.Context) (ports.FrameSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", domain.ErrCameraUnavailable, resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: not an MJPEG stream (%s)", domain.ErrCameraUnavailable, resp.Header.Get("Content-Type"))
	}
	boundary := strings.TrimPrefix(params["boundary"], "--")
	return &mjpegSource{body: resp.Body, parts: multipart.NewReader(resp.Body, boundary)}, nil
}

type mjpegSource struct {
	body  io.ReadCloser
	parts *multipart.Reader
}

type frameResult struct {
	img image.Image
	err error
}

// Next blocks for the next part. When ctx ends first the stream is closed, which also
// unblocks the pending read.
func (s *mjpegSource) Next(ctx context.Context) (image.Image, error) {
	done := make(chan frameResult, 1)
	go func() {
		img, err := s.readFrame()
		done <- frameResult{img: img, err: err}
	}()

	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		_ = s.body.Close()
		<-done
		return nil, ctx.Err()
	}
}

func (s *mjpegSource) readFrame() (image.Image, error) {
	part, err := s.parts.NextPart()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer part.Close()
	img, _, err := decoder.LoadImage(part)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *mjpegSource) Close() error {
	return s.body.Close()
}
