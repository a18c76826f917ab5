package frames

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// NewOpener picks a frame source: an http(s) URL is read as an MJPEG stream,
// anything else as a directory (or single file) of still frames.
func NewOpener(source string) (ports.FrameSourceOpener, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return nil, fmt.Errorf("%w: no frame source configured", domain.ErrCameraUnavailable)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return &MJPEGOpener{URL: source, Client: http.DefaultClient}, nil
	default:
		return &DirOpener{Path: source}, nil
	}
}
