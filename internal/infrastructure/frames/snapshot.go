package frames

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// SnapshotViewer keeps the most recent frame on disk as a JPEG so it can be watched
// with any image viewer that reloads.
type SnapshotViewer struct {
	Path    string
	Quality int
}

func (v *SnapshotViewer) Show(frame image.Image) error {
	quality := v.Quality
	if quality == 0 {
		quality = 80
	}
	if err := os.MkdirAll(filepath.Dir(v.Path), domain.DirectoryPermissions); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(v.Path), ".frame-*.jpg")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, frame, &jpeg.Options{Quality: quality}); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), v.Path)
}

var _ ports.FrameViewer = (*SnapshotViewer)(nil)
