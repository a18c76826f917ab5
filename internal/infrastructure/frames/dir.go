package frames

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/decoder"
	"github.com/doeshing/qrshield/internal/pkg/filesystem"
	"github.com/doeshing/qrshield/internal/ports"
)

var frameExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// DirOpener replays still images from a directory in name order.
type DirOpener struct {
	Path string
}

func (o *DirOpener) Describe() string {
	return "dir:" + o.Path
}

// Open lists the frames. A missing path means the camera is unavailable.
func (o *DirOpener) Open(context.Context) (ports.FrameSource, error) {
	path := filesystem.ExpandPath(o.Path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	if !info.IsDir() {
		return &dirSource{files: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return &dirSource{files: files}, nil
}

type dirSource struct {
	files []string
	next  int
}

func (s *dirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	path := s.files[s.next]
	s.next++

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := decoder.LoadImage(file)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (s *dirSource) Close() error {
	s.files = nil
	return nil
}
