package decoder

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// New returns the decoder for backend.
func New(backend string, tryHarder bool) (ports.Decoder, error) {
	switch backend {
	case "", domain.DecoderMulti:
		return &MultiDecoder{hints: hints(tryHarder)}, nil
	case domain.DecoderSingle:
		return &SingleDecoder{hints: hints(tryHarder)}, nil
	default:
		return nil, fmt.Errorf("unknown decoder backend %q", backend)
	}
}

// MultiDecoder reports every QR symbol in an image.
type MultiDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func (d *MultiDecoder) Name() string {
	return domain.DecoderMulti
}

// Decode returns the distinct payloads in detection order. No symbol is an empty result, not an error.
func (d *MultiDecoder) Decode(img image.Image) ([]string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}

	var payloads []string
	results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, d.hints)
	if err == nil {
		for _, result := range results {
			payloads = append(payloads, result.GetText())
		}
	}
	if len(payloads) == 0 {
		// the multi reader misses some symbols the plain reader finds
		if result, err := qrcode.NewQRCodeReader().Decode(bmp, d.hints); err == nil {
			payloads = append(payloads, result.GetText())
		}
	}
	return distinct(payloads), nil
}

// SingleDecoder reports at most one QR symbol per image.
type SingleDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func (d *SingleDecoder) Name() string {
	return domain.DecoderSingle
}

func (d *SingleDecoder) Decode(img image.Image) ([]string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		return nil, nil
	}
	return distinct([]string{result.GetText()}), nil
}

func hints(tryHarder bool) map[gozxing.DecodeHintType]interface{} {
	if !tryHarder {
		return nil
	}
	return map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
}

func distinct(payloads []string) []string {
	seen := make(map[string]struct{}, len(payloads))
	out := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

var (
	_ ports.Decoder = (*MultiDecoder)(nil)
	_ ports.Decoder = (*SingleDecoder)(nil)
)
