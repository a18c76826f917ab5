package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/doeshing/qrshield/internal/application/session"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/logger"
	"github.com/doeshing/qrshield/internal/ports"
)

// Classifier is the verdict source the service depends on.
type Classifier interface {
	Classify(ctx context.Context, text string, flow domain.Flow) domain.Verdict
	Lookup(ctx context.Context, target string) domain.Verdict
}

// ImageLoader opens an uploaded image and names its format.
type ImageLoader func(io.Reader) (image.Image, string, error)

// Service runs decode, classify, record and alert for images and raw payloads.
type Service struct {
	Classifier Classifier
	Decoder    ports.Decoder
	LoadImage  ImageLoader
	Alerter    ports.Alerter
	Clock      func() time.Time
	Logger     ports.Logger
}

// ScanImage decodes an uploaded image and processes every distinct payload through the
// upload flow. An image without a QR code returns domain.ErrDecodeEmpty.
func (s *Service) ScanImage(ctx context.Context, sess *session.Session, r io.Reader) (domain.ScanResult, error) {
	if err := s.check(); err != nil {
		return domain.ScanResult{}, err
	}
	img, format, err := s.loadImage(r)
	if err != nil {
		return domain.ScanResult{}, err
	}
	s.logger().Debug("image loaded", map[string]interface{}{"format": format, "session": sess.ID})

	result, err := s.scan(ctx, sess, img, domain.FlowUpload)
	if err != nil {
		return result, err
	}
	if len(result.Outcomes) == 0 {
		return result, domain.ErrDecodeEmpty
	}
	return result, nil
}

// ScanFrame processes one live frame. A frame without a QR code is an empty result.
func (s *Service) ScanFrame(ctx context.Context, sess *session.Session, frame image.Image) (domain.ScanResult, error) {
	if err := s.check(); err != nil {
		return domain.ScanResult{}, err
	}
	return s.scan(ctx, sess, frame, domain.FlowLive)
}

func (s *Service) scan(ctx context.Context, sess *session.Session, img image.Image, flow domain.Flow) (domain.ScanResult, error) {
	payloads, err := s.Decoder.Decode(img)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("decode: %w", err)
	}
	result := domain.ScanResult{Payloads: payloads}
	for _, payload := range payloads {
		outcome, err := s.Process(ctx, sess, payload, flow)
		if errors.Is(err, domain.ErrDecodeEmpty) {
			continue
		}
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

// Process classifies and records text unless the session has already seen it.
// Duplicates are reported with the original record and are never re-classified.
func (s *Service) Process(ctx context.Context, sess *session.Session, text string, flow domain.Flow) (domain.ScanOutcome, error) {
	if s.Classifier == nil {
		return domain.ScanOutcome{}, errors.New("scan.Service dependencies not satisfied")
	}
	if text == "" {
		return domain.ScanOutcome{}, domain.ErrDecodeEmpty
	}

	var outcome domain.ScanOutcome
	err := sess.Do(func(ledger ports.Ledger) error {
		seen, err := ledger.Contains(text)
		if err != nil {
			return err
		}
		if seen {
			outcome.Duplicate = true
			outcome.Record = existing(ledger, text)
			return nil
		}

		verdict := s.Classifier.Classify(ctx, text, flow)
		rec := domain.NewScanRecord(text, verdict, s.now(), flow)
		inserted, err := ledger.Record(rec)
		if err != nil {
			return fmt.Errorf("record scan: %w", err)
		}
		outcome.Record = rec
		outcome.Inserted = inserted
		outcome.Duplicate = !inserted
		return nil
	})
	if err != nil {
		return domain.ScanOutcome{}, err
	}

	if outcome.Inserted {
		s.logger().Info("scan recorded", map[string]interface{}{
			"session": sess.ID,
			"flow":    string(flow),
			"verdict": string(outcome.Record.Verdict),
		})
		if outcome.Record.Verdict.Alerting() {
			outcome.Alert = domain.AlertMessage(outcome.Record)
			if s.Alerter != nil {
				s.Alerter.Alert(ctx, outcome.Record)
			}
		}
	}
	return outcome, nil
}

// Lookup returns the oracle-only verdict used by the query surface.
func (s *Service) Lookup(ctx context.Context, target string) domain.Verdict {
	if s.Classifier == nil {
		return domain.VerdictLookupError
	}
	return s.Classifier.Lookup(ctx, target)
}

func existing(ledger ports.Ledger, payload string) domain.ScanRecord {
	records, err := ledger.Snapshot()
	if err == nil {
		for _, rec := range records {
			if rec.Payload == payload {
				return rec
			}
		}
	}
	return domain.ScanRecord{Payload: payload}
}

func (s *Service) check() error {
	if s.Classifier == nil || s.Decoder == nil {
		return errors.New("scan.Service dependencies not satisfied")
	}
	return nil
}

func (s *Service) loadImage(r io.Reader) (image.Image, string, error) {
	if s.LoadImage != nil {
		return s.LoadImage(r)
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}
	return img, format, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s *Service) logger() ports.Logger {
	if s.Logger == nil {
		return logger.Nop{}
	}
	return s.Logger
}
