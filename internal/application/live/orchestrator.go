package live

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/doeshing/qrshield/internal/application/session"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/logger"
	"github.com/doeshing/qrshield/internal/ports"
)

// State is the orchestrator lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Stop reasons reported in Stats.
const (
	ReasonStopped     = "stopped"
	ReasonCancelled   = "cancelled"
	ReasonEndOfSource = "end of source"
	ReasonReadFailure = "frame read failed"
)

// FrameScanner processes one frame against a session.
type FrameScanner interface {
	ScanFrame(ctx context.Context, sess *session.Session, frame image.Image) (domain.ScanResult, error)
}

// Stats summarises one Run.
type Stats struct {
	Frames     int
	Payloads   int
	Recorded   int
	Duplicates int
	Alerts     int
	StopReason string
}

// Orchestrator drives the live feed: read a frame, scan it, show it, repeat until stopped.
type Orchestrator struct {
	Source       ports.FrameSourceOpener
	Scanner      FrameScanner
	Viewer       ports.FrameViewer
	FrameTimeout time.Duration
	Logger       ports.Logger

	mu    sync.Mutex
	state State
	stop  chan struct{}
}

// Run blocks until the source ends, Stop is called or ctx is cancelled. Failing to open
// the source returns domain.ErrCameraUnavailable and leaves the orchestrator idle.
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session) (Stats, error) {
	if o.Source == nil || o.Scanner == nil {
		return Stats{}, errors.New("live.Orchestrator dependencies not satisfied")
	}
	stop, err := o.begin()
	if err != nil {
		return Stats{}, err
	}
	defer o.setState(StateIdle)

	log := o.logger()
	src, err := o.Source.Open(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCameraUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
		}
		log.Error("frame source unavailable", err, map[string]interface{}{"source": o.Source.Describe()})
		return Stats{}, err
	}
	defer src.Close()
	log.Info("live feed started", map[string]interface{}{"source": o.Source.Describe(), "session": sess.ID})

	var stats Stats
	for {
		select {
		case <-ctx.Done():
			stats.StopReason = ReasonCancelled
		case <-stop:
			stats.StopReason = ReasonStopped
		default:
		}
		if stats.StopReason != "" {
			break
		}

		frame, err := o.nextFrame(ctx, src)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				stats.StopReason = ReasonEndOfSource
			case ctx.Err() != nil:
				stats.StopReason = ReasonCancelled
			default:
				stats.StopReason = ReasonReadFailure
				log.Warn("frame read failed", map[string]interface{}{"error": err.Error()})
			}
			break
		}
		stats.Frames++

		result, err := o.Scanner.ScanFrame(ctx, sess, frame)
		if errors.Is(err, domain.ErrSessionClosed) {
			o.setState(StateStopping)
			return stats, err
		}
		if err != nil {
			log.Warn("frame scan failed", map[string]interface{}{"frame": stats.Frames, "error": err.Error()})
		}
		stats.add(result)

		if o.Viewer != nil {
			if err := o.Viewer.Show(frame); err != nil {
				log.Warn("frame display failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	o.setState(StateStopping)
	log.Info("live feed stopped", map[string]interface{}{
		"reason":   stats.StopReason,
		"frames":   stats.Frames,
		"recorded": stats.Recorded,
		"alerts":   stats.Alerts,
	})
	return stats, nil
}

// Stop asks a running feed to finish at the next iteration boundary.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateRunning {
		return
	}
	o.state = StateStopping
	close(o.stop)
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) begin() (<-chan struct{}, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return nil, domain.ErrAlreadyRunning
	}
	o.state = StateRunning
	o.stop = make(chan struct{})
	return o.stop, nil
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

func (o *Orchestrator) nextFrame(ctx context.Context, src ports.FrameSource) (image.Image, error) {
	timeout := o.FrameTimeout
	if timeout <= 0 {
		timeout = domain.DefaultFrameTimeout * time.Second
	}
	frameCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return src.Next(frameCtx)
}

func (s *Stats) add(result domain.ScanResult) {
	s.Payloads += len(result.Payloads)
	for _, outcome := range result.Outcomes {
		if outcome.Inserted {
			s.Recorded++
		}
		if outcome.Duplicate {
			s.Duplicates++
		}
		if outcome.Alert != "" {
			s.Alerts++
		}
	}
}

func (o *Orchestrator) logger() ports.Logger {
	if o.Logger == nil {
		return logger.Nop{}
	}
	return o.Logger
}
