package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/drowsiness-alarm/internal/logger"
	"github.com/oshokin/drowsiness-alarm/internal/service/monitor"
)

// FrameSource yields frames until io.EOF.
type FrameSource interface {
	Next(ctx context.Context) (*monitor.Frame, error)
}

// Processor runs the drowsiness pipeline on one frame.
type Processor interface {
	Process(ctx context.Context, frame *monitor.Frame) []monitor.Result
}

// Renderer writes an annotated frame.
type Renderer interface {
	Render(frame *monitor.Frame) (string, error)
}

// Summary counts what a replay did.
type Summary struct {
	// Frames is the number of processed frames.
	Frames int
	// Faces is the number of detections evaluated.
	Faces int
	// Indeterminate is the number of detections skipped for degenerate eyes.
	Indeterminate int
	// Alerts is the number of alert activations.
	Alerts int
	// Rendered is the number of annotated images written.
	Rendered int
}

// Replay processes every frame of source. With realtime set it sleeps
// between frames for the gap between their capture timestamps.
// A nil renderer disables image output.
func Replay(
	ctx context.Context,
	source FrameSource,
	processor Processor,
	renderer Renderer,
	realtime bool,
) (*Summary, error) {
	var (
		summary  = new(Summary)
		previous time.Time
	)

	for {
		frame, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return summary, nil
		}

		if err != nil {
			return summary, fmt.Errorf("next frame: %w", err)
		}

		if realtime && !previous.IsZero() {
			if err = sleep(ctx, frame.CapturedAt.Sub(previous)); err != nil {
				return summary, err
			}
		}

		previous = frame.CapturedAt

		for _, result := range processor.Process(ctx, frame) {
			summary.Faces++

			if result.Indeterminate {
				summary.Indeterminate++
			}

			if result.Transition.Activated {
				summary.Alerts++
			}
		}

		summary.Frames++

		if renderer == nil || frame.ImagePath == "" {
			continue
		}

		path, err := renderer.Render(frame)
		if err != nil {
			logger.ErrorKV(ctx, "Failed to render frame", "frame", frame.Index, "error", err)

			continue
		}

		summary.Rendered++

		logger.DebugKV(ctx, "Frame rendered", "frame", frame.Index, "path", path, "marks", len(frame.Marks))
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
