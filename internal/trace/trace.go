package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/service/monitor"
)

var (
	// ErrInvalidTrace is returned when the trace content is inconsistent.
	ErrInvalidTrace = errors.New("invalid trace")
	// errEmptyTrace is returned when the trace has no frames.
	errEmptyTrace = errors.New("trace has no frames")
)

// File is the YAML document of a trace.
type File struct {
	// Start anchors frame offsets. Defaults to the Unix epoch.
	Start  *time.Time `yaml:"start,omitempty"`
	Frames []Frame    `yaml:"frames"`
}

// Frame is one recorded frame.
type Frame struct {
	At     *time.Time     `yaml:"at,omitempty"`
	Offset *time.Duration `yaml:"offset,omitempty"`
	Image  string         `yaml:"image,omitempty"`
	Faces  []Face         `yaml:"faces,omitempty"`
}

// Face is one recorded detection.
type Face struct {
	ID        string       `yaml:"id,omitempty"`
	Landmarks [][2]float64 `yaml:"landmarks,omitempty"`
	LeftEye   [][2]float64 `yaml:"left_eye,omitempty"`
	RightEye  [][2]float64 `yaml:"right_eye,omitempty"`
}

// Source yields the frames of a loaded trace in order.
type Source struct {
	frames []monitor.Frame
	next   int
}

// Load reads and validates a trace file.
func Load(path string) (*Source, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	var file File
	if err = yaml.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}

	frames, err := file.convert(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Source{frames: frames}, nil
}

// Next returns the next frame, or io.EOF when the trace is exhausted.
func (s *Source) Next(ctx context.Context) (*monitor.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.next >= len(s.frames) {
		return nil, io.EOF
	}

	// Copy so that caller changes to detections or marks never reach the source.
	frame := s.frames[s.next]
	frame.Detections = slices.Clone(frame.Detections)
	frame.Marks = slices.Clone(frame.Marks)
	s.next++

	return &frame, nil
}

// Len returns the number of frames in the trace.
func (s *Source) Len() int {
	return len(s.frames)
}

// convert validates the document and builds monitor frames.
func (f *File) convert(baseDir string) ([]monitor.Frame, error) {
	if len(f.Frames) == 0 {
		return nil, errEmptyTrace
	}

	start := time.Unix(0, 0).UTC()
	if f.Start != nil {
		start = *f.Start
	}

	var (
		frames   = make([]monitor.Frame, 0, len(f.Frames))
		previous time.Time
	)

	for i := range f.Frames {
		raw := &f.Frames[i]

		capturedAt, err := raw.timestamp(start)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		if i > 0 && capturedAt.Before(previous) {
			return nil, fmt.Errorf("frame %d: timestamp goes backwards: %w", i, ErrInvalidTrace)
		}

		previous = capturedAt

		frame := monitor.Frame{
			Index:      i,
			CapturedAt: capturedAt,
			Detections: make([]monitor.Detection, 0, len(raw.Faces)),
		}

		if raw.Image != "" {
			frame.ImagePath = raw.Image
			if !filepath.IsAbs(raw.Image) {
				frame.ImagePath = filepath.Join(baseDir, raw.Image)
			}
		}

		for j := range raw.Faces {
			detection, err := raw.Faces[j].detection()
			if err != nil {
				return nil, fmt.Errorf("frame %d face %d: %w", i, j, err)
			}

			frame.Detections = append(frame.Detections, detection)
		}

		frames = append(frames, frame)
	}

	return frames, nil
}

func (fr *Frame) timestamp(start time.Time) (time.Time, error) {
	switch {
	case fr.At != nil && fr.Offset != nil:
		return time.Time{}, fmt.Errorf("both at and offset set: %w", ErrInvalidTrace)
	case fr.At != nil:
		return *fr.At, nil
	case fr.Offset != nil:
		if *fr.Offset < 0 {
			return time.Time{}, fmt.Errorf("negative offset %s: %w", *fr.Offset, ErrInvalidTrace)
		}

		return start.Add(*fr.Offset), nil
	default:
		return time.Time{}, fmt.Errorf("timestamp missing, set at or offset: %w", ErrInvalidTrace)
	}
}

func (fc *Face) detection() (monitor.Detection, error) {
	var (
		eyes drowsiness.FaceLandmarks
		err  error
	)

	switch {
	case len(fc.Landmarks) > 0 && (len(fc.LeftEye) > 0 || len(fc.RightEye) > 0):
		return monitor.Detection{}, fmt.Errorf("landmarks and eyes are exclusive: %w", ErrInvalidTrace)
	case len(fc.Landmarks) > 0:
		eyes, err = drowsiness.EyesFromFace(points(fc.Landmarks))
	default:
		eyes, err = drowsiness.EyesFromPoints(points(fc.LeftEye), points(fc.RightEye))
	}

	if err != nil {
		return monitor.Detection{}, err
	}

	return monitor.Detection{
		SubjectID: fc.ID,
		Eyes:      eyes,
	}, nil
}

func points(raw [][2]float64) []drowsiness.Point {
	result := make([]drowsiness.Point, 0, len(raw))
	for _, p := range raw {
		result = append(result, drowsiness.Point{X: p[0], Y: p[1]})
	}

	return result
}
