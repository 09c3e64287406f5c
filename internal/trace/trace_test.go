package trace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/service/monitor"
)

const eyesTrace = `
start: 2026-01-02T15:04:05Z
frames:
  - offset: 0s
    image: frames/000000.png
    faces:
      - id: driver
        left_eye:  [[0, 0], [3, 2], [7, 2], [10, 0], [7, -2], [3, -2]]
        right_eye: [[20, 0], [23, 2], [27, 2], [30, 0], [27, -2], [23, -2]]
  - offset: 33ms
  - at: 2026-01-02T15:04:06Z
    image: /abs/000002.png
    faces:
      - left_eye:  [[0, 0], [3, 2], [7, 2], [10, 0], [7, -2], [3, -2]]
        right_eye: [[20, 0], [23, 2], [27, 2], [30, 0], [27, -2], [23, -2]]
`

func writeTrace(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// TestLoad_EyesTrace decodes offsets, absolute times, images and eye points.
func TestLoad_EyesTrace(t *testing.T) {
	t.Parallel()

	path := writeTrace(t, eyesTrace)

	source, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, source.Len())

	start := time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)
	ctx := context.Background()

	first, err := source.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, first.Index)
	require.True(t, start.Equal(first.CapturedAt))
	require.Equal(t, filepath.Join(filepath.Dir(path), "frames", "000000.png"), first.ImagePath)
	require.Len(t, first.Detections, 1)
	require.Equal(t, "driver", first.Detections[0].SubjectID)

	ear, ok := drowsiness.FaceAspectRatio(&first.Detections[0].Eyes)
	require.True(t, ok)
	require.InDelta(t, 0.4, ear, 1e-9)

	second, err := source.Next(ctx)
	require.NoError(t, err)
	require.True(t, start.Add(33*time.Millisecond).Equal(second.CapturedAt))
	require.Empty(t, second.Detections)
	require.Empty(t, second.ImagePath)

	third, err := source.Next(ctx)
	require.NoError(t, err)
	require.True(t, start.Add(time.Second).Equal(third.CapturedAt))
	require.Equal(t, "/abs/000002.png", third.ImagePath)
	require.Empty(t, third.Detections[0].SubjectID)

	_, err = source.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

// TestLoad_FullFaceLandmarks extracts the eyes from a 68-point layout.
func TestLoad_FullFaceLandmarks(t *testing.T) {
	t.Parallel()

	landmarks := make([][2]float64, drowsiness.FacePoints)
	for i := range landmarks {
		landmarks[i] = [2]float64{float64(i), float64(i)}
	}

	offset := time.Duration(0)
	document := File{Frames: []Frame{{
		Offset: &offset,
		Faces:  []Face{{ID: "driver", Landmarks: landmarks}},
	}}}

	content, err := yaml.Marshal(&document)
	require.NoError(t, err)

	source, err := Load(writeTrace(t, string(content)))
	require.NoError(t, err)

	frame, err := source.Next(context.Background())
	require.NoError(t, err)

	eyes := frame.Detections[0].Eyes
	require.Equal(t, drowsiness.Point{X: 36, Y: 36}, eyes.Left[0])
	require.Equal(t, drowsiness.Point{X: 47, Y: 47}, eyes.Right[5])
	require.True(t, time.Unix(0, 0).Equal(frame.CapturedAt))
}

// TestLoad_Invalid rejects inconsistent traces.
func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		target  error
	}{
		{
			name:    "no frames",
			content: "frames: []",
			target:  errEmptyTrace,
		},
		{
			name:    "no timestamp",
			content: "frames:\n  - image: a.png",
			target:  ErrInvalidTrace,
		},
		{
			name:    "both timestamps",
			content: "frames:\n  - at: 2026-01-02T15:04:05Z\n    offset: 1s",
			target:  ErrInvalidTrace,
		},
		{
			name:    "negative offset",
			content: "frames:\n  - offset: -1s",
			target:  ErrInvalidTrace,
		},
		{
			name:    "backwards",
			content: "frames:\n  - offset: 2s\n  - offset: 1s",
			target:  ErrInvalidTrace,
		},
		{
			name:    "short eye",
			content: "frames:\n  - offset: 0s\n    faces:\n      - left_eye: [[0, 0]]\n        right_eye: [[0, 0]]",
			target:  drowsiness.ErrLandmarkCount,
		},
		{
			name:    "short face",
			content: "frames:\n  - offset: 0s\n    faces:\n      - landmarks: [[0, 0], [1, 1]]",
			target:  drowsiness.ErrLandmarkCount,
		},
		{
			name:    "face and eyes",
			content: "frames:\n  - offset: 0s\n    faces:\n      - landmarks: [[0, 0]]\n        left_eye: [[0, 0]]",
			target:  ErrInvalidTrace,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeTrace(t, tc.content))
			require.ErrorIs(t, err, tc.target)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeTrace(t, "frames: {"))
	require.Error(t, err)
}

// TestSource_CanceledContext stops iteration when the context is done.
func TestSource_CanceledContext(t *testing.T) {
	t.Parallel()

	source, err := Load(writeTrace(t, eyesTrace))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// TestSource_NextReturnsCopies keeps caller changes out of the loaded frames.
func TestSource_NextReturnsCopies(t *testing.T) {
	t.Parallel()

	source, err := Load(writeTrace(t, eyesTrace))
	require.NoError(t, err)

	frame, err := source.Next(context.Background())
	require.NoError(t, err)

	frame.Detections[0].SubjectID = "changed"
	frame.Annotate(monitor.Mark{SubjectID: "driver", Label: "DROWSY!"})

	require.Equal(t, "driver", source.frames[0].Detections[0].SubjectID)
	require.Empty(t, source.frames[0].Marks)
}
