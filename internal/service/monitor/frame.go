package monitor

import (
	"time"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
)

// Frame is one captured image together with its face detections.
type Frame struct {
	// Index is the position of the frame in its source.
	Index int
	// CapturedAt is the capture timestamp used as the state machine clock.
	CapturedAt time.Time
	// ImagePath optionally points to the captured image.
	ImagePath string
	// Detections lists the faces found in the frame.
	Detections []Detection
	// Marks collects the warnings drawn on this frame.
	Marks []Mark
}

// Detection is one face found in a frame.
type Detection struct {
	// SubjectID is the stable tracking identifier. Empty means untracked.
	SubjectID string
	// Eyes holds the landmarks of both eyes.
	Eyes drowsiness.FaceLandmarks
}

// Mark is a warning annotation for one subject.
type Mark struct {
	SubjectID string
	Label     string
	// At is the top-left anchor of the label in pixel coordinates.
	At drowsiness.Point
}

// Annotate appends a warning mark to the frame.
func (f *Frame) Annotate(mark Mark) {
	f.Marks = append(f.Marks, mark)
}
