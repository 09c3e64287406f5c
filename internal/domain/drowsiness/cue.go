package drowsiness

import "time"

// Cue identifies an alert cue issued to an actuator.
type Cue struct {
	// SubjectID is the tracked subject the cue belongs to.
	SubjectID string
	// At is the frame timestamp that triggered the command.
	At time.Time
	// SmoothedEAR is the value that drove the transition.
	SmoothedEAR float64
}
