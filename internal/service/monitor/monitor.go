package monitor

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// untrackedPrefix names detections that carry no tracking identifier.
const untrackedPrefix = "face-"

// Options configures a Monitor.
type Options struct {
	// Params configures every subject's state machine.
	Params drowsiness.Params
	// Alpha is the smoothing weight of the newest sample.
	Alpha float64
	// Seed selects the smoother warm-up policy.
	Seed drowsiness.SeedPolicy
	// WarningLabel is the text drawn while a subject is alarming.
	WarningLabel string
}

// NewOptions builds monitor options from the detection settings.
func NewOptions(settings *config.Detection) *Options {
	return &Options{
		Params:       settings.Params(),
		Alpha:        settings.SmoothingAlpha,
		Seed:         drowsiness.SeedPolicy(settings.SmoothingSeed),
		WarningLabel: settings.WarningLabel,
	}
}

// Result reports what one detection did to its subject.
type Result struct {
	// SubjectID is the subject the detection was attributed to.
	SubjectID string
	// EAR is the raw eye aspect ratio of the frame.
	EAR float64
	// Indeterminate is set when the EAR could not be computed and the face was skipped.
	Indeterminate bool
	// Transition is the state machine step; zero when Indeterminate.
	Transition drowsiness.Transition
}

// subject is the pipeline state of one tracked face.
type subject struct {
	smoother *drowsiness.Smoother
	machine  *drowsiness.Machine
}

// Monitor owns the per-subject state and drives it frame by frame.
type Monitor struct {
	// opts configures new subjects.
	opts Options
	// dispatcher applies transitions.
	dispatcher *Dispatcher
	// subjects maps subject identifiers to their state.
	subjects map[string]*subject
	// progress throttles eyes-closing debug logs.
	progress rate.Sometimes
	// mu guards subjects.
	mu sync.Mutex
}

// New creates a monitor that reports cues to actuator.
func New(opts *Options, actuator Actuator) *Monitor {
	options := *opts
	if options.WarningLabel == "" {
		options.WarningLabel = config.DefaultWarningLabel
	}

	return &Monitor{
		opts:       options,
		dispatcher: NewDispatcher(actuator, options.WarningLabel),
		subjects:   make(map[string]*subject),
		progress: rate.Sometimes{
			First:    1,
			Interval: time.Second,
		},
	}
}

// Process runs the pipeline for every detection of the frame.
// Subjects missing from the frame keep their state unchanged.
func (m *Monitor) Process(ctx context.Context, frame *Frame) []Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]Result, 0, len(frame.Detections))
	seen := make(map[string]struct{}, len(frame.Detections))

	for i := range frame.Detections {
		detection := &frame.Detections[i]

		subjectID := detection.SubjectID
		if subjectID == "" {
			subjectID = untrackedPrefix + strconv.Itoa(i)
		}

		if _, duplicate := seen[subjectID]; duplicate {
			logger.WarnKV(ctx, "Duplicate subject in frame, detection skipped",
				"frame", frame.Index,
				"subject_id", subjectID)

			continue
		}

		seen[subjectID] = struct{}{}

		results = append(results, m.step(ctx, frame, subjectID, &detection.Eyes))
	}

	return results
}

// step advances one subject by one frame.
func (m *Monitor) step(ctx context.Context, frame *Frame, subjectID string, eyes *drowsiness.FaceLandmarks) Result {
	ear, ok := drowsiness.FaceAspectRatio(eyes)
	if !ok {
		logger.DebugKV(ctx, "Eye aspect ratio is indeterminate, face skipped",
			"frame", frame.Index,
			"subject_id", subjectID)

		return Result{
			SubjectID:     subjectID,
			Indeterminate: true,
		}
	}

	s, ok := m.subjects[subjectID]
	if !ok {
		s = &subject{
			smoother: drowsiness.NewSmoother(m.opts.Alpha, m.opts.Seed),
			machine:  drowsiness.NewMachine(m.opts.Params),
		}
		m.subjects[subjectID] = s

		logger.DebugKV(ctx, "New subject tracked", "subject_id", subjectID)
	}

	smoothed := s.smoother.Update(ear)
	transition := s.machine.Step(smoothed, frame.CapturedAt)

	if transition.To == drowsiness.PhaseEyesClosing {
		m.progress.Do(func() {
			snapshot := s.machine.Snapshot()
			logger.DebugKV(ctx, "Eyes closing",
				"subject_id", subjectID,
				"consec_frames", snapshot.ConsecFrames,
				"ear", smoothed,
				"muted", transition.Muted)
		})
	}

	m.dispatcher.Dispatch(ctx, frame, subjectID, eyes.Anchor(), &transition)

	return Result{
		SubjectID:  subjectID,
		EAR:        ear,
		Transition: transition,
	}
}

// Forget drops a subject and stops its cue if it was alarming.
// It reports whether the subject was known.
func (m *Monitor) Forget(ctx context.Context, subjectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subjects[subjectID]
	if !ok {
		return false
	}

	delete(m.subjects, subjectID)
	m.release(ctx, subjectID, s)

	return true
}

// Close stops every active cue and drops all subjects.
func (m *Monitor) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, subjectID := range m.sortedSubjects() {
		m.release(ctx, subjectID, m.subjects[subjectID])
	}

	clear(m.subjects)
}

// Snapshot returns a copy of the subject's state.
func (m *Monitor) Snapshot(subjectID string) (*drowsiness.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subjects[subjectID]
	if !ok {
		return nil, false
	}

	return s.machine.Snapshot(), true
}

// Subjects returns the tracked subject identifiers in order.
func (m *Monitor) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sortedSubjects()
}

func (m *Monitor) sortedSubjects() []string {
	return slices.Sorted(maps.Keys(m.subjects))
}

// release stops the subject's cue if it is active.
func (m *Monitor) release(ctx context.Context, subjectID string, s *subject) {
	snapshot := s.machine.Snapshot()
	if !snapshot.AlertActive {
		return
	}

	logger.InfoKV(ctx, "Drowsiness alert released", "subject_id", subjectID)

	m.dispatcher.Release(ctx, drowsiness.Cue{
		SubjectID:   subjectID,
		At:          snapshot.UpdatedAt,
		SmoothedEAR: snapshot.SmoothedEAR,
	})
}
