package sound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// Options configures the player.
type Options struct {
	// File is the audio file to play.
	File string
	// Command overrides the platform player; File is appended to it.
	Command []string
}

// minReplayInterval is the shortest time between two playback starts.
const minReplayInterval = time.Second

// errNoSoundFile is returned when no audio file is configured.
var errNoSoundFile = errors.New("sound file must be provided")

// runFunc plays argv once and blocks until it finishes or ctx is canceled.
type runFunc func(ctx context.Context, argv []string) error

// Player loops an audio file while any subject is alarming.
type Player struct {
	// argv is the player command including the file.
	argv []string
	// run executes one playback.
	run runFunc

	// active holds the subjects whose cue is on.
	active map[string]struct{}
	// cancel stops the playback loop; nil when idle.
	cancel context.CancelFunc
	// done is closed when the playback loop exits.
	done chan struct{}
	// mu guards active, cancel and done.
	mu sync.Mutex
}

// New resolves the player command and checks the audio file exists.
func New(opts *Options) (*Player, error) {
	if opts.File == "" {
		return nil, errNoSoundFile
	}

	if _, err := os.Stat(opts.File); err != nil {
		return nil, fmt.Errorf("sound file: %w", err)
	}

	var argv []string

	if len(opts.Command) > 0 {
		argv = append(slices.Clone(opts.Command), opts.File)
	} else {
		var err error

		argv, err = PlayerCommand(runtime.GOOS, opts.File, exec.LookPath)
		if err != nil {
			return nil, err
		}
	}

	return newPlayer(argv, runCommand), nil
}

func newPlayer(argv []string, run runFunc) *Player {
	return &Player{
		argv:   argv,
		run:    run,
		active: make(map[string]struct{}),
	}
}

// StartCue marks the subject active and starts playback unless it is already running.
func (p *Player) StartCue(ctx context.Context, cue drowsiness.Cue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active[cue.SubjectID] = struct{}{}

	if p.running() {
		return nil
	}

	// Restart a loop that exited on a player failure.
	p.stop()

	// Playback outlives the caller's request but keeps its logger.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(loopCtx, p.done)

	logger.DebugKV(ctx, "Sound playback started", "command", p.argv[0])

	return nil
}

// StopCue clears the subject and stops playback when no subject is left.
func (p *Player) StopCue(ctx context.Context, cue drowsiness.Cue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.active, cue.SubjectID)

	if len(p.active) > 0 {
		return nil
	}

	p.stop()

	logger.Debug(ctx, "Sound playback stopped")

	return nil
}

// Playing reports whether the playback loop is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running()
}

// running reports whether the loop is alive. Callers hold mu.
func (p *Player) running() bool {
	if p.done == nil {
		return false
	}

	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Close stops playback and kills player processes left behind by this process.
func (p *Player) Close(ctx context.Context) error {
	p.mu.Lock()
	clear(p.active)
	p.stop()
	p.mu.Unlock()

	if err := reapChildren(filepath.Base(p.argv[0])); err != nil {
		return fmt.Errorf("reap players: %w", err)
	}

	logger.Debug(ctx, "Sound player closed")

	return nil
}

// stop cancels the loop and waits for it. Callers hold mu.
func (p *Player) stop() {
	if p.cancel == nil {
		return
	}

	p.cancel()
	<-p.done

	p.cancel = nil
	p.done = nil
}

// loop replays the file until canceled or the player fails.
// Starts are at least minReplayInterval apart.
func (p *Player) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		timer.Reset(minReplayInterval)

		err := p.run(ctx, p.argv)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			logger.ErrorKV(ctx, "Sound player failed", "command", p.argv[0], "error", err)

			return
		}
	}
}

// runCommand plays argv once.
func runCommand(ctx context.Context, argv []string) error {
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run() //nolint:gosec // Player command comes from settings.
}

// reapChildren kills processes named executable whose parent is this process.
func reapChildren(executable string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.PPid() != thisProcessID || process.Executable() != executable {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
	}

	return nil
}
