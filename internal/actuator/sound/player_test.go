package sound

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
)

var errTestNotFound = errors.New("not found")

// blockingRun counts playbacks and blocks each until canceled.
type blockingRun struct {
	calls atomic.Int32
}

func (b *blockingRun) run(ctx context.Context, _ []string) error {
	b.calls.Add(1)
	<-ctx.Done()

	return ctx.Err()
}

// TestPlayer_RefCountedAcrossSubjects keeps playing until the last subject clears.
func TestPlayer_RefCountedAcrossSubjects(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		runner := new(blockingRun)
		p := newPlayer([]string{"true", "alarm.wav"}, runner.run)
		ctx := context.Background()

		require.NoError(t, p.StartCue(ctx, drowsiness.Cue{SubjectID: "driver"}))
		require.NoError(t, p.StartCue(ctx, drowsiness.Cue{SubjectID: "passenger"}))
		synctest.Wait()

		require.True(t, p.Playing())
		require.EqualValues(t, 1, runner.calls.Load())

		require.NoError(t, p.StopCue(ctx, drowsiness.Cue{SubjectID: "driver"}))
		require.True(t, p.Playing())

		require.NoError(t, p.StopCue(ctx, drowsiness.Cue{SubjectID: "passenger"}))
		require.False(t, p.Playing())

		// Stopping an idle player is a no-op.
		require.NoError(t, p.StopCue(ctx, drowsiness.Cue{SubjectID: "driver"}))
	})
}

// TestPlayer_LoopsUntilStopped replays a finished file and stops on player failure.
func TestPlayer_LoopsUntilStopped(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var (
			calls   atomic.Int32
			release = make(chan struct{})
		)

		run := func(ctx context.Context, _ []string) error {
			if calls.Add(1) >= 3 {
				return errTestNotFound
			}

			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		p := newPlayer([]string{"true"}, run)
		require.NoError(t, p.StartCue(context.Background(), drowsiness.Cue{SubjectID: "driver"}))

		release <- struct{}{}
		release <- struct{}{}
		time.Sleep(minReplayInterval)
		synctest.Wait()

		require.EqualValues(t, 3, calls.Load())
		require.False(t, p.Playing())

		// The loop exited on the error; stopping still succeeds.
		require.NoError(t, p.StopCue(context.Background(), drowsiness.Cue{SubjectID: "driver"}))
		require.False(t, p.Playing())
	})
}

// TestPlayer_RestartsAfterFailure starts a new loop on the next cue after the player failed.
func TestPlayer_RestartsAfterFailure(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32

		run := func(ctx context.Context, _ []string) error {
			if calls.Add(1) == 1 {
				return errTestNotFound
			}

			<-ctx.Done()

			return ctx.Err()
		}

		p := newPlayer([]string{"true"}, run)
		ctx := context.Background()

		require.NoError(t, p.StartCue(ctx, drowsiness.Cue{SubjectID: "driver"}))
		synctest.Wait()

		require.False(t, p.Playing())
		require.EqualValues(t, 1, calls.Load())

		require.NoError(t, p.StartCue(ctx, drowsiness.Cue{SubjectID: "passenger"}))
		synctest.Wait()

		require.True(t, p.Playing())
		require.EqualValues(t, 2, calls.Load())

		// Both subjects are still counted.
		require.NoError(t, p.StopCue(ctx, drowsiness.Cue{SubjectID: "passenger"}))
		require.True(t, p.Playing())

		require.NoError(t, p.StopCue(ctx, drowsiness.Cue{SubjectID: "driver"}))
		require.False(t, p.Playing())
	})
}

// TestPlayer_InstantExitIsThrottled replays a player that returns at once no faster than the interval.
func TestPlayer_InstantExitIsThrottled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32

		run := func(context.Context, []string) error {
			calls.Add(1)

			return nil
		}

		p := newPlayer([]string{"true"}, run)
		require.NoError(t, p.StartCue(context.Background(), drowsiness.Cue{SubjectID: "driver"}))

		// Starts at 0s, 1s, ..., 10s.
		time.Sleep(10*minReplayInterval + minReplayInterval/2)
		synctest.Wait()

		require.EqualValues(t, 11, calls.Load())
		require.True(t, p.Playing())

		require.NoError(t, p.StopCue(context.Background(), drowsiness.Cue{SubjectID: "driver"}))
		require.False(t, p.Playing())
	})
}

// TestPlayer_Close stops playback and reaps nothing when no player runs.
func TestPlayer_Close(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		runner := new(blockingRun)
		p := newPlayer([]string{"drowsiness-test-player-that-does-not-exist"}, runner.run)

		require.NoError(t, p.StartCue(context.Background(), drowsiness.Cue{SubjectID: "driver"}))
		require.NoError(t, p.Close(context.Background()))
		require.False(t, p.Playing())
	})
}

// TestNew_Validation rejects missing files and honors command overrides.
func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(new(Options))
	require.ErrorIs(t, err, errNoSoundFile)

	_, err = New(&Options{File: filepath.Join(t.TempDir(), "missing.wav")})
	require.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "alarm.wav")
	require.NoError(t, os.WriteFile(file, []byte("RIFF"), 0o600))

	p, err := New(&Options{File: file, Command: []string{"mpv", "--no-video"}})
	require.NoError(t, err)
	require.Equal(t, []string{"mpv", "--no-video", file}, p.argv)
}

// TestPlayerCommand covers every supported platform.
func TestPlayerCommand(t *testing.T) {
	t.Parallel()

	onlyAplay := func(name string) (string, error) {
		if name == "aplay" {
			return "/usr/bin/aplay", nil
		}

		return "", errTestNotFound
	}
	found := func(name string) (string, error) { return "/usr/bin/" + name, nil }
	missing := func(string) (string, error) { return "", errTestNotFound }

	argv, err := PlayerCommand("linux", "a.wav", found)
	require.NoError(t, err)
	require.Equal(t, []string{"paplay", "a.wav"}, argv)

	argv, err = PlayerCommand("linux", "a.wav", onlyAplay)
	require.NoError(t, err)
	require.Equal(t, []string{"aplay", "-q", "a.wav"}, argv)

	_, err = PlayerCommand("linux", "a.wav", missing)
	require.ErrorIs(t, err, errNoPlayer)

	argv, err = PlayerCommand("darwin", "a.wav", missing)
	require.NoError(t, err)
	require.Equal(t, []string{"afplay", "a.wav"}, argv)

	argv, err = PlayerCommand("windows", `C:\it's.wav`, missing)
	require.NoError(t, err)
	require.Equal(t, "powershell.exe", argv[0])
	require.Contains(t, argv[len(argv)-1], `'C:\it''s.wav'`)

	_, err = PlayerCommand("plan9", "a.wav", missing)
	require.ErrorIs(t, err, ErrUnsupportedOS)
}
