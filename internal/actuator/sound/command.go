package sound

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedOS indicates no default player is known for the current OS.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// errNoPlayer is returned when none of the Linux players is installed.
var errNoPlayer = errors.New("no audio player found")

// linuxPlayers are tried in order; paplay talks to PulseAudio/PipeWire, aplay to ALSA.
var linuxPlayers = []string{"paplay", "aplay"}

// PlayerCommand returns the argv that plays file once using built-in tools:
// - Linux:   `paplay <file>` or `aplay -q <file>`
// - macOS:   `afplay <file>`
// - Windows: PowerShell `Media.SoundPlayer.PlaySync()`
func PlayerCommand(goos, file string, lookPath func(string) (string, error)) ([]string, error) {
	osName := strings.ToLower(goos)

	switch {
	case strings.Contains(osName, "linux"):
		for _, player := range linuxPlayers {
			if _, err := lookPath(player); err != nil {
				continue
			}

			if player == "aplay" {
				return []string{player, "-q", file}, nil
			}

			return []string{player, file}, nil
		}

		return nil, fmt.Errorf("%s: %w", strings.Join(linuxPlayers, ", "), errNoPlayer)
	case strings.Contains(osName, "darwin"):
		return []string{"afplay", file}, nil
	case strings.Contains(osName, "windows"):
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(file, "'", "''"))

		return []string{"powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script}, nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s: %w", goos, ErrUnsupportedOS)
	}
}
