//go:build !speaker

package audio

import "log/slog"

func newSpeakerBeeper() (Beeper, error) {
	slog.Debug("Built without speaker support, beeps are logged only")
	return &LogBeeper{}, nil
}
