package audio

import (
	"log/slog"
	"sync/atomic"
)

// Beeper plays the tone raised when the sound timer runs out.
type Beeper interface {
	Beep()
	Close() error
}

// New returns the beeper used by the emulator. When the binary is built
// without the speaker tag, or mute is set, beeps are only logged.
func New(mute bool) (Beeper, error) {
	if mute {
		return &LogBeeper{}, nil
	}
	return newSpeakerBeeper()
}

// LogBeeper records beeps at debug level instead of playing them.
type LogBeeper struct {
	count atomic.Uint64
}

func (l *LogBeeper) Beep() {
	n := l.count.Add(1)
	slog.Debug("Beep", "count", n)
}

// Count returns how many beeps were requested.
func (l *LogBeeper) Count() uint64 { return l.count.Load() }

func (l *LogBeeper) Close() error { return nil }
