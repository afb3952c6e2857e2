//go:build speaker

package audio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/faiface/beep/speaker"
)

type speakerBeeper struct{}

func newSpeakerBeeper() (Beeper, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	slog.Info("Audio initialized", "sample_rate", int(SampleRate))
	return &speakerBeeper{}, nil
}

func (s *speakerBeeper) Beep() {
	speaker.Play(SquareWave(SampleRate, ToneFrequency, ToneDuration))
}

func (s *speakerBeeper) Close() error {
	speaker.Close()
	return nil
}
