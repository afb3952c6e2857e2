package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	// SampleRate used for the generated tone.
	SampleRate beep.SampleRate = 44100
	// ToneFrequency is the pitch of the beep in Hz.
	ToneFrequency = 440.0
	// ToneDuration is how long a single beep lasts.
	ToneDuration = 100 * time.Millisecond
	// Volume is the amplitude of the square wave, in [0, 1].
	Volume = 0.2
)

// SquareWave returns a streamer producing a square wave of the given
// frequency for duration d, then draining.
func SquareWave(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	period := float64(sr) / freq
	pos := 0.0

	wave := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			v := Volume
			if math.Mod(pos, period) >= period/2 {
				v = -Volume
			}
			samples[i][0] = v
			samples[i][1] = v
			pos++
		}
		return len(samples), true
	})

	return beep.Take(sr.N(d), wave)
}
