package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Waveform selects the oscillator shape of a generated tone
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
)

// toneGenerator streams a single fixed-frequency tone with a short
// linear attack and an exponential decay tail
type toneGenerator struct {
	wave  Waveform
	freq  float64
	gain  float64
	sr    beep.SampleRate
	pos   int
	total int
}

// tone returns a finite streamer playing one enveloped note
func tone(wave Waveform, freq float64, d time.Duration, gain float64) beep.Streamer {
	g := &toneGenerator{
		wave:  wave,
		freq:  freq,
		gain:  gain,
		sr:    sampleRate,
		total: sampleRate.N(d),
	}
	return beep.Take(g.total, g)
}

func (g *toneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		sample := g.gain * g.envelope() * g.oscillate(t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *toneGenerator) Err() error {
	return nil
}

// oscillate produces the raw waveform sample at time t seconds
func (g *toneGenerator) oscillate(t float64) float64 {
	phase := g.freq * t
	frac := phase - math.Floor(phase)

	switch g.wave {
	case WaveTriangle:
		return 4*math.Abs(frac-0.5) - 1
	case WaveSawtooth:
		return 2*frac - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// envelope applies a 10 ms linear attack and an exponential decay over
// the note's length
func (g *toneGenerator) envelope() float64 {
	attackSamples := g.sr.N(10 * time.Millisecond)
	env := 1.0
	if g.pos < attackSamples {
		env = float64(g.pos) / float64(attackSamples)
	}
	progress := float64(g.pos) / float64(g.total)
	return env * math.Exp(-3*progress)
}
