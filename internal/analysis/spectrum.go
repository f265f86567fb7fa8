package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

// Spectrum is the one-sided power spectrum of a uniformly sampled signal.
// Freqs are in Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean of signal and returns |X_k|^2 / n for
// k = 0..n/2. Regular motion shows isolated peaks; chaotic motion spreads
// power over a broad band.
func PowerSpectrum(signal []float64, dt float64) Spectrum {
	n := len(signal)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range signal {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	s := Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		mag := cmplx.Abs(coeffs[k])
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Power[k] = mag * mag / float64(n)
	}
	return s
}

// Dominant returns the frequency and power of the strongest non-DC bin.
func (s Spectrum) Dominant() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freqs[k], s.Power[k]
		}
	}
	return freq, power
}

// Flatness is the ratio of the geometric to the arithmetic mean of the
// non-DC power: near 1 for broadband signals, near 0 for a few sharp lines.
func (s Spectrum) Flatness() float64 {
	if len(s.Power) < 2 {
		return 0
	}
	logSum, sum := 0.0, 0.0
	for _, p := range s.Power[1:] {
		p = math.Max(p, 1e-300)
		logSum += math.Log(p)
		sum += p
	}
	n := float64(len(s.Power) - 1)
	if sum == 0 {
		return 0
	}
	return math.Exp(logSum/n) / (sum / n)
}

// ComponentSeries samples x[index] at every step of an uncontrolled run.
func ComponentSeries(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	index int,
	dt, duration float64,
) []float64 {
	portrait := GeneratePhasePortrait(dyn, integ, x0, index, index, dt, duration)
	if portrait == nil {
		return nil
	}
	series := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		series[i] = p.X
	}
	return series
}
