package timeline

import "math"

// Amplitude analysis uses fixed 0.1s windows.
const TraceWindow = 0.1

// epsilon keeps the logarithm defined for all-zero windows.
var epsilon = math.Nextafter(1, 2) - 1

// AmplitudeSample is one analysis window of decoded audio.
type AmplitudeSample struct {
	WindowStart float64 `json:"window_start"`
	AmplitudeDB float64 `json:"amplitude_db"`
}

// AmplitudeTrace is the per-window loudness of a source's audio track,
// derived once and read-only afterwards.
type AmplitudeTrace struct {
	Window   float64           `json:"window"`
	Duration float64           `json:"duration"`
	Samples  []AmplitudeSample `json:"samples"`
}

// WindowAmplitudeDB converts one window of normalized PCM samples to
// decibels: 20*log10(rms + eps).
func WindowAmplitudeDB(window []float64) float64 {
	if len(window) == 0 {
		return 20 * math.Log10(epsilon)
	}
	var sum float64
	for _, v := range window {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(window)))
	return 20 * math.Log10(rms+epsilon)
}

// TraceFromSamples windows a normalized mono PCM stream into an amplitude
// trace. The tail window is kept even when shorter than the full window
// size.
func TraceFromSamples(samples []float64, sampleRate int, window float64) AmplitudeTrace {
	if sampleRate <= 0 || window <= 0 {
		return AmplitudeTrace{Window: window}
	}
	perWindow := int(window * float64(sampleRate))
	if perWindow <= 0 {
		perWindow = 1
	}
	tr := AmplitudeTrace{
		Window:   window,
		Duration: float64(len(samples)) / float64(sampleRate),
	}
	for off := 0; off < len(samples); off += perWindow {
		end := off + perWindow
		if end > len(samples) {
			end = len(samples)
		}
		tr.Samples = append(tr.Samples, AmplitudeSample{
			WindowStart: float64(off) / float64(sampleRate),
			AmplitudeDB: WindowAmplitudeDB(samples[off:end]),
		})
	}
	return tr
}
