package timeline

import (
	"math"
	"testing"
)

func TestNewTimeRange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		start   float64
		end     float64
		wantErr bool
	}{
		{"valid", 0, 1.5, false},
		{"zero length", 2, 2, true},
		{"reversed", 3, 1, true},
		{"negative start", -0.5, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewTimeRange(tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", r)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := r.Duration(); got != tt.end-tt.start {
				t.Fatalf("duration = %v, want %v", got, tt.end-tt.start)
			}
		})
	}
}

func TestTimelineDuration_Overlap(t *testing.T) {
	t.Parallel()
	tl := Timeline{
		{TimeRange: TimeRange{Start: 0, End: 10}},
		{TimeRange: TimeRange{Start: 9.5, End: 14}},
		{TimeRange: TimeRange{Start: 2, End: 3}},
	}
	if got := tl.Duration(); got != 14 {
		t.Fatalf("duration = %v, want 14", got)
	}
	if Timeline(nil).Duration() != 0 {
		t.Fatal("empty timeline must have zero duration")
	}
}

func TestWindowAmplitudeDB(t *testing.T) {
	t.Parallel()
	silent := WindowAmplitudeDB(make([]float64, 1600))
	if silent > -300 {
		t.Fatalf("all-zero window should be near the epsilon floor, got %v dB", silent)
	}
	full := WindowAmplitudeDB([]float64{1, -1, 1, -1})
	if math.Abs(full) > 1e-9 {
		t.Fatalf("full-scale window should be ~0 dB, got %v", full)
	}
}

func TestTraceFromSamples(t *testing.T) {
	t.Parallel()
	samples := make([]float64, 1600) // one second at 1.6kHz
	for i := range samples {
		samples[i] = 0.5
	}
	tr := TraceFromSamples(samples, 1600, TraceWindow)
	if tr.Duration != 1.0 {
		t.Fatalf("duration = %v, want 1.0", tr.Duration)
	}
	if len(tr.Samples) != 10 {
		t.Fatalf("windows = %d, want 10", len(tr.Samples))
	}
	if tr.Samples[3].WindowStart != 0.3 {
		t.Fatalf("window 3 start = %v, want 0.3", tr.Samples[3].WindowStart)
	}
	wantDB := 20 * math.Log10(0.5)
	if math.Abs(tr.Samples[0].AmplitudeDB-wantDB) > 1e-9 {
		t.Fatalf("window 0 amplitude = %v, want %v", tr.Samples[0].AmplitudeDB, wantDB)
	}
}
