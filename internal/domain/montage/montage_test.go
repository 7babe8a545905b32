package montage

import (
	"errors"
	"math"
	"testing"

	"clipstudio/internal/domain/effects"
	"clipstudio/internal/domain/timeline"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAssemble_NoExtension(t *testing.T) {
	t.Parallel()
	intro := Source{Ref: "intro", Duration: 10}
	clips := []Source{{Ref: "a", Duration: 10}, {Ref: "b", Duration: 10}}
	plan, err := Assemble(intro, clips, effects.MontageDefaults(), 20, 0.5)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if plan.Repetitions != 1 || plan.TrimTo != 0 {
		t.Fatalf("no extension expected: %+v", plan)
	}
	// Intro keeps its 10s; each clip runs 8s after the 1.25x speed-up.
	// Joins overlap by 0.5s: [0,10] [9.5,17.5] [17,25].
	if len(plan.Timeline) != 3 {
		t.Fatalf("want 3 segments, got %+v", plan.Timeline)
	}
	if !almost(plan.Timeline[0].End, 10) || plan.Timeline[0].SourceRef != "intro" {
		t.Fatalf("intro segment = %+v", plan.Timeline[0])
	}
	if !almost(plan.Timeline[1].Start, 9.5) || !almost(plan.Timeline[1].End, 17.5) {
		t.Fatalf("first clip segment = %+v", plan.Timeline[1])
	}
	if !almost(plan.Timeline[2].Start, 17) || !almost(plan.Timeline[2].End, 25) {
		t.Fatalf("second clip segment = %+v", plan.Timeline[2])
	}
	// Past the target already, so the duration stays 25: the target is a
	// floor, not a ceiling.
	if !almost(plan.Duration, 25) || !almost(plan.BaseDuration, 25) {
		t.Fatalf("duration = %v, want 25", plan.Duration)
	}
}

func TestAssemble_ExtensionHitsTargetExactly(t *testing.T) {
	t.Parallel()
	intro := Source{Ref: "intro", Duration: 4}
	clips := []Source{{Ref: "a", Duration: 2.5}} // 2.0s after speed-up
	plan, err := Assemble(intro, clips, effects.MontageDefaults(), 20, 0.5)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	// Base pass: [0,4] [3.5,5.5] -> 5.5s. ceil(20/5.5) = 4 repetitions at a
	// 5.0s stride, trimmed back to 20.
	if !almost(plan.BaseDuration, 5.5) {
		t.Fatalf("base duration = %v, want 5.5", plan.BaseDuration)
	}
	if plan.Repetitions != 4 {
		t.Fatalf("repetitions = %d, want 4", plan.Repetitions)
	}
	if !almost(plan.TrimTo, 20) || !almost(plan.Duration, 20) {
		t.Fatalf("trimmed duration = %v (TrimTo %v), want exactly 20", plan.Duration, plan.TrimTo)
	}
	if len(plan.Timeline) != 8 {
		t.Fatalf("want 8 segments across 4 repetitions, got %d", len(plan.Timeline))
	}
	last := plan.Timeline[len(plan.Timeline)-1]
	if !almost(last.Start, 18.5) || !almost(last.End, 20) {
		t.Fatalf("tail segment = %+v, want [18.5, 20]", last)
	}
}

func TestAssemble_SingleClipLoop(t *testing.T) {
	t.Parallel()
	plan, err := Assemble(Source{Ref: "intro", Duration: 2}, nil, nil, 5, 0.5)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if plan.Repetitions != 3 {
		t.Fatalf("repetitions = %d, want 3", plan.Repetitions)
	}
	if !almost(plan.Duration, 5) {
		t.Fatalf("duration = %v, want 5", plan.Duration)
	}
}

func TestAssemble_HardCuts(t *testing.T) {
	t.Parallel()
	plan, err := Assemble(Source{Ref: "intro", Duration: 3}, []Source{{Ref: "a", Duration: 5}}, nil, 1, 0)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !almost(plan.Timeline[1].Start, 3) || !almost(plan.Duration, 8) {
		t.Fatalf("zero crossfade should abut segments: %+v", plan.Timeline)
	}
}

func TestAssemble_ConfigErrors(t *testing.T) {
	t.Parallel()
	intro := Source{Ref: "intro", Duration: 10}
	tests := []struct {
		name      string
		clips     []Source
		specs     []effects.Spec
		target    float64
		crossfade float64
	}{
		{"zero target", []Source{{Ref: "a", Duration: 5}}, nil, 0, 0.5},
		{"negative target", []Source{{Ref: "a", Duration: 5}}, nil, -3, 0.5},
		{"negative crossfade", []Source{{Ref: "a", Duration: 5}}, nil, 10, -0.1},
		{"crossfade swallows clip", []Source{{Ref: "a", Duration: 0.4}}, nil, 10, 0.5},
		{"bad effect", []Source{{Ref: "a", Duration: 5}}, []effects.Spec{{Kind: "sepia", Factor: 1}}, 10, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(intro, tt.clips, tt.specs, tt.target, tt.crossfade)
			if !errors.Is(err, timeline.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestAssemble_CrossfadeFitsAfterEffects(t *testing.T) {
	t.Parallel()
	// 0.6s raw shrinks to 0.48s at 1.25x, which a 0.5s crossfade no longer
	// fits inside.
	_, err := Assemble(Source{Ref: "intro", Duration: 10}, []Source{{Ref: "a", Duration: 0.6}}, effects.MontageDefaults(), 10, 0.5)
	if !errors.Is(err, timeline.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
