// Package montage plans crossfaded concatenation with duration-target
// looping. Planning is pure: it works over probed clip durations and leaves
// materialization to the caller.
package montage

import (
	"fmt"
	"math"

	"clipstudio/internal/domain/effects"
	"clipstudio/internal/domain/timeline"
)

// Source is one input clip with its probed duration in seconds.
type Source struct {
	Ref      string
	Duration float64
}

// Plan describes the assembly: the output timeline, how many times the base
// sequence repeats, and where the tail is cut. Repetitions is 1 when no
// extension is needed; TrimTo is zero unless the tail must be cut.
type Plan struct {
	Timeline     timeline.Timeline
	BaseDuration float64
	Repetitions  int
	TrimTo       float64
	Duration     float64
}

// Assemble plans a montage: the intro plays first at original fidelity,
// every other clip carries the effect list in order, and consecutive clips
// join through a crossfade window (each start offset -crossfade from the
// naive end of its predecessor). When the assembled sequence is shorter
// than the target, the entire sequence repeats, with the same crossfade at
// repetition boundaries, until the target is reached, and the tail is
// trimmed to it. A sequence already at or past the target is returned
// untouched: the target is a floor, not a ceiling.
func Assemble(intro Source, clips []Source, specs []effects.Spec, targetDuration, crossfade float64) (Plan, error) {
	if targetDuration <= 0 {
		return Plan{}, fmt.Errorf("%w: target duration must be positive, got %v", timeline.ErrInvalidConfig, targetDuration)
	}
	if crossfade < 0 {
		return Plan{}, fmt.Errorf("%w: crossfade duration must not be negative, got %v", timeline.ErrInvalidConfig, crossfade)
	}
	if err := effects.Validate(specs); err != nil {
		return Plan{}, err
	}

	// Post-effect durations; the intro keeps its own.
	refs := []string{intro.Ref}
	durs := []float64{intro.Duration}
	for _, c := range clips {
		refs = append(refs, c.Ref)
		durs = append(durs, effects.ScaleDuration(c.Duration, specs))
	}

	// Every clip participates in a join once there are two of them, so the
	// crossfade must fit inside each one.
	if crossfade > 0 && len(durs) > 1 {
		for i, d := range durs {
			if crossfade >= d {
				return Plan{}, fmt.Errorf("%w: crossfade %vs does not fit inside clip %s (%vs)",
					timeline.ErrInvalidConfig, crossfade, refs[i], d)
			}
		}
	}

	base := make(timeline.Timeline, 0, len(durs))
	pos := 0.0
	for i, d := range durs {
		if i > 0 {
			pos -= crossfade
		}
		base = append(base, timeline.Segment{
			TimeRange: timeline.TimeRange{Start: pos, End: pos + d},
			SourceRef: refs[i],
		})
		pos += d
	}
	current := base.Duration()
	if current <= 0 {
		return Plan{}, fmt.Errorf("%w: montage inputs have no playable duration", timeline.ErrInvalidConfig)
	}

	if current >= targetDuration {
		return Plan{
			Timeline:     base,
			BaseDuration: current,
			Repetitions:  1,
			Duration:     current,
		}, nil
	}

	reps := int(math.Ceil(targetDuration / current))
	if crossfade > 0 && crossfade >= current {
		return Plan{}, fmt.Errorf("%w: crossfade %vs does not fit inside the assembled sequence (%vs)",
			timeline.ErrInvalidConfig, crossfade, current)
	}

	step := current - crossfade
	extended := make(timeline.Timeline, 0, len(base)*reps)
	for r := 0; r < reps; r++ {
		off := float64(r) * step
		for _, seg := range base {
			extended = append(extended, timeline.Segment{
				TimeRange: timeline.TimeRange{Start: seg.Start + off, End: seg.End + off},
				SourceRef: seg.SourceRef,
			})
		}
	}

	out := make(timeline.Timeline, 0, len(extended))
	for _, seg := range extended {
		if seg.Start >= targetDuration {
			continue
		}
		if seg.End > targetDuration {
			seg.End = targetDuration
		}
		out = append(out, seg)
	}
	return Plan{
		Timeline:     out,
		BaseDuration: current,
		Repetitions:  reps,
		TrimTo:       targetDuration,
		Duration:     out.Duration(),
	}, nil
}
