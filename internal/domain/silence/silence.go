// Package silence detects the spans of an audio track worth keeping.
package silence

import "clipstudio/internal/domain/timeline"

// Detect walks an amplitude trace with a two-state machine and returns the
// non-silent spans, in order. A span is kept only when it lasts at least
// minDuration seconds; shorter bursts are treated as noise rather than
// content. The same rule applies to a span still open when the trace ends.
//
// minDuration has always been called the minimum silence duration in the
// request parameters even though it bounds the kept (non-silent) span;
// renaming it would change the public API.
func Detect(trace timeline.AmplitudeTrace, minDuration, thresholdDB float64) []timeline.TimeRange {
	var (
		spans []timeline.TimeRange
		loud  bool
		start float64
	)
	for _, s := range trace.Samples {
		above := s.AmplitudeDB > thresholdDB
		switch {
		case above && !loud:
			loud = true
			start = s.WindowStart
		case !above && loud:
			loud = false
			if s.WindowStart-start >= minDuration {
				spans = append(spans, timeline.TimeRange{Start: start, End: s.WindowStart})
			}
		}
	}
	if loud && trace.Duration-start >= minDuration {
		spans = append(spans, timeline.TimeRange{Start: start, End: trace.Duration})
	}
	return spans
}

// Keep converts detected spans into a timeline bound to one source.
func Keep(spans []timeline.TimeRange, sourceRef string) timeline.Timeline {
	tl := make(timeline.Timeline, 0, len(spans))
	for _, r := range spans {
		tl = append(tl, timeline.Segment{TimeRange: r, SourceRef: sourceRef})
	}
	return tl
}
