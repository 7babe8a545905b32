// Package timeline holds the time-indexed data model shared by every
// processing operation: ranges, segments, ordered timelines and audio
// amplitude traces.
package timeline

import "fmt"

// TimeRange is a half-open interval of source or output time in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewTimeRange validates start/end before constructing the range.
func NewTimeRange(start, end float64) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if !r.Valid() {
		return TimeRange{}, fmt.Errorf("invalid time range [%v, %v)", start, end)
	}
	return r, nil
}

func (r TimeRange) Valid() bool {
	return r.Start >= 0 && r.End > r.Start
}

func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// Segment is an immutable slice of media with provenance. Transforms build
// new segments rather than mutating existing ones.
type Segment struct {
	TimeRange
	SourceRef string `json:"source_ref,omitempty"`
	Text      string `json:"text,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Timeline is an ordered segment sequence; insertion order is playback
// order. Segments may overlap (crossfades) or leave gaps (arrangements),
// consumers must not assume continuity.
type Timeline []Segment

// Duration is the furthest segment end, not the sum of segment lengths;
// overlapping segments share output time.
func (t Timeline) Duration() float64 {
	var max float64
	for _, s := range t {
		if s.End > max {
			max = s.End
		}
	}
	return max
}

func (t Timeline) Empty() bool { return len(t) == 0 }
