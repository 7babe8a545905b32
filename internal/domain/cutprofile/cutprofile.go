// Package cutprofile turns externally authored cut instructions, human or
// AI generated, into a playback timeline.
package cutprofile

import (
	"encoding/json"
	"fmt"

	"clipstudio/internal/domain/timeline"
)

// Profile is an ordered list of cut instructions for one source. Order is
// meaningful: authors may put the best moments first.
type Profile struct {
	Segments          []ProfileSegment `json:"segments"`
	EstimatedDuration float64          `json:"estimated_duration,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

type ProfileSegment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Reason    string  `json:"reason,omitempty"`
}

// Decode parses profile JSON as uploaded or returned by a generator.
func Decode(data []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: cut profile is not valid JSON: %v", timeline.ErrInvalidConfig, err)
	}
	return p, nil
}

// Dropped reports one rejected profile segment so callers can log it.
type Dropped struct {
	Index  int
	Reason string
}

// Apply validates every profile segment against the source duration and
// builds the timeline from the survivors, in the order given. Invalid
// segments are dropped, not fatal; a profile with no valid segment at all
// fails with ErrEmptyTimeline.
func Apply(sourceDuration float64, p Profile, sourceRef string) (timeline.Timeline, []Dropped, error) {
	var (
		tl      timeline.Timeline
		dropped []Dropped
	)
	for i, seg := range p.Segments {
		switch {
		case seg.StartTime < 0:
			dropped = append(dropped, Dropped{i, fmt.Sprintf("start_time %v is negative", seg.StartTime)})
		case seg.EndTime <= seg.StartTime:
			dropped = append(dropped, Dropped{i, fmt.Sprintf("end_time %v is not after start_time %v", seg.EndTime, seg.StartTime)})
		case seg.EndTime > sourceDuration:
			dropped = append(dropped, Dropped{i, fmt.Sprintf("end_time %v exceeds source duration %v", seg.EndTime, sourceDuration)})
		default:
			tl = append(tl, timeline.Segment{
				TimeRange: timeline.TimeRange{Start: seg.StartTime, End: seg.EndTime},
				SourceRef: sourceRef,
				Reason:    seg.Reason,
			})
		}
	}
	if tl.Empty() {
		return nil, dropped, fmt.Errorf("%w: no valid segments in cut profile", timeline.ErrEmptyTimeline)
	}
	return tl, dropped, nil
}
