// Package arrange resolves user-authored clip sequencing: intro/outro
// placement and explicit (clip, sub-range) ordering joined by hard cuts.
package arrange

import (
	"encoding/json"
	"fmt"

	"clipstudio/internal/domain/timeline"
)

// Entry picks a sub-range of one base clip for an output position. A nil or
// zero EndTime means "to the end of the clip".
type Entry struct {
	ClipIndex int      `json:"clip_index"`
	StartTime float64  `json:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

// Arrangement is the optional explicit ordering. When its sequence is
// non-empty it replaces the base clip order entirely.
type Arrangement struct {
	Sequence []Entry `json:"sequence"`
}

// Decode parses arrangement JSON.
func Decode(data []byte) (Arrangement, error) {
	var a Arrangement
	if err := json.Unmarshal(data, &a); err != nil {
		return Arrangement{}, fmt.Errorf("%w: arrangement is not valid JSON: %v", timeline.ErrInvalidConfig, err)
	}
	return a, nil
}

// Source is one input clip with its probed duration in seconds.
type Source struct {
	Ref      string
	Duration float64
}

// Skipped reports one ignored arrangement entry.
type Skipped struct {
	Index  int
	Reason string
}

// Render builds the playback timeline. The base list is clips with intro
// prepended and outro appended when present, regardless of arrangement.
// Segment ranges are source-clip coordinates; playback order is segment
// order, joined by hard cuts.
//
// With an arrangement, each entry resolves against the base list;
// out-of-range indices and unplayable sub-ranges are skipped with a note.
// An arrangement whose every entry is skipped fails with ErrEmptyTimeline
// rather than silently falling back to the base order.
func Render(clips []Source, arr *Arrangement, intro, outro *Source) (timeline.Timeline, []Skipped, error) {
	base := make([]Source, 0, len(clips)+2)
	if intro != nil {
		base = append(base, *intro)
	}
	base = append(base, clips...)
	if outro != nil {
		base = append(base, *outro)
	}
	if len(base) == 0 {
		return nil, nil, fmt.Errorf("%w: no clips to render", timeline.ErrInvalidConfig)
	}

	if arr == nil || len(arr.Sequence) == 0 {
		tl := make(timeline.Timeline, 0, len(base))
		for _, c := range base {
			tl = append(tl, timeline.Segment{
				TimeRange: timeline.TimeRange{Start: 0, End: c.Duration},
				SourceRef: c.Ref,
			})
		}
		return tl, nil, nil
	}

	var (
		tl      timeline.Timeline
		skipped []Skipped
	)
	for i, e := range arr.Sequence {
		if e.ClipIndex < 0 || e.ClipIndex >= len(base) {
			skipped = append(skipped, Skipped{i, fmt.Sprintf("clip_index %d outside base list of %d clips", e.ClipIndex, len(base))})
			continue
		}
		clip := base[e.ClipIndex]
		end := clip.Duration
		if e.EndTime != nil && *e.EndTime != 0 {
			end = *e.EndTime
		}
		switch {
		case e.StartTime < 0:
			skipped = append(skipped, Skipped{i, fmt.Sprintf("start_time %v is negative", e.StartTime)})
		case end <= e.StartTime:
			skipped = append(skipped, Skipped{i, fmt.Sprintf("end_time %v is not after start_time %v", end, e.StartTime)})
		case end > clip.Duration:
			skipped = append(skipped, Skipped{i, fmt.Sprintf("end_time %v exceeds clip %s duration %v", end, clip.Ref, clip.Duration)})
		default:
			tl = append(tl, timeline.Segment{
				TimeRange: timeline.TimeRange{Start: e.StartTime, End: end},
				SourceRef: clip.Ref,
			})
		}
	}
	if tl.Empty() {
		return nil, skipped, fmt.Errorf("%w: arrangement produced no playable entries", timeline.ErrEmptyTimeline)
	}
	return tl, skipped, nil
}
