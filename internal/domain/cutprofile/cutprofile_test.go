package cutprofile

import (
	"errors"
	"testing"

	"clipstudio/internal/domain/timeline"
)

func TestDecode(t *testing.T) {
	t.Parallel()
	p, err := Decode([]byte(`{"segments":[{"start_time":1,"end_time":2.5,"reason":"hook"}],"estimated_duration":90}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Segments) != 1 || p.Segments[0].Reason != "hook" || p.EstimatedDuration != 90 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if _, err := Decode([]byte("not json")); !errors.Is(err, timeline.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad JSON, got %v", err)
	}
}

func TestApply_PreservesOrder(t *testing.T) {
	t.Parallel()
	p := Profile{Segments: []ProfileSegment{
		{StartTime: 40, EndTime: 50, Reason: "finale"},
		{StartTime: 0, EndTime: 10, Reason: "intro"},
		{StartTime: 20, EndTime: 25},
	}}
	tl, dropped, err := Apply(60, p, "talk.mp4")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %+v", dropped)
	}
	want := []float64{40, 0, 20}
	for i, seg := range tl {
		if seg.Start != want[i] {
			t.Fatalf("segment %d start = %v, want %v (order must be preserved)", i, seg.Start, want[i])
		}
		if seg.SourceRef != "talk.mp4" {
			t.Fatalf("segment %d source = %q", i, seg.SourceRef)
		}
	}
	if tl[0].Reason != "finale" {
		t.Fatalf("reason not carried: %+v", tl[0])
	}
}

func TestApply_DropsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		seg  ProfileSegment
	}{
		{"negative start", ProfileSegment{StartTime: -1, EndTime: 5}},
		{"zero length", ProfileSegment{StartTime: 5, EndTime: 5}},
		{"reversed", ProfileSegment{StartTime: 8, EndTime: 3}},
		{"past end", ProfileSegment{StartTime: 50, EndTime: 70}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{Segments: []ProfileSegment{tt.seg, {StartTime: 0, EndTime: 10}}}
			tl, dropped, err := Apply(60, p, "src")
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if len(tl) != 1 || tl[0].Start != 0 {
				t.Fatalf("valid segment missing: %+v", tl)
			}
			if len(dropped) != 1 || dropped[0].Index != 0 || dropped[0].Reason == "" {
				t.Fatalf("drop report = %+v", dropped)
			}
		})
	}
}

func TestApply_BoundaryValues(t *testing.T) {
	t.Parallel()
	// start at zero and end exactly at the source duration are both legal.
	p := Profile{Segments: []ProfileSegment{{StartTime: 0, EndTime: 60}}}
	tl, _, err := Apply(60, p, "src")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if tl[0].End != 60 {
		t.Fatalf("segment = %+v", tl[0])
	}
}

func TestApply_AllInvalid(t *testing.T) {
	t.Parallel()
	p := Profile{Segments: []ProfileSegment{
		{StartTime: 70, EndTime: 80},
		{StartTime: 9, EndTime: 2},
	}}
	_, dropped, err := Apply(60, p, "src")
	if !errors.Is(err, timeline.ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
	if len(dropped) != 2 {
		t.Fatalf("want both segments reported, got %+v", dropped)
	}
}

func TestApply_EmptyProfile(t *testing.T) {
	t.Parallel()
	if _, _, err := Apply(60, Profile{}, "src"); !errors.Is(err, timeline.ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
}
