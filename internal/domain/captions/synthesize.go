// Package captions synthesizes timed captions from transcripts and writes
// them as SRT or WebVTT.
package captions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"clipstudio/internal/domain/timeline"
)

// Reading-speed model for plain text transcripts: ~150 words per minute,
// with a floor so no caption flashes by unreadably fast.
const (
	wordsPerSecond     = 2.5
	minCaptionDuration = 1.0
)

type inputKind int

const (
	inputStructured inputKind = iota
	inputPlainText
)

// parsed is the transcript classification result; exactly one variant is
// populated depending on kind.
type parsed struct {
	kind    inputKind
	entries []structuredEntry
	lines   []string
}

type structuredEntry struct {
	start float64
	end   float64
	text  string
}

type structuredDoc struct {
	Segments []struct {
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
		Text      string  `json:"text"`
	} `json:"segments"`
	Transcript []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"transcript"`
}

// classify attempts the structured parse first. Input opening with a JSON
// object is committed to the structured path; everything else is timed as
// plain text. Missing numeric fields default to zero, missing text to "".
func classify(data []byte) (parsed, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return parsed{kind: inputPlainText, lines: splitLines(string(trimmed))}, nil
	}
	var doc structuredDoc
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return parsed{}, fmt.Errorf("%w: structured transcript is not valid JSON: %v", timeline.ErrInvalidConfig, err)
	}
	p := parsed{kind: inputStructured}
	switch {
	case doc.Segments != nil:
		for _, s := range doc.Segments {
			p.entries = append(p.entries, structuredEntry{s.StartTime, s.EndTime, s.Text})
		}
	case doc.Transcript != nil:
		for _, s := range doc.Transcript {
			p.entries = append(p.entries, structuredEntry{s.Start, s.End, s.Text})
		}
	}
	return p, nil
}

// splitLines prefers paragraph boundaries; a transcript without any blank
// line falls back to one caption per line.
func splitLines(text string) []string {
	blocks := strings.Split(text, "\n\n")
	if len(blocks) <= 1 {
		blocks = strings.Split(text, "\n")
	}
	return blocks
}

// timeLines assigns each non-empty line a duration from the reading-speed
// model and advances a running clock, so captions run back to back.
func timeLines(lines []string) timeline.Timeline {
	var (
		tl    timeline.Timeline
		clock float64
	)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		duration := float64(len(strings.Fields(line))) / wordsPerSecond
		if duration < minCaptionDuration {
			duration = minCaptionDuration
		}
		tl = append(tl, timeline.Segment{
			TimeRange: timeline.TimeRange{Start: clock, End: clock + duration},
			Text:      line,
		})
		clock += duration
	}
	return tl
}

// Synthesize turns a transcript, structured or plain, into timed captions.
// A transcript that yields no captions at all fails with ErrEmptyTimeline.
func Synthesize(data []byte) (timeline.Timeline, error) {
	p, err := classify(data)
	if err != nil {
		return nil, err
	}
	var tl timeline.Timeline
	switch p.kind {
	case inputStructured:
		for _, e := range p.entries {
			tl = append(tl, timeline.Segment{
				TimeRange: timeline.TimeRange{Start: e.start, End: e.end},
				Text:      e.text,
			})
		}
	default:
		tl = timeLines(p.lines)
	}
	if tl.Empty() {
		return nil, fmt.Errorf("%w: transcript produced no captions", timeline.ErrEmptyTimeline)
	}
	return tl, nil
}

// Style presets wrap caption text in player markup after timing is fixed.
type Style string

const (
	StyleDefault Style = "default"
	StyleBold    Style = "bold"
	StyleItalic  Style = "italic"
	StyleModern  Style = "modern"
)

// ApplyStyle returns a restyled copy; timing is untouched. Unknown style
// keywords leave the text as-is, which is the long-standing endpoint
// behavior.
func ApplyStyle(tl timeline.Timeline, style Style) timeline.Timeline {
	out := make(timeline.Timeline, len(tl))
	copy(out, tl)
	for i := range out {
		switch style {
		case StyleBold:
			out[i].Text = "<b>" + out[i].Text + "</b>"
		case StyleItalic:
			out[i].Text = "<i>" + out[i].Text + "</i>"
		case StyleModern:
			out[i].Text = `<font color="#FFFFFF" face="Arial">` + out[i].Text + `</font>`
		}
	}
	return out
}
