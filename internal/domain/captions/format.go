package captions

import (
	"fmt"
	"math"
	"strings"

	"clipstudio/internal/domain/timeline"
)

// Format names a caption serialization. Both share one timestamp law and
// differ in the millisecond separator and the VTT header.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat normalizes a requested output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSRT, FormatVTT:
		return f, nil
	}
	return "", fmt.Errorf("%w: unsupported subtitle format %q", timeline.ErrInvalidConfig, s)
}

func (f Format) Extension() string { return string(f) }

// Timestamp renders seconds as HH:MM:SS plus three millisecond digits,
// comma separated for SRT and period separated for VTT. Rounding is to the
// nearest millisecond so serialized values survive a reparse.
func Timestamp(seconds float64, f Format) string {
	ms := int(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	sep := ","
	if f == FormatVTT {
		sep = "."
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", ms/3600000, ms/60000%60, ms/1000%60, sep, ms%1000)
}

// ParseTimestamp reads a timestamp in either separator back to seconds.
func ParseTimestamp(raw string) (float64, error) {
	normalized := strings.Replace(strings.TrimSpace(raw), ".", ",", 1)
	var h, m, s, ms int
	if _, err := fmt.Sscanf(normalized, "%d:%d:%d,%d", &h, &m, &s, &ms); err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// Render serializes the caption sequence: 1-indexed entries, each an index
// line, a time-range line, the text and a blank separator. VTT carries the
// WEBVTT header; cue numbering is kept there too.
func Render(tl timeline.Timeline, f Format) (string, error) {
	if f != FormatSRT && f != FormatVTT {
		return "", fmt.Errorf("%w: unsupported subtitle format %q", timeline.ErrInvalidConfig, f)
	}
	var b strings.Builder
	if f == FormatVTT {
		b.WriteString("WEBVTT\n\n")
	}
	for i, seg := range tl {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, Timestamp(seg.Start, f), Timestamp(seg.End, f), seg.Text)
	}
	return b.String(), nil
}
