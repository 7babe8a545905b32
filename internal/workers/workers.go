// Package workers runs the processing operations end to end: resolve stored
// inputs, plan the timeline in the domain packages, drive the codec to
// materialize it, and hand the result name back for the HTTP layer.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipstudio/internal/domain/arrange"
	"clipstudio/internal/domain/captions"
	"clipstudio/internal/domain/cutprofile"
	"clipstudio/internal/domain/effects"
	"clipstudio/internal/domain/montage"
	"clipstudio/internal/domain/overlay"
	"clipstudio/internal/domain/silence"
	"clipstudio/internal/domain/timeline"
	"clipstudio/internal/ports"
	"clipstudio/internal/storage"
)

// Form-level defaults for the tunable operations.
const (
	DefaultMinSilence       = 0.5
	DefaultSilenceThreshold = -40.0
	DefaultMontageTarget    = 60.0
	DefaultMontageCrossfade = 0.5
)

type Deps struct {
	Codec    ports.MediaCodec
	Profiles ports.ProfileGenerator
	Files    *storage.Store
	Log      *slog.Logger
}

type Workers struct{ d Deps }

func New(d Deps) Workers {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return Workers{d: d}
}

type ProfileResult struct {
	Profile    cutprofile.Profile `json:"profile"`
	OutputFile string             `json:"output_file"`
}

type RenderResult struct {
	OutputFile string   `json:"output_file"`
	Duration   float64  `json:"duration"`
	Segments   int      `json:"segments"`
	Warnings   []string `json:"warnings,omitempty"`
}

type SubtitleResult struct {
	OutputFile string `json:"output_file"`
	Entries    int    `json:"entries"`
	Format     string `json:"format"`
}

type OverlayResult struct {
	OutputFile string              `json:"output_file"`
	Duration   float64             `json:"duration"`
	Placements []overlay.Placement `json:"placements"`
}

// GenerateCutProfile asks the profile generator for cut segments based on
// the transcript and stores the profile JSON next to the other outputs.
func (w Workers) GenerateCutProfile(ctx context.Context, videoPath, transcriptPath string) (ProfileResult, error) {
	transcript, err := os.ReadFile(transcriptPath)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("read transcript: %w", err)
	}
	profile, err := w.d.Profiles.Generate(ctx, filepath.Base(videoPath), string(transcript))
	if err != nil {
		return ProfileResult{}, err
	}

	name := "cut_profile_" + stem(filepath.Base(videoPath)) + ".json"
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return ProfileResult{}, fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(w.d.Files.OutputPath(name), data, 0o644); err != nil {
		return ProfileResult{}, fmt.Errorf("write profile: %w", err)
	}

	w.d.Log.Info("cut profile generated",
		"video", filepath.Base(videoPath), "segments", len(profile.Segments), "output", name)
	return ProfileResult{Profile: profile, OutputFile: name}, nil
}

// CutWithProfile keeps the profile's valid segments of the source video, in
// profile order, and renders them as one hard-cut sequence.
func (w Workers) CutWithProfile(ctx context.Context, videoPath string, profileJSON []byte) (RenderResult, error) {
	profile, err := cutprofile.Decode(profileJSON)
	if err != nil {
		return RenderResult{}, err
	}

	var open []ports.Clip
	defer func() { w.closeAll(open) }()

	src, err := w.d.Codec.Open(ctx, videoPath)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, src)

	tl, dropped, err := cutprofile.Apply(src.Duration, profile, filepath.Base(videoPath))
	if err != nil {
		return RenderResult{}, err
	}
	warnings := w.dropWarnings(dropped)

	parts := make([]ports.Clip, 0, len(tl))
	for _, seg := range tl {
		part, err := w.d.Codec.Subclip(ctx, src, seg.Start, seg.End)
		if err != nil {
			return RenderResult{}, err
		}
		open = append(open, part)
		parts = append(parts, part)
	}
	joined, err := w.d.Codec.Concatenate(ctx, parts, 0)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, joined)

	name := "cut_" + filepath.Base(videoPath)
	if err := w.d.Codec.Materialize(ctx, joined, w.d.Files.OutputPath(name)); err != nil {
		return RenderResult{}, err
	}

	w.d.Log.Info("video cut", "video", filepath.Base(videoPath), "segments", len(tl), "output", name)
	return RenderResult{OutputFile: name, Duration: joined.Duration, Segments: len(tl), Warnings: warnings}, nil
}

// RemoveSilence drops every stretch of audio at or below the threshold,
// keeping the sufficiently long loud spans joined by hard cuts.
func (w Workers) RemoveSilence(ctx context.Context, mediaPath string, minSilence, thresholdDB float64) (RenderResult, error) {
	if minSilence <= 0 {
		return RenderResult{}, fmt.Errorf("%w: min silence duration must be positive, got %v", timeline.ErrInvalidConfig, minSilence)
	}

	var open []ports.Clip
	defer func() { w.closeAll(open) }()

	src, err := w.d.Codec.Open(ctx, mediaPath)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, src)

	trace, err := w.d.Codec.AmplitudeTrace(ctx, src, timeline.TraceWindow)
	if err != nil {
		return RenderResult{}, err
	}
	spans := silence.Detect(trace, minSilence, thresholdDB)
	if len(spans) == 0 {
		return RenderResult{}, fmt.Errorf("%w: no audio above the silence threshold", timeline.ErrEmptyTimeline)
	}

	parts := make([]ports.Clip, 0, len(spans))
	for _, span := range spans {
		part, err := w.d.Codec.Subclip(ctx, src, span.Start, span.End)
		if err != nil {
			return RenderResult{}, err
		}
		open = append(open, part)
		parts = append(parts, part)
	}
	joined, err := w.d.Codec.Concatenate(ctx, parts, 0)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, joined)

	name := "nosilence_" + filepath.Base(mediaPath)
	if err := w.d.Codec.Materialize(ctx, joined, w.d.Files.OutputPath(name)); err != nil {
		return RenderResult{}, err
	}

	w.d.Log.Info("silence removed", "media", filepath.Base(mediaPath), "kept", len(spans), "output", name)
	return RenderResult{OutputFile: name, Duration: joined.Duration, Segments: len(spans)}, nil
}

// AssembleMontage builds the effect-boosted crossfaded montage: intro at
// original fidelity, every other clip through the effect list, the whole
// sequence looped and trimmed until it reaches the target duration.
func (w Workers) AssembleMontage(ctx context.Context, introPath string, clipPaths []string, specs []effects.Spec, targetDuration, crossfade float64) (RenderResult, error) {
	if specs == nil {
		specs = effects.MontageDefaults()
	}

	var open []ports.Clip
	defer func() { w.closeAll(open) }()

	intro, err := w.d.Codec.Open(ctx, introPath)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, intro)

	clips := make([]ports.Clip, 0, len(clipPaths))
	sources := make([]montage.Source, 0, len(clipPaths))
	for _, p := range clipPaths {
		c, err := w.d.Codec.Open(ctx, p)
		if err != nil {
			return RenderResult{}, err
		}
		open = append(open, c)
		clips = append(clips, c)
		sources = append(sources, montage.Source{Ref: c.ID, Duration: c.Duration})
	}

	plan, err := montage.Assemble(
		montage.Source{Ref: intro.ID, Duration: intro.Duration},
		sources, specs, targetDuration, crossfade,
	)
	if err != nil {
		return RenderResult{}, err
	}

	processed := []ports.Clip{intro}
	for _, c := range clips {
		cur := c
		for _, spec := range specs {
			next, err := w.d.Codec.ApplyEffect(ctx, cur, spec)
			if err != nil {
				return RenderResult{}, err
			}
			open = append(open, next)
			cur = next
		}
		processed = append(processed, cur)
	}

	assembled, err := w.d.Codec.Concatenate(ctx, processed, crossfade)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, assembled)

	final := assembled
	if plan.Repetitions > 1 {
		seq := make([]ports.Clip, plan.Repetitions)
		for i := range seq {
			seq[i] = assembled
		}
		extended, err := w.d.Codec.Concatenate(ctx, seq, crossfade)
		if err != nil {
			return RenderResult{}, err
		}
		open = append(open, extended)
		final = extended

		if plan.TrimTo > 0 && extended.Duration > plan.TrimTo {
			trimmed, err := w.d.Codec.Subclip(ctx, extended, 0, plan.TrimTo)
			if err != nil {
				return RenderResult{}, err
			}
			open = append(open, trimmed)
			final = trimmed
		}
	}

	name := "satisfy_montage_" + filepath.Base(introPath)
	if err := w.d.Codec.Materialize(ctx, final, w.d.Files.OutputPath(name)); err != nil {
		return RenderResult{}, err
	}

	w.d.Log.Info("montage assembled",
		"intro", filepath.Base(introPath), "clips", len(clipPaths),
		"repetitions", plan.Repetitions, "duration", plan.Duration, "output", name)
	return RenderResult{OutputFile: name, Duration: plan.Duration, Segments: len(plan.Timeline)}, nil
}

// RenderArrangement concatenates clips with optional intro/outro and an
// optional explicit (clip, sub-range) ordering.
func (w Workers) RenderArrangement(ctx context.Context, clipPaths []string, arrangementJSON []byte, introPath, outroPath string) (RenderResult, error) {
	if len(clipPaths) == 0 {
		return RenderResult{}, fmt.Errorf("%w: no clips to render", timeline.ErrInvalidConfig)
	}

	var arr *arrange.Arrangement
	if len(arrangementJSON) > 0 {
		a, err := arrange.Decode(arrangementJSON)
		if err != nil {
			return RenderResult{}, err
		}
		arr = &a
	}

	var open []ports.Clip
	defer func() { w.closeAll(open) }()

	byRef := map[string]ports.Clip{}
	openSource := func(path string) (*arrange.Source, error) {
		c, err := w.d.Codec.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		open = append(open, c)
		byRef[c.ID] = c
		return &arrange.Source{Ref: c.ID, Duration: c.Duration}, nil
	}

	var intro, outro *arrange.Source
	if introPath != "" {
		s, err := openSource(introPath)
		if err != nil {
			return RenderResult{}, err
		}
		intro = s
	}

	clips := make([]arrange.Source, 0, len(clipPaths))
	for _, p := range clipPaths {
		s, err := openSource(p)
		if err != nil {
			return RenderResult{}, err
		}
		clips = append(clips, *s)
	}

	if outroPath != "" {
		s, err := openSource(outroPath)
		if err != nil {
			return RenderResult{}, err
		}
		outro = s
	}

	tl, skipped, err := arrange.Render(clips, arr, intro, outro)
	if err != nil {
		return RenderResult{}, err
	}
	warnings := w.skipWarnings(skipped)

	parts := make([]ports.Clip, 0, len(tl))
	for _, seg := range tl {
		srcClip := byRef[seg.SourceRef]
		part, err := w.d.Codec.Subclip(ctx, srcClip, seg.Start, seg.End)
		if err != nil {
			return RenderResult{}, err
		}
		open = append(open, part)
		parts = append(parts, part)
	}
	joined, err := w.d.Codec.Concatenate(ctx, parts, 0)
	if err != nil {
		return RenderResult{}, err
	}
	open = append(open, joined)

	name := "final_render_" + filepath.Base(clipPaths[0])
	if err := w.d.Codec.Materialize(ctx, joined, w.d.Files.OutputPath(name)); err != nil {
		return RenderResult{}, err
	}

	w.d.Log.Info("arrangement rendered", "clips", len(clipPaths), "segments", len(tl), "output", name)
	return RenderResult{OutputFile: name, Duration: joined.Duration, Segments: len(tl), Warnings: warnings}, nil
}

// GenerateSubtitles synthesizes caption timing from a transcript file and
// writes the rendered subtitle document.
func (w Workers) GenerateSubtitles(ctx context.Context, transcriptPath, style, format string) (SubtitleResult, error) {
	_ = ctx

	f, err := captions.ParseFormat(format)
	if err != nil {
		return SubtitleResult{}, err
	}
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return SubtitleResult{}, fmt.Errorf("read transcript: %w", err)
	}
	tl, err := captions.Synthesize(data)
	if err != nil {
		return SubtitleResult{}, err
	}
	styled := captions.ApplyStyle(tl, captions.Style(style))
	text, err := captions.Render(styled, f)
	if err != nil {
		return SubtitleResult{}, err
	}

	name := "subtitles_" + stem(filepath.Base(transcriptPath)) + "." + f.Extension()
	if err := os.WriteFile(w.d.Files.OutputPath(name), []byte(text), 0o644); err != nil {
		return SubtitleResult{}, fmt.Errorf("write subtitles: %w", err)
	}

	w.d.Log.Info("subtitles generated",
		"transcript", filepath.Base(transcriptPath), "entries", len(styled), "format", string(f), "output", name)
	return SubtitleResult{OutputFile: name, Entries: len(styled), Format: string(f)}, nil
}

// ApplyEmojiOverlay plans keyword-triggered emoji placements over the
// transcript's word clock and burns them into the video.
func (w Workers) ApplyEmojiOverlay(ctx context.Context, transcriptPath, videoPath string) (OverlayResult, error) {
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return OverlayResult{}, fmt.Errorf("read transcript: %w", err)
	}
	placements := overlay.Plan(string(data))

	var open []ports.Clip
	defer func() { w.closeAll(open) }()

	src, err := w.d.Codec.Open(ctx, videoPath)
	if err != nil {
		return OverlayResult{}, err
	}
	open = append(open, src)

	overlaid, err := w.d.Codec.Overlay(ctx, src, placements)
	if err != nil {
		return OverlayResult{}, err
	}
	open = append(open, overlaid)

	name := "emoji_" + filepath.Base(videoPath)
	if err := w.d.Codec.Materialize(ctx, overlaid, w.d.Files.OutputPath(name)); err != nil {
		return OverlayResult{}, err
	}

	if placements == nil {
		placements = []overlay.Placement{}
	}
	w.d.Log.Info("emoji overlay applied",
		"video", filepath.Base(videoPath), "placements", len(placements), "output", name)
	return OverlayResult{OutputFile: name, Duration: overlaid.Duration, Placements: placements}, nil
}

func (w Workers) closeAll(clips []ports.Clip) {
	for _, c := range clips {
		if err := w.d.Codec.Close(c); err != nil {
			w.d.Log.Warn("close clip", "clip", c.ID, "err", err)
		}
	}
}

func (w Workers) dropWarnings(dropped []cutprofile.Dropped) []string {
	if len(dropped) == 0 {
		return nil
	}
	out := make([]string, 0, len(dropped))
	for _, d := range dropped {
		w.d.Log.Warn("cut profile segment dropped", "segment", d.Index, "reason", d.Reason)
		out = append(out, fmt.Sprintf("segment %d dropped: %s", d.Index, d.Reason))
	}
	return out
}

func (w Workers) skipWarnings(skipped []arrange.Skipped) []string {
	if len(skipped) == 0 {
		return nil
	}
	out := make([]string, 0, len(skipped))
	for _, s := range skipped {
		w.d.Log.Warn("arrangement entry skipped", "entry", s.Index, "reason", s.Reason)
		out = append(out, fmt.Sprintf("entry %d skipped: %s", s.Index, s.Reason))
	}
	return out
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
