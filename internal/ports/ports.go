// Package ports declares the collaborator seams of the processing engine.
package ports

import (
	"context"
	"errors"

	"clipstudio/internal/domain/cutprofile"
	"clipstudio/internal/domain/effects"
	"clipstudio/internal/domain/overlay"
	"clipstudio/internal/domain/timeline"
)

// ErrExternalTool marks collaborator failures so the calling layer can
// tell them apart from engine validation errors.
var ErrExternalTool = errors.New("external tool failure")

// Clip is a codec-owned handle to decoded media. Values are immutable;
// derived operations return new clips and never touch their input.
type Clip struct {
	ID       string
	Path     string
	Duration float64
	Size     int64
}

// MediaCodec supplies the decoded-media capability the engine plans
// against. Implementations own scratch storage for derived clips; Close
// releases whatever a clip holds and must be called for every clip a
// request opened or derived, on every exit path.
type MediaCodec interface {
	Open(ctx context.Context, path string) (Clip, error)
	AmplitudeTrace(ctx context.Context, clip Clip, window float64) (timeline.AmplitudeTrace, error)
	Subclip(ctx context.Context, clip Clip, start, end float64) (Clip, error)
	Concatenate(ctx context.Context, clips []Clip, crossfade float64) (Clip, error)
	ApplyEffect(ctx context.Context, clip Clip, spec effects.Spec) (Clip, error)
	Overlay(ctx context.Context, clip Clip, placements []overlay.Placement) (Clip, error)
	Materialize(ctx context.Context, clip Clip, outputPath string) error
	Close(clip Clip) error
}

// ProfileGenerator proposes cut segments for a video given its transcript.
// Its output is treated exactly like a manually authored profile: same
// validation, same error taxonomy.
type ProfileGenerator interface {
	Generate(ctx context.Context, videoName, transcript string) (cutprofile.Profile, error)
}
