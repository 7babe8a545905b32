// Package ffmpeg implements the media codec port by shelling out to
// ffmpeg/ffprobe. Every derived clip is rendered eagerly into the adapter's
// work directory and removed again on Close.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"clipstudio/internal/domain/effects"
	"clipstudio/internal/domain/overlay"
	"clipstudio/internal/domain/timeline"
	"clipstudio/internal/ports"
)

const traceSampleRate = 16000

type Adapter struct {
	ffmpeg  string
	ffprobe string
	workDir string

	mu    sync.Mutex
	owned map[string]string // clip ID -> temp file to remove on Close
}

func New(ffmpegPath, ffprobePath, workDir string) (*Adapter, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "clipstudio")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Adapter{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		workDir: workDir,
		owned:   map[string]string{},
	}, nil
}

func (a *Adapter) Open(ctx context.Context, path string) (ports.Clip, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.Clip{}, fmt.Errorf("open media: %w: %v", ports.ErrExternalTool, err)
	}
	dur, err := a.probeDuration(ctx, path)
	if err != nil {
		return ports.Clip{}, err
	}
	return ports.Clip{
		ID:       uuid.NewString(),
		Path:     path,
		Duration: dur,
		Size:     info.Size(),
	}, nil
}

func (a *Adapter) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w: %v\n%s", ports.ErrExternalTool, err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// AmplitudeTrace decodes the audio track to mono PCM on stdout and windows
// it into the per-window dB trace.
func (a *Adapter) AmplitudeTrace(ctx context.Context, clip ports.Clip, window float64) (timeline.AmplitudeTrace, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-v", "error",
		"-i", clip.Path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(traceSampleRate),
		"-f", "f32le",
		"pipe:1",
	)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return timeline.AmplitudeTrace{}, fmt.Errorf("ffmpeg decode audio: %w: %v\n%s", ports.ErrExternalTool, err, errOut.String())
	}
	raw := out.Bytes()
	samples := make([]float64, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		samples = append(samples, float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i:i+4]))))
	}
	tr := timeline.TraceFromSamples(samples, traceSampleRate, window)
	if clip.Duration > tr.Duration {
		tr.Duration = clip.Duration
	}
	return tr, nil
}

func (a *Adapter) Subclip(ctx context.Context, clip ports.Clip, start, end float64) (ports.Clip, error) {
	tmp := a.tempPath(clip.Path)
	args := []string{
		"-y",
		"-ss", seconds(start),
		"-to", seconds(end),
		"-i", clip.Path,
	}
	args = append(args, encodeArgs(clip.Path)...)
	args = append(args, tmp)
	if err := a.run(ctx, "subclip", tmp, args); err != nil {
		return ports.Clip{}, err
	}
	return a.derived(tmp, end-start)
}

// Concatenate joins clips in order. A zero crossfade is a hard cut through
// the concat filter; a positive crossfade chains xfade/acrossfade joins,
// each overlapping its predecessor by the crossfade duration.
func (a *Adapter) Concatenate(ctx context.Context, clips []ports.Clip, crossfade float64) (ports.Clip, error) {
	if len(clips) == 0 {
		return ports.Clip{}, fmt.Errorf("concatenate: %w: no input clips", ports.ErrExternalTool)
	}
	if len(clips) == 1 {
		return a.Subclip(ctx, clips[0], 0, clips[0].Duration)
	}

	tmp := a.tempPath(clips[0].Path)
	args := []string{"-y"}
	for _, c := range clips {
		args = append(args, "-i", c.Path)
	}

	audio := isAudio(clips[0].Path)
	var filter strings.Builder
	switch {
	case audio && crossfade <= 0:
		for i := range clips {
			fmt.Fprintf(&filter, "[%d:a]", i)
		}
		fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[a]", len(clips))
	case audio:
		aPrev := "[0:a]"
		for i := 1; i < len(clips); i++ {
			aOut := fmt.Sprintf("[a%d]", i)
			if i == len(clips)-1 {
				aOut = "[a]"
			}
			fmt.Fprintf(&filter, "%s[%d:a]acrossfade=d=%s%s", aPrev, i, seconds(crossfade), aOut)
			if i != len(clips)-1 {
				filter.WriteString(";")
			}
			aPrev = aOut
		}
	case crossfade <= 0:
		for i := range clips {
			fmt.Fprintf(&filter, "[%d:v][%d:a]", i, i)
		}
		fmt.Fprintf(&filter, "concat=n=%d:v=1:a=1[v][a]", len(clips))
	default:
		// Offset of join k is the accumulated duration so far minus one
		// crossfade per join already made.
		vPrev, aPrev := "[0:v]", "[0:a]"
		acc := clips[0].Duration
		for i := 1; i < len(clips); i++ {
			vOut := fmt.Sprintf("[v%d]", i)
			aOut := fmt.Sprintf("[a%d]", i)
			if i == len(clips)-1 {
				vOut, aOut = "[v]", "[a]"
			}
			fmt.Fprintf(&filter, "%s[%d:v]xfade=transition=fade:duration=%s:offset=%s%s;",
				vPrev, i, seconds(crossfade), seconds(acc-crossfade), vOut)
			fmt.Fprintf(&filter, "%s[%d:a]acrossfade=d=%s%s", aPrev, i, seconds(crossfade), aOut)
			if i != len(clips)-1 {
				filter.WriteString(";")
			}
			vPrev, aPrev = vOut, aOut
			acc += clips[i].Duration - crossfade
		}
	}

	args = append(args, "-filter_complex", filter.String())
	if !audio {
		args = append(args, "-map", "[v]")
	}
	args = append(args, "-map", "[a]")
	args = append(args, encodeArgs(clips[0].Path)...)
	args = append(args, tmp)
	if err := a.run(ctx, "concatenate", tmp, args); err != nil {
		return ports.Clip{}, err
	}

	total := 0.0
	for _, c := range clips {
		total += c.Duration
	}
	total -= float64(len(clips)-1) * crossfade
	return a.derived(tmp, total)
}

func (a *Adapter) ApplyEffect(ctx context.Context, clip ports.Clip, spec effects.Spec) (ports.Clip, error) {
	if err := spec.Validate(); err != nil {
		return ports.Clip{}, err
	}
	if isAudio(clip.Path) {
		return ports.Clip{}, fmt.Errorf("apply effect: %w: %s needs a video stream", ports.ErrExternalTool, spec.Kind)
	}
	tmp := a.tempPath(clip.Path)
	args := []string{"-y", "-i", clip.Path}
	switch spec.Kind {
	case effects.KindSaturationBoost:
		args = append(args, "-vf", "eq=saturation="+seconds(spec.Factor))
	case effects.KindSpeedChange:
		args = append(args,
			"-filter_complex",
			fmt.Sprintf("[0:v]setpts=PTS/%s[v];[0:a]atempo=%s[a]", seconds(spec.Factor), seconds(spec.Factor)),
			"-map", "[v]", "-map", "[a]",
		)
	}
	args = append(args, encodeArgs(clip.Path)...)
	args = append(args, tmp)
	if err := a.run(ctx, "apply effect", tmp, args); err != nil {
		return ports.Clip{}, err
	}
	return a.derived(tmp, spec.ScaleDuration(clip.Duration))
}

// Overlay burns emoji placements in with drawtext, each enabled for its
// window at a random on-frame position kept off the edges.
func (a *Adapter) Overlay(ctx context.Context, clip ports.Clip, placements []overlay.Placement) (ports.Clip, error) {
	if len(placements) == 0 {
		return a.Subclip(ctx, clip, 0, clip.Duration)
	}
	var chain []string
	for _, p := range placements {
		xFrac := 0.1 + 0.8*rand.Float64()
		yFrac := 0.1 + 0.8*rand.Float64()
		chain = append(chain, fmt.Sprintf(
			"drawtext=text='%s':fontsize=72:x=(main_w-text_w)*%.3f:y=(main_h-text_h)*%.3f:enable='between(t,%s,%s)'",
			escapeDrawtext(p.Emoji), xFrac, yFrac, seconds(p.Time), seconds(p.Time+p.Duration),
		))
	}
	tmp := a.tempPath(clip.Path)
	args := []string{"-y", "-i", clip.Path, "-vf", strings.Join(chain, ",")}
	args = append(args, encodeArgs(clip.Path)...)
	args = append(args, tmp)
	if err := a.run(ctx, "overlay", tmp, args); err != nil {
		return ports.Clip{}, err
	}
	return a.derived(tmp, clip.Duration)
}

// Materialize copies the clip's rendered file to its final output path.
func (a *Adapter) Materialize(ctx context.Context, clip ports.Clip, outputPath string) error {
	src, err := os.Open(clip.Path)
	if err != nil {
		return fmt.Errorf("materialize: %w: %v", ports.ErrExternalTool, err)
	}
	defer src.Close()
	dst, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("materialize: %w: %v", ports.ErrExternalTool, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(outputPath)
		return fmt.Errorf("materialize: %w: %v", ports.ErrExternalTool, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("materialize: %w: %v", ports.ErrExternalTool, err)
	}
	return nil
}

func (a *Adapter) Close(clip ports.Clip) error {
	a.mu.Lock()
	tmp, ok := a.owned[clip.ID]
	delete(a.owned, clip.ID)
	a.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp clip: %w", err)
	}
	return nil
}

func (a *Adapter) run(ctx context.Context, op, tmp string, args []string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ffmpeg %s: %w: %v\n%s", op, ports.ErrExternalTool, err, string(b))
	}
	return nil
}

// derived registers a rendered temp file as an owned clip.
func (a *Adapter) derived(tmp string, duration float64) (ports.Clip, error) {
	info, err := os.Stat(tmp)
	if err != nil {
		return ports.Clip{}, fmt.Errorf("stat rendered clip: %w: %v", ports.ErrExternalTool, err)
	}
	clip := ports.Clip{
		ID:       uuid.NewString(),
		Path:     tmp,
		Duration: duration,
		Size:     info.Size(),
	}
	a.mu.Lock()
	a.owned[clip.ID] = tmp
	a.mu.Unlock()
	return clip, nil
}

func (a *Adapter) tempPath(like string) string {
	ext := filepath.Ext(like)
	if ext == "" {
		ext = ".mp4"
	}
	return filepath.Join(a.workDir, uuid.NewString()+ext)
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".aac": true, ".flac": true, ".ogg": true,
}

func isAudio(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func encodeArgs(path string) []string {
	if isAudio(path) {
		return []string{"-vn"}
	}
	return []string{
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
	}
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}
