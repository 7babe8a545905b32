package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clipstudio/internal/domain/effects"
	"clipstudio/internal/domain/timeline"
	"clipstudio/internal/workers"
)

func (s *Server) cutProfile(c *gin.Context) {
	videoPath, ok := s.requiredUpload(c, "video")
	if !ok {
		return
	}
	transcriptPath, ok := s.requiredUpload(c, "transcript")
	if !ok {
		return
	}

	res, err := s.d.Workers.GenerateCutProfile(c.Request.Context(), videoPath, transcriptPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) videoCutter(c *gin.Context) {
	videoPath, ok := s.requiredUpload(c, "video")
	if !ok {
		return
	}
	fh, err := c.FormFile("cut_profile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cut_profile file is required"})
		return
	}
	profileJSON, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res, err := s.d.Workers.CutWithProfile(c.Request.Context(), videoPath, profileJSON)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) silenceRemover(c *gin.Context) {
	mediaPath, ok := s.requiredUpload(c, "media")
	if !ok {
		return
	}
	minSilence, err := formFloat(c, "min_silence_duration", workers.DefaultMinSilence)
	if err != nil {
		respondError(c, err)
		return
	}
	threshold, err := formFloat(c, "silence_threshold", workers.DefaultSilenceThreshold)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := s.d.Workers.RemoveSilence(c.Request.Context(), mediaPath, minSilence, threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) satisfy(c *gin.Context) {
	introPath, ok := s.requiredUpload(c, "intro_clip")
	if !ok {
		return
	}
	clipPaths, ok := s.clipUploads(c)
	if !ok {
		return
	}
	target, err := formFloat(c, "duration", workers.DefaultMontageTarget)
	if err != nil {
		respondError(c, err)
		return
	}
	crossfade, err := formFloat(c, "crossfade_duration", workers.DefaultMontageCrossfade)
	if err != nil {
		respondError(c, err)
		return
	}
	specs, err := effectSpecs(c.PostForm("effects"))
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := s.d.Workers.AssembleMontage(c.Request.Context(), introPath, clipPaths, specs, target, crossfade)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) renderer(c *gin.Context) {
	clipPaths, ok := s.clipUploads(c)
	if !ok {
		return
	}
	introPath, ok := s.optionalUpload(c, "intro_clip")
	if !ok {
		return
	}
	outroPath, ok := s.optionalUpload(c, "outro_clip")
	if !ok {
		return
	}

	res, err := s.d.Workers.RenderArrangement(c.Request.Context(), clipPaths, []byte(c.PostForm("arrangement")), introPath, outroPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// subtitles returns the rendered document itself; the copy under outputs/
// stays retrievable through GET /files/:filename.
func (s *Server) subtitles(c *gin.Context) {
	transcriptPath, ok := s.requiredUpload(c, "transcript")
	if !ok {
		return
	}
	style := c.DefaultPostForm("font_style", "default")
	format := c.DefaultPostForm("format", "srt")

	res, err := s.d.Workers.GenerateSubtitles(c.Request.Context(), transcriptPath, style, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(s.d.Files.OutputPath(res.OutputFile), res.OutputFile)
}

func (s *Server) overlay(c *gin.Context) {
	transcriptPath, ok := s.requiredUpload(c, "transcript")
	if !ok {
		return
	}
	videoPath, ok := s.requiredUpload(c, "video")
	if !ok {
		return
	}

	res, err := s.d.Workers.ApplyEmojiOverlay(c.Request.Context(), transcriptPath, videoPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) storeUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.d.Files.SaveUpload(fh.Filename, f)
}

// requiredUpload saves a mandatory multipart file, writing the HTTP error
// itself when the field is missing or unreadable.
func (s *Server) requiredUpload(c *gin.Context, field string) (string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " file is required"})
		return "", false
	}
	path, err := s.storeUpload(fh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", false
	}
	return path, true
}

// optionalUpload saves a multipart file when present. An absent field yields
// an empty path and ok.
func (s *Server) optionalUpload(c *gin.Context, field string) (string, bool) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	path, err := s.storeUpload(fh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", false
	}
	return path, true
}

// clipUploads saves the repeated clips field, requiring at least one entry.
func (s *Server) clipUploads(c *gin.Context) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	var paths []string
	for _, fh := range form.File["clips"] {
		path, err := s.storeUpload(fh)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return nil, false
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one clips file is required"})
		return nil, false
	}
	return paths, true
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formFloat(c *gin.Context, field string, def float64) (float64, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", timeline.ErrInvalidConfig, field, raw)
	}
	return v, nil
}

// effectSpecs decodes the optional effects form field, a JSON array of
// {kind, factor} entries. Nil means the montage defaults apply; an explicit
// empty array disables effects.
func effectSpecs(raw string) ([]effects.Spec, error) {
	if raw == "" {
		return nil, nil
	}
	var specs []effects.Spec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil, fmt.Errorf("%w: effects must be a JSON array: %v", timeline.ErrInvalidConfig, err)
	}
	return specs, nil
}
