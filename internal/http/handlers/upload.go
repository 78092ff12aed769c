package handlers

import (
	"errors"
	"net/http"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/audio"
	"github.com/steveyiyo/moodlens-backend/internal/core/decode"
	"github.com/steveyiyo/moodlens-backend/internal/core/multimodal"
	"github.com/steveyiyo/moodlens-backend/internal/metrics"
	"github.com/steveyiyo/moodlens-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	Audio    *audio.Handler
	Metrics  *metrics.Metrics
	MaxBytes int64
}

func NewUploadHandler(a *audio.Handler, mt *metrics.Metrics, maxBytes int64) *UploadHandler {
	return &UploadHandler{Audio: a, Metrics: mt, MaxBytes: maxBytes}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderError(c, apperr.Validation("upload", "file exceeds %d bytes", h.MaxBytes))
			return
		}
		renderError(c, apperr.Validation("upload", "no file part"))
		return
	}
	clip, err := decode.DecodeAudioUpload(fh, h.MaxBytes)
	if err != nil {
		renderError(c, err)
		return
	}
	res, err := h.Audio.FromAudio(c.Request.Context(), clip)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.ObserveInference(multimodal.ModalityAudio, metrics.OutcomeError)
		}
		renderError(c, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.ObserveInference(multimodal.ModalityAudio, metrics.OutcomeOK)
	}

	emotions := make([]types.EmotionScore, len(res.Scores))
	for i, s := range res.Scores {
		emotions[i] = types.EmotionScore{Label: s.Label, Score: s.Score}
	}
	c.JSON(http.StatusOK, types.UploadResp{SpokenText: res.Text, Emotions: emotions})
}
