package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/audio"
	"github.com/steveyiyo/moodlens-backend/internal/core/multimodal"
	"github.com/steveyiyo/moodlens-backend/internal/core/video"
	"github.com/steveyiyo/moodlens-backend/internal/metrics"
	"github.com/steveyiyo/moodlens-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

type DetectHandler struct {
	Video   *video.Handler
	Audio   *audio.Handler
	Multi   *multimodal.Aggregator
	Metrics *metrics.Metrics
}

func NewDetectHandler(v *video.Handler, a *audio.Handler, m *multimodal.Aggregator, mt *metrics.Metrics) *DetectHandler {
	return &DetectHandler{Video: v, Audio: a, Multi: m, Metrics: mt}
}

func (h *DetectHandler) observe(modality, outcome string) {
	if h.Metrics != nil {
		h.Metrics.ObserveInference(modality, outcome)
	}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderError(c, apperr.Validation("bind", "request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		renderError(c, apperr.Validation("bind", "invalid JSON body"))
		return false
	}
	return true
}

func (h *DetectHandler) VideoFrame(c *gin.Context) {
	var req types.VideoReq
	if !bindJSON(c, &req) {
		return
	}
	img, err := h.Video.Decode(req.Image)
	if err != nil {
		h.observe(multimodal.ModalityVideo, metrics.OutcomeError)
		renderError(c, err)
		return
	}
	res, err := h.Video.Detect(img)
	if err != nil {
		h.observe(multimodal.ModalityVideo, metrics.OutcomeError)
		renderError(c, err)
		return
	}
	if !res.FaceFound {
		h.observe(multimodal.ModalityVideo, metrics.OutcomeNoFace)
		c.JSON(http.StatusOK, types.NoFaceResp{Success: false, Message: video.NoFaceMessage})
		return
	}
	h.observe(multimodal.ModalityVideo, metrics.OutcomeOK)
	c.JSON(http.StatusOK, types.VideoResp{
		Success:       true,
		Emotion:       res.Emotion,
		Confidence:    res.Confidence,
		FacesDetected: res.FacesDetected,
	})
}

func (h *DetectHandler) AudioText(c *gin.Context) {
	var req types.AudioReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Audio.FromText(c.Request.Context(), req.Text)
	if err != nil {
		h.observe(multimodal.ModalityAudio, metrics.OutcomeError)
		renderError(c, err)
		return
	}
	h.observe(multimodal.ModalityAudio, metrics.OutcomeOK)
	c.JSON(http.StatusOK, types.AudioResp{
		Success:    true,
		Emotion:    res.Emotion,
		Confidence: res.Confidence,
		Text:       res.Text,
	})
}

func (h *DetectHandler) Multimodal(c *gin.Context) {
	var req types.MultimodalReq
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Multi.Aggregate(c.Request.Context(), multimodal.Request{Image: req.Image, Text: req.Text})
	if err != nil {
		renderError(c, err)
		return
	}

	out := types.MultimodalResp{Success: true, Results: map[string]types.EmotionResult{}}
	if v := resp.Video; v != nil {
		out.Results[multimodal.ModalityVideo] = types.EmotionResult{
			Emotion:       v.Emotion,
			Confidence:    v.Confidence,
			Modality:      multimodal.ModalityVideo,
			FacesDetected: v.FacesDetected,
		}
		h.observe(multimodal.ModalityVideo, metrics.OutcomeOK)
	} else if strings.TrimSpace(req.Image) != "" && resp.Errors[multimodal.ModalityVideo] == nil {
		h.observe(multimodal.ModalityVideo, metrics.OutcomeNoFace)
	}
	if a := resp.Audio; a != nil {
		out.Results[multimodal.ModalityAudio] = types.EmotionResult{
			Emotion:    a.Emotion,
			Confidence: a.Confidence,
			Modality:   multimodal.ModalityAudio,
			Text:       a.Text,
		}
		h.observe(multimodal.ModalityAudio, metrics.OutcomeOK)
	}
	for modality := range resp.Errors {
		h.observe(modality, metrics.OutcomeDropped)
	}
	c.JSON(http.StatusOK, out)
}
