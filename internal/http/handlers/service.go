package handlers

import (
	"net/http"

	"github.com/steveyiyo/moodlens-backend/internal/core/registry"
	"github.com/steveyiyo/moodlens-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	Registry  *registry.Registry
	Endpoints []string
}

func NewServiceHandler(r *registry.Registry, endpoints []string) *ServiceHandler {
	return &ServiceHandler{Registry: r, Endpoints: endpoints}
}

func (h *ServiceHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, types.ServiceResp{
		Status:    "running",
		Message:   "Multimodal Emotion Recognition API",
		Endpoints: h.Endpoints,
	})
}

func (h *ServiceHandler) Status(c *gin.Context) {
	states := map[string]string{}
	for k, v := range h.Registry.Status() {
		states[k] = string(v)
	}
	c.JSON(http.StatusOK, types.StatusResp{Status: "ok", Models: "loaded", Registry: states})
}
