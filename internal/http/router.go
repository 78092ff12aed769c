package http

import (
	"log/slog"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/config"
	"github.com/steveyiyo/moodlens-backend/internal/core/audio"
	"github.com/steveyiyo/moodlens-backend/internal/core/face"
	"github.com/steveyiyo/moodlens-backend/internal/core/multimodal"
	"github.com/steveyiyo/moodlens-backend/internal/core/registry"
	"github.com/steveyiyo/moodlens-backend/internal/core/video"
	"github.com/steveyiyo/moodlens-backend/internal/http/handlers"
	"github.com/steveyiyo/moodlens-backend/internal/logging"
	"github.com/steveyiyo/moodlens-backend/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the process-wide collaborators the router wires into handlers.
type Deps struct {
	Registry *registry.Registry
	Metrics  *metrics.Metrics
	Strategy video.Strategy
	Logger   *slog.Logger
}

var endpoints = []string{
	"/api/status",
	"/api/detect/video",
	"/api/detect/audio",
	"/api/detect/multimodal",
	"/upload",
}

func NewRouter(cfg config.Config, d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestContext(logging.Module(log, "http")))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	params := face.Params{
		ScaleFactor:  cfg.Face.ScaleFactor,
		MinNeighbors: cfg.Face.MinNeighbors,
		MinSize:      cfg.Face.MinSize,
	}
	vh := video.NewHandler(d.Registry.FaceDetector(), d.Strategy, params, logging.Module(log, "video"))
	vh.MaxPixels = cfg.MaxImagePixels
	ah := audio.NewHandler(d.Registry, logging.Module(log, "audio"))
	agg := multimodal.New(vh, ah, logging.Module(log, "multimodal"))

	sh := handlers.NewServiceHandler(d.Registry, endpoints)
	dh := handlers.NewDetectHandler(vh, ah, agg, d.Metrics)
	uh := handlers.NewUploadHandler(ah, d.Metrics, cfg.MaxUploadMB<<20)

	limit := bodyLimit(cfg.MaxBodyMB << 20)

	r.GET("/", sh.Home)
	for _, g := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/api")} {
		g.GET("/status", sh.Status)
		g.POST("/detect/video", limit, dh.VideoFrame)
		g.POST("/detect/audio", limit, dh.AudioText)
		g.POST("/detect/multimodal", limit, dh.Multimodal)
		g.POST("/upload", uh.Upload)
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "X-Requested-With", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
