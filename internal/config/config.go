package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxUploadMB int64
	// MaxBodyMB caps JSON request bodies on the detect routes.
	MaxBodyMB   int64

	MaxImagePixels int

	Log   Log
	Face  Face
	Text  Classifier
	Audio Speech
}

type Log struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Face struct {
	CascadePath  string
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
}

type Classifier struct {
	URL         string
	Token       string
	Timeout     time.Duration
	LoadTimeout time.Duration
	CacheTTL    time.Duration
	Preload     bool
}

type Speech struct {
	Backend      string
	GeminiAPIKey string
	GeminiModel  string
	ASRURL       string
	Timeout      time.Duration
}

const defaultClassifierURL = "https://api-inference.huggingface.co/models/bhadresh-savani/distilbert-base-uncased-emotion"

func Load() Config {
	cfg := Config{
		Port:        getenv("PORT", "5000"),
		GinMode:     getenv("GIN_MODE", "release"),
		CORSOrigins: getenvList("CORS_ORIGINS", []string{"*"}),
		MaxUploadMB: int64(getenvInt("MAX_UPLOAD_MB", 25)),
		MaxBodyMB:   int64(getenvInt("MAX_BODY_MB", 10)),

		MaxImagePixels: getenvInt("MAX_IMAGE_PIXELS", 4096*4096),

		Log: Log{
			Level:      getenv("LOG_LEVEL", "info"),
			File:       getenv("LOG_FILE", ""),
			MaxSizeMB:  getenvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getenvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getenvInt("LOG_MAX_AGE_DAYS", 14),
		},
		Face: Face{
			CascadePath:  getenv("FACE_CASCADE_PATH", "haarcascade_frontalface_default.xml"),
			ScaleFactor:  getenvFloat("FACE_SCALE_FACTOR", 1.3),
			MinNeighbors: getenvInt("FACE_MIN_NEIGHBORS", 5),
			MinSize:      getenvInt("FACE_MIN_SIZE", 0),
		},
		Text: Classifier{
			URL:         getenv("CLASSIFIER_URL", defaultClassifierURL),
			Token:       getenv("CLASSIFIER_TOKEN", ""),
			Timeout:     getenvDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
			LoadTimeout: getenvDuration("CLASSIFIER_LOAD_TIMEOUT", 2*time.Minute),
			CacheTTL:    getenvDuration("CLASSIFIER_CACHE_TTL", 10*time.Minute),
			Preload:     getenvBool("CLASSIFIER_PRELOAD", false),
		},
		Audio: Speech{
			Backend:      getenv("STT_BACKEND", ""),
			GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
			GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.5-flash"),
			ASRURL:       getenv("ASR_URL", "http://localhost:9000"),
			Timeout:      getenvDuration("STT_TIMEOUT", 60*time.Second),
		},
	}
	if cfg.Audio.Backend == "" {
		cfg.Audio.Backend = "http"
		if cfg.Audio.GeminiAPIKey != "" {
			cfg.Audio.Backend = "gemini"
		}
	}
	return cfg
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getenvList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return d
	}
	return out
}
