package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/catalog"
	"github.com/df07/go-analytic-raytracer/pkg/config"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// Request limits
const (
	minImageSize = 16
	maxImageSize = 2000
	maxSamples   = 10000
	maxPasses    = 1000
)

// Server handles web requests for the raytracer
type Server struct {
	port   int
	config *config.Config
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer creates a new web server. cfg supplies the defaults for request
// parameters the client leaves out.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		port:   cfg.Web.Port,
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server and blocks until it fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("web server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.mux)
}

// buildScene creates the named scene on a fresh device. Devices report
// traversal errors per device, so every request gets its own.
func (s *Server) buildScene(name string, logger *zap.Logger) (*scene.Scene, func(), error) {
	device := accel.NewDevice(accel.WithLogger(logger))
	sc, err := catalog.Build(name, device, logger)
	if err != nil {
		device.Close()
		return nil, nil, err
	}
	release := func() {
		if err := device.Close(); err != nil {
			logger.Warn("close device", zap.Error(err))
		}
	}
	return sc, release, nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.List())
}

// handleSceneConfig returns the render defaults and request limits for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = s.config.Render.Scene
	}

	info, ok := catalog.Lookup(sceneName)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown scene: " + sceneName})
		return
	}

	rc := s.config.Render
	writeJSON(w, http.StatusOK, map[string]any{
		"scene": info,
		"defaults": map[string]any{
			"width":     info.Width,
			"height":    info.Height,
			"samples":   rc.Samples,
			"passes":    rc.Passes,
			"maxDepth":  rc.MaxDepth,
			"toneMap":   rc.ToneMap,
			"exposure":  rc.Exposure,
			"shadows":   rc.Shadows,
			"antialias": rc.Antialias,
		},
		"limits": map[string]any{
			"width":   map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":  map[string]int{"min": minImageSize, "max": maxImageSize},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"passes":  map[string]int{"min": 1, "max": maxPasses},
		},
	})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseSize parses the scene name and image size shared by render and inspect
func (s *Server) parseSize(values url.Values) (sceneName string, width, height int, err error) {
	sceneName = values.Get("scene")
	if sceneName == "" {
		sceneName = s.config.Render.Scene
	}
	if _, ok := catalog.Lookup(sceneName); !ok {
		return "", 0, 0, fmt.Errorf("unknown scene: %s", sceneName)
	}

	if width, err = parseIntParam(values, "width", s.config.Render.Width, minImageSize, maxImageSize); err != nil {
		return "", 0, 0, err
	}
	if height, err = parseIntParam(values, "height", s.config.Render.Height, minImageSize, maxImageSize); err != nil {
		return "", 0, 0, err
	}
	return sceneName, width, height, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
