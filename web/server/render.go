package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/df07/go-analytic-raytracer/pkg/output"
	"github.com/df07/go-analytic-raytracer/pkg/renderer"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string  `json:"scene"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Samples  int     `json:"samples"` // total samples per pixel
	Passes   int     `json:"passes"`
	ToneMap  string  `json:"toneMap"`
	Exposure float64 `json:"exposure"`
	Preview  int     `json:"preview"` // longest side of streamed images; 0 streams full size
}

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	Dropped        int64   `json:"dropped"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string // "console", "progress", "error", "complete"
	Data string
}

// handleRender renders a scene progressively and streams every pass via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// every write to w goes through a single goroutine
	events := make(chan SSEEvent, 100)
	written := make(chan struct{})
	go func() {
		s.writeSSEEvents(ctx, w, events)
		close(written)
	}()
	defer func() {
		close(events)
		<-written
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.emit(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	stopConsole := make(chan struct{})
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(ctx, consoleChan, stopConsole, events)
		close(consoleDone)
	}()
	defer func() {
		close(stopConsole)
		<-consoleDone
	}()

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := zap.New(zapcore.NewTee(s.logger.Core(), NewConsoleCore(zapcore.InfoLevel, consoleChan))).
		With(zap.String("render", renderID))

	if err := s.render(ctx, req, logger, events); err != nil {
		logger.Warn("render failed", zap.Error(err))
		s.emit(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Rendering failed: %v", err)})
		return
	}
	s.emit(ctx, events, SSEEvent{Type: "complete", Data: "Rendering completed"})
}

// render builds the requested scene and emits one progress event per pass
func (s *Server) render(ctx context.Context, req *RenderRequest, logger *zap.Logger, events chan<- SSEEvent) error {
	rc := s.config.Render
	rc.Scene = req.Scene
	rc.Width, rc.Height = req.Width, req.Height
	rc.Samples, rc.Passes = req.Samples, req.Passes
	rc.ToneMap = req.ToneMap
	rc.Exposure = float32(req.Exposure)
	cfg, err := rc.TracerConfig()
	if err != nil {
		return err
	}

	sc, release, err := s.buildScene(req.Scene, logger)
	if err != nil {
		return err
	}
	defer release()

	tracer, err := renderer.New(req.Width, req.Height, cfg, logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	return tracer.RenderProgressive(ctx, sc, func(result renderer.PassResult) error {
		img := result.Image
		imageData, err := output.PNGBase64(output.Preview(img, req.Preview))
		if err != nil {
			return fmt.Errorf("encode image: %w", err)
		}

		data, err := json.Marshal(ProgressUpdate{
			PassNumber:  result.PassNumber,
			TotalPasses: result.TotalPasses,
			ImageData:   imageData,
			Stats: Stats{
				TotalPixels:    result.Stats.TotalPixels,
				TotalSamples:   result.Stats.TotalSamples,
				AverageSamples: result.Stats.AverageSamples,
				MinSamples:     result.Stats.MinSamples,
				MaxSamplesUsed: result.Stats.MaxSamplesUsed,
				Dropped:        result.Stats.Dropped,
			},
			IsComplete: result.IsLast,
			ElapsedMs:  time.Since(startTime).Milliseconds(),
		})
		if err != nil {
			return err
		}
		if !s.emit(ctx, events, SSEEvent{Type: "progress", Data: string(data)}) {
			return ctx.Err()
		}
		return nil
	})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{ToneMap: s.config.Render.ToneMap}

	var err error
	if req.Scene, req.Width, req.Height, err = s.parseSize(values); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", s.config.Render.Samples, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(values, "passes", s.config.Render.Passes, 1, maxPasses); err != nil {
		return nil, err
	}
	if req.Exposure, err = parseFloatParam(values, "exposure", float64(s.config.Render.Exposure), 0.01, 100); err != nil {
		return nil, err
	}
	if req.Preview, err = parseIntParam(values, "preview", 0, 0, maxImageSize); err != nil {
		return nil, err
	}
	if tm := values.Get("tonemap"); tm != "" {
		if _, err := renderer.ParseToneMap(tm); err != nil {
			return nil, err
		}
		req.ToneMap = tm
	}

	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		s.logger.Warn("large image with high samples may render slowly",
			zap.Int("width", req.Width), zap.Int("height", req.Height), zap.Int("samples", req.Samples))
	}
	return req, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// emit queues an event unless the client has gone away
func (s *Server) emit(ctx context.Context, events chan<- SSEEvent, event SSEEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// writeSSEEvents writes queued events until the channel closes or the client
// disconnects. After a failed write it keeps draining so senders never block.
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	failed := false
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if failed {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				failed = true
				continue
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards log lines to the client, dropping them when
// the event queue is full
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, stop <-chan struct{}, events chan<- SSEEvent) {
	for {
		select {
		case msg := <-consoleChan:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warn("marshal console message", zap.Error(err))
				continue
			}
			select {
			case events <- SSEEvent{Type: "console", Data: string(data)}:
			default:
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}
