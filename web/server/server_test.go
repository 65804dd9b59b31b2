package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/catalog"
	"github.com/df07/go-analytic-raytracer/pkg/config"
)

func newTestServer() *Server {
	cfg := config.Default()
	cfg.Render.Workers = 2
	return NewServer(cfg, nil)
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
}

func TestScenes(t *testing.T) {
	rec := serve(newTestServer(), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var scenes []catalog.SceneInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &scenes); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(scenes) != len(catalog.List()) {
		t.Errorf("Expected %d scenes, got %d", len(catalog.List()), len(scenes))
	}
}

func TestSceneConfig(t *testing.T) {
	s := newTestServer()

	rec := serve(s, "/api/scene-config?scene=hexagon")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"limits"`) {
		t.Errorf("Expected limits in response, got %s", rec.Body.String())
	}

	if rec := serve(s, "/api/scene-config?scene=nope"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown scene, got %d", rec.Code)
	}
}

func TestInspect(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name    string
		target  string
		hit     bool
		geomTyp string
	}{
		// hexagon: ring of unit spheres at radius 2, ortho view 6 units tall
		{"center of the ring", "/api/inspect?scene=hexagon&width=64&height=64&x=32&y=32", false, ""},
		{"sphere on the x axis", "/api/inspect?scene=hexagon&width=64&height=64&x=53&y=31", true, "sphere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp InspectResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if resp.Hit != tt.hit {
				t.Fatalf("Expected hit=%v, got %+v", tt.hit, resp)
			}
			if !tt.hit {
				return
			}
			if resp.GeometryType != tt.geomTyp {
				t.Errorf("Expected geometry %q, got %q", tt.geomTyp, resp.GeometryType)
			}
			// camera at z=10, sphere front at z=1
			if math.Abs(float64(resp.Distance-9)) > 0.05 {
				t.Errorf("Expected distance near 9, got %f", resp.Distance)
			}
			if resp.Material == nil {
				t.Error("Expected material info")
			}
		})
	}
}

func TestInspect_BadRequests(t *testing.T) {
	s := newTestServer()
	targets := []string{
		"/api/inspect?scene=nope&x=1&y=1",
		"/api/inspect?scene=hexagon&width=64&height=64&x=64&y=1",
		"/api/inspect?scene=hexagon&width=64&height=64",
		"/api/inspect?scene=hexagon&width=5&height=64&x=1&y=1",
	}
	for _, target := range targets {
		if rec := serve(s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestRender_StreamsEveryPass(t *testing.T) {
	rec := serve(newTestServer(), "/api/render?scene=hexagon&width=32&height=32&samples=2&passes=2")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected SSE content type, got %q", ct)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "event: progress"); n != 2 {
		t.Errorf("Expected 2 progress events, got %d", n)
	}
	if !strings.Contains(body, "event: complete") {
		t.Errorf("Expected a complete event in %q", body)
	}
	if strings.Contains(body, "event: error") {
		t.Errorf("Unexpected error event in %q", body)
	}

	var last ProgressUpdate
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: {\"passNumber\"") {
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last); err != nil {
				t.Fatalf("Invalid progress JSON: %v", err)
			}
		}
	}
	if !last.IsComplete || last.PassNumber != 2 || last.ImageData == "" {
		t.Errorf("Unexpected final update %+v", last.Stats)
	}
	if last.Stats.TotalSamples != 32*32*2 {
		t.Errorf("Expected %d samples, got %d", 32*32*2, last.Stats.TotalSamples)
	}
}

func TestRender_InvalidRequest(t *testing.T) {
	rec := serve(newTestServer(), "/api/render?scene=hexagon&samples=0")
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("Expected an error event, got %q", rec.Body.String())
	}
}
