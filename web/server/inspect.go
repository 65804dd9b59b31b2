package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/material"
	"github.com/df07/go-analytic-raytracer/pkg/renderer"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool          `json:"hit"`
	GeometryType string        `json:"geometryType,omitempty"`
	GeometryID   uint32        `json:"geometryId,omitempty"`
	PrimitiveID  int           `json:"primitiveId"`
	Point        [3]float32    `json:"point"`
	Normal       [3]float32    `json:"normal"`
	Distance     float32       `json:"distance"`
	EdgeDistance float32       `json:"edgeDistance"`
	Color        string        `json:"color"` // shaded center sample, #rrggbb
	Alpha        float32       `json:"alpha"`
	Material     *MaterialInfo `json:"material,omitempty"`
}

// MaterialInfo describes the material of the inspected geometry
type MaterialInfo struct {
	Color             string  `json:"color"`
	Solid             float32 `json:"solid"`
	PrimitiveColorMix float32 `json:"primitiveColorMix"`
	Roughness         float32 `json:"roughness"`
	Specular          float32 `json:"specular"`
	Metal             float32 `json:"metal"`
	OutlineWidth      float32 `json:"outlineWidth"`
}

// handleInspect traces the center ray of one pixel and describes what it hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	sceneName, width, height, err := s.parseSize(values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	x, errX := parseIntParam(values, "x", -1, 0, width-1)
	y, errY := parseIntParam(values, "y", -1, 0, height-1)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("x and y must lie inside the %dx%d image", width, height),
		})
		return
	}

	resp, err := s.inspectPixel(sceneName, width, height, x, y)
	if err != nil {
		s.logger.Warn("inspect failed", zap.String("scene", sceneName), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// inspectPixel builds the scene, commits it and inspects pixel (x, y)
func (s *Server) inspectPixel(sceneName string, width, height, x, y int) (*InspectResponse, error) {
	sc, release, err := s.buildScene(sceneName, s.logger)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := sc.Commit(); err != nil {
		return nil, err
	}
	cfg, err := s.config.Render.TracerConfig()
	if err != nil {
		return nil, err
	}
	tracer, err := renderer.New(width, height, cfg, s.logger)
	if err != nil {
		return nil, err
	}

	result, err := tracer.Inspect(sc, x, y)
	if err != nil {
		return nil, err
	}

	resp := &InspectResponse{
		Hit:         result.Hit.Hit(),
		PrimitiveID: -1,
		Color:       hexColor(result.Color.RGB),
		Alpha:       result.Color.A,
	}
	if !resp.Hit {
		return resp, nil
	}

	resp.GeometryID = uint32(result.Hit.GeomID)
	resp.PrimitiveID = result.Hit.PrimID
	resp.Point = result.Point
	resp.Normal = result.Hit.Normal.Normalize()
	resp.Distance = result.Hit.T
	resp.EdgeDistance = result.Hit.EdgeDistance

	if g, ok := sc.Geometry(result.Hit.GeomID); ok {
		if k, ok := g.(interface{ Kind() string }); ok {
			resp.GeometryType = k.Kind()
		}
		resp.Material = materialInfo(g.Material(), g.OutlineWidth())
	}
	return resp, nil
}

func materialInfo(m material.Material, outlineWidth float32) *MaterialInfo {
	return &MaterialInfo{
		Color:             hexColor(m.Color),
		Solid:             m.Solid,
		PrimitiveColorMix: m.PrimitiveColorMix,
		Roughness:         m.Roughness,
		Specular:          m.Specular,
		Metal:             m.Metal,
		OutlineWidth:      outlineWidth,
	}
}

// hexColor formats a linear color as clamped 8-bit #rrggbb, without gamma
func hexColor(c core.RGB) string {
	toByte := func(v float32) int {
		return int(core.Clamp01(v)*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", toByte(c.R), toByte(c.G), toByte(c.B))
}
