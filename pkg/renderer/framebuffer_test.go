package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

func TestFramebuffer_OrderIndependent(t *testing.T) {
	samples := []core.RGBA{
		{RGB: core.NewRGB(1, 0, 0), A: 1},
		{RGB: core.NewRGB(0, 0.5, 0), A: 0.5},
		{RGB: core.NewRGB(0.25, 0.25, 1), A: 1},
		{RGB: core.NewRGB(0, 0, 0), A: 0},
	}

	forward := NewFramebuffer(2, 2)
	reverse := NewFramebuffer(2, 2)
	for i := range samples {
		forward.AddSample(1, 1, samples[i])
		reverse.AddSample(1, 1, samples[len(samples)-1-i])
	}

	a, na := forward.Pixel(1, 1)
	b, nb := reverse.Pixel(1, 1)
	if na != 4 || nb != 4 {
		t.Fatalf("Expected 4 samples in both buffers, got %d and %d", na, nb)
	}
	const tolerance = 1e-6
	diffs := []float32{a.R - b.R, a.G - b.G, a.B - b.B, a.A - b.A}
	for _, d := range diffs {
		if math.Abs(float64(d)) > tolerance {
			t.Fatalf("Expected order independent averages, got %+v and %+v", a, b)
		}
	}
	if math.Abs(float64(a.R-0.3125)) > tolerance || math.Abs(float64(a.A-0.625)) > tolerance {
		t.Errorf("Expected average (0.3125, ..., A=0.625), got %+v", a)
	}
}

func TestFramebuffer_MergeMovesSumAndCountTogether(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.Merge(0, 0, core.RGBA{RGB: core.NewRGB(3, 3, 3), A: 3}, 3)
	fb.Merge(0, 0, core.RGBA{RGB: core.NewRGB(9, 9, 9)}, 0) // ignored

	c, n := fb.Pixel(0, 0)
	if n != 3 {
		t.Fatalf("Expected 3 samples, got %d", n)
	}
	if c.R != 1 || c.A != 1 {
		t.Errorf("Expected average 1, got %+v", c)
	}
}

func TestFramebuffer_DropsNonFinite(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	nan := float32(math.NaN())
	fb.AddSample(0, 0, core.RGBA{RGB: core.NewRGB(nan, 0, 0), A: 1})
	fb.AddSample(0, 0, core.RGBA{RGB: core.NewRGB(core.Infinity, 0, 0), A: 1})
	fb.AddSample(0, 0, core.Opaque(core.NewRGB(0.5, 0.5, 0.5)))

	c, n := fb.Pixel(0, 0)
	if n != 1 {
		t.Errorf("Expected only the finite sample to count, got %d", n)
	}
	if c.R != 0.5 {
		t.Errorf("Expected 0.5, got %f", c.R)
	}
	if fb.Dropped() != 2 {
		t.Errorf("Expected 2 dropped samples, got %d", fb.Dropped())
	}
}

func TestFramebuffer_StatsAndClear(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.AddSample(0, 0, core.Opaque(core.RGB{}))
	fb.AddSample(0, 0, core.Opaque(core.RGB{}))
	fb.AddSample(1, 0, core.Opaque(core.RGB{}))

	stats := fb.Stats()
	if stats.TotalPixels != 2 || stats.TotalSamples != 3 {
		t.Errorf("Expected 2 pixels and 3 samples, got %+v", stats)
	}
	if stats.MinSamples != 1 || stats.MaxSamplesUsed != 2 {
		t.Errorf("Expected min 1 and max 2 samples, got %+v", stats)
	}
	if stats.AverageSamples != 1.5 {
		t.Errorf("Expected 1.5 average samples, got %f", stats.AverageSamples)
	}

	fb.Clear()
	if _, n := fb.Pixel(0, 0); n != 0 {
		t.Errorf("Expected an empty pixel after Clear, got %d samples", n)
	}
}

func TestToneMap(t *testing.T) {
	white := core.Opaque(core.NewRGB(1, 1, 1))

	if got := encodePixel(white, 1, ToneMapNone); got.R != 255 || got.A != 255 {
		t.Errorf("Expected white to encode as 255, got %+v", got)
	}
	if got := encodePixel(white, 1, ToneMapReinhard); got.R >= 255 || got.R == 0 {
		t.Errorf("Expected reinhard to compress white below 255, got %d", got.R)
	}
	if got := encodePixel(core.Opaque(core.NewRGB(0.25, 0.25, 0.25)), 4, ToneMapNone); got.R != 255 {
		t.Errorf("Expected exposure 4 to saturate 0.25, got %d", got.R)
	}
	if got := encodePixel(core.RGBA{}, 1, ToneMapNone); got.A != 0 {
		t.Errorf("Expected transparent output, got alpha %d", got.A)
	}

	tests := []struct {
		name    string
		want    ToneMap
		wantErr bool
	}{
		{"none", ToneMapNone, false},
		{"Reinhard", ToneMapReinhard, false},
		{"", ToneMapNone, false},
		{"filmic", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToneMap(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseToneMap(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseToneMap(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
