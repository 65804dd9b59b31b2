package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels in the image
	TotalSamples   int           // Total number of samples accumulated
	AverageSamples float64       // Average samples per pixel
	MinSamples     int           // Fewest samples in any pixel
	MaxSamplesUsed int           // Most samples in any pixel
	Dropped        int64         // Non-finite samples discarded
	Duration       time.Duration // Wall time of the render call
}
