package renderer

import "image"

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []Tile {
	if tileSize <= 0 {
		tileSize = max(width, height, 1)
	}

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]Tile, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}
	return tiles
}

// sampleRange is a half-open range of sample indices [Start, End)
type sampleRange struct {
	Start, End int
}

// splitSamples divides [start, start+samples) into at most parts ranges of
// near-equal length
func splitSamples(start, samples, parts int) []sampleRange {
	parts = max(1, min(parts, samples))
	ranges := make([]sampleRange, 0, parts)
	for i := 0; i < parts; i++ {
		lo := start + samples*i/parts
		hi := start + samples*(i+1)/parts
		if hi > lo {
			ranges = append(ranges, sampleRange{Start: lo, End: hi})
		}
	}
	return ranges
}

// planTasks turns tiles into work items. With fewer tiles than workers a
// tile's sample range is split so every worker has something to do; the
// split tasks meet again in the framebuffer's pixel locks.
func planTasks(tiles []Tile, start, samples, workers int) []TileTask {
	parts := 1
	if len(tiles) > 0 && len(tiles) < workers {
		parts = (workers + len(tiles) - 1) / len(tiles)
	}

	tasks := make([]TileTask, 0, len(tiles)*parts)
	for _, tile := range tiles {
		for _, r := range splitSamples(start, samples, parts) {
			tasks = append(tasks, TileTask{TaskID: len(tasks), Tile: tile, Samples: r})
		}
	}
	return tasks
}
