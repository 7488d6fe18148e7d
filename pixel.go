package heatmap

import (
	"fmt"
	"image"
)

const (
	// TileSize is the edge length of a tile in pixels.
	TileSize = 256

	// MaxZoom is the deepest supported zoom level.
	MaxZoom = 31
)

// PixelPoint is a position in the world pixel space of one zoom level.
// At zoom z the world spans 256 * 2^z pixels on each axis.
type PixelPoint struct {
	X, Y int64
}

// Add returns p + q.
func (p PixelPoint) Add(q PixelPoint) PixelPoint {
	return PixelPoint{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p PixelPoint) Sub(q PixelPoint) PixelPoint {
	return PixelPoint{X: p.X - q.X, Y: p.Y - q.Y}
}

// Tile returns the index of the tile containing p.
func (p PixelPoint) Tile() TileIndex {
	return TileIndex{X: floorDiv(p.X, TileSize), Y: floorDiv(p.Y, TileSize)}
}

// Point converts p to an image.Point.
func (p PixelPoint) Point() image.Point {
	return image.Point{X: int(p.X), Y: int(p.Y)}
}

func (p PixelPoint) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// TileIndex addresses a 256x256 tile at some zoom level.
type TileIndex struct {
	X, Y int64
}

// Origin returns the world pixel of the tile's top-left corner.
func (t TileIndex) Origin() PixelPoint {
	return PixelPoint{X: t.X * TileSize, Y: t.Y * TileSize}
}

func (t TileIndex) String() string {
	return fmt.Sprintf("%d/%d", t.X, t.Y)
}

// worldSize returns the edge length of the world in pixels at zoom.
func worldSize(zoom int) int64 {
	return TileSize << uint(zoom)
}

// clampZoom limits zoom to [0, MaxZoom].
func clampZoom(zoom int) int {
	return min(max(zoom, 0), MaxZoom)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod returns a mod b with the sign of b.
func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
