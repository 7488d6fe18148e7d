package heatmap

import (
	"fmt"
	"math"
)

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// String returns the point as "(lat, lng)".
func (p GeoPoint) String() string {
	return fmt.Sprintf("(%g, %g)", p.Lat, p.Lng)
}

// IsValid reports whether the point lies within the world bounds.
func (p GeoPoint) IsValid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// GeoRect is an axis-aligned geographic rectangle anchored at its
// north-west corner. HeightLat grows southward.
type GeoRect struct {
	Lat       float64 // north edge
	Lng       float64 // west edge
	WidthLng  float64
	HeightLat float64
}

// NewGeoRect returns the rectangle spanning from the north-west corner nw
// to the south-east corner se.
func NewGeoRect(nw, se GeoPoint) GeoRect {
	return GeoRect{
		Lat:       nw.Lat,
		Lng:       nw.Lng,
		WidthLng:  se.Lng - nw.Lng,
		HeightLat: nw.Lat - se.Lat,
	}
}

// Top returns the north edge.
func (r GeoRect) Top() float64 { return r.Lat }

// Left returns the west edge.
func (r GeoRect) Left() float64 { return r.Lng }

// Bottom returns the south edge.
func (r GeoRect) Bottom() float64 { return r.Lat - r.HeightLat }

// Right returns the east edge.
func (r GeoRect) Right() float64 { return r.Lng + r.WidthLng }

// TopLeft returns the north-west corner.
func (r GeoRect) TopLeft() GeoPoint {
	return GeoPoint{Lat: r.Lat, Lng: r.Lng}
}

// BottomRight returns the south-east corner.
func (r GeoRect) BottomRight() GeoPoint {
	return GeoPoint{Lat: r.Bottom(), Lng: r.Right()}
}

// Center returns the linear midpoint of the rectangle. This is not the
// Mercator midpoint; renders center on this point.
func (r GeoRect) Center() GeoPoint {
	return GeoPoint{Lat: r.Lat - r.HeightLat/2, Lng: r.Lng + r.WidthLng/2}
}

// IsEmpty reports whether the rectangle has no area.
func (r GeoRect) IsEmpty() bool {
	return r.WidthLng == 0 || r.HeightLat == 0
}

// SpanLng returns the longitudinal width, treating a negative width as a
// span that wraps the antimeridian.
func (r GeoRect) SpanLng() float64 {
	if r.WidthLng < 0 {
		return r.WidthLng + 360
	}
	return r.WidthLng
}

// Contains reports whether p lies inside r, edges included.
func (r GeoRect) Contains(p GeoPoint) bool {
	return p.Lat <= r.Top() && p.Lat >= r.Bottom() && p.Lng >= r.Left() && p.Lng <= r.Right()
}

// Intersects reports whether r and o overlap, edges included.
func (r GeoRect) Intersects(o GeoRect) bool {
	return r.Left() <= o.Right() && o.Left() <= r.Right() &&
		r.Bottom() <= o.Top() && o.Bottom() <= r.Top()
}

// Union returns the smallest rectangle containing both r and o.
func (r GeoRect) Union(o GeoRect) GeoRect {
	top := math.Max(r.Top(), o.Top())
	left := math.Min(r.Left(), o.Left())
	bottom := math.Min(r.Bottom(), o.Bottom())
	right := math.Max(r.Right(), o.Right())
	return GeoRect{Lat: top, Lng: left, WidthLng: right - left, HeightLat: top - bottom}
}

// Inflate grows the rectangle by lat degrees north and south and by lng
// degrees east and west.
func (r GeoRect) Inflate(lat, lng float64) GeoRect {
	return GeoRect{
		Lat:       r.Lat + lat,
		Lng:       r.Lng - lng,
		WidthLng:  r.WidthLng + 2*lng,
		HeightLat: r.HeightLat + 2*lat,
	}
}

// String returns the rectangle as its two corners.
func (r GeoRect) String() string {
	return fmt.Sprintf("[%v %v]", r.TopLeft(), r.BottomRight())
}
