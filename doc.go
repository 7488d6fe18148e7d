// Package heatmap renders density heat maps from geographic points.
//
// # Overview
//
// Points are projected into Spherical Mercator pixel space at a zoom level
// chosen so that their bounding box fits the requested image. The covered
// area is split into 256x256 tiles. Each tile starts as a white canvas and
// every nearby point stamps a grayscale dot onto it with a Multiply blend,
// so overlapping dots darken the canvas. The accumulated darkness is then
// mapped through a 256-entry color palette into a translucent RGBA tile.
// Finally the tiles are placed onto an image of the requested size,
// centered on the middle of the bounding box, ready to be composited over a
// base map.
//
// # Quick Start
//
//	points := []heatmap.GeoPoint{{Lat: 40.7, Lng: -74.0}, {Lat: 40.8, Lng: -73.9}}
//
//	hm, err := heatmap.New(points, heatmap.WithImageSize(640, 640))
//	if err != nil {
//		log.Fatal(err)
//	}
//	img, err := hm.Render(ctx)
//
// The returned image has the requested size and lines up pixel for pixel
// with a static map fetched for hm.MapRequest(), see package staticmap.
//
// # Assets
//
// Rendering needs a dot sprite per zoom level and at least one palette.
// DefaultAssets generates both procedurally; LoadAssets reads PNG files
// from any fs.FS.
//
// # Concurrency
//
// A Heatmap is immutable after New and safe for concurrent use. Tiles are
// rendered in parallel when WithWorkers is greater than one.
package heatmap
