package heatmap

import "errors"

// Errors returned by the renderer.
var (
	// ErrNoPoints is returned when there are no points and no viewport to
	// derive bounds from.
	ErrNoPoints = errors.New("heatmap: no points")

	// ErrUnknownPalette is returned when a palette name is not provided by
	// the asset set.
	ErrUnknownPalette = errors.New("heatmap: unknown palette")

	// ErrMissingDot is returned when no dot sprite exists for a zoom level.
	ErrMissingDot = errors.New("heatmap: missing dot sprite")

	// ErrOpacityRange is returned when an explicit opacity is outside 0..255.
	ErrOpacityRange = errors.New("heatmap: opacity out of range")

	// ErrInvalidImageSize is returned for non-positive output dimensions.
	ErrInvalidImageSize = errors.New("heatmap: invalid image size")

	// ErrInvalidViewport is returned for a viewport whose south edge lies
	// north of its north edge or whose east edge lies west of its west
	// edge. Viewports crossing the antimeridian must be split by the
	// caller.
	ErrInvalidViewport = errors.New("heatmap: invalid viewport")

	// ErrInvalidPalette is returned when a palette image cannot be used.
	ErrInvalidPalette = errors.New("heatmap: invalid palette image")
)
