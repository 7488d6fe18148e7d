package heatmap

import (
	"image"
	"testing"
)

func apply(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.size != image.Pt(DefaultImageSize, DefaultImageSize) {
		t.Errorf("size = %v, want %dx%d", o.size, DefaultImageSize, DefaultImageSize)
	}
	if o.palette != DefaultPalette {
		t.Errorf("palette = %q, want %q", o.palette, DefaultPalette)
	}
	if o.curve != DefaultOpacityCurve() {
		t.Error("curve is not the default curve")
	}
	if o.workers != 1 || o.index != indexAuto || o.viewport != nil || o.fixedOpacity != nil {
		t.Errorf("unexpected defaults: %+v", o)
	}
}

func TestOptions(t *testing.T) {
	vp := NewGeoRect(GeoPoint{Lat: 10, Lng: 10}, GeoPoint{Lat: 0, Lng: 20})
	proj := NewMercator(0)

	o := apply(
		WithImageSize(800, 600),
		WithViewport(vp),
		WithPalette("gray"),
		WithProjection(proj),
		WithWorkers(3),
	)
	if o.size != image.Pt(800, 600) {
		t.Errorf("size = %v", o.size)
	}
	if o.viewport == nil || *o.viewport != vp {
		t.Errorf("viewport = %v, want %v", o.viewport, vp)
	}
	if o.palette != "gray" || o.proj != proj || o.workers != 3 {
		t.Errorf("options = %+v", o)
	}
}

func TestOptions_Opacity(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantFixed *int
		wantAt4   int
	}{
		{"default curve", nil, nil, 93},
		{"fixed", []Option{WithFixedOpacity(50)}, ptrInt(50), 93},
		{"curve clears fixed", []Option{WithFixedOpacity(50), WithOpacity(0, 10)}, nil, 153},
		{"fixed after curve", []Option{WithOpacity(0, 10), WithFixedOpacity(7)}, ptrInt(7), 153},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := apply(tt.opts...)
			switch {
			case tt.wantFixed == nil && o.fixedOpacity != nil:
				t.Errorf("fixedOpacity = %d, want unset", *o.fixedOpacity)
			case tt.wantFixed != nil && (o.fixedOpacity == nil || *o.fixedOpacity != *tt.wantFixed):
				t.Errorf("fixedOpacity = %v, want %d", o.fixedOpacity, *tt.wantFixed)
			}
			if got := o.curve.At(4); got != tt.wantAt4 {
				t.Errorf("curve.At(4) = %d, want %d", got, tt.wantAt4)
			}
		})
	}
}

func TestOptions_SpatialIndex(t *testing.T) {
	if o := apply(WithSpatialIndex(true)); o.index != indexOn {
		t.Errorf("WithSpatialIndex(true) index = %d", o.index)
	}
	if o := apply(WithSpatialIndex(false)); o.index != indexOff {
		t.Errorf("WithSpatialIndex(false) index = %d", o.index)
	}
}

func TestOptions_Renderer(t *testing.T) {
	r := NewTileRenderer(DefaultAssets(), 4)
	if o := apply(WithRenderer(r)); o.renderer != r {
		t.Error("WithRenderer did not keep the renderer")
	}

	assets := NewAssets()
	o := apply(WithAssets(assets))
	if o.renderer == nil || o.renderer.Assets() != AssetProvider(assets) {
		t.Error("WithAssets did not build a renderer over the assets")
	}
}

func ptrInt(v int) *int { return &v }
