package staticmap

import (
	"image/color"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestStyleString(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		want  string
	}{
		{
			name:  "element only",
			style: Style{},
			want:  "style=element:all",
		},
		{
			name: "feature and element",
			style: Style{
				Feature: FeatureWater,
				Element: ElementGeometryFill,
				Options: StyleOptions{Color: &Color{R: 0x11, G: 0x22, B: 0x33, A: 0xff}},
			},
			want: "style=feature:water|element:geometry.fill|color:0x112233FF",
		},
		{
			name: "all options in order",
			style: Style{
				Feature: FeaturePOIPark,
				Element: ElementLabelsIcon,
				Options: StyleOptions{
					Hue:             &Color{R: 255, A: 255},
					Lightness:       ptr(-20.0),
					Saturation:      ptr(50.5),
					Gamma:           ptr(0.5),
					InvertLightness: true,
					Color:           &Color{G: 255, A: 128},
					Weight:          ptr(2),
					Visibility:      VisibilitySimplified,
				},
			},
			want: "style=feature:poi.park|element:labels.icon|hue:0xFF0000FF|lightness:-20|saturation:50.5|" +
				"gamma:0.5|invert_lightness:true|color:0x00FF0080|weight:2|visibility:simplified",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	red := Color(color.NRGBA{R: 255, A: 255})
	fill := Color{R: 1, G: 2, B: 3, A: 4}
	tests := []struct {
		name string
		path Path
		want string
	}{
		{"points only", Path{Points: []LatLng{{40, -75}, {41.5, -76}}}, "path=40,-75|41.5,-76"},
		{
			"all fields",
			Path{Color: &red, FillColor: &fill, Weight: 3, Geodesic: true, Points: []LatLng{{1, 2}}},
			"path=color:0xFF0000FF|fillcolor:0x01020304|weight:3|geodesic:true|1,2",
		},
		{"empty", Path{}, "path="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
