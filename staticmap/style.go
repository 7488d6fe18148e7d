package staticmap

import (
	"strconv"
	"strings"
)

// Feature selects the map features a style applies to.
type Feature string

// Features understood by the service.
const (
	FeatureAll Feature = "all"

	FeatureAdministrative             Feature = "administrative"
	FeatureAdministrativeCountry      Feature = "administrative.country"
	FeatureAdministrativeLandParcel   Feature = "administrative.land_parcel"
	FeatureAdministrativeLocality     Feature = "administrative.locality"
	FeatureAdministrativeNeighborhood Feature = "administrative.neighborhood"
	FeatureAdministrativeProvince     Feature = "administrative.province"

	FeatureLandscape                 Feature = "landscape"
	FeatureLandscapeManMade          Feature = "landscape.man_made"
	FeatureLandscapeNatural          Feature = "landscape.natural"
	FeatureLandscapeNaturalLandcover Feature = "landscape.natural.landcover"
	FeatureLandscapeNaturalTerrain   Feature = "landscape.natural.terrain"

	FeaturePOI               Feature = "poi"
	FeaturePOIAttraction     Feature = "poi.attraction"
	FeaturePOIBusiness       Feature = "poi.business"
	FeaturePOIGovernment     Feature = "poi.government"
	FeaturePOIMedical        Feature = "poi.medical"
	FeaturePOIPark           Feature = "poi.park"
	FeaturePOIPlaceOfWorship Feature = "poi.place_of_worship"
	FeaturePOISchool         Feature = "poi.school"
	FeaturePOISportsComplex  Feature = "poi.sports_complex"

	FeatureRoad                        Feature = "road"
	FeatureRoadArterial                Feature = "road.arterial"
	FeatureRoadHighway                 Feature = "road.highway"
	FeatureRoadHighwayControlledAccess Feature = "road.highway.controlled_access"
	FeatureRoadLocal                   Feature = "road.local"

	FeatureTransit               Feature = "transit"
	FeatureTransitLine           Feature = "transit.line"
	FeatureTransitStation        Feature = "transit.station"
	FeatureTransitStationAirport Feature = "transit.station.airport"
	FeatureTransitStationBus     Feature = "transit.station.bus"
	FeatureTransitStationRail    Feature = "transit.station.rail"

	FeatureWater Feature = "water"
)

// Element selects which part of a feature a style applies to.
type Element string

// Elements understood by the service.
const (
	ElementAll              Element = "all"
	ElementGeometry         Element = "geometry"
	ElementGeometryFill     Element = "geometry.fill"
	ElementGeometryStroke   Element = "geometry.stroke"
	ElementLabels           Element = "labels"
	ElementLabelsIcon       Element = "labels.icon"
	ElementLabelsText       Element = "labels.text"
	ElementLabelsTextFill   Element = "labels.text.fill"
	ElementLabelsTextStroke Element = "labels.text.stroke"
)

// Visibility controls whether styled elements are drawn.
type Visibility string

// Visibility values.
const (
	VisibilityOn         Visibility = "on"
	VisibilityOff        Visibility = "off"
	VisibilitySimplified Visibility = "simplified"
)

// StyleOptions are the styling rules of one Style. Nil and zero fields are
// omitted.
type StyleOptions struct {
	// Hue is an RGB color whose hue is applied.
	Hue *Color

	// Lightness in [-100, 100].
	Lightness *float64

	// Saturation in [-100, 100].
	Saturation *float64

	// Gamma in [0.01, 10].
	Gamma *float64

	InvertLightness bool

	// Color sets the element color outright.
	Color *Color

	// Weight is the line width in pixels.
	Weight *int

	Visibility Visibility
}

// String renders the options separated by "|" without a trailing
// separator.
func (o StyleOptions) String() string {
	var parts []string
	if o.Hue != nil {
		parts = append(parts, "hue:"+o.Hue.Hex())
	}
	if o.Lightness != nil {
		parts = append(parts, "lightness:"+FormatCoord(*o.Lightness))
	}
	if o.Saturation != nil {
		parts = append(parts, "saturation:"+FormatCoord(*o.Saturation))
	}
	if o.Gamma != nil {
		parts = append(parts, "gamma:"+FormatCoord(*o.Gamma))
	}
	if o.InvertLightness {
		parts = append(parts, "invert_lightness:true")
	}
	if o.Color != nil {
		parts = append(parts, "color:"+o.Color.Hex())
	}
	if o.Weight != nil {
		parts = append(parts, "weight:"+strconv.Itoa(*o.Weight))
	}
	if o.Visibility != "" {
		parts = append(parts, "visibility:"+string(o.Visibility))
	}
	return strings.Join(parts, "|")
}

// Style applies options to the selected features and elements.
// An empty Feature applies to all features; an empty Element to all
// elements.
type Style struct {
	Feature Feature
	Element Element
	Options StyleOptions
}

// String renders the style query parameter.
func (s Style) String() string {
	var b strings.Builder
	b.WriteString("style=")
	if s.Feature != "" {
		b.WriteString("feature:")
		b.WriteString(string(s.Feature))
		b.WriteByte('|')
	}
	elem := s.Element
	if elem == "" {
		elem = ElementAll
	}
	b.WriteString("element:")
	b.WriteString(string(elem))
	if opts := s.Options.String(); opts != "" {
		b.WriteByte('|')
		b.WriteString(opts)
	}
	return b.String()
}
