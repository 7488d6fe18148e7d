package staticmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the Static Maps endpoint.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/staticmap"

	// FreeTierMaxSize is the largest edge served without credentials.
	FreeTierMaxSize = 640

	// PremiumTierMaxSize is the largest edge served with credentials.
	PremiumTierMaxSize = 2048

	// DefaultMapType is used when Request.MapType is empty.
	DefaultMapType = "roadmap"
)

// Errors returned while building requests.
var (
	ErrImageTooLarge = errors.New("staticmap: image too large for tier")
	ErrInvalidSize   = errors.New("staticmap: invalid image size")
	ErrInvalidKey    = errors.New("staticmap: invalid signing key")
)

// LatLng is a coordinate in degrees.
type LatLng struct {
	Lat, Lng float64
}

// String formats the coordinate as "lat,lng" at full precision.
func (p LatLng) String() string {
	return FormatCoord(p.Lat) + "," + FormatCoord(p.Lng)
}

// FormatCoord formats a coordinate with every significant digit and never
// in exponent form. The service matches coordinates textually.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Credentials identify a premium account.
type Credentials struct {
	ClientID string

	// SigningKey is the URL-safe base64 private key.
	SigningKey string
}

// Request describes one static map image.
type Request struct {
	Center  LatLng
	Zoom    int
	Width   int
	Height  int
	MapType string
	Styles  []Style
	Paths   []Path
}

// MaxSize returns the largest edge allowed for the tier.
func MaxSize(premium bool) int {
	if premium {
		return PremiumTierMaxSize
	}
	return FreeTierMaxSize
}

// Validate checks the image size against the tier limit.
func (r Request) Validate(premium bool) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, r.Width, r.Height)
	}
	limit := MaxSize(premium)
	if r.Width > limit || r.Height > limit {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrImageTooLarge, r.Width, r.Height, limit, limit)
	}
	return nil
}

// URL returns the request URL against base. With credentials the URL
// carries the client ID and is signed; without, the free tier limit
// applies.
func (r Request) URL(base string, creds *Credentials) (string, error) {
	premium := creds != nil
	if err := r.Validate(premium); err != nil {
		return "", err
	}

	mapType := r.MapType
	if mapType == "" {
		mapType = DefaultMapType
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?center=")
	b.WriteString(r.Center.String())
	b.WriteString("&zoom=")
	b.WriteString(strconv.Itoa(r.Zoom))
	if premium {
		b.WriteString("&client=")
		b.WriteString(creds.ClientID)
	}
	fmt.Fprintf(&b, "&size=%dx%d", r.Width, r.Height)
	b.WriteString("&maptype=")
	b.WriteString(mapType)
	b.WriteString("&sensor=false")
	for _, s := range r.Styles {
		b.WriteByte('&')
		b.WriteString(s.String())
	}
	for _, p := range r.Paths {
		if len(p.Points) == 0 {
			continue
		}
		b.WriteByte('&')
		b.WriteString(p.String())
	}

	if !premium {
		return b.String(), nil
	}
	return Sign(b.String(), creds.SigningKey)
}
