// Command heatdemo renders a heatmap of CSV points over a static base map.
//
// Usage:
//
//	heatdemo -in points.csv -out heatmap.png
//	heatdemo -in points.csv -offline -fit
package main

import (
	"context"
	"flag"
	"image"
	"image/draw"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/internal/logging"
	"github.com/gogpu/heatmap/staticmap"
)

func main() {
	var (
		in         = flag.String("in", "-", "CSV file of id,lat,lng records (- for stdin)")
		out        = flag.String("out", "heatmap.png", "output PNG file")
		north      = flag.Float64("north", 50, "viewport north edge")
		west       = flag.Float64("west", -100, "viewport west edge")
		south      = flag.Float64("south", 20, "viewport south edge")
		east       = flag.Float64("east", -70, "viewport east edge")
		fit        = flag.Bool("fit", false, "fit the viewport to the points instead")
		width      = flag.Int("width", heatmap.DefaultImageSize, "image width")
		height     = flag.Int("height", heatmap.DefaultImageSize, "image height")
		palette    = flag.String("palette", heatmap.DefaultPalette, "palette name")
		workers    = flag.Int("workers", 4, "tile render workers")
		offline    = flag.Bool("offline", false, "render on a blank canvas instead of fetching a base map")
		desaturate = flag.Bool("desaturate", false, "render the base map in grayscale")
		mapType    = flag.String("maptype", staticmap.DefaultMapType, "base map type")
		client     = flag.String("client", "", "premium client id")
		key        = flag.String("key", "", "premium signing key (URL-safe base64)")
		level      = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logging.Setup(*level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, err := loadPoints(*in)
	if err != nil {
		log.Fatalf("load points: %v", err)
	}

	opts := []heatmap.Option{
		heatmap.WithImageSize(*width, *height),
		heatmap.WithPalette(*palette),
		heatmap.WithWorkers(*workers),
	}
	if !*fit {
		opts = append(opts, heatmap.WithViewport(heatmap.NewGeoRect(
			heatmap.GeoPoint{Lat: *north, Lng: *west},
			heatmap.GeoPoint{Lat: *south, Lng: *east},
		)))
	}

	hm, err := heatmap.New(points, opts...)
	if err != nil {
		log.Fatalf("plan heatmap: %v", err)
	}
	slog.Info("rendering",
		"points", len(points),
		"zoom", hm.Zoom(),
		"tiles", hm.TileCount(),
		"opacity", hm.Opacity(),
	)

	base, err := baseMap(ctx, hm, *offline, *mapType, *client, *key)
	if err != nil {
		log.Fatalf("base map: %v", err)
	}
	if *desaturate {
		if err := heatmap.Desaturate(base); err != nil {
			log.Fatalf("desaturate: %v", err)
		}
	}

	start := time.Now()
	img, err := hm.RenderOver(ctx, base)
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	if err := savePNG(*out, img); err != nil {
		log.Fatalf("save: %v", err)
	}
	slog.Info("saved", "file", *out, "elapsed", time.Since(start).String())
}

func loadPoints(name string) ([]heatmap.GeoPoint, error) {
	if name == "-" {
		return readPoints(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPoints(f)
}

// baseMap returns the image to render over as a mutable NRGBA copy.
func baseMap(ctx context.Context, hm *heatmap.Heatmap, offline bool, mapType, client, key string) (*image.NRGBA, error) {
	size := hm.Size()
	canvas := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	if offline {
		draw.Draw(canvas, canvas.Rect, image.White, image.Point{}, draw.Src)
		return canvas, nil
	}

	var fopts []staticmap.FetcherOption
	if client != "" {
		fopts = append(fopts, staticmap.WithCredentials(staticmap.Credentials{ClientID: client, SigningKey: key}))
	}
	f := staticmap.NewFetcher(fopts...)

	req := hm.MapRequest()
	req.MapType = mapType
	img, err := f.FetchImage(ctx, req)
	if err != nil {
		return nil, err
	}
	// RenderOver resamples a base map of another size.
	b := img.Bounds()
	canvas = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Rect, img, b.Min, draw.Src)
	return canvas, nil
}

func savePNG(name string, img image.Image) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
