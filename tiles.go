package main

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
)

const (
	tileCacheDir         = "tiles"
	tileSize             = 256
	tileFetchConcurrency = 8
	maxTileZoom          = 17
)

type tileStyle struct {
	Name    string
	URL     string
	Headers map[string]string
}

var tileStyles = map[string]tileStyle{
	"default":  {Name: "default", URL: "https://tile.openstreetmap.org/{z}/{x}/{y}.png"},
	"cyclosm":  {Name: "cyclosm", URL: "https://c.tile-cyclosm.openstreetmap.fr/cyclosm/{z}/{x}/{y}.png"},
	"positron": {Name: "positron", URL: "https://d.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png"},
}

type tileCoord struct {
	X, Y, Z int
}

var tileCache sync.Map

// deg2num converts lat/lon to fractional web-mercator tile coordinates.
func deg2num(lat, lon float64, zoom int) (float64, float64) {
	latRad := lat * math.Pi / 180
	n := math.Pow(2, float64(zoom))
	xtile := (lon + 180) / 360 * n
	ytile := (1 - math.Asinh(math.Tan(latRad))/math.Pi) / 2 * n
	return xtile, ytile
}

// fetchBackdrop builds a static map image covering the track's bounding box,
// sized near the canvas. It is strictly best-effort: any failure returns an
// error the caller logs and moves past, leaving the backdrop empty.
func fetchBackdrop(samples []Sample, canvasW, canvasH int, style string) (image.Image, error) {
	info, ok := tileStyles[style]
	if !ok {
		return nil, fmt.Errorf("unknown map style: %s", style)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to cover")
	}

	bound := orb.Bound{
		Min: orb.Point{samples[0].Lon, samples[0].Lat},
		Max: orb.Point{samples[0].Lon, samples[0].Lat},
	}
	for _, s := range samples[1:] {
		bound = bound.Extend(orb.Point{s.Lon, s.Lat})
	}

	zoom := chooseZoom(bound, canvasW, canvasH)

	x1, y2 := deg2num(bound.Min[1], bound.Min[0], zoom)
	x2, y1 := deg2num(bound.Max[1], bound.Max[0], zoom)

	txMin, txMax := int(math.Floor(x1)), int(math.Floor(x2))
	tyMin, tyMax := int(math.Floor(y1)), int(math.Floor(y2))

	var coords []tileCoord
	for x := txMin; x <= txMax; x++ {
		for y := tyMin; y <= tyMax; y++ {
			coords = append(coords, tileCoord{X: x, Y: y, Z: zoom})
		}
	}
	prefetchTiles(info, coords)

	dc := gg.NewContext((txMax-txMin+1)*tileSize, (tyMax-tyMin+1)*tileSize)
	for _, c := range coords {
		img, err := getTileImage(info, c)
		if err != nil {
			return nil, fmt.Errorf("tile %d/%d/%d: %w", c.Z, c.X, c.Y, err)
		}
		dc.DrawImage(img, (c.X-txMin)*tileSize, (c.Y-tyMin)*tileSize)
	}

	// Crop the mosaic down to the exact bounding-box rectangle.
	cropX := int((x1 - float64(txMin)) * tileSize)
	cropY := int((y1 - float64(tyMin)) * tileSize)
	cropW := int((x2 - x1) * tileSize)
	cropH := int((y2 - y1) * tileSize)
	if cropW < 1 || cropH < 1 {
		return dc.Image(), nil
	}
	cropped := gg.NewContext(cropW, cropH)
	cropped.DrawImage(dc.Image(), -cropX, -cropY)
	return cropped.Image(), nil
}

// chooseZoom picks the highest zoom level where the bounding box still fits
// within the canvas in tile pixels.
func chooseZoom(bound orb.Bound, canvasW, canvasH int) int {
	for z := maxTileZoom; z > 1; z-- {
		x1, y2 := deg2num(bound.Min[1], bound.Min[0], z)
		x2, y1 := deg2num(bound.Max[1], bound.Max[0], z)
		if (x2-x1)*tileSize <= float64(canvasW) && (y2-y1)*tileSize <= float64(canvasH) {
			return z
		}
	}
	return 2
}

func prefetchTiles(info tileStyle, coords []tileCoord) {
	bar := progressbar.Default(int64(len(coords)), "Downloading tiles")
	var wg sync.WaitGroup
	limit := make(chan struct{}, tileFetchConcurrency)

	for _, c := range coords {
		wg.Add(1)
		limit <- struct{}{}
		go func(c tileCoord) {
			defer wg.Done()
			if _, err := getTileImage(info, c); err != nil {
				log.Printf("tile prefetch %d/%d/%d: %v", c.Z, c.X, c.Y, err)
			}
			bar.Add(1)
			<-limit
		}(c)
	}
	wg.Wait()
}

func getTileImage(info tileStyle, c tileCoord) (image.Image, error) {
	tilePath := filepath.Join(tileCacheDir, info.Name, strconv.Itoa(c.Z), strconv.Itoa(c.X), fmt.Sprintf("%d.png", c.Y))

	if img, ok := tileCache.Load(tilePath); ok {
		return img.(image.Image), nil
	}

	if file, err := os.Open(tilePath); err == nil {
		defer file.Close()
		img, _, err := image.Decode(file)
		if err != nil {
			return nil, err
		}
		tileCache.Store(tilePath, img)
		return img, nil
	}

	url := strings.Replace(info.URL, "{z}", strconv.Itoa(c.Z), 1)
	url = strings.Replace(url, "{x}", strconv.Itoa(c.X), 1)
	url = strings.Replace(url, "{y}", strconv.Itoa(c.Y), 1)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "route-animator/0.1")
	for k, v := range info.Headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download tile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tile download status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(tilePath), 0755); err == nil {
		if out, err := os.Create(tilePath); err == nil {
			png.Encode(out, img)
			out.Close()
		}
	}

	tileCache.Store(tilePath, img)
	return img, nil
}
