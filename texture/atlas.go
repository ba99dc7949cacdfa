// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/gen2brain/webp"

	"github.com/galvanized/horizon/errkind"
)

// Atlas is a single RGB raster covering a DemMosaic footprint, tiled from
// standard XYZ slippy-map imagery at one zoom level. It also carries the
// linear/Taylor coefficients §TextureAtlas uniforms need to locate a
// (lat, lon) within the atlas without a per-fragment transcendental call.
type Atlas struct {
	Zoom       int
	OriginTile image.Point // NW-most (top-left) tile index (x0, y0) at Zoom.
	TilesX     int
	TilesY     int
	pix        []byte // RGB triples, row-major, (TilesX*256) x (TilesY*256).
	widthPx    int

	Lon0, Lon1                float64 // x_tile = lon*Lon1 + Lon0.
	ViewerLatDeg               float64
	DLat0, DLat1, DLat2        float64 // y_tile(lat) Taylor coefficients around ViewerLatDeg.
}

// Build tiles the rectangle (lat0, lon0)-(lat1, lon1) at the given zoom,
// loading each tile PNG/WebP file from tilesDir/{zoom}/{x}/{y}.{png,webp}.
// A missing tile is logged and left at the atlas's cleared background
// color; this matches the spec's "missing tiles render as the atlas's
// initial cleared color" rule, so Build never fails for a missing tile.
func Build(tilesDir string, zoom int, lat0, lon0, lat1, lon1, viewerLatDeg float64) (*Atlas, error) {
	if zoom < 0 {
		return nil, errkind.Newf(errkind.Config, "texture: zoom %d must be non-negative", zoom)
	}
	x0f, y1f := slippyXY(lat0, lon0, zoom) // SW corner: lower lat -> larger y_tile.
	x1f, y0f := slippyXY(lat1, lon1, zoom) // NE corner: higher lat -> smaller y_tile.
	x0, x1 := int(math.Floor(x0f)), int(math.Floor(x1f))
	y0, y1 := int(math.Floor(y0f)), int(math.Floor(y1f))
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}

	a := &Atlas{
		Zoom:         zoom,
		OriginTile:   image.Pt(x0, y0),
		TilesX:       x1 - x0 + 1,
		TilesY:       y1 - y0 + 1,
		ViewerLatDeg: viewerLatDeg,
	}
	a.widthPx = a.TilesX * TileSizePx
	a.pix = make([]byte, a.widthPx*a.TilesY*TileSizePx*3)

	n := math.Exp2(float64(zoom))
	a.Lon1 = n / 360
	a.Lon0 = n / 2
	a.computeLatTaylor(n)

	for tx := x0; tx <= x1; tx++ {
		for ty := y0; ty <= y1; ty++ {
			img, err := loadTile(tilesDir, zoom, tx, ty)
			if err != nil {
				return nil, err
			}
			if img == nil {
				log.Printf("texture: missing tile %s, leaving atlas cell at background color", tileKey(uint(zoom), uint(tx), uint(ty)))
				continue
			}
			a.paste(img, tx-x0, ty-y0)
		}
	}
	return a, nil
}

// computeLatTaylor fits the 2nd-order Taylor expansion of the exact
// Mercator y_tile(lat) around ViewerLatDeg using a central-difference
// estimate, avoiding a symbolic derivative of asinh(tan(·)).
func (a *Atlas) computeLatTaylor(n float64) {
	const h = 1e-3 // degrees
	f0 := yTileExact(a.ViewerLatDeg, n)
	fPlus := yTileExact(a.ViewerLatDeg+h, n)
	fMinus := yTileExact(a.ViewerLatDeg-h, n)
	a.DLat0 = f0
	a.DLat1 = (fPlus - fMinus) / (2 * h)
	a.DLat2 = (fPlus - 2*f0 + fMinus) / (2 * h * h)
}

// yTileExact is the exact (pre-Taylor) Mercator y_tile at zoom level n.
func yTileExact(latDeg, n float64) float64 {
	_, mercatorFraction := slippyXY(latDeg, 0, 0) // zoom 0: n=1, y in [0,1).
	return mercatorFraction * n
}

func loadTile(tilesDir string, zoom, tx, ty int) (image.Image, error) {
	base := filepath.Join(tilesDir, fmt.Sprint(zoom), fmt.Sprint(tx), fmt.Sprint(ty))
	for _, ext := range []string{".png", ".webp"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errkind.New(errkind.IO, err)
		}
		img, err := decodeTile(data)
		if err != nil {
			return nil, errkind.New(errkind.BadTile, err)
		}
		return img, nil
	}
	return nil, nil
}

// decodeTile auto-detects PNG vs WebP from the file's magic bytes.
func decodeTile(data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	if len(data) >= 4 && bytes.Equal(data[:4], []byte("RIFF")) {
		return webp.Decode(r)
	}
	return png.Decode(r)
}

// paste unpalettizes (if needed) and copies img into atlas tile cell
// (cellX, cellY).
func (a *Atlas) paste(img image.Image, cellX, cellY int) {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		dst := image.NewRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		rgba = dst
	}
	b := rgba.Bounds()
	ox, oy := cellX*TileSizePx, cellY*TileSizePx
	for y := 0; y < TileSizePx && y < b.Dy(); y++ {
		for x := 0; x < TileSizePx && x < b.Dx(); x++ {
			r, g, bl, _ := rgba.At(b.Min.X+x, b.Min.Y+y).RGBA()
			idx := ((oy+y)*a.widthPx + (ox + x)) * 3
			a.pix[idx] = byte(r >> 8)
			a.pix[idx+1] = byte(g >> 8)
			a.pix[idx+2] = byte(bl >> 8)
		}
	}
}

// Sample implements render.TextureAtlas: it locates (latDeg, lonDeg) using
// the atlas's linear/Taylor coefficients rather than re-deriving the exact
// Mercator projection. ok is false outside the atlas's coverage.
func (a *Atlas) Sample(latDeg, lonDeg float64) (r, g, b uint8, ok bool) {
	xTile := lonDeg*a.Lon1 + a.Lon0
	dLat := latDeg - a.ViewerLatDeg
	yTile := a.DLat0 + a.DLat1*dLat + a.DLat2*dLat*dLat

	px := (xTile - float64(a.OriginTile.X)) * TileSizePx
	py := (yTile - float64(a.OriginTile.Y)) * TileSizePx
	x, y := int(px), int(py)
	if x < 0 || y < 0 || x >= a.widthPx || y >= a.TilesY*TileSizePx {
		return 0, 0, 0, false
	}
	idx := (y*a.widthPx + x) * 3
	return a.pix[idx], a.pix[idx+1], a.pix[idx+2], true
}
