// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package texture builds a single 2-D raster atlas out of standard XYZ
// slippy-map tiles covering a DemMosaic's footprint, and exposes the linear
// and 2nd-order-Taylor coefficients a fragment stage needs to map a
// (lat, lon) to an atlas pixel without a transcendental per fragment.
package texture

import (
	"math"

	"github.com/galvanized/horizon/internal/lin"
)

// TileSizePx is the pixel width/height of one slippy tile (the common XYZ
// convention).
const TileSizePx = 256

// slippyXY returns the fractional tile-index coordinates of (latDeg, lonDeg)
// at the given zoom level, using the standard Web Mercator slippy formula.
func slippyXY(latDeg, lonDeg float64, zoom int) (x, y float64) {
	n := math.Exp2(float64(zoom))
	x = (lonDeg + 180) / 360 * n
	latRad := lin.Rad(latDeg)
	y = (1 - math.Asinh(math.Tan(latRad))/math.Pi) / 2 * n
	return x, y
}

// TileRange returns the inclusive range of slippy tile indices covering the
// rectangle (lat0, lon0)-(lat1, lon1) at zoom, for a caller (such as
// tiledownload) that needs to enumerate tiles before Build reads them.
func TileRange(lat0, lon0, lat1, lon1 float64, zoom int) (x0, y0, x1, y1 int) {
	xaf, ybf := slippyXY(lat0, lon0, zoom)
	xbf, yaf := slippyXY(lat1, lon1, zoom)
	x0, x1 = int(math.Floor(xaf)), int(math.Floor(xbf))
	y0, y1 = int(math.Floor(yaf)), int(math.Floor(ybf))
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return x0, y0, x1, y1
}

// tileKey converts tile coordinates and a zoom level to a debug key by
// interleaving the bits of tx and ty, one base-4 digit per zoom level.
func tileKey(zoom, tx, ty uint) string {
	buf := make([]byte, zoom)
	for z := zoom; z > 0; z-- {
		mask := uint(1) << (z - 1)
		digit := byte('0')
		switch {
		case tx&mask != 0 && ty&mask != 0:
			digit = '3'
		case tx&mask != 0:
			digit = '1'
		case ty&mask != 0:
			digit = '2'
		}
		buf[zoom-z] = digit
	}
	return string(buf)
}
