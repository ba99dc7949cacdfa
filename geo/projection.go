// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package geo

import (
	"math"

	"github.com/galvanized/horizon/errkind"
	"github.com/galvanized/horizon/internal/lin"
)

// Window carries the viewer-local tangent-plane state and the render
// camera parameters that the forward/inverse projection needs: the
// viewer fix, the azimuth window, the near/far range clamps, the
// color-coding range clamps, and the viewport.
type Window struct {
	Viewer Fix

	Az0, Az1 float64 // degrees, east-of-north, Az0 < Az1.

	ZNear, ZFar           float64 // meters.
	ZNearColor, ZFarColor float64 // meters.

	WidthPx, HeightPx int
}

// Aspect returns the viewport aspect ratio W_px / H_px.
func (w Window) Aspect() float64 { return float64(w.WidthPx) / float64(w.HeightPx) }

// Validate checks the configuration invariants from the error taxonomy's
// "config" kind.
func (w Window) Validate() error {
	if w.Az0 >= w.Az1 {
		return errkind.Newf(errkind.Config, "azimuth window az0 (%v) must be < az1 (%v)", w.Az0, w.Az1)
	}
	if w.WidthPx <= 0 || w.HeightPx <= 0 {
		return errkind.Newf(errkind.Config, "viewport %dx%d must be positive", w.WidthPx, w.HeightPx)
	}
	if w.ZNear <= 0 || w.ZFar <= w.ZNear {
		return errkind.Newf(errkind.Config, "z extents near=%v far=%v must be positive and near<far", w.ZNear, w.ZFar)
	}
	if !w.Viewer.Valid() {
		return errkind.Newf(errkind.Config, "viewer fix (%v,%v) out of domain", w.Viewer.LatDeg(), w.Viewer.LonDeg())
	}
	return nil
}

// Projected is the result of projecting one (lat, lon, elev) mesh point
// through a Window: normalized device coordinates and the information a
// renderer needs to shade and occlusion-test the point.
type Projected struct {
	AzNDC, ElNDC float64 // normalized device coordinates.
	Depth        float64 // clamped to [0, 1].
	LenEN        float64 // east/north slant distance, meters (pre-clamp).
	East, North  float64 // tangent-plane offsets, meters.
	Height       float64 // viewer-relative height, meters.
}

// Forward projects a point at (latDeg, lonDeg, elevM) into window w's
// normalized device coordinates. The re-grouped R_e term avoids a large-minus-large cancellation when
// elevations are small compared to EarthRadiusM.
//
// az0/az1 are documented in degrees; atan2 naturally returns radians, so
// az and the elevation angle are converted to degrees before being
// combined with the degree-valued azimuth window.
func Forward(w Window, latDeg, lonDeg, elevM float64) Projected {
	lat := lin.Rad(latDeg)
	lon := lin.Rad(lonDeg)
	latV := w.Viewer.LatRad()
	lonV := w.Viewer.LonRad()
	dLon := lon - lonV

	east := math.Cos(lat) * math.Sin(dLon)
	north := math.Sin(lat-latV)*math.Cos(dLon) +
		math.Sin(lat)*math.Cos(latV)*(1-math.Cos(dLon))
	height := (EarthRadiusM+elevM)*(math.Cos(lat-latV)*math.Cos(dLon)+
		math.Sin(lat)*math.Sin(latV)*(1-math.Cos(dLon))) - EarthRadiusM - w.Viewer.Elev
	lenEN := (EarthRadiusM + elevM) * math.Sqrt(east*east+north*north)

	azDeg := lin.Deg(math.Atan2(east, north))
	azNDC := 2 * (azDeg - (w.Az0+w.Az1)/2) / (w.Az1 - w.Az0)

	elDeg := lin.Deg(math.Atan2(height, lenEN))
	elNDC := elDeg * 2 * w.Aspect() / (w.Az1 - w.Az0)

	depth := lin.Clamp((lenEN-w.ZNear)/(w.ZFar-w.ZNear), 0, 1)

	return Projected{
		AzNDC: azNDC, ElNDC: elNDC, Depth: depth,
		LenEN: lenEN, East: east, North: north, Height: height,
	}
}

// ToPixel converts normalized device coordinates to a screen pixel position.
// Row 0 is the bottom of the viewport (elNDC == -1), matching the render
// package's native device-buffer row order.
func (w Window) ToPixel(azNDC, elNDC float64) (xPx, yPx float64) {
	xPx = (azNDC + 1) / 2 * float64(w.WidthPx)
	yPx = (elNDC + 1) / 2 * float64(w.HeightPx)
	return xPx, yPx
}

// Inverse recovers a geographic (lat, lon) from a screen pixel x_px and its
// depth reading, using a small-angle tangent-plane approximation around
// the viewer. xPx is a pixel index; the pixel's center (xPx+0.5) is
// sampled. ok is false for a depth reading at the
// far-plane sentinel (sky).
func Inverse(w Window, xPx float64, depth float64) (latDeg, lonDeg float64, ok bool) {
	if depth >= 1.0 {
		return 0, 0, false
	}
	lenEN := depth*(w.ZFar-w.ZNear) + w.ZNear

	azNDC := (xPx+0.5)*2/float64(w.WidthPx) - 1
	azDeg := azNDC*(w.Az1-w.Az0)/2 + (w.Az0+w.Az1)/2
	az := lin.Rad(azDeg)

	east := lenEN * math.Sin(az)
	north := lenEN * math.Cos(az)

	latV := w.Viewer.LatRad()
	lonV := w.Viewer.LonRad()
	lonDeg = lin.Deg(lonV + east/(EarthRadiusM*math.Cos(latV)))
	latDeg = lin.Deg(latV + north/EarthRadiusM)
	return latDeg, lonDeg, true
}

// ElevationAngle reconstructs the elevation angle (radians, above the
// horizontal) of a pixel's row, used by Renderer.ReadRanges to convert a
// depth reading into a true slant range.
func ElevationAngle(w Window, yPx float64) float64 {
	elNDC := (yPx+0.5)*2/float64(w.HeightPx) - 1
	elDeg := elNDC * (w.Az1 - w.Az0) / (2 * w.Aspect())
	return lin.Rad(elDeg)
}

// SlantRange converts a depth reading and its pixel row into the true
// slant distance: range = sqrt(len_en^2 +
// (len_en*tan(el))^2). Returns -1 for the sky sentinel.
func SlantRange(w Window, yPx float64, depth float64) float64 {
	if depth >= 1.0 {
		return -1
	}
	lenEN := depth*(w.ZFar-w.ZNear) + w.ZNear
	el := ElevationAngle(w, yPx)
	rise := lenEN * math.Tan(el)
	return math.Sqrt(lenEN*lenEN + rise*rise)
}
