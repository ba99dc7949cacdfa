// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package poi

import (
	"math"

	"github.com/galvanized/horizon/geo"
	"github.com/galvanized/horizon/internal/lin"
	"github.com/galvanized/horizon/render"
)

// Default activation/occlusion parameters, consolidated from the several
// near-identical POI-projection routines the legacy renderer carried into
// this one pure-ish Projector.
const (
	DefaultMinMarkerM   = 50.0
	DefaultMaxMarkerM   = 35000.0
	DefaultFuzzPx       = 4
	DefaultOcclusionTol = 0.04
)

// Projector activates, projects, and occlusion-tests POIs against a
// completed Renderer frame.
type Projector struct {
	MinMarkerM   float64
	MaxMarkerM   float64
	FuzzPx       int
	OcclusionTol float64
}

// NewProjector returns a Projector configured with the spec's defaults.
func NewProjector() *Projector {
	return &Projector{
		MinMarkerM:   DefaultMinMarkerM,
		MaxMarkerM:   DefaultMaxMarkerM,
		FuzzPx:       DefaultFuzzPx,
		OcclusionTol: DefaultOcclusionTol,
	}
}

// arcDistanceM approximates the great-circle distance between the viewer
// and a target using the tangent-plane expression from §PoiProjector:
// arc² ≈ R_e²·(dlon²·cos²(lat_v)·cos²(lat_poi) + dlat²).
func arcDistanceM(viewerLatRad, viewerLonRad, latRad, lonRad float64) float64 {
	dlat := latRad - viewerLatRad
	dlon := lonRad - viewerLonRad
	cosV := math.Cos(viewerLatRad)
	cosP := math.Cos(latRad)
	arc2 := geo.EarthRadiusM * geo.EarthRadiusM * (dlon*dlon*cosV*cosV*cosP*cosP + dlat*dlat)
	return math.Sqrt(arc2)
}

// Project activates, projects, and occlusion-tests every POI against r's
// last completed Redraw. Inactive POIs have their render state left as
// Active == false; Project does not reset DrawX/DrawY/LabelY for them.
func (pj *Projector) Project(pois []*POI, r *render.Renderer) {
	w := r.Window()
	depth := r.RawDepth()
	viewerLatRad, viewerLonRad := w.Viewer.LatRad(), w.Viewer.LonRad()

	for _, p := range pois {
		dist := arcDistanceM(viewerLatRad, viewerLonRad, p.LatRad, p.LonRad)
		if dist < pj.MinMarkerM || dist > pj.MaxMarkerM {
			p.Active = false
			continue
		}

		proj := geo.Forward(w, lin.Deg(p.LatRad), lin.Deg(p.LonRad), p.ElevM)
		xPx, yBottomPx := w.ToPixel(proj.AzNDC, proj.ElNDC)
		drawX := int(xPx)
		if drawX < 0 || drawX >= w.WidthPx {
			p.Active = false
			continue
		}

		finalY, ok := pj.occlude(depth, w, drawX, int(yBottomPx), proj.Depth)
		if !ok {
			p.Active = false
			continue
		}
		p.Active = true
		p.DrawX = drawX
		// Render state is expressed top-first, matching the persisted image
		// and caller-facing pixel conventions; the depth buffer itself is
		// bottom-first (see render.Renderer).
		p.DrawY = w.HeightPx - 1 - finalY
	}
}

// occlude scans depth around (drawX, drawYBottom) within ±FuzzPx, accepting
// the fuzz offset whose depth best matches the POI's expected depth.
// Repeated depth values are skipped (the scan is expected to be monotonic
// near a real surface); the probe fails if no fuzz's error is within
// OcclusionTol.
func (pj *Projector) occlude(depth []float32, w geo.Window, drawX, drawYBottom int, expectedDepth float64) (finalY int, ok bool) {
	bestErr := math.Inf(1)
	var seenDepth float32
	haveSeen := false
	for fuzz := -pj.FuzzPx; fuzz <= pj.FuzzPx; fuzz++ {
		y := drawYBottom + fuzz
		if y < 0 || y >= w.HeightPx {
			continue
		}
		d := depth[y*w.WidthPx+drawX]
		if haveSeen && d == seenDepth {
			continue
		}
		seenDepth, haveSeen = d, true
		errv := math.Abs(expectedDepth - float64(d))
		if errv < bestErr {
			bestErr = errv
			finalY = y
			ok = true
		}
	}
	if !ok || bestErr > pj.OcclusionTol {
		return 0, false
	}
	return finalY, true
}
