// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package poi

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/galvanized/horizon/dem"
	"github.com/galvanized/horizon/geo"
	demmesh "github.com/galvanized/horizon/mesh"
	"github.com/galvanized/horizon/render"
	"github.com/galvanized/horizon/tile"
)

func writeTile(t *testing.T, dir string, latDeg, lonDeg, width int, fill func(i, j int) int16) {
	t.Helper()
	buf := make([]byte, width*width*2)
	for row := 0; row < width; row++ {
		j := width - 1 - row
		for i := 0; i < width; i++ {
			v := fill(i, j)
			off := 2 * (i + row*width)
			binary.BigEndian.PutUint16(buf[off:], uint16(v))
		}
	}
	path := filepath.Join(dir, tile.Name(latDeg, lonDeg))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func geoWindowFixture(widthPx, heightPx int) geo.Window {
	return geo.Window{
		Viewer:     geo.NewFix(0, 0, 1),
		Az0:        -10, Az1: 10,
		ZNear: 10, ZFar: 40000,
		ZNearColor: 10, ZFarColor: 40000,
		WidthPx: widthPx, HeightPx: heightPx,
	}
}

// buildRenderer constructs a minimal end-to-end Renderer over a flat
// plateau, with a viewer at the footprint's center.
func buildRenderer(t *testing.T, plateauM int16, radius, widthPx, heightPx int) (*render.Renderer, *dem.Mosaic) {
	t.Helper()
	dir := t.TempDir()
	writeTile(t, dir, 0, 0, tile.Width3, func(i, j int) int16 { return plateauM })
	store := tile.New(dir)
	t.Cleanup(func() { store.CloseAll() })

	m, err := dem.Build(0.5, 0.5, radius, store, tile.Width3)
	if err != nil {
		t.Fatal(err)
	}
	msh, err := demmesh.Build(m)
	if err != nil {
		t.Fatal(err)
	}
	w := geoWindowFixture(widthPx, heightPx)
	shader := render.DefaultShaderProgram(w, m)
	r, err := render.New(msh, shader, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetViewer(0.5, 0.5, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Redraw(); err != nil {
		t.Fatal(err)
	}
	return r, m
}

func TestArcDistanceSymmetricUnderLongitudeReflection(t *testing.T) {
	viewerLat, viewerLon := 0.0, 0.0
	east := arcDistanceM(viewerLat, viewerLon, 0.0, 0.01)
	west := arcDistanceM(viewerLat, viewerLon, 0.0, -0.01)
	if math.Abs(east-west) > 1e-6 {
		t.Errorf("arc distance not symmetric: east=%v west=%v", east, west)
	}
}

func TestOccludeSkipsRepeatedDepthAndRespectsTolerance(t *testing.T) {
	pj := NewProjector()
	width, height := 5, 20
	depth := make([]float32, width*height)
	for i := range depth {
		depth[i] = 1.0
	}
	// A surface at rows 9 and 10 with the expected depth; the identical
	// values at those two rows exercise the "skip repeated depth values"
	// rule, and row 11 is a near miss.
	depth[9*width+2] = 0.5
	depth[10*width+2] = 0.5
	depth[11*width+2] = 0.6

	w := geoWindowFixture(width, height)
	finalY, ok := pj.occlude(depth, w, 2, 10, 0.5)
	if !ok {
		t.Fatal("expected occlusion probe to succeed")
	}
	if finalY != 9 && finalY != 10 {
		t.Errorf("finalY = %d, want 9 or 10 (both share the expected depth)", finalY)
	}
}

func TestOccludeFailsBeyondTolerance(t *testing.T) {
	pj := NewProjector()
	pj.OcclusionTol = 0.001
	width, height := 5, 20
	depth := make([]float32, width*height)
	for i := range depth {
		depth[i] = 1.0
	}
	depth[10*width+2] = 0.9 // far from the expected 0.1.
	w := geoWindowFixture(width, height)
	_, ok := pj.occlude(depth, w, 2, 10, 0.1)
	if ok {
		t.Fatal("expected occlusion probe to fail: no depth within tolerance")
	}
}

// TestDistanceThresholdsExcludeActivation covers the testable property: a
// POI below min_marker_m or above max_marker_m is never active.
func TestDistanceThresholdsExcludeActivation(t *testing.T) {
	r, _ := buildRenderer(t, 0, 10, 64, 64)
	pj := NewProjector()

	tooClose := New("close", 0.5+1e-6, 0.5, 0)   // a few cm away.
	tooFar := New("far", 5.0, 5.0, 0)             // hundreds of km away.
	pois := []*POI{tooClose, tooFar}
	pj.Project(pois, r)
	if tooClose.Active {
		t.Error("expected a POI nearer than MinMarkerM to be inactive")
	}
	if tooFar.Active {
		t.Error("expected a POI farther than MaxMarkerM to be inactive")
	}
}

// TestOcclusionMarksFartherPOIInactive is scenario 4: two collinear POIs at
// equal azimuth but different distances, the nearer one elevated enough to
// block the farther one from the viewer's line of sight.
func TestOcclusionMarksFartherPOIInactive(t *testing.T) {
	r, _ := buildRenderer(t, 0, 50, 128, 128)
	pj := NewProjector()

	near := New("near", 0.55, 0.5, 600) // close and tall: occludes.
	far := New("far", 0.7, 0.5, 0)      // farther, at ground level behind it.
	pois := []*POI{near, far}
	pj.Project(pois, r)

	if !near.Active {
		t.Fatal("expected the near, elevated POI to be active")
	}
	if far.Active {
		t.Error("expected the farther POI to be occluded and thus inactive")
	}
}
