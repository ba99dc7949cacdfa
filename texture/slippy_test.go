// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package texture

import "testing"

func TestTileRangeMatchesBuildCorners(t *testing.T) {
	lat0, lon0, lat1, lon1 := 34.0, -118.0, 34.5, -117.5
	const zoom = 8

	x0f, y1f := slippyXY(lat0, lon0, zoom)
	x1f, y0f := slippyXY(lat1, lon1, zoom)
	wantX0, wantX1 := int(x0f), int(x1f)
	wantY0, wantY1 := int(y0f), int(y1f)
	if wantX1 < wantX0 {
		wantX0, wantX1 = wantX1, wantX0
	}
	if wantY1 < wantY0 {
		wantY0, wantY1 = wantY1, wantY0
	}

	x0, y0, x1, y1 := TileRange(lat0, lon0, lat1, lon1, zoom)
	if x0 != wantX0 || x1 != wantX1 || y0 != wantY0 || y1 != wantY1 {
		t.Errorf("TileRange = (%d,%d,%d,%d), want (%d,%d,%d,%d)", x0, y0, x1, y1, wantX0, wantY0, wantX1, wantY1)
	}
}

func TestTileRangeSingleTileIsOnePoint(t *testing.T) {
	x0, y0, x1, y1 := TileRange(34.0, -118.0, 34.001, -117.999, 4)
	if x0 != x1 || y0 != y1 {
		t.Errorf("expected a tiny rectangle at zoom 4 to cover a single tile, got (%d,%d)-(%d,%d)", x0, y0, x1, y1)
	}
}
