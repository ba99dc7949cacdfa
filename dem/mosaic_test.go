// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package dem

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

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

func TestSampleSeaLevelSingleTile(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 0, 0, tile.Width3, func(i, j int) int16 { return 0 })
	store := tile.New(dir)
	defer store.CloseAll()

	m, err := Build(0.5, 0.5, 10, store, tile.Width3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		for j := 0; j < 20; j++ {
			if got := m.Sample(i, j); got != 0 {
				t.Fatalf("Sample(%d,%d) = %d, want 0", i, j, got)
			}
		}
	}
}

func TestSampleOutOfDomainIsSentinel(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 0, 0, tile.Width3, func(i, j int) int16 { return 0 })
	store := tile.New(dir)
	defer store.CloseAll()
	m, err := Build(0.5, 0.5, 10, store, tile.Width3)
	if err != nil {
		t.Fatal(err)
	}
	cases := [][2]int{{-1, 0}, {0, -1}, {20, 0}, {0, 20}}
	for _, c := range cases {
		if got := m.Sample(c[0], c[1]); got != -1 {
			t.Errorf("Sample(%d,%d) = %d, want -1", c[0], c[1], got)
		}
	}
}

func TestMissingTileIsSeaLevel(t *testing.T) {
	dir := t.TempDir() // no tile files written at all.
	store := tile.New(dir)
	defer store.CloseAll()

	m, err := Build(0.5, 0.5, 10, store, tile.Width3)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Sample(5, 5); got != 0 {
		t.Errorf("Sample over missing tile = %d, want 0", got)
	}
}

func TestEdgeSharingConsistency(t *testing.T) {
	// Two adjacent tiles along longitude; distinct patterns but the spec
	// requires each tile's raw shared column to actually agree, since the
	// mosaic simply reads through to whichever physical tile backs a cell.
	dir := t.TempDir()
	width := tile.Width3
	cpd := width - 1
	writeTile(t, dir, 10, 10, width, func(i, j int) int16 {
		if i == cpd { // east edge of tile (10,10) == west edge of tile (10,11).
			return 555
		}
		return 1
	})
	writeTile(t, dir, 10, 11, width, func(i, j int) int16 {
		if i == 0 {
			return 555
		}
		return 2
	})
	store := tile.New(dir)
	defer store.CloseAll()

	// Render radius big enough to straddle the tile boundary.
	viewerLon := 11.0 - float64(5)/float64(cpd) // land a few cells west of the seam, inside tile 10.
	m, err := Build(10.5, viewerLon, 50, store, width)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := 0, 2*m.radius
	found := false
	for i := lo; i < hi; i++ {
		lat, lon := m.CellToLatLon(i, 0)
		_ = lat
		if lon == 11.0 {
			found = true
			if got := m.Sample(i, 0); got != 555 {
				t.Errorf("seam sample = %d, want 555", got)
			}
		}
	}
	if !found {
		t.Skip("render footprint did not include the exact seam cell for this radius/viewer combination")
	}
}

func TestBoundsDeg(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 0, 0, tile.Width3, func(i, j int) int16 { return 0 })
	store := tile.New(dir)
	defer store.CloseAll()
	m, err := Build(0.5, 0.5, 10, store, tile.Width3)
	if err != nil {
		t.Fatal(err)
	}
	lat0, lon0, lat1, lon1 := m.BoundsDeg()
	if lat1 <= lat0 || lon1 <= lon0 {
		t.Errorf("bounds not increasing: (%v,%v)-(%v,%v)", lat0, lon0, lat1, lon1)
	}
}

func TestMaxTilesBoundEnforced(t *testing.T) {
	dir := t.TempDir()
	store := tile.New(dir)
	defer store.CloseAll()
	// A huge radius relative to cells-per-degree spans many tiles.
	cpd := tile.Width3 - 1
	_, err := Build(0, 0, cpd*MaxTilesPerAxis+10, store, tile.Width3)
	if err == nil {
		t.Fatal("expected a configuration error for an oversized footprint")
	}
}
