// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package dem presents a virtual, unbounded 2-D height grid built by
// composing a small bounded table of memory-mapped SRTM tiles (see package
// tile) into one contiguous integer-indexed sampler. It owns no file
// mappings itself; it borrows them from a tile.Store for the lifetime of
// the Mosaic.
package dem

import (
	"math"

	"github.com/galvanized/horizon/errkind"
	"github.com/galvanized/horizon/tile"
)

// MaxTilesPerAxis bounds how many tiles the render footprint may span
// along one axis. Four tiles covers any render radius that fits a single
// machine's memory comfortably; a larger radius is a configuration error.
const MaxTilesPerAxis = 4

// Mosaic composes tiles around a viewer into one (2R)x(2R) height grid.
// Cell (0,0) is the SW corner of the render footprint; i increases east,
// j increases north.
type Mosaic struct {
	radius int // R
	width  int // tile grid width (1201 or 3601).
	cpd    int // cells per degree == width-1.

	originCellI, originCellJ     int // SW corner cell, mosaic-absolute.
	originTileLonDeg, originTileLatDeg int
	originTileCellI, originTileCellJ   int

	nTilesI, nTilesJ int
	tiles            [][]*tile.Handle // [i][j], nil entry == missing tile.
}

// floorDiv and floorMod implement Euclidean floor division, needed because
// origin cells can be negative (western/southern hemisphere longitudes).
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

// Build constructs a Mosaic covering a render footprint of radius R cells
// around (viewerLat, viewerLon), opening tiles as needed from store. width
// is tile.Width3 (3") or tile.Width1 (1").
func Build(viewerLat, viewerLon float64, radius int, store *tile.Store, width int) (*Mosaic, error) {
	if radius <= 0 {
		return nil, errkind.Newf(errkind.Config, "dem: radius must be positive, got %d", radius)
	}
	cpd := width - 1
	m := &Mosaic{radius: radius, width: width, cpd: cpd}

	m.originCellI = int(math.Floor(viewerLon*float64(cpd))) - (radius - 1)
	m.originCellJ = int(math.Floor(viewerLat*float64(cpd))) - (radius - 1)
	m.originTileLonDeg = floorDiv(m.originCellI, cpd)
	m.originTileLatDeg = floorDiv(m.originCellJ, cpd)
	m.originTileCellI = m.originCellI - m.originTileLonDeg*cpd
	m.originTileCellJ = m.originCellJ - m.originTileLatDeg*cpd

	lastCellI := m.originCellI + 2*radius - 1
	lastCellJ := m.originCellJ + 2*radius - 1
	lastTileDegI, _ := tileAndLocal(lastCellI, cpd, m.originTileLonDeg)
	lastTileDegJ, _ := tileAndLocal(lastCellJ, cpd, m.originTileLatDeg)

	m.nTilesI = lastTileDegI - m.originTileLonDeg + 1
	m.nTilesJ = lastTileDegJ - m.originTileLatDeg + 1
	if m.nTilesI > MaxTilesPerAxis || m.nTilesJ > MaxTilesPerAxis || m.nTilesI < 1 || m.nTilesJ < 1 {
		return nil, errkind.Newf(errkind.Config,
			"dem: render radius %d needs %dx%d tiles, exceeds bound %d",
			radius, m.nTilesI, m.nTilesJ, MaxTilesPerAxis)
	}

	m.tiles = make([][]*tile.Handle, m.nTilesI)
	for i := 0; i < m.nTilesI; i++ {
		m.tiles[i] = make([]*tile.Handle, m.nTilesJ)
		for j := 0; j < m.nTilesJ; j++ {
			lonDeg := m.originTileLonDeg + i
			latDeg := m.originTileLatDeg + j
			h, err := store.Open(latDeg, lonDeg, width)
			if err != nil {
				return nil, err
			}
			m.tiles[i][j] = h // nil if missing: treated as sea level.
		}
	}
	return m, nil
}

// tileAndLocal resolves a mosaic-absolute cell to a (tile degree, in-tile
// cell) pair using the shared-edge rule: when the cell lands exactly on
// the first row of the next tile (local == 0, beyond the origin tile), the
// SW-side tile is preferred instead by decrementing the tile index and
// reading its last row (local == cpd). This is a no-op for the very first
// tile of the mosaic, where there is no earlier tile to defer to.
func tileAndLocal(cell, cpd, originTileDeg int) (tileDeg, local int) {
	tileDeg = floorDiv(cell, cpd)
	local = floorMod(cell, cpd)
	if local == 0 && tileDeg > originTileDeg {
		tileDeg--
		local = cpd
	}
	return tileDeg, local
}

// Sample returns the height in meters at mosaic cell (i, j), or -1 for any
// (i, j) outside [0, 2R). Sample is pure and total: it never fails once
// the Mosaic has been built. A missing tile contributes height 0 over its
// whole footprint.
func (m *Mosaic) Sample(i, j int) int16 {
	extent := 2 * m.radius
	if i < 0 || j < 0 || i >= extent || j >= extent {
		return -1
	}
	globalI := m.originCellI + i
	globalJ := m.originCellJ + j

	tileDegI, localI := tileAndLocal(globalI, m.cpd, m.originTileLonDeg)
	tileDegJ, localJ := tileAndLocal(globalJ, m.cpd, m.originTileLatDeg)
	relI := tileDegI - m.originTileLonDeg
	relJ := tileDegJ - m.originTileLatDeg
	if relI < 0 || relI >= m.nTilesI || relJ < 0 || relJ >= m.nTilesJ {
		return 0 // construction bug would be an invariant violation; sample stays total.
	}

	h := m.tiles[relI][relJ]
	if h == nil {
		return 0 // missing tile: sea level.
	}
	return h.Sample(localI, localJ)
}

// Radius returns the render radius in cells (R).
func (m *Mosaic) Radius() int { return m.radius }

// CellsPerDegree returns the number of cells spanning one degree of
// latitude/longitude at this mosaic's tile resolution.
func (m *Mosaic) CellsPerDegree() int { return m.cpd }

// CellToLatLon converts a mosaic cell (i, j) to its geographic position
// in degrees.
func (m *Mosaic) CellToLatLon(i, j int) (lat, lon float64) {
	lon = float64(m.originCellI+i) / float64(m.cpd)
	lat = float64(m.originCellJ+j) / float64(m.cpd)
	return lat, lon
}

// BoundsDeg returns the inclusive geographic extent (lat0, lon0, lat1,
// lon1) of the render footprint.
func (m *Mosaic) BoundsDeg() (lat0, lon0, lat1, lon1 float64) {
	lat0, lon0 = m.CellToLatLon(0, 0)
	lat1, lon1 = m.CellToLatLon(2*m.radius-1, 2*m.radius-1)
	return
}

// CellCoord converts a geographic position to fractional mosaic-cell
// coordinates, the inverse of CellToLatLon. The result may fall outside
// [0, 2R) if (lat, lon) lies beyond the render footprint; callers that
// need a point on the footprint (e.g. locating the viewer's own cell)
// are expected to clamp.
func (m *Mosaic) CellCoord(lat, lon float64) (i, j float64) {
	i = lon*float64(m.cpd) - float64(m.originCellI)
	j = lat*float64(m.cpd) - float64(m.originCellJ)
	return i, j
}
