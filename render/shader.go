// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import (
	"math"

	"github.com/galvanized/horizon/dem"
	"github.com/galvanized/horizon/errkind"
	"github.com/galvanized/horizon/geo"
)

// TextureAtlas is satisfied by package texture's Atlas. It is declared here,
// rather than imported, so the fragment stage can sample an atlas without
// package render depending on package texture.
type TextureAtlas interface {
	Sample(latDeg, lonDeg float64) (r, g, b uint8, ok bool)
}

// Color is a 24-bit RGB color, (R, G, B) order regardless of how the
// Renderer ultimately packs it into its BGR color attachment.
type Color struct{ R, G, B uint8 }

// ShaderProgram holds the uniform state shared by the vertex, geometry, and
// fragment stages: the projection window (viewer, azimuth, z extents,
// viewport), the mosaic that resolves a mesh vertex's cell to a geographic
// position, and the optional texture atlas. Every uniform the stages use
// is either a field of geo.Window (viewer_cell/viewer_z are derived by
// Renderer.SetViewer, see render.go) or implied by the Mosaic's
// cells-per-degree and origin.
type ShaderProgram struct {
	Window geo.Window
	Mosaic *dem.Mosaic
	Atlas  TextureAtlas // nil disables texturing.

	SkyColor   Color
	NearColor  Color
	FarColor   Color
}

// DefaultShaderProgram builds a ShaderProgram with the teacher-neutral
// default palette: sky blue, near-slope green fading to a hazy far blue-gray.
func DefaultShaderProgram(w geo.Window, m *dem.Mosaic) *ShaderProgram {
	return &ShaderProgram{
		Window:    w,
		Mosaic:    m,
		SkyColor:  Color{135, 206, 235},
		NearColor: Color{34, 139, 34},
		FarColor:  Color{176, 196, 222},
	}
}

// vertexOut is the vertex stage's output for one mesh vertex: normalized
// device coordinates, clamped depth, and the geographic position the
// fragment stage needs to sample a texture atlas.
type vertexOut struct {
	AzNDC, ElNDC float64
	Depth        float64
	LenEN        float64
	LatDeg, LonDeg float64
}

// vertexStage applies §GeoProjection to a mesh vertex's (i, j, height)
// triple, converting the cell to a geographic position via the Mosaic
// before projecting.
func (s *ShaderProgram) vertexStage(cellI, cellJ int16, heightM int16) vertexOut {
	lat, lon := s.Mosaic.CellToLatLon(int(cellI), int(cellJ))
	p := geo.Forward(s.Window, lat, lon, float64(heightM))
	return vertexOut{AzNDC: p.AzNDC, ElNDC: p.ElNDC, Depth: p.Depth, LenEN: p.LenEN, LatDeg: lat, LonDeg: lon}
}

// geometryStage reports whether the triangle (a, b, c) should be discarded
// because it straddles the azimuth seam: at least one vertex projects
// outside [-1, 1] and the vertices' az_ndc span is wide enough that the
// triangle would otherwise be drawn stretched across the whole screen
// instead of wrapping.
func geometryStage(a, b, c vertexOut) bool {
	az := [3]float64{a.AzNDC, b.AzNDC, c.AzNDC}
	anyOut := false
	lo, hi := az[0], az[0]
	for _, v := range az {
		if v < -1 || v > 1 {
			anyOut = true
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return anyOut && hi-lo > 1
}

// fragmentStage produces the color for one rasterized fragment given its
// interpolated east/north range and geographic position.
func (s *ShaderProgram) fragmentStage(lenEN float64, latDeg, lonDeg float64) Color {
	if s.Atlas != nil {
		if r, g, b, ok := s.Atlas.Sample(latDeg, lonDeg); ok {
			return Color{r, g, b}
		}
	}
	zNearColor, zFarColor := s.Window.ZNearColor, s.Window.ZFarColor
	t := (lenEN - zNearColor) / (zFarColor - zNearColor)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Color{
		R: lerpByte(s.NearColor.R, s.FarColor.R, t),
		G: lerpByte(s.NearColor.G, s.FarColor.G, t),
		B: lerpByte(s.NearColor.B, s.FarColor.B, t),
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Validate checks the shader's projection window and mosaic pairing.
func (s *ShaderProgram) Validate() error {
	if s.Mosaic == nil {
		return errkind.Newf(errkind.Config, "shader: mosaic is required")
	}
	return s.Window.Validate()
}
