// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package render is the software rasterizer: it owns the color and depth
// render target, evaluates a ShaderProgram's three stages against a
// mesh.Mesh, and reads the result back as pixels or slant ranges. There is
// no native graphics context; everything in this package runs on the CPU,
// which keeps it callable headlessly and testable without a windowing
// system.
package render

import (
	"math"

	"github.com/galvanized/horizon/errkind"
	"github.com/galvanized/horizon/geo"
	"github.com/galvanized/horizon/internal/lin"
	"github.com/galvanized/horizon/mesh"
)

// Renderer owns one render target: a 24-bit BGR color buffer and a float32
// depth buffer, both sized (W_px, H_px). Rows are stored bottom-first,
// matching a device framebuffer's native readback order; ReadImage and
// ReadRanges flip to top-first on request.
type Renderer struct {
	onscreen bool
	widthPx  int
	heightPx int

	color []byte    // BGR triples, row-major, row 0 = bottom.
	depth []float32 // row-major, row 0 = bottom.

	mesh   *mesh.Mesh
	shader *ShaderProgram

	vertexCache []vertexOut // recomputed once per Redraw.
}

// New builds a Renderer targeting a mesh with the given shader program.
// onscreen controls whether Resize is later permitted: offscreen targets
// (the common case for this library) are fixed at construction.
func New(m *mesh.Mesh, shader *ShaderProgram, onscreen bool) (*Renderer, error) {
	if m == nil {
		return nil, errkind.Newf(errkind.Config, "render: mesh is required")
	}
	if err := shader.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{onscreen: onscreen, mesh: m, shader: shader}
	if err := r.Resize(shader.Window.WidthPx, shader.Window.HeightPx); err != nil {
		return nil, err
	}
	return r, nil
}

// SetViewer recomputes the tangent-plane origin for (lat, lon): the
// viewer's fractional mosaic cell and an elevation equal to the max of the
// four neighbor cell heights plus eyeLift meters (configurable rather than
// a hardcoded +1 m; see DESIGN.md's open-question decisions).
func (r *Renderer) SetViewer(latDeg, lonDeg, eyeLift float64) error {
	m := r.shader.Mosaic
	ci, cj := m.CellCoord(latDeg, lonDeg)
	i0, j0 := int(math.Floor(ci)), int(math.Floor(cj))
	var maxH int16
	first := true
	for _, c := range [][2]int{{i0, j0}, {i0 + 1, j0}, {i0, j0 + 1}, {i0 + 1, j0 + 1}} {
		h := m.Sample(c[0], c[1])
		if h < 0 {
			continue // out of footprint; skip rather than let the sentinel win the max.
		}
		if first || h > maxH {
			maxH = h
			first = false
		}
	}
	elev := float64(maxH) + eyeLift
	r.shader.Window.Viewer = geo.NewFix(latDeg, lonDeg, elev)
	if !r.shader.Window.Viewer.Valid() {
		return errkind.Newf(errkind.Config, "render: viewer (%v,%v) out of domain", latDeg, lonDeg)
	}
	return nil
}

// SetAzimuthWindow sets the horizontal field of view, az0 < az1 in degrees.
func (r *Renderer) SetAzimuthWindow(az0, az1 float64) error {
	if az0 >= az1 {
		return errkind.Newf(errkind.Config, "render: azimuth window az0 (%v) must be < az1 (%v)", az0, az1)
	}
	r.shader.Window.Az0, r.shader.Window.Az1 = az0, az1
	return nil
}

// SetZExtents sets the range clamps and color-coding bounds. A zero value
// for either color bound reuses the matching range clamp.
func (r *Renderer) SetZExtents(zNear, zFar, zNearColor, zFarColor float64) error {
	if zNear <= 0 || zFar <= zNear {
		return errkind.Newf(errkind.Config, "render: z extents near=%v far=%v must be positive, near<far", zNear, zFar)
	}
	if zNearColor == 0 {
		zNearColor = zNear
	}
	if zFarColor == 0 {
		zFarColor = zFar
	}
	r.shader.Window.ZNear, r.shader.Window.ZFar = zNear, zFar
	r.shader.Window.ZNearColor, r.shader.Window.ZFarColor = zNearColor, zFarColor
	return nil
}

// Resize changes the render target's pixel dimensions. Offscreen targets
// (onscreen == false) may only be resized once, at construction.
func (r *Renderer) Resize(widthPx, heightPx int) error {
	if widthPx <= 0 || heightPx <= 0 {
		return errkind.Newf(errkind.Config, "render: viewport %dx%d must be positive", widthPx, heightPx)
	}
	if r.color != nil && !r.onscreen {
		return errkind.Newf(errkind.Config, "render: offscreen target cannot be resized after construction")
	}
	r.widthPx, r.heightPx = widthPx, heightPx
	r.shader.Window.WidthPx, r.shader.Window.HeightPx = widthPx, heightPx
	r.color = make([]byte, widthPx*heightPx*3)
	r.depth = make([]float32, widthPx*heightPx)
	return nil
}

// Width and Height report the current render target dimensions.
func (r *Renderer) Width() int  { return r.widthPx }
func (r *Renderer) Height() int { return r.heightPx }

// RawDepth returns the render target's normalized depth buffer, row-major
// and bottom-first, for callers (package poi) that need the pre-range
// depth value a completed Redraw left behind rather than a converted
// slant range.
func (r *Renderer) RawDepth() []float32 { return r.depth }

// Window returns the shader program's current projection window, the
// uniform state a caller needs to reproject points consistently with the
// last Redraw.
func (r *Renderer) Window() geo.Window { return r.shader.Window }

// Pick reads the depth at pixel (xPx, yPx) (top-first, the caller-facing
// convention used throughout §6) and inverts the projection. ok is false
// for a sky pixel.
func (r *Renderer) Pick(xPx, yPx int) (latDeg, lonDeg float64, ok bool) {
	if xPx < 0 || yPx < 0 || xPx >= r.widthPx || yPx >= r.heightPx {
		return 0, 0, false
	}
	row := r.heightPx - 1 - yPx // caller's top-first row -> internal bottom-first row.
	depth := r.depth[row*r.widthPx+xPx]
	return geo.Inverse(r.shader.Window, float64(xPx), float64(depth))
}

// Redraw clears the render target to (sky, 1.0) and rasterizes the mesh
// through the shader program's three stages.
func (r *Renderer) Redraw() error {
	if err := r.shader.Validate(); err != nil {
		return err
	}
	sky := r.shader.SkyColor
	for p := 0; p < r.widthPx*r.heightPx; p++ {
		r.color[3*p], r.color[3*p+1], r.color[3*p+2] = sky.B, sky.G, sky.R
		r.depth[p] = 1.0
	}

	r.vertexCache = make([]vertexOut, len(r.mesh.Vertices))
	computed := make([]bool, len(r.mesh.Vertices))
	vertexAt := func(idx uint32) vertexOut {
		if !computed[idx] {
			v := r.mesh.Vertices[idx]
			r.vertexCache[idx] = r.shader.vertexStage(v.I, v.J, v.Height)
			computed[idx] = true
		}
		return r.vertexCache[idx]
	}

	for t := 0; t+2 < len(r.mesh.Indices); t += 3 {
		a := vertexAt(r.mesh.Indices[t])
		b := vertexAt(r.mesh.Indices[t+1])
		c := vertexAt(r.mesh.Indices[t+2])
		if geometryStage(a, b, c) {
			continue
		}
		r.rasterize(a, b, c)
	}
	return nil
}

// rasterize scan-converts one triangle, depth-testing and shading each
// covered pixel. Interpolation is affine in screen space: vertices have
// already been projected to NDC, so there is no perspective divide left to
// correct for.
func (r *Renderer) rasterize(a, b, c vertexOut) {
	w := r.shader.Window
	ax, ay := w.ToPixel(a.AzNDC, a.ElNDC)
	bx, by := w.ToPixel(b.AzNDC, b.ElNDC)
	cx, cy := w.ToPixel(c.AzNDC, c.ElNDC)

	pa := lin.P3{X: ax, Y: ay, Z: a.Depth}
	pb := lin.P3{X: bx, Y: by, Z: b.Depth}
	pc := lin.P3{X: cx, Y: cy, Z: c.Depth}
	area2 := lin.EdgeFn(pa, pb, pc)
	if math.Abs(area2) < lin.Epsilon {
		return
	}

	minX := int(math.Floor(math.Min(ax, math.Min(bx, cx))))
	maxX := int(math.Ceil(math.Max(ax, math.Max(bx, cx))))
	minY := int(math.Floor(math.Min(ay, math.Min(by, cy))))
	maxY := int(math.Ceil(math.Max(ay, math.Max(by, cy))))
	minX = clampInt(minX, 0, r.widthPx-1)
	maxX = clampInt(maxX, 0, r.widthPx-1)
	minY = clampInt(minY, 0, r.heightPx-1)
	maxY = clampInt(maxY, 0, r.heightPx-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := lin.P3{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			wa, wb, wc, ok := lin.Barycentric(pa, pb, pc, p, area2)
			if !ok || wa < 0 || wb < 0 || wc < 0 {
				continue
			}
			depth := wa*a.Depth + wb*b.Depth + wc*c.Depth
			idx := y*r.widthPx + x
			if depth >= float64(r.depth[idx]) {
				continue
			}
			lenEN := wa*a.LenEN + wb*b.LenEN + wc*c.LenEN
			lat := wa*a.LatDeg + wb*b.LatDeg + wc*c.LatDeg
			lon := wa*a.LonDeg + wb*b.LonDeg + wc*c.LonDeg
			col := r.shader.fragmentStage(lenEN, lat, lon)
			r.depth[idx] = float32(depth)
			r.color[3*idx], r.color[3*idx+1], r.color[3*idx+2] = col.B, col.G, col.R
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ReadImage copies the color attachment into out, which must be sized
// W_px*H_px*3 bytes of BGR triples. topFirst requests row-reversal from the
// device's native bottom-first storage.
func (r *Renderer) ReadImage(out []byte, topFirst bool) error {
	want := r.widthPx * r.heightPx * 3
	if len(out) != want {
		return errkind.Newf(errkind.Config, "render: ReadImage buffer is %d bytes, want %d", len(out), want)
	}
	rowBytes := r.widthPx * 3
	for row := 0; row < r.heightPx; row++ {
		dstRow := row
		if topFirst {
			dstRow = r.heightPx - 1 - row
		}
		copy(out[dstRow*rowBytes:(dstRow+1)*rowBytes], r.color[row*rowBytes:(row+1)*rowBytes])
	}
	return nil
}

// ReadRanges copies the depth attachment into out as true slant ranges in
// meters (sky pixels read back as -1), per the depth-to-range post-pass.
// out must be sized W_px*H_px float32 values.
func (r *Renderer) ReadRanges(out []float32, topFirst bool) error {
	want := r.widthPx * r.heightPx
	if len(out) != want {
		return errkind.Newf(errkind.Config, "render: ReadRanges buffer is %d values, want %d", len(out), want)
	}
	w := r.shader.Window
	for row := 0; row < r.heightPx; row++ {
		dstRow := row
		if topFirst {
			dstRow = r.heightPx - 1 - row
		}
		for x := 0; x < r.widthPx; x++ {
			idx := row*r.widthPx + x
			rng := geo.SlantRange(w, float64(row), float64(r.depth[idx]))
			out[dstRow*r.widthPx+x] = float32(rng)
		}
	}
	return nil
}
