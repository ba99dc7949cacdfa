// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package mesh builds the vertex grid and triangle index list that covers
// the render radius around the viewer. The projection itself (package geo)
// is evaluated per vertex by the render package; MeshBuilder only lays out
// the grid topology.
package mesh

import (
	"github.com/galvanized/horizon/dem"
	"github.com/galvanized/horizon/errkind"
)

// Vertex is one mesh sample: mosaic cell (I, J) and its height in meters.
// Layout location 0 in the teacher's vertex-buffer convention.
type Vertex struct {
	I, J   int16
	Height int16
}

// Mesh is the vertex grid and triangle index buffer covering a dem.Mosaic's
// (2R)x(2R) footprint.
type Mesh struct {
	Radius   int
	Vertices []Vertex  // row-major, (2R)^2 entries, I varies faster.
	Indices  []uint32  // 6*(2R-1)^2 entries, two triangles per quad.
}

// Build constructs the mesh for the given mosaic. The projection is not
// evaluated here: it runs per vertex in the render pipeline's vertex
// stage, using the (I, J, Height) triple as its input.
func Build(m *dem.Mosaic) (*Mesh, error) {
	r := m.Radius()
	extent := 2 * r
	if extent < 2 {
		return nil, errkind.Newf(errkind.Config, "mesh: radius %d too small to build a mesh", r)
	}

	verts := make([]Vertex, extent*extent)
	for j := 0; j < extent; j++ {
		for i := 0; i < extent; i++ {
			h := m.Sample(i, j)
			if h < 0 {
				h = 0 // Sample's out-of-domain sentinel cannot occur inside [0,extent).
			}
			verts[j*extent+i] = Vertex{I: int16(i), J: int16(j), Height: h}
		}
	}

	quadsPerAxis := extent - 1
	indices := make([]uint32, 0, 6*quadsPerAxis*quadsPerAxis)
	idx := func(i, j int) uint32 { return uint32(j*extent + i) }
	for j := 0; j < quadsPerAxis; j++ {
		for i := 0; i < quadsPerAxis; i++ {
			v00 := idx(i, j)
			v10 := idx(i+1, j)
			v01 := idx(i, j+1)
			v11 := idx(i+1, j+1)
			// Triangle 1: (i,j), (i+1,j+1), (i,j+1). Triangle 2: (i,j), (i+1,j), (i+1,j+1).
			// CCW from above, matching the winding rule so face culling
			// keeps the upward-facing side visible.
			indices = append(indices, v00, v11, v01, v00, v10, v11)
		}
	}

	return &Mesh{Radius: r, Vertices: verts, Indices: indices}, nil
}

// NumVertices returns (2R)^2.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumTriangles returns 2*(2R-1)^2.
func (m *Mesh) NumTriangles() int { return len(m.Indices) / 3 }
