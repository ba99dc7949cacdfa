// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package poi places points of interest on a completed render: it
// activates POIs by distance, projects and occlusion-tests the active
// ones against the depth buffer, and staggers their labels so that
// overlapping names never collide.
package poi

import "github.com/galvanized/horizon/internal/lin"

// POI is a named point of interest: a fixed geographic position plus the
// mutable render state a PoiProjector and LabelLayout populate each frame.
type POI struct {
	Name   string
	LatRad float64
	LonRad float64
	ElevM  float64

	// Render state, rewritten in place every frame.
	DrawX, DrawY int
	LabelY       int
	Active       bool
}

// New builds a POI from a geographic position in degrees.
func New(name string, latDeg, lonDeg, elevM float64) *POI {
	return &POI{Name: name, LatRad: lin.Rad(latDeg), LonRad: lin.Rad(lonDeg), ElevM: elevM}
}

// LatDeg and LonDeg return the POI's position in degrees.
func (p *POI) LatDeg() float64 { return lin.Deg(p.LatRad) }
func (p *POI) LonDeg() float64 { return lin.Deg(p.LonRad) }
